package mqtt

import (
	"strings"

	"github.com/butterflysky/elgato-keylight/internal/config"
)

// AllLights is the <name> topic segment addressing every light.
const AllLights = "all"

// Topics builds the topic names under a prefix.
type Topics struct {
	Prefix string
}

// NewTopics trims slashes from prefix, defaulting to "elgato".
func NewTopics(prefix string) Topics {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		prefix = config.DefaultTopicPrefix
	}
	return Topics{Prefix: prefix}
}

func (t Topics) join(parts ...string) string {
	return t.Prefix + "/" + strings.Join(parts, "/")
}

// Status is the retained online/offline topic.
func (t Topics) Status() string { return t.join("status") }

// State is the retained state topic of one light.
func (t Topics) State(light string) string { return t.join("light", light, "state") }

// Set is the command topic of one light.
func (t Topics) Set(light string) string { return t.join("light", light, "set") }

// AllSet matches the command topic of every light.
func (t Topics) AllSet() string { return t.join("light", "+", "set") }

// PresetApply takes a preset name or {"preset","lights"}.
func (t Topics) PresetApply() string { return t.join("preset", "apply") }

// MoodSet takes a mood name or {"mood","lights"}.
func (t Topics) MoodSet() string { return t.join("mood", "set") }

// EffectRun takes an effect name or {"effect", params..., "lights"}.
func (t Topics) EffectRun() string { return t.join("effect", "run") }

// Event carries every bus event as JSON.
func (t Topics) Event() string { return t.join("event") }

// LightFromSet extracts the light name from a set topic.
func (t Topics) LightFromSet(topic string) (string, bool) {
	rest, ok := strings.CutPrefix(topic, t.Prefix+"/light/")
	if !ok {
		return "", false
	}
	name, ok := strings.CutSuffix(rest, "/set")
	if !ok || name == "" || strings.Contains(name, "/") {
		return "", false
	}
	return name, true
}
