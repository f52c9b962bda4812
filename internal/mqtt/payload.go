package mqtt

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/butterflysky/elgato-keylight/internal/effects"
	kerrors "github.com/butterflysky/elgato-keylight/internal/errors"
	"github.com/butterflysky/elgato-keylight/pkg/keylight"
)

// Plain-text light commands.
const (
	CommandOn     = "ON"
	CommandOff    = "OFF"
	CommandToggle = "TOGGLE"
)

// SetCommand is a parsed light/<name>/set payload: either a toggle or a
// partial state.
type SetCommand struct {
	Toggle bool
	Patch  keylight.StatePatch
}

// setPayload is the JSON form of a set command. State accepts the plain
// commands so Home Assistant style {"state":"ON","brightness":40} works.
type setPayload struct {
	State       string `json:"state,omitempty"`
	On          *bool  `json:"on,omitempty"`
	Brightness  *int   `json:"brightness,omitempty"`
	Temperature *int   `json:"temperature,omitempty"`
}

// ParseSetCommand parses ON, OFF, TOGGLE (any case) or a JSON patch.
func ParseSetCommand(payload []byte) (SetCommand, error) {
	text := strings.TrimSpace(string(payload))
	if text == "" {
		return SetCommand{}, kerrors.InvalidInputf("empty set payload")
	}
	if !strings.HasPrefix(text, "{") {
		return plainCommand(text)
	}

	var p setPayload
	if err := json.Unmarshal([]byte(text), &p); err != nil {
		return SetCommand{}, kerrors.InvalidInputf("set payload: %v", err)
	}
	cmd := SetCommand{Patch: keylight.StatePatch{On: p.On, Brightness: p.Brightness, Temperature: p.Temperature}}
	if p.State != "" {
		plain, err := plainCommand(p.State)
		if err != nil {
			return SetCommand{}, err
		}
		if plain.Toggle {
			if !cmd.Patch.IsEmpty() {
				return SetCommand{}, kerrors.InvalidInputf("TOGGLE cannot be combined with other fields")
			}
			return plain, nil
		}
		cmd.Patch.On = plain.Patch.On
	}
	if cmd.Patch.IsEmpty() {
		return SetCommand{}, kerrors.InvalidInputf("set payload changes nothing")
	}
	if b := cmd.Patch.Brightness; b != nil && (*b < keylight.MinBrightness || *b > keylight.MaxBrightness) {
		return SetCommand{}, kerrors.InvalidInputf("brightness %d out of range %d-%d", *b, keylight.MinBrightness, keylight.MaxBrightness)
	}
	if t := cmd.Patch.Temperature; t != nil && (*t < keylight.MinTemperature || *t > keylight.MaxTemperature) {
		return SetCommand{}, kerrors.InvalidInputf("temperature %d out of range %d-%d", *t, keylight.MinTemperature, keylight.MaxTemperature)
	}
	return cmd, nil
}

func plainCommand(text string) (SetCommand, error) {
	switch strings.ToUpper(text) {
	case CommandOn:
		on := true
		return SetCommand{Patch: keylight.StatePatch{On: &on}}, nil
	case CommandOff:
		off := false
		return SetCommand{Patch: keylight.StatePatch{On: &off}}, nil
	case CommandToggle:
		return SetCommand{Toggle: true}, nil
	default:
		return SetCommand{}, kerrors.InvalidInputf("unknown command %q (want ON, OFF, TOGGLE or JSON)", text)
	}
}

// NamedCommand is a parsed preset/apply or mood/set payload.
type NamedCommand struct {
	Name   string
	Lights []string
}

// ParseNamedCommand accepts a bare name or a JSON object whose key field
// holds the name, plus optional "lights".
func ParseNamedCommand(payload []byte, key string) (NamedCommand, error) {
	text := strings.TrimSpace(string(payload))
	if !strings.HasPrefix(text, "{") {
		if text == "" {
			return NamedCommand{}, kerrors.InvalidInputf("empty %s payload", key)
		}
		return NamedCommand{Name: text}, nil
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return NamedCommand{}, kerrors.InvalidInputf("%s payload: %v", key, err)
	}
	var cmd NamedCommand
	if err := json.Unmarshal(raw[key], &cmd.Name); err != nil || cmd.Name == "" {
		return NamedCommand{}, kerrors.InvalidInputf("%s payload needs a %q name", key, key)
	}
	if l, ok := raw["lights"]; ok {
		if err := json.Unmarshal(l, &cmd.Lights); err != nil {
			return NamedCommand{}, kerrors.InvalidInputf("%s payload: lights must be a list of names", key)
		}
	}
	return cmd, nil
}

// EffectCommand is a parsed effect/run payload.
type EffectCommand struct {
	Effect string   `json:"effect"`
	Lights []string `json:"lights,omitempty"`
	effects.Params
}

// ParseEffectCommand accepts a bare effect name or
// {"effect": name, "lights": [...], "times": 3, ...}.
func ParseEffectCommand(payload []byte) (EffectCommand, error) {
	text := strings.TrimSpace(string(payload))
	if !strings.HasPrefix(text, "{") {
		if text == "" {
			return EffectCommand{}, kerrors.InvalidInputf("empty effect payload")
		}
		return EffectCommand{Effect: text}, nil
	}
	var cmd EffectCommand
	dec := json.NewDecoder(bytes.NewReader([]byte(text)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cmd); err != nil {
		return EffectCommand{}, kerrors.InvalidInputf("effect payload: %v", err)
	}
	if cmd.Effect == "" {
		return EffectCommand{}, kerrors.InvalidInputf("effect payload needs an \"effect\" name")
	}
	return cmd, nil
}

// StatePayload is the retained JSON published on light/<name>/state.
type StatePayload struct {
	State       string `json:"state,omitempty"`
	On          bool   `json:"on"`
	Brightness  int    `json:"brightness,omitempty"`
	Temperature int    `json:"temperature,omitempty"`
	Kelvin      int    `json:"kelvin,omitempty"`
	Reachable   bool   `json:"reachable"`
	Error       string `json:"error,omitempty"`
}

// NewStatePayload describes a reachable light.
func NewStatePayload(s keylight.LightState) StatePayload {
	state := CommandOff
	if s.On {
		state = CommandOn
	}
	return StatePayload{
		State:       state,
		On:          s.On,
		Brightness:  s.Brightness,
		Temperature: s.Temperature,
		Kelvin:      s.Kelvin(),
		Reachable:   true,
	}
}

// UnreachablePayload describes a light that did not answer.
func UnreachablePayload(err string) StatePayload {
	return StatePayload{Error: err}
}
