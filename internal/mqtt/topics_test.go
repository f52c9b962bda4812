package mqtt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTopics(t *testing.T) {
	topics := NewTopics("/home/elgato/")
	assert.Equal(t, "home/elgato/status", topics.Status())
	assert.Equal(t, "home/elgato/light/left/state", topics.State("left"))
	assert.Equal(t, "home/elgato/light/left/set", topics.Set("left"))
	assert.Equal(t, "home/elgato/light/+/set", topics.AllSet())
	assert.Equal(t, "home/elgato/preset/apply", topics.PresetApply())
	assert.Equal(t, "home/elgato/mood/set", topics.MoodSet())
	assert.Equal(t, "home/elgato/effect/run", topics.EffectRun())
	assert.Equal(t, "home/elgato/event", topics.Event())

	assert.Equal(t, "elgato", NewTopics("").Prefix)
}

func TestTopics_LightFromSet(t *testing.T) {
	topics := NewTopics("elgato")
	tests := []struct {
		topic string
		want  string
		ok    bool
	}{
		{"elgato/light/left/set", "left", true},
		{"elgato/light/all/set", "all", true},
		{"elgato/light/left/state", "", false},
		{"elgato/light//set", "", false},
		{"elgato/light/a/b/set", "", false},
		{"other/light/left/set", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.topic, func(t *testing.T) {
			got, ok := topics.LightFromSet(tt.topic)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
