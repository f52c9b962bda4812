package mqtt

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kerrors "github.com/butterflysky/elgato-keylight/internal/errors"
	"github.com/butterflysky/elgato-keylight/pkg/keylight"
)

func TestParseSetCommand(t *testing.T) {
	on, off := true, false
	b40, t250 := 40, 250

	tests := []struct {
		name    string
		payload string
		want    SetCommand
	}{
		{"on", "ON", SetCommand{Patch: keylight.StatePatch{On: &on}}},
		{"off lowercase", " off\n", SetCommand{Patch: keylight.StatePatch{On: &off}}},
		{"toggle", "toggle", SetCommand{Toggle: true}},
		{"json brightness", `{"brightness":40}`, SetCommand{Patch: keylight.StatePatch{Brightness: &b40}}},
		{"json on and temp", `{"on":true,"temperature":250}`, SetCommand{Patch: keylight.StatePatch{On: &on, Temperature: &t250}}},
		{"json state", `{"state":"OFF","brightness":40}`, SetCommand{Patch: keylight.StatePatch{On: &off, Brightness: &b40}}},
		{"json toggle", `{"state":"TOGGLE"}`, SetCommand{Toggle: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSetCommand([]byte(tt.payload))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSetCommand_Invalid(t *testing.T) {
	for _, payload := range []string{
		"",
		"DIM",
		"{not json",
		"{}",
		`{"brightness":101}`,
		`{"temperature":100}`,
		`{"state":"TOGGLE","brightness":10}`,
		`{"state":"bright"}`,
	} {
		t.Run(payload, func(t *testing.T) {
			_, err := ParseSetCommand([]byte(payload))
			require.Error(t, err)
			assert.True(t, kerrors.IsInvalidInput(err))
		})
	}
}

func TestParseNamedCommand(t *testing.T) {
	got, err := ParseNamedCommand([]byte("webcam"), "preset")
	require.NoError(t, err)
	assert.Equal(t, NamedCommand{Name: "webcam"}, got)

	got, err = ParseNamedCommand([]byte(`{"preset":"dim","lights":["left"]}`), "preset")
	require.NoError(t, err)
	assert.Equal(t, NamedCommand{Name: "dim", Lights: []string{"left"}}, got)

	for _, payload := range []string{"", `{"mood":"cozy"}`, `{"preset":3}`, `{"preset":"dim","lights":"left"}`} {
		_, err := ParseNamedCommand([]byte(payload), "preset")
		assert.True(t, kerrors.IsInvalidInput(err), payload)
	}
}

func TestParseEffectCommand(t *testing.T) {
	got, err := ParseEffectCommand([]byte("celebrate"))
	require.NoError(t, err)
	assert.Equal(t, "celebrate", got.Effect)

	got, err = ParseEffectCommand([]byte(`{"effect":"flash","times":5,"interval":0.2,"lights":["right"]}`))
	require.NoError(t, err)
	assert.Equal(t, "flash", got.Effect)
	assert.Equal(t, 5, got.Times)
	assert.InDelta(t, 0.2, got.Interval, 1e-9)
	assert.Equal(t, []string{"right"}, got.Lights)

	for _, payload := range []string{"", `{"times":3}`, `{"effect":"flash","speed":2}`} {
		_, err := ParseEffectCommand([]byte(payload))
		assert.True(t, kerrors.IsInvalidInput(err), payload)
	}
}

func TestStatePayload(t *testing.T) {
	data, err := json.Marshal(NewStatePayload(keylight.LightState{On: true, Brightness: 40, Temperature: 200}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"state":"ON","on":true,"brightness":40,"temperature":200,"kelvin":5000,"reachable":true}`, string(data))

	data, err = json.Marshal(UnreachablePayload("timeout"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"on":false,"reachable":false,"error":"timeout"}`, string(data))
}
