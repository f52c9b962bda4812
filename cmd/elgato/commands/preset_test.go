package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/butterflysky/elgato-keylight/internal/control/controltest"
	"github.com/butterflysky/elgato-keylight/pkg/keylight"
)

func TestPresetCommand(t *testing.T) {
	f := controltest.New(t, "left", "right")

	out, _, err := execute(t, f, "preset", "webcam")
	require.NoError(t, err)
	assert.Equal(t, "left: preset 'webcam' applied\nright: preset 'webcam' applied\n", out)
	assert.Equal(t, keylight.LightState{On: true, Brightness: 46, Temperature: 177}, f.Light("left").State())
	assert.Equal(t, keylight.LightState{On: true, Brightness: 18, Temperature: 181}, f.Light("right").State())
}

func TestUnknownPresetCommand(t *testing.T) {
	f := controltest.New(t, "left")
	f.AddConfig("[presets.reading]\nbrightness = 65\ntemperature = 230\n")

	_, errOut, err := execute(t, f, "preset", "disco")
	require.Error(t, err)
	assert.Equal(t, `unknown preset "disco" (available: bright, cool, dim, reading, video, warm, webcam)`, err.Error())
	assert.Contains(t, errOut, "unknown preset")
	assert.Empty(t, f.Light("left").Puts())
}

func TestPresetsCommand(t *testing.T) {
	f := controltest.New(t, "left")

	out, _, err := execute(t, f, "presets", "--parseable")
	require.NoError(t, err)
	lines := splitLines(out)
	require.Len(t, lines, 6)
	assert.Equal(t, `name="bright" brightness=100 temperature=200 overrides=0`, lines[0])
	assert.Equal(t, `name="webcam" brightness=32 temperature=179 overrides=2`, lines[5])

	var tableErr error
	table := captureStdout(func() {
		_, _, tableErr = execute(t, f, "presets")
	})
	require.NoError(t, tableErr)
	assert.Contains(t, table, "webcam")
	assert.Contains(t, table, "right")
	assert.Contains(t, table, "18%")
}
