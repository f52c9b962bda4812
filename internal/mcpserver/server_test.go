package mcpserver

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/butterflysky/elgato-keylight/internal/control/controltest"
	"github.com/butterflysky/elgato-keylight/pkg/keylight"
)

func newTestServer(t *testing.T, lights ...string) (*Server, *controltest.Fixture) {
	t.Helper()
	f := controltest.New(t, lights...)
	return New(f.Controller, "test", slog.New(slog.NewTextHandler(io.Discard, nil))), f
}

// callTool invokes a tool by name and returns its text and error flag.
func callTool(t *testing.T, s *Server, name string, args map[string]any) (string, bool) {
	t.Helper()
	for _, entry := range s.tools() {
		if entry.tool.Name != name {
			continue
		}
		var req mcp.CallToolRequest
		req.Params.Name = name
		req.Params.Arguments = args
		res, err := entry.handler(context.Background(), req)
		require.NoError(t, err)
		require.NotNil(t, res)
		require.NotEmpty(t, res.Content)
		text, ok := res.Content[0].(mcp.TextContent)
		require.True(t, ok, "expected text content")
		return text.Text, res.IsError
	}
	t.Fatalf("no tool %q", name)
	return "", false
}

func TestToolsRegistered(t *testing.T) {
	s, _ := newTestServer(t, "key")

	var names []string
	for _, entry := range s.tools() {
		names = append(names, entry.tool.Name)
	}
	assert.ElementsMatch(t, []string{
		"get_light_status", "turn_on", "turn_off", "toggle_lights",
		"set_brightness", "set_temperature", "apply_preset", "list_presets",
		"identify_lights", "flash_lights", "pulse_lights", "celebrate",
		"alert_flash", "dim_for_attention", "set_mood_lighting", "run_effect",
		"discover_lights",
	}, names)
}

func TestGetLightStatus(t *testing.T) {
	s, f := newTestServer(t, "left", "right")
	f.Light("left").SetInfo(keylight.DeviceInfo{ProductName: "Elgato Key Light", DisplayName: "Desk"})
	f.Light("right").SetDown(true)

	text, isErr := callTool(t, s, "get_light_status", nil)
	assert.False(t, isErr)
	assert.Contains(t, text, "left (Desk): on, brightness=50%, temp=200 (~5000K)")
	assert.Contains(t, text, "right: error:")

	text, _ = callTool(t, s, "get_light_status", map[string]any{"light_names": []any{"left"}})
	assert.NotContains(t, text, "right")
}

func TestTurnOnWithValues(t *testing.T) {
	s, f := newTestServer(t, "key")
	f.Light("key").SetState(keylight.LightState{On: false, Brightness: 50, Temperature: 200})

	text, isErr := callTool(t, s, "turn_on", map[string]any{"brightness": float64(30)})
	assert.False(t, isErr)
	assert.Equal(t, "Lights turned on.", text)
	assert.Equal(t, keylight.LightState{On: true, Brightness: 30, Temperature: 200}, f.Light("key").State())
}

func TestSimpleTools(t *testing.T) {
	s, f := newTestServer(t, "key")
	light := f.Light("key")

	text, _ := callTool(t, s, "turn_off", nil)
	assert.Equal(t, "Lights turned off.", text)
	assert.False(t, light.State().On)

	text, _ = callTool(t, s, "toggle_lights", nil)
	assert.Equal(t, "key: on", text)

	text, _ = callTool(t, s, "set_brightness", map[string]any{"brightness": float64(150)})
	assert.Equal(t, "Brightness set to 100%.", text)
	assert.Equal(t, 100, light.State().Brightness)

	text, _ = callTool(t, s, "set_temperature", map[string]any{"temperature": float64(250)})
	assert.Equal(t, "Temperature set to 250 (~4000K).", text)

	text, _ = callTool(t, s, "identify_lights", nil)
	assert.Equal(t, "Identify sent.", text)
	assert.Equal(t, 1, light.Identifies())
}

func TestMissingRequiredArgument(t *testing.T) {
	s, _ := newTestServer(t, "key")

	_, isErr := callTool(t, s, "set_brightness", nil)
	assert.True(t, isErr)
	_, isErr = callTool(t, s, "apply_preset", nil)
	assert.True(t, isErr)
}

func TestApplyPreset(t *testing.T) {
	s, f := newTestServer(t, "key")

	text, isErr := callTool(t, s, "apply_preset", map[string]any{"preset_name": "warm"})
	assert.False(t, isErr)
	assert.Equal(t, "Preset 'warm' applied.", text)
	assert.Equal(t, keylight.LightState{On: true, Brightness: 60, Temperature: 320}, f.Light("key").State())

	text, isErr = callTool(t, s, "apply_preset", map[string]any{"preset_name": "disco"})
	assert.True(t, isErr)
	assert.Equal(t, `Unknown preset: "disco". Available: bright, cool, dim, video, warm, webcam`, text)
}

func TestListPresets(t *testing.T) {
	s, _ := newTestServer(t, "key")

	text, isErr := callTool(t, s, "list_presets", nil)
	assert.False(t, isErr)
	assert.Contains(t, text, "bright: brightness=100%, temp=200 (~5000K)")
	assert.Contains(t, text, "webcam: brightness=32%, temp=179 (~5586K) [2 per-light overrides]")
}

func TestEffectTools(t *testing.T) {
	s, f := newTestServer(t, "key")
	initial := f.Light("key").State()

	tests := []struct {
		tool string
		args map[string]any
		want string
	}{
		{"flash_lights", map[string]any{"times": float64(2)}, "Flashed 2 times!"},
		{"pulse_lights", nil, "Pulsed 3 times!"},
		{"celebrate", nil, "Celebration complete!"},
		{"alert_flash", nil, "Alert sent!"},
		{"dim_for_attention", nil, "Dim attention complete."},
		{"run_effect", map[string]any{"effect": "dim_slowly", "target": float64(0), "steps": float64(4)}, "Effect 'dim_slowly' complete."},
	}
	for _, tt := range tests {
		t.Run(tt.tool, func(t *testing.T) {
			text, isErr := callTool(t, s, tt.tool, tt.args)
			assert.False(t, isErr, text)
			assert.Equal(t, tt.want, text)
			assert.Equal(t, initial, f.Light("key").State())
		})
	}
}

func TestRunUnknownEffect(t *testing.T) {
	s, _ := newTestServer(t, "key")

	text, isErr := callTool(t, s, "run_effect", map[string]any{"effect": "disco"})
	assert.True(t, isErr)
	assert.Contains(t, text, `Unknown effect: "disco". Available: `)
	assert.Contains(t, text, "celebration")
}

func TestSetMoodLighting(t *testing.T) {
	s, f := newTestServer(t, "key")

	text, isErr := callTool(t, s, "set_mood_lighting", map[string]any{"mood": "cozy"})
	assert.False(t, isErr)
	assert.Equal(t, "Mood set to 'cozy'.", text)
	assert.Equal(t, keylight.LightState{On: true, Brightness: 25, Temperature: 320}, f.Light("key").State())

	text, isErr = callTool(t, s, "set_mood_lighting", map[string]any{"mood": "party"})
	assert.True(t, isErr)
	assert.Equal(t, `Unknown mood: "party". Available: cozy, focus, relax, energize, movie`, text)
}

func TestNoLights(t *testing.T) {
	s, _ := newTestServer(t)

	text, isErr := callTool(t, s, "turn_on", nil)
	assert.True(t, isErr)
	assert.Contains(t, text, "no lights")
}

func TestPartialFailure(t *testing.T) {
	s, f := newTestServer(t, "left", "right")
	f.Light("right").SetDown(true)

	text, isErr := callTool(t, s, "turn_off", nil)
	assert.False(t, isErr)
	assert.Contains(t, text, "Lights turned off.\nright: error:")

	f.Light("left").SetDown(true)
	_, isErr = callTool(t, s, "turn_off", nil)
	assert.True(t, isErr)
}

func TestDiscoverLights(t *testing.T) {
	s, f := newTestServer(t)

	text, _ := callTool(t, s, "discover_lights", nil)
	assert.Equal(t, "No lights found.", text)

	f.Discovered = []keylight.LightConfig{{Name: "elgato key light 1a2b", Host: "192.168.1.20", Port: 9123, ID: "3C:6A:9D:14:1A:2B"}}
	text, _ = callTool(t, s, "discover_lights", nil)
	assert.Contains(t, text, "Found 1 light(s)")
	assert.Contains(t, text, `name = "elgato key light 1a2b"`)
	assert.Contains(t, text, `id = "3C:6A:9D:14:1A:2B"`)
}
