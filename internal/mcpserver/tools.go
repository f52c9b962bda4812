package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/butterflysky/elgato-keylight/internal/effects"
	"github.com/butterflysky/elgato-keylight/pkg/keylight"
)

type toolEntry struct {
	tool    mcp.Tool
	handler server.ToolHandlerFunc
}

func withLightNames() mcp.ToolOption {
	return mcp.WithArray("light_names",
		mcp.Description(`Optional list of light names (e.g. ["left", "right"]); all configured lights when omitted`),
		mcp.Items(map[string]any{"type": "string"}),
	)
}

func (s *Server) tools() []toolEntry {
	return []toolEntry{
		{mcp.NewTool("get_light_status",
			mcp.WithDescription("Get the current status of all (or specified) lights."),
			withLightNames(),
		), s.getLightStatus},
		{mcp.NewTool("turn_on",
			mcp.WithDescription("Turn on all (or specified) lights, optionally setting brightness and temperature."),
			mcp.WithNumber("brightness", mcp.Description("Optional brightness 0-100"), mcp.Min(keylight.MinBrightness), mcp.Max(keylight.MaxBrightness)),
			mcp.WithNumber("temperature", mcp.Description("Optional temperature in Elgato units (143=cool/7000K to 344=warm/2900K)"), mcp.Min(keylight.MinTemperature), mcp.Max(keylight.MaxTemperature)),
			withLightNames(),
		), s.turnOn},
		{mcp.NewTool("turn_off",
			mcp.WithDescription("Turn off all (or specified) lights."),
			withLightNames(),
		), s.turnOff},
		{mcp.NewTool("toggle_lights",
			mcp.WithDescription("Toggle all (or specified) lights on/off."),
			withLightNames(),
		), s.toggleLights},
		{mcp.NewTool("set_brightness",
			mcp.WithDescription("Set brightness of all (or specified) lights."),
			mcp.WithNumber("brightness", mcp.Required(), mcp.Description("Brightness level 0-100"), mcp.Min(keylight.MinBrightness), mcp.Max(keylight.MaxBrightness)),
			withLightNames(),
		), s.setBrightness},
		{mcp.NewTool("set_temperature",
			mcp.WithDescription("Set color temperature of all (or specified) lights."),
			mcp.WithNumber("temperature", mcp.Required(), mcp.Description("Temperature in Elgato units (143=cool/7000K to 344=warm/2900K)"), mcp.Min(keylight.MinTemperature), mcp.Max(keylight.MaxTemperature)),
			withLightNames(),
		), s.setTemperature},
		{mcp.NewTool("apply_preset",
			mcp.WithDescription("Apply a named lighting preset. Use list_presets to see the available names."),
			mcp.WithString("preset_name", mcp.Required(), mcp.Description("Name of the preset to apply")),
			withLightNames(),
		), s.applyPreset},
		{mcp.NewTool("list_presets",
			mcp.WithDescription("List the available lighting presets and their values."),
		), s.listPresets},
		{mcp.NewTool("identify_lights",
			mcp.WithDescription("Make all (or specified) lights blink so they can be told apart."),
			withLightNames(),
		), s.identifyLights},
		{mcp.NewTool("flash_lights",
			mcp.WithDescription("Flash the lights on/off to get attention or say hello! Restores original state."),
			mcp.WithNumber("times", mcp.Description("Number of flashes"), mcp.DefaultNumber(effects.DefaultFlashTimes), mcp.Min(1)),
			withLightNames(),
		), s.flashLights},
		{mcp.NewTool("pulse_lights",
			mcp.WithDescription("Smoothly pulse light brightness up and down. Restores original state."),
			mcp.WithNumber("cycles", mcp.Description("Number of pulse cycles"), mcp.DefaultNumber(effects.DefaultPulseCycles), mcp.Min(1)),
			withLightNames(),
		), s.pulseLights},
		{mcp.NewTool("celebrate",
			mcp.WithDescription("Fun alternating color temperature dance! Perfect for celebrating a win. Restores original state when done."),
			withLightNames(),
		), s.celebrate},
		{mcp.NewTool("alert_flash",
			mcp.WithDescription("Urgent attention-getting flash at max brightness. Restores original state."),
			mcp.WithNumber("flashes", mcp.Description("Number of alert flashes"), mcp.DefaultNumber(effects.DefaultAlertFlashes), mcp.Min(1)),
			withLightNames(),
		), s.alertFlash},
		{mcp.NewTool("dim_for_attention",
			mcp.WithDescription("Slowly dim lights to subtly get attention without being jarring. Restores original state."),
			withLightNames(),
		), s.dimForAttention},
		{mcp.NewTool("set_mood_lighting",
			mcp.WithDescription("Set a mood lighting preset. This persists (does not restore previous state)."),
			mcp.WithString("mood", mcp.Required(), mcp.Description("The mood to set"), mcp.Enum(s.svc.Moods().Names()...)),
			withLightNames(),
		), s.setMoodLighting},
		{mcp.NewTool("run_effect",
			mcp.WithDescription("Run any registered effect, including user Lua scripts, by name. Restores original state."),
			mcp.WithString("effect", mcp.Required(), mcp.Description("Effect name: "+strings.Join(s.svc.Effects(), ", "))),
			mcp.WithNumber("times", mcp.Description("flash: repetitions")),
			mcp.WithNumber("interval", mcp.Description("flash: seconds between toggles")),
			mcp.WithNumber("cycles", mcp.Description("pulse: cycles")),
			mcp.WithNumber("step_ms", mcp.Description("pulse: step length in milliseconds")),
			mcp.WithNumber("flashes", mcp.Description("alert: flashes")),
			mcp.WithNumber("target", mcp.Description("dim: target brightness")),
			mcp.WithNumber("steps", mcp.Description("dim: number of steps")),
			withLightNames(),
		), s.runEffect},
		{mcp.NewTool("discover_lights",
			mcp.WithDescription("Browse the local network for Key Lights and return config entries for them."),
		), s.discoverLights},
	}
}

func (s *Server) getLightStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	statuses, err := s.svc.Status(ctx, lightNames(req))
	if err != nil {
		return s.toolError(ctx, err, ""), nil
	}
	lines := make([]string, 0, len(statuses))
	for _, st := range statuses {
		if st.Err != nil {
			lines = append(lines, fmt.Sprintf("%s: error: %v", st.Light.Name, st.Err))
			continue
		}
		name := st.Light.Name
		if label := st.Label(); label != "" {
			name = fmt.Sprintf("%s (%s)", name, label)
		}
		lines = append(lines, stateLine(name, st.State))
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) turnOn(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	on := true
	patch := keylight.StatePatch{On: &on}
	args := req.GetArguments()
	if _, ok := args["brightness"]; ok {
		b := req.GetInt("brightness", keylight.DefaultBrightness)
		patch.Brightness = &b
	}
	if _, ok := args["temperature"]; ok {
		t := req.GetInt("temperature", keylight.DefaultTemperature)
		patch.Temperature = &t
	}
	results, err := s.svc.Update(ctx, lightNames(req), patch)
	if err != nil {
		return s.toolError(ctx, err, ""), nil
	}
	return lightResults(results, "Lights turned on."), nil
}

func (s *Server) turnOff(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	results, err := s.svc.TurnOff(ctx, lightNames(req))
	if err != nil {
		return s.toolError(ctx, err, ""), nil
	}
	return lightResults(results, "Lights turned off."), nil
}

func (s *Server) toggleLights(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	results, err := s.svc.Toggle(ctx, lightNames(req))
	if err != nil {
		return s.toolError(ctx, err, ""), nil
	}
	lines := make([]string, 0, len(results))
	for _, r := range results {
		switch {
		case r.Err != nil:
			lines = append(lines, fmt.Sprintf("%s: error: %v", r.Light.Name, r.Err))
		case r.State.On:
			lines = append(lines, r.Light.Name+": on")
		default:
			lines = append(lines, r.Light.Name+": off")
		}
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) setBrightness(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	b, err := req.RequireInt("brightness")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	b = keylight.ClampBrightness(b)
	results, err := s.svc.SetBrightness(ctx, lightNames(req), b)
	if err != nil {
		return s.toolError(ctx, err, ""), nil
	}
	return lightResults(results, fmt.Sprintf("Brightness set to %d%%.", b)), nil
}

func (s *Server) setTemperature(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	t, err := req.RequireInt("temperature")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	t = keylight.ClampTemperature(t)
	results, err := s.svc.SetTemperature(ctx, lightNames(req), t)
	if err != nil {
		return s.toolError(ctx, err, ""), nil
	}
	return lightResults(results, fmt.Sprintf("Temperature set to %d (~%dK).", t, keylight.TemperatureToKelvin(t))), nil
}

func (s *Server) applyPreset(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("preset_name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.ApplyPreset(ctx, name, lightNames(req))
	if err != nil {
		return s.toolError(ctx, err, name), nil
	}
	return lightResults(results, fmt.Sprintf("Preset '%s' applied.", name)), nil
}

func (s *Server) listPresets(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	presets, err := s.svc.Presets(ctx)
	if err != nil {
		return s.toolError(ctx, err, ""), nil
	}
	lines := make([]string, 0, len(presets))
	for _, name := range presets.Names() {
		p := presets[name]
		line := fmt.Sprintf("%s: brightness=%d%%, temp=%d (~%dK)", name, p.Brightness, p.Temperature, keylight.TemperatureToKelvin(p.Temperature))
		if len(p.Overrides) > 0 {
			line += fmt.Sprintf(" [%d per-light overrides]", len(p.Overrides))
		}
		lines = append(lines, line)
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) identifyLights(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	results, err := s.svc.Identify(ctx, lightNames(req))
	if err != nil {
		return s.toolError(ctx, err, ""), nil
	}
	return lightResults(results, "Identify sent."), nil
}

func (s *Server) flashLights(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	times := req.GetInt("times", effects.DefaultFlashTimes)
	return s.effect(ctx, req, "flash", effects.Params{Times: times}, fmt.Sprintf("Flashed %d times!", times))
}

func (s *Server) pulseLights(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cycles := req.GetInt("cycles", effects.DefaultPulseCycles)
	return s.effect(ctx, req, "pulse", effects.Params{Cycles: cycles}, fmt.Sprintf("Pulsed %d times!", cycles))
}

func (s *Server) celebrate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.effect(ctx, req, "celebration", effects.Params{}, "Celebration complete!")
}

func (s *Server) alertFlash(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	flashes := req.GetInt("flashes", effects.DefaultAlertFlashes)
	return s.effect(ctx, req, "alert", effects.Params{Flashes: flashes}, "Alert sent!")
}

func (s *Server) dimForAttention(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.effect(ctx, req, "dim", effects.Params{}, "Dim attention complete.")
}

func (s *Server) runEffect(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("effect")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	p := effects.Params{
		Times:    req.GetInt("times", 0),
		Interval: req.GetFloat("interval", 0),
		Cycles:   req.GetInt("cycles", 0),
		StepMS:   req.GetInt("step_ms", 0),
		Flashes:  req.GetInt("flashes", 0),
		Steps:    req.GetInt("steps", 0),
	}
	if _, ok := req.GetArguments()["target"]; ok {
		target := req.GetInt("target", 0)
		p.Target = &target
	}
	return s.effect(ctx, req, name, p, fmt.Sprintf("Effect '%s' complete.", name))
}

func (s *Server) effect(ctx context.Context, req mcp.CallToolRequest, name string, p effects.Params, msg string) (*mcp.CallToolResult, error) {
	res, err := s.svc.RunEffect(ctx, name, p, lightNames(req))
	if err != nil {
		return s.toolError(ctx, err, name), nil
	}
	return effectResult(res, msg), nil
}

func (s *Server) setMoodLighting(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	mood, err := req.RequireString("mood")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if _, err := s.svc.SetMood(ctx, mood, lightNames(req)); err != nil {
		return s.toolError(ctx, err, mood), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Mood set to '%s'.", mood)), nil
}

func (s *Server) discoverLights(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	lights := s.svc.Discover(ctx)
	if len(lights) == 0 {
		return mcp.NewToolResultText("No lights found."), nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d light(s). Add to the config file:\n", len(lights))
	for _, l := range lights {
		fmt.Fprintf(&b, "\n[[lights]]\nname = %q\nhost = %q\nport = %d\n", l.Name, l.Host, l.Port)
		if l.ID != "" {
			fmt.Fprintf(&b, "id = %q\n", l.ID)
		}
	}
	return mcp.NewToolResultText(b.String()), nil
}
