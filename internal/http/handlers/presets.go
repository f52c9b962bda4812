package handlers

import (
	"context"
	"log/slog"

	"github.com/butterflysky/elgato-keylight/internal/control"
)

// ListPresetsInput is the input for listing presets.
type ListPresetsInput struct{}

// ListPresetsOutput is the output for listing presets.
type ListPresetsOutput struct {
	Body []PresetResponse
}

// ApplyPresetInput is the input for applying a preset.
type ApplyPresetInput struct {
	Name string        `path:"name" doc:"Preset name"`
	Body TargetRequest `required:"false"`
}

// PresetHandler implements preset HTTP handlers.
type PresetHandler struct {
	Lights control.Service
	Logger *slog.Logger
}

// ListPresets returns the built-in presets overlaid with the user's.
func (h *PresetHandler) ListPresets(ctx context.Context, _ *ListPresetsInput) (*ListPresetsOutput, error) {
	presets, err := h.Lights.Presets(ctx)
	if err != nil {
		return nil, APIError(err)
	}
	return &ListPresetsOutput{Body: PresetsFromKeylight(presets)}, nil
}

// ApplyPreset sets each light to the preset's values, honouring per-light
// overrides.
func (h *PresetHandler) ApplyPreset(ctx context.Context, input *ApplyPresetInput) (*LightResultsOutput, error) {
	results, err := h.Lights.ApplyPreset(ctx, input.Name, input.Body.Lights)
	if err != nil {
		return nil, APIError(err)
	}
	h.Logger.Info("Preset applied via API", "preset", input.Name, "lights", len(results))
	return resultsOutput(results)
}

// Ensure PresetHandler implements the interface at compile time.
var _ PresetHandlers = (*PresetHandler)(nil)

// PresetHandlers defines the interface for preset operations.
type PresetHandlers interface {
	ListPresets(ctx context.Context, input *ListPresetsInput) (*ListPresetsOutput, error)
	ApplyPreset(ctx context.Context, input *ApplyPresetInput) (*LightResultsOutput, error)
}
