package routes

import (
	"context"

	"github.com/butterflysky/elgato-keylight/internal/http/handlers"
)

// StubHandlers returns a Handlers instance with stub implementations.
// All handlers return nil responses. They are only used for OpenAPI generation
// where Huma extracts type information from function signatures.
func StubHandlers() *Handlers {
	return &Handlers{
		HealthCheck: func(_ context.Context, _ *handlers.HealthInput) (*handlers.HealthOutput, error) {
			return nil, nil
		},
		VersionCheck: func(_ context.Context, _ *handlers.VersionInput) (*handlers.VersionOutput, error) {
			return nil, nil
		},
		Light:   &stubLightHandlers{},
		Preset:  &stubPresetHandlers{},
		Mood:    &stubMoodHandlers{},
		Effect:  &stubEffectHandlers{},
		Logging: &stubLoggingHandlers{},
	}
}

// --- Light stubs ---

type stubLightHandlers struct{}

func (s *stubLightHandlers) ListLights(_ context.Context, _ *handlers.ListLightsInput) (*handlers.ListLightsOutput, error) {
	return nil, nil
}

func (s *stubLightHandlers) GetLight(_ context.Context, _ *handlers.GetLightInput) (*handlers.GetLightOutput, error) {
	return nil, nil
}

func (s *stubLightHandlers) SetLightState(_ context.Context, _ *handlers.SetLightStateInput) (*handlers.LightResultsOutput, error) {
	return nil, nil
}

func (s *stubLightHandlers) Identify(_ context.Context, _ *handlers.IdentifyInput) (*handlers.LightResultsOutput, error) {
	return nil, nil
}

// --- Preset stubs ---

type stubPresetHandlers struct{}

func (s *stubPresetHandlers) ListPresets(_ context.Context, _ *handlers.ListPresetsInput) (*handlers.ListPresetsOutput, error) {
	return nil, nil
}

func (s *stubPresetHandlers) ApplyPreset(_ context.Context, _ *handlers.ApplyPresetInput) (*handlers.LightResultsOutput, error) {
	return nil, nil
}

// --- Mood stubs ---

type stubMoodHandlers struct{}

func (s *stubMoodHandlers) ListMoods(_ context.Context, _ *handlers.ListMoodsInput) (*handlers.ListMoodsOutput, error) {
	return nil, nil
}

func (s *stubMoodHandlers) SetMood(_ context.Context, _ *handlers.SetMoodInput) (*handlers.SetMoodOutput, error) {
	return nil, nil
}

// --- Effect stubs ---

type stubEffectHandlers struct{}

func (s *stubEffectHandlers) ListEffects(_ context.Context, _ *handlers.ListEffectsInput) (*handlers.ListEffectsOutput, error) {
	return nil, nil
}

func (s *stubEffectHandlers) RunEffect(_ context.Context, _ *handlers.RunEffectInput) (*handlers.RunEffectOutput, error) {
	return nil, nil
}

// --- Logging stubs ---

type stubLoggingHandlers struct{}

func (s *stubLoggingHandlers) GetLevel(_ context.Context, _ *handlers.GetLevelInput) (*handlers.LevelOutput, error) {
	return nil, nil
}

func (s *stubLoggingHandlers) SetLevel(_ context.Context, _ *handlers.SetLevelInput) (*handlers.LevelOutput, error) {
	return nil, nil
}
