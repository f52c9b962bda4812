package handlers

import (
	"context"
	"log/slog"

	"github.com/danielgtaylor/huma/v2"

	"github.com/butterflysky/elgato-keylight/internal/control"
	kerrors "github.com/butterflysky/elgato-keylight/internal/errors"
	"github.com/butterflysky/elgato-keylight/pkg/keylight"
)

// --- List Lights ---

// ListLightsInput is the input for listing all lights.
type ListLightsInput struct{}

// ListLightsOutput is the output for listing all lights, in configuration order.
type ListLightsOutput struct {
	Body []LightResponse
}

// --- Get Light ---

// GetLightInput is the input for getting a single light.
type GetLightInput struct {
	Name string `path:"name" doc:"Light name"`
}

// GetLightOutput is the output for getting a single light.
type GetLightOutput struct {
	Body LightResponse
}

// --- Set Light State ---

// SetLightStateInput is the input for setting a light's state.
type SetLightStateInput struct {
	Name string `path:"name" doc:"Light name, or all"`
	Body struct {
		On          *bool `json:"on,omitempty" doc:"Power state"`
		Brightness  *int  `json:"brightness,omitempty" minimum:"0" maximum:"100" doc:"Brightness level (0-100)"`
		Temperature *int  `json:"temperature,omitempty" minimum:"143" maximum:"344" doc:"Color temperature in device units (143-344)"`
	}
}

// LightResultsOutput is the output of operations that touch several lights.
type LightResultsOutput struct {
	Body ResultsResponse
}

// --- Identify ---

// IdentifyInput is the input for blinking a light.
type IdentifyInput struct {
	Name string `path:"name" doc:"Light name, or all"`
}

// LightHandler implements light-related HTTP handlers.
type LightHandler struct {
	Lights control.Service
	Logger *slog.Logger
}

// ListLights returns every light with its current state. Unreachable lights
// are listed with reachable=false.
func (h *LightHandler) ListLights(ctx context.Context, _ *ListLightsInput) (*ListLightsOutput, error) {
	statuses, err := h.Lights.Status(ctx, nil)
	if kerrors.IsNotFound(err) {
		return &ListLightsOutput{Body: []LightResponse{}}, nil
	}
	if err != nil {
		return nil, APIError(err)
	}
	out := &ListLightsOutput{Body: make([]LightResponse, len(statuses))}
	for i, s := range statuses {
		out.Body[i] = LightFromStatus(s)
	}
	return out, nil
}

// GetLight returns a single light by name.
func (h *LightHandler) GetLight(ctx context.Context, input *GetLightInput) (*GetLightOutput, error) {
	statuses, err := h.Lights.Status(ctx, []string{input.Name})
	if err != nil {
		return nil, APIError(err)
	}
	s := statuses[0]
	if s.Err != nil {
		return nil, APIError(s.Err)
	}
	return &GetLightOutput{Body: LightFromStatus(s)}, nil
}

// SetLightState changes any of on, brightness and temperature, keeping the
// fields that are not sent.
func (h *LightHandler) SetLightState(ctx context.Context, input *SetLightStateInput) (*LightResultsOutput, error) {
	patch := keylight.StatePatch{
		On:          input.Body.On,
		Brightness:  input.Body.Brightness,
		Temperature: input.Body.Temperature,
	}
	if patch.IsEmpty() {
		return nil, huma.Error400BadRequest("At least one of on, brightness or temperature is required")
	}
	results, err := h.Lights.Update(ctx, targets(input.Name), patch)
	if err != nil {
		return nil, APIError(err)
	}
	return resultsOutput(results)
}

// Identify makes lights blink.
func (h *LightHandler) Identify(ctx context.Context, input *IdentifyInput) (*LightResultsOutput, error) {
	results, err := h.Lights.Identify(ctx, targets(input.Name))
	if err != nil {
		return nil, APIError(err)
	}
	return resultsOutput(results)
}

func resultsOutput(results []control.LightResult) (*LightResultsOutput, error) {
	body, err := Results(results)
	if err != nil {
		return nil, err
	}
	return &LightResultsOutput{Body: body}, nil
}

// Ensure LightHandler implements the interface at compile time.
var _ LightHandlers = (*LightHandler)(nil)

// LightHandlers defines the interface for light operations.
type LightHandlers interface {
	ListLights(ctx context.Context, input *ListLightsInput) (*ListLightsOutput, error)
	GetLight(ctx context.Context, input *GetLightInput) (*GetLightOutput, error)
	SetLightState(ctx context.Context, input *SetLightStateInput) (*LightResultsOutput, error)
	Identify(ctx context.Context, input *IdentifyInput) (*LightResultsOutput, error)
}
