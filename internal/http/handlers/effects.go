package handlers

import (
	"context"
	"log/slog"

	"github.com/butterflysky/elgato-keylight/internal/control"
	"github.com/butterflysky/elgato-keylight/internal/effects"
)

// ListEffectsInput is the input for listing effects.
type ListEffectsInput struct{}

// ListEffectsOutput is the output for listing effects.
type ListEffectsOutput struct {
	Body struct {
		Effects []string `json:"effects" doc:"Registered effect names, built-in and scripted"`
	}
}

// EffectRequest is the body of an effect run.
type EffectRequest struct {
	effects.Params
	Lights []string `json:"lights,omitempty" doc:"Light names; every light when empty"`
}

// RunEffectInput is the input for running an effect.
type RunEffectInput struct {
	Name string        `path:"name" doc:"Effect name"`
	Body EffectRequest `required:"false"`
}

// EffectRunResponse describes a finished effect run.
type EffectRunResponse struct {
	RunID         string   `json:"run_id" doc:"Identifier of this run, also carried by effect.* events"`
	Effect        string   `json:"effect" doc:"Effect name"`
	Steps         int      `json:"steps" doc:"Number of steps in the effect"`
	StepsRun      int      `json:"steps_run" doc:"Number of steps sent to the lights"`
	Restored      []string `json:"restored" doc:"Lights returned to their previous state"`
	RestoreFailed []string `json:"restore_failed,omitempty" doc:"Lights that could not be restored"`
}

// RunEffectOutput is the output after an effect has run and the lights
// have been restored.
type RunEffectOutput struct {
	Body EffectRunResponse
}

// EffectHandler implements effect HTTP handlers.
type EffectHandler struct {
	Lights control.Service
	Logger *slog.Logger
}

// ListEffects returns the registered effect names.
func (h *EffectHandler) ListEffects(_ context.Context, _ *ListEffectsInput) (*ListEffectsOutput, error) {
	out := &ListEffectsOutput{}
	out.Body.Effects = h.Lights.Effects()
	return out, nil
}

// RunEffect plays an effect and waits for the lights to be restored.
func (h *EffectHandler) RunEffect(ctx context.Context, input *RunEffectInput) (*RunEffectOutput, error) {
	res, err := h.Lights.RunEffect(ctx, input.Name, input.Body.Params, input.Body.Lights)
	if err != nil {
		return nil, APIError(err)
	}
	if failed := res.Restore.Failed(); len(failed) > 0 {
		h.Logger.Warn("Effect finished with lights not restored", "effect", res.Effect, "run_id", res.RunID, "lights", failed)
	}
	return &RunEffectOutput{Body: EffectRunFromResult(res)}, nil
}

// EffectRunFromResult converts a sequencer result.
func EffectRunFromResult(res *effects.Result) EffectRunResponse {
	resp := EffectRunResponse{
		RunID:         res.RunID,
		Effect:        res.Effect,
		Steps:         res.Steps,
		StepsRun:      res.StepsRun,
		Restored:      []string{},
		RestoreFailed: res.Restore.Failed(),
	}
	for _, o := range res.Restore.Outcomes {
		if o.Err == nil {
			resp.Restored = append(resp.Restored, o.Light)
		}
	}
	return resp
}

// Ensure EffectHandler implements the interface at compile time.
var _ EffectHandlers = (*EffectHandler)(nil)

// EffectHandlers defines the interface for effect operations.
type EffectHandlers interface {
	ListEffects(ctx context.Context, input *ListEffectsInput) (*ListEffectsOutput, error)
	RunEffect(ctx context.Context, input *RunEffectInput) (*RunEffectOutput, error)
}
