package handlers

import (
	"context"
	"log/slog"

	"github.com/butterflysky/elgato-keylight/internal/control"
)

// ListMoodsInput is the input for listing moods.
type ListMoodsInput struct{}

// ListMoodsOutput is the output for listing moods.
type ListMoodsOutput struct {
	Body []MoodResponse
}

// SetMoodInput is the input for setting a mood.
type SetMoodInput struct {
	Name string        `path:"name" doc:"Mood name"`
	Body TargetRequest `required:"false"`
}

// SetMoodOutput is the output after setting a mood.
type SetMoodOutput struct {
	Body MoodResponse
}

// MoodHandler implements mood HTTP handlers.
type MoodHandler struct {
	Lights control.Service
	Logger *slog.Logger
}

// ListMoods returns the mood table.
func (h *MoodHandler) ListMoods(_ context.Context, _ *ListMoodsInput) (*ListMoodsOutput, error) {
	moods := h.Lights.Moods()
	out := &ListMoodsOutput{Body: make([]MoodResponse, len(moods))}
	for i, m := range moods {
		out.Body[i] = MoodResponse{
			Name:        m.Name,
			Brightness:  m.State.Brightness,
			Temperature: m.State.Temperature,
			Kelvin:      m.State.Kelvin(),
		}
	}
	return out, nil
}

// SetMood turns the lights on at the mood's values.
func (h *MoodHandler) SetMood(ctx context.Context, input *SetMoodInput) (*SetMoodOutput, error) {
	state, err := h.Lights.SetMood(ctx, input.Name, input.Body.Lights)
	if err != nil {
		return nil, APIError(err)
	}
	h.Logger.Info("Mood set via API", "mood", input.Name)
	return &SetMoodOutput{Body: MoodResponse{
		Name:        input.Name,
		Brightness:  state.Brightness,
		Temperature: state.Temperature,
		Kelvin:      state.Kelvin(),
	}}, nil
}

// Ensure MoodHandler implements the interface at compile time.
var _ MoodHandlers = (*MoodHandler)(nil)

// MoodHandlers defines the interface for mood operations.
type MoodHandlers interface {
	ListMoods(ctx context.Context, input *ListMoodsInput) (*ListMoodsOutput, error)
	SetMood(ctx context.Context, input *SetMoodInput) (*SetMoodOutput, error)
}
