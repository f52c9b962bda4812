package handlers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/danielgtaylor/huma/v2"

	"github.com/butterflysky/elgato-keylight/internal/utils"
)

// --- Get Level ---

// GetLevelInput is the input for reading the global log level.
type GetLevelInput struct{}

// LevelOutput reports the global log level.
type LevelOutput struct {
	Body struct {
		Level string `json:"level" doc:"Current global log level"`
	}
}

// --- Set Level ---

// SetLevelInput is the input for changing the global log level.
type SetLevelInput struct {
	Body struct {
		Level string `json:"level" doc:"New log level (debug, info, warn, error)" minLength:"1"`
	}
}

// LoggingHandler implements logging management HTTP handlers.
type LoggingHandler struct {
	Logger *slog.Logger
}

// GetLevel returns the current log level.
func (h *LoggingHandler) GetLevel(_ context.Context, _ *GetLevelInput) (*LevelOutput, error) {
	out := &LevelOutput{}
	out.Body.Level = utils.CurrentLevel()
	return out, nil
}

// SetLevel validates and changes the global log level at runtime.
func (h *LoggingHandler) SetLevel(_ context.Context, input *SetLevelInput) (*LevelOutput, error) {
	validated := utils.ValidateLogLevel(input.Body.Level)
	if validated != input.Body.Level {
		return nil, huma.Error400BadRequest(
			fmt.Sprintf("Invalid log level %q; must be debug, info, warn, or error", input.Body.Level))
	}

	utils.SetLevel(validated)
	h.Logger.Info("Log level changed via API", "level", validated)

	out := &LevelOutput{}
	out.Body.Level = validated
	return out, nil
}

// Ensure LoggingHandler implements the interface at compile time.
var _ LoggingHandlers = (*LoggingHandler)(nil)

// LoggingHandlers defines the interface for logging management operations.
type LoggingHandlers interface {
	GetLevel(ctx context.Context, input *GetLevelInput) (*LevelOutput, error)
	SetLevel(ctx context.Context, input *SetLevelInput) (*LevelOutput, error)
}
