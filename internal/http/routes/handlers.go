package routes

import (
	"context"

	"github.com/butterflysky/elgato-keylight/internal/http/handlers"
)

// Handlers aggregates all handler interfaces for route registration.
// For the main server, pass real handler implementations.
// For OpenAPI generation, pass stub implementations.
type Handlers struct {
	HealthCheck  func(context.Context, *handlers.HealthInput) (*handlers.HealthOutput, error)
	VersionCheck func(context.Context, *handlers.VersionInput) (*handlers.VersionOutput, error)

	Light   handlers.LightHandlers
	Preset  handlers.PresetHandlers
	Mood    handlers.MoodHandlers
	Effect  handlers.EffectHandlers
	Logging handlers.LoggingHandlers
}
