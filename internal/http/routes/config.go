// Package routes provides shared route registration for the elgatod HTTP API.
// Both the main server and the OpenAPI generator use the same route definitions,
// ensuring the spec is always in sync with the implementation.
package routes

import (
	"github.com/danielgtaylor/huma/v2"
)

// NewHumaConfig creates the shared Huma configuration for the API.
func NewHumaConfig(version, baseURL string) huma.Config {
	cfg := huma.DefaultConfig("elgatod API", version)
	cfg.Info.Description = "Local REST API for controlling Elgato Key Light devices: state, presets, moods and effects. " +
		"Light and effect events are streamed over the WebSocket at /api/v1/ws."

	// Disable $schema field in responses
	cfg.CreateHooks = nil

	if baseURL != "" {
		cfg.Servers = []*huma.Server{
			{URL: baseURL, Description: "API Server"},
		}
	}

	cfg.Tags = []*huma.Tag{
		{Name: "Lights", Description: "Light state and control"},
		{Name: "Presets", Description: "Named brightness and temperature settings"},
		{Name: "Moods", Description: "Mood lighting"},
		{Name: "Effects", Description: "Timed light effects that restore the previous state"},
		{Name: "Logging", Description: "Runtime log level management"},
	}

	return cfg
}
