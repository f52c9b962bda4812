package routes

import (
	"github.com/danielgtaylor/huma/v2"

	"github.com/butterflysky/elgato-keylight/internal/http/mw"
)

// Register registers all API routes with the given Huma API instance.
// Pass real handler implementations for the main server, or stub implementations
// for OpenAPI generation.
func Register(api huma.API, h *Handlers) {
	// --- Health ---
	mw.Get(api, "/api/v1/health", h.HealthCheck,
		mw.WithTags("Health"),
		mw.WithSummary("Health check"),
		mw.WithDescription("Returns service health status."),
		mw.WithOperationID("healthCheck"))

	mw.HiddenGet(api, "/healthz", h.HealthCheck)

	// --- Version ---
	mw.Get(api, "/api/v1/version", h.VersionCheck,
		mw.WithTags("Version"),
		mw.WithSummary("Daemon version"),
		mw.WithDescription("Returns the running daemon's version, commit, and build date."),
		mw.WithOperationID("getVersion"))

	// --- Lights ---
	mw.Get(api, "/api/v1/lights", h.Light.ListLights,
		mw.WithTags("Lights"),
		mw.WithSummary("List all lights"),
		mw.WithDescription("Returns every configured (or discovered) light with its current state, in configuration order."),
		mw.WithOperationID("listLights"))

	mw.Get(api, "/api/v1/lights/{name}", h.Light.GetLight,
		mw.WithTags("Lights"),
		mw.WithSummary("Get a light"),
		mw.WithOperationID("getLight"))

	mw.Post(api, "/api/v1/lights/{name}/state", h.Light.SetLightState,
		mw.WithTags("Lights"),
		mw.WithSummary("Set light state"),
		mw.WithDescription("Set one or more properties (on, brightness, temperature) on a light, or on every light when the name is all."),
		mw.WithOperationID("setLightState"))

	mw.Post(api, "/api/v1/lights/{name}/identify", h.Light.Identify,
		mw.WithTags("Lights"),
		mw.WithSummary("Identify a light"),
		mw.WithDescription("Makes the light (or every light when the name is all) blink."),
		mw.WithOperationID("identifyLight"))

	// --- Presets ---
	mw.Get(api, "/api/v1/presets", h.Preset.ListPresets,
		mw.WithTags("Presets"),
		mw.WithSummary("List presets"),
		mw.WithOperationID("listPresets"))

	mw.Post(api, "/api/v1/presets/{name}/apply", h.Preset.ApplyPreset,
		mw.WithTags("Presets"),
		mw.WithSummary("Apply a preset"),
		mw.WithDescription("Turns the lights on at the preset's values, using per-light overrides where the preset has them."),
		mw.WithOperationID("applyPreset"))

	// --- Moods ---
	mw.Get(api, "/api/v1/moods", h.Mood.ListMoods,
		mw.WithTags("Moods"),
		mw.WithSummary("List moods"),
		mw.WithOperationID("listMoods"))

	mw.Post(api, "/api/v1/moods/{name}", h.Mood.SetMood,
		mw.WithTags("Moods"),
		mw.WithSummary("Set mood lighting"),
		mw.WithOperationID("setMood"))

	// --- Effects ---
	mw.Get(api, "/api/v1/effects", h.Effect.ListEffects,
		mw.WithTags("Effects"),
		mw.WithSummary("List effects"),
		mw.WithOperationID("listEffects"))

	mw.Post(api, "/api/v1/effects/{name}", h.Effect.RunEffect,
		mw.WithTags("Effects"),
		mw.WithSummary("Run an effect"),
		mw.WithDescription("Plays the effect and responds once the lights are back in their previous state."),
		mw.WithOperationID("runEffect"))

	// --- Logging ---
	mw.Get(api, "/api/v1/logging/level", h.Logging.GetLevel,
		mw.WithTags("Logging"),
		mw.WithSummary("Get global log level"),
		mw.WithOperationID("getLogLevel"))

	mw.Put(api, "/api/v1/logging/level", h.Logging.SetLevel,
		mw.WithTags("Logging"),
		mw.WithSummary("Set global log level"),
		mw.WithDescription("Changes the global log level at runtime. Valid values: debug, info, warn, error."),
		mw.WithOperationID("setLogLevel"))
}
