package control

import (
	"log/slog"

	"github.com/butterflysky/elgato-keylight/internal/config"
	"github.com/butterflysky/elgato-keylight/internal/effects"
	"github.com/butterflysky/elgato-keylight/internal/events"
	"github.com/butterflysky/elgato-keylight/pkg/keylight"
)

// FromSettings wires a Controller from loaded settings: discovery, the
// config resolver, the effect registry including user Lua scripts, and
// the sequencer. bus may be nil.
func FromSettings(s *config.Settings, bus *events.Bus, logger *slog.Logger, opts ...Option) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	discoverer := keylight.NewDiscoverer(s.Discovery.Method, s.Discovery.Timeout, logger)
	resolver := config.NewResolver(s.Path, config.DefaultPresets(), discoverer.Discover, logger)

	registry := effects.NewRegistry()
	if n, err := registry.LoadScripts(config.EffectsDir(s.Path), logger); err != nil {
		logger.Warn("failed to load effect scripts", "error", err)
	} else if n > 0 {
		logger.Debug("loaded effect scripts", "count", n)
	}

	sequencer := effects.NewSequencer(logger, effects.WithBus(bus))

	opts = append([]Option{
		WithBus(bus),
		WithDiscover(discoverer.Discover),
		WithClientOptions(keylight.WithTimeout(s.Client.Timeout)),
	}, opts...)
	return New(resolver, sequencer, registry, logger, opts...)
}
