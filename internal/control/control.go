// Package control is the service every front-end (CLI, MCP, waybar, tray,
// HTTP and MQTT) drives. It resolves lights, opens a client per light for
// the duration of one operation and always closes it.
package control

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/samber/lo"

	"github.com/butterflysky/elgato-keylight/internal/config"
	"github.com/butterflysky/elgato-keylight/internal/effects"
	kerrors "github.com/butterflysky/elgato-keylight/internal/errors"
	"github.com/butterflysky/elgato-keylight/internal/events"
	"github.com/butterflysky/elgato-keylight/pkg/keylight"
)

// Service is the set of operations exposed to front-ends.
type Service interface {
	Lights(ctx context.Context, names []string) ([]keylight.LightConfig, error)
	Status(ctx context.Context, names []string) ([]LightStatus, error)
	States(ctx context.Context, names []string) ([]LightStatus, error)
	TurnOn(ctx context.Context, names []string) ([]LightResult, error)
	TurnOff(ctx context.Context, names []string) ([]LightResult, error)
	Toggle(ctx context.Context, names []string) ([]LightResult, error)
	SetBrightness(ctx context.Context, names []string, brightness int) ([]LightResult, error)
	AdjustBrightness(ctx context.Context, names []string, delta int) ([]LightResult, error)
	SetTemperature(ctx context.Context, names []string, temperature int) ([]LightResult, error)
	Update(ctx context.Context, names []string, patch keylight.StatePatch) ([]LightResult, error)
	Identify(ctx context.Context, names []string) ([]LightResult, error)
	ApplyPreset(ctx context.Context, preset string, names []string) ([]LightResult, error)
	Presets(ctx context.Context) (keylight.Presets, error)
	RunEffect(ctx context.Context, effect string, params effects.Params, names []string) (*effects.Result, error)
	Effects() []string
	SetMood(ctx context.Context, mood string, names []string) (keylight.LightState, error)
	Moods() effects.Moods
	Discover(ctx context.Context) []keylight.LightConfig
}

// LightResult is the outcome of an operation on one light.
type LightResult struct {
	Light keylight.LightConfig
	State keylight.LightState
	Err   error
}

// LightStatus is the state and accessory info of one light.
type LightStatus struct {
	Light keylight.LightConfig
	State keylight.LightState
	Info  *keylight.DeviceInfo
	Err   error
}

// Label is the device's display name or product name, empty when unknown.
func (s LightStatus) Label() string {
	if s.Info == nil {
		return ""
	}
	return s.Info.Label()
}

// Errors joins the failures of results, naming each light.
func Errors(results []LightResult) error {
	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.Light.Name, r.Err))
		}
	}
	return errors.Join(errs...)
}

// Controller implements Service.
type Controller struct {
	resolver   *config.Resolver
	sequencer  *effects.Sequencer
	registry   *effects.Registry
	discover   config.DiscoverFunc
	bus        *events.Bus
	clientOpts []keylight.Option
	logger     *slog.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithBus publishes light and preset events to bus.
func WithBus(bus *events.Bus) Option {
	return func(c *Controller) { c.bus = bus }
}

// WithClientOptions applies opts to every device client.
func WithClientOptions(opts ...keylight.Option) Option {
	return func(c *Controller) { c.clientOpts = append(c.clientOpts, opts...) }
}

// WithDiscover sets the function used by Discover.
func WithDiscover(fn config.DiscoverFunc) Option {
	return func(c *Controller) { c.discover = fn }
}

// New creates a Controller. A nil registry means the built-in effects only.
func New(resolver *config.Resolver, sequencer *effects.Sequencer, registry *effects.Registry, logger *slog.Logger, opts ...Option) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	if registry == nil {
		registry = effects.NewRegistry()
	}
	c := &Controller{
		resolver:  resolver,
		sequencer: sequencer,
		registry:  registry,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Lights resolves the light list, optionally filtered by name.
func (c *Controller) Lights(ctx context.Context, names []string) ([]keylight.LightConfig, error) {
	return c.resolver.Lights(ctx, names)
}

// Status reads the state and accessory info of each light. A failing
// light is reported in its LightStatus; it never hides the others.
func (c *Controller) Status(ctx context.Context, names []string) ([]LightStatus, error) {
	return c.status(ctx, names, true)
}

// States is Status without the accessory info, one request per light.
// Pollers use it.
func (c *Controller) States(ctx context.Context, names []string) ([]LightStatus, error) {
	return c.status(ctx, names, false)
}

func (c *Controller) status(ctx context.Context, names []string, withInfo bool) ([]LightStatus, error) {
	lights, err := c.lights(ctx, names)
	if err != nil {
		return nil, err
	}
	statuses := make([]LightStatus, len(lights))
	var wg sync.WaitGroup
	for i, l := range lights {
		wg.Add(1)
		go func() {
			defer wg.Done()
			client := c.client(l)
			defer client.Close()

			st := LightStatus{Light: l}
			st.State, st.Err = client.GetState(ctx)
			if st.Err == nil && withInfo {
				if info, err := client.GetInfo(ctx); err == nil {
					st.Info = &info
				} else {
					c.logger.Debug("accessory info unavailable", "light", l.Name, "error", err)
				}
			}
			statuses[i] = st
		}()
	}
	wg.Wait()
	return statuses, nil
}

// TurnOn switches lights on.
func (c *Controller) TurnOn(ctx context.Context, names []string) ([]LightResult, error) {
	return c.Update(ctx, names, keylight.StatePatch{On: lo.ToPtr(true)})
}

// TurnOff switches lights off.
func (c *Controller) TurnOff(ctx context.Context, names []string) ([]LightResult, error) {
	return c.Update(ctx, names, keylight.StatePatch{On: lo.ToPtr(false)})
}

// Toggle flips each light independently.
func (c *Controller) Toggle(ctx context.Context, names []string) ([]LightResult, error) {
	return c.each(ctx, names, (*keylight.Client).Toggle)
}

// SetBrightness sets the brightness of each light.
func (c *Controller) SetBrightness(ctx context.Context, names []string, brightness int) ([]LightResult, error) {
	return c.Update(ctx, names, keylight.StatePatch{Brightness: lo.ToPtr(brightness)})
}

// AdjustBrightness changes each light's brightness by delta.
func (c *Controller) AdjustBrightness(ctx context.Context, names []string, delta int) ([]LightResult, error) {
	return c.each(ctx, names, func(client *keylight.Client, ctx context.Context) (keylight.LightState, error) {
		return client.AdjustBrightness(ctx, delta)
	})
}

// SetTemperature sets the colour temperature of each light.
func (c *Controller) SetTemperature(ctx context.Context, names []string, temperature int) ([]LightResult, error) {
	return c.Update(ctx, names, keylight.StatePatch{Temperature: lo.ToPtr(temperature)})
}

// Update applies a partial state change to each light.
func (c *Controller) Update(ctx context.Context, names []string, patch keylight.StatePatch) ([]LightResult, error) {
	return c.each(ctx, names, func(client *keylight.Client, ctx context.Context) (keylight.LightState, error) {
		return client.Update(ctx, patch)
	})
}

// Identify blinks each light.
func (c *Controller) Identify(ctx context.Context, names []string) ([]LightResult, error) {
	return c.each(ctx, names, func(client *keylight.Client, ctx context.Context) (keylight.LightState, error) {
		return keylight.LightState{}, client.Identify(ctx)
	})
}

// ApplyPreset sets each light to the preset's values for that light. An
// unknown preset fails before any light is touched.
func (c *Controller) ApplyPreset(ctx context.Context, preset string, names []string) ([]LightResult, error) {
	p, err := c.resolver.Preset(ctx, preset)
	if err != nil {
		return nil, err
	}
	results, err := c.each(ctx, names, func(client *keylight.Client, ctx context.Context) (keylight.LightState, error) {
		return client.SetState(ctx, p.Resolve(client.Config()))
	})
	if err != nil {
		return nil, err
	}
	c.bus.Emit(events.PresetApplied, events.NamedPayload{Name: preset, Lights: resultNames(results)})
	return results, nil
}

// Presets returns the resolved preset table.
func (c *Controller) Presets(ctx context.Context) (keylight.Presets, error) {
	return c.resolver.Presets(ctx)
}

// RunEffect plays a registered effect on the lights and restores them.
func (c *Controller) RunEffect(ctx context.Context, name string, params effects.Params, names []string) (*effects.Result, error) {
	effect, err := c.registry.New(name, params)
	if err != nil {
		return nil, err
	}
	clients, done, err := c.clients(ctx, names)
	if err != nil {
		return nil, err
	}
	defer done()
	return c.sequencer.Run(ctx, clients, effect)
}

// Effects lists the registered effect names.
func (c *Controller) Effects() []string {
	return c.registry.Names()
}

// SetMood applies a mood to the lights. Unknown moods fail before any
// light is touched.
func (c *Controller) SetMood(ctx context.Context, mood string, names []string) (keylight.LightState, error) {
	if _, err := c.sequencer.Moods().Lookup(mood); err != nil {
		return keylight.LightState{}, err
	}
	clients, done, err := c.clients(ctx, names)
	if err != nil {
		return keylight.LightState{}, err
	}
	defer done()
	return c.sequencer.SetMood(ctx, clients, mood)
}

// Moods returns the mood table.
func (c *Controller) Moods() effects.Moods {
	return c.sequencer.Moods()
}

// Discover browses the network, ignoring the config file.
func (c *Controller) Discover(ctx context.Context) []keylight.LightConfig {
	if c.discover == nil {
		return nil
	}
	return c.discover(ctx)
}

type clientOp func(client *keylight.Client, ctx context.Context) (keylight.LightState, error)

// each runs op against every light concurrently; results keep the
// configuration order.
func (c *Controller) each(ctx context.Context, names []string, op clientOp) ([]LightResult, error) {
	lights, err := c.lights(ctx, names)
	if err != nil {
		return nil, err
	}
	results := make([]LightResult, len(lights))
	var wg sync.WaitGroup
	for i, l := range lights {
		wg.Add(1)
		go func() {
			defer wg.Done()
			client := c.client(l)
			defer client.Close()

			state, err := op(client, ctx)
			results[i] = LightResult{Light: l, State: state, Err: err}
			if err != nil {
				c.logger.Debug("light operation failed", "light", l.Name, "error", err)
				c.bus.Emit(events.LightUnreachable, events.LightPayload{Light: l.Name, Error: err.Error()})
				return
			}
			if state != (keylight.LightState{}) {
				c.bus.Emit(events.LightStateChanged, events.NewLightPayload(l.Name, state))
			}
		}()
	}
	wg.Wait()
	return results, nil
}

// clients opens a client per light; done closes them all.
func (c *Controller) clients(ctx context.Context, names []string) ([]effects.Light, func(), error) {
	lights, err := c.lights(ctx, names)
	if err != nil {
		return nil, nil, err
	}
	opened := make([]*keylight.Client, len(lights))
	out := make([]effects.Light, len(lights))
	for i, l := range lights {
		opened[i] = c.client(l)
		out[i] = opened[i]
	}
	return out, func() {
		for _, client := range opened {
			client.Close()
		}
	}, nil
}

// lights resolves names, failing with ErrNotFound when nothing matches.
func (c *Controller) lights(ctx context.Context, names []string) ([]keylight.LightConfig, error) {
	lights, err := c.resolver.Lights(ctx, names)
	if err != nil {
		return nil, err
	}
	if len(lights) == 0 {
		if len(names) > 0 {
			return nil, kerrors.NotFoundf("no lights named %v", names)
		}
		return nil, kerrors.NotFoundf("no lights configured or discovered")
	}
	return lights, nil
}

func (c *Controller) client(l keylight.LightConfig) *keylight.Client {
	return keylight.NewClient(l, c.logger, c.clientOpts...)
}

func resultNames(results []LightResult) []string {
	return lo.FilterMap(results, func(r LightResult, _ int) (string, bool) {
		return r.Light.Name, r.Err == nil
	})
}
