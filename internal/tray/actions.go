package tray

import (
	"context"
	"log/slog"
	"slices"

	"github.com/samber/lo"

	"github.com/butterflysky/elgato-keylight/internal/control"
	"github.com/butterflysky/elgato-keylight/internal/effects"
	"github.com/butterflysky/elgato-keylight/pkg/keylight"
)

// Service is the part of control.Service the tray drives.
type Service interface {
	Lights(ctx context.Context, names []string) ([]keylight.LightConfig, error)
	States(ctx context.Context, names []string) ([]control.LightStatus, error)
	TurnOn(ctx context.Context, names []string) ([]control.LightResult, error)
	TurnOff(ctx context.Context, names []string) ([]control.LightResult, error)
	Toggle(ctx context.Context, names []string) ([]control.LightResult, error)
	ApplyPreset(ctx context.Context, preset string, names []string) ([]control.LightResult, error)
	Presets(ctx context.Context) (keylight.Presets, error)
	RunEffect(ctx context.Context, effect string, params effects.Params, names []string) (*effects.Result, error)
	Effects() []string
	SetMood(ctx context.Context, mood string, names []string) (keylight.LightState, error)
	Moods() effects.Moods
}

var _ Service = (*control.Controller)(nil)

// Menu is the content of the tray menu apart from its fixed entries.
type Menu struct {
	Lights  []string
	Presets []string
	Moods   []string
	Effects []string
}

// Equal reports whether rebuilding the menu for o would change it.
func (m Menu) Equal(o Menu) bool {
	return slices.Equal(m.Lights, o.Lights) &&
		slices.Equal(m.Presets, o.Presets) &&
		slices.Equal(m.Moods, o.Moods) &&
		slices.Equal(m.Effects, o.Effects)
}

// LoadMenu reads the light list and preset table from the config file.
func LoadMenu(ctx context.Context, svc Service) (Menu, error) {
	lights, err := svc.Lights(ctx, nil)
	if err != nil {
		return Menu{}, err
	}
	presets, err := svc.Presets(ctx)
	if err != nil {
		return Menu{}, err
	}
	return Menu{
		Lights:  lo.Map(lights, func(l keylight.LightConfig, _ int) string { return l.Name }),
		Presets: presets.Names(),
		Moods:   svc.Moods().Names(),
		Effects: svc.Effects(),
	}, nil
}

// Actions performs menu commands, logging failures instead of returning
// them since there is nobody to report them to.
type Actions struct {
	svc    Service
	logger *slog.Logger
}

// NewActions creates Actions over svc.
func NewActions(svc Service, logger *slog.Logger) *Actions {
	if logger == nil {
		logger = slog.Default()
	}
	return &Actions{svc: svc, logger: logger}
}

// Poll reads the state of every light.
func (a *Actions) Poll(ctx context.Context) Summary {
	statuses, err := a.svc.States(ctx, nil)
	if err != nil {
		a.logger.Debug("status poll failed", "error", err)
	}
	return Summarize(statuses, err)
}

// ToggleAll turns every light off when any is on, otherwise turns them all
// on, so the lights end up in the same state.
func (a *Actions) ToggleAll(ctx context.Context) {
	if a.Poll(ctx).AnyOn() {
		results, err := a.svc.TurnOff(ctx, nil)
		a.report("all off", results, err)
		return
	}
	results, err := a.svc.TurnOn(ctx, nil)
	a.report("all on", results, err)
}

// ToggleLight flips one light.
func (a *Actions) ToggleLight(ctx context.Context, name string) {
	results, err := a.svc.Toggle(ctx, []string{name})
	a.report("toggle "+name, results, err)
}

// AllOff turns every light off.
func (a *Actions) AllOff(ctx context.Context) {
	results, err := a.svc.TurnOff(ctx, nil)
	a.report("all off", results, err)
}

// ApplyPreset applies a preset to every light.
func (a *Actions) ApplyPreset(ctx context.Context, name string) {
	results, err := a.svc.ApplyPreset(ctx, name, nil)
	a.report("preset "+name, results, err)
}

// SetMood applies a mood to every light.
func (a *Actions) SetMood(ctx context.Context, name string) {
	if _, err := a.svc.SetMood(ctx, name, nil); err != nil {
		a.logger.Warn("tray action failed", "action", "mood "+name, "error", err)
	}
}

// RunEffect runs an effect with default parameters on every light.
func (a *Actions) RunEffect(ctx context.Context, name string) {
	res, err := a.svc.RunEffect(ctx, name, effects.Params{}, nil)
	if err != nil {
		a.logger.Warn("tray action failed", "action", "effect "+name, "error", err)
		return
	}
	if err := res.Restore.Err(); err != nil {
		a.logger.Warn("effect did not restore every light", "effect", name, "error", err)
	}
}

func (a *Actions) report(action string, results []control.LightResult, err error) {
	if err == nil {
		err = control.Errors(results)
	}
	if err != nil {
		a.logger.Warn("tray action failed", "action", action, "error", err)
	}
}
