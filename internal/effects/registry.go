package effects

import (
	"cmp"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/butterflysky/elgato-keylight/internal/errors"
)

// Params are the optional knobs of the built-in effects. Zero values mean
// "use the default".
type Params struct {
	Times    int     `json:"times,omitempty" doc:"Flash repetitions"`
	Interval float64 `json:"interval,omitempty" doc:"Flash interval in seconds"`
	Cycles   int     `json:"cycles,omitempty" doc:"Pulse cycles"`
	StepMS   int     `json:"step_ms,omitempty" doc:"Pulse step length in milliseconds"`
	Flashes  int     `json:"flashes,omitempty" doc:"Alert flashes"`
	Target   *int    `json:"target,omitempty" doc:"Dim target brightness"`
	Steps    int     `json:"steps,omitempty" doc:"Dim steps"`
}

// Validate rejects negative values.
func (p Params) Validate() error {
	for name, v := range map[string]float64{
		"times": float64(p.Times), "interval": p.Interval, "cycles": float64(p.Cycles),
		"step_ms": float64(p.StepMS), "flashes": float64(p.Flashes), "steps": float64(p.Steps),
	} {
		if v < 0 {
			return errors.InvalidInputf("%s must not be negative", name)
		}
	}
	if p.Target != nil && (*p.Target < 0 || *p.Target > 100) {
		return errors.InvalidInputf("target must be between 0 and 100")
	}
	return nil
}

func (p Params) interval() time.Duration {
	if p.Interval <= 0 {
		return DefaultFlashInterval
	}
	return time.Duration(p.Interval * float64(time.Second))
}

func (p Params) stepLength() time.Duration {
	if p.StepMS <= 0 {
		return DefaultPulseStep
	}
	return time.Duration(p.StepMS) * time.Millisecond
}

func (p Params) target() int {
	if p.Target == nil {
		return DefaultDimTarget
	}
	return *p.Target
}

// Constructor builds an effect from params.
type Constructor func(p Params) Effect

// Registry maps effect names to constructors.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Constructor
	aliases map[string]string
}

// NewRegistry returns a registry holding the built-in effects.
func NewRegistry() *Registry {
	r := &Registry{entries: make(map[string]Constructor), aliases: make(map[string]string)}
	r.entries["flash"] = func(p Params) Effect {
		return Flash(cmp.Or(p.Times, DefaultFlashTimes), p.interval())
	}
	r.entries["pulse"] = func(p Params) Effect {
		return Pulse(cmp.Or(p.Cycles, DefaultPulseCycles), p.stepLength())
	}
	r.entries["celebration"] = func(Params) Effect { return Celebration() }
	r.entries["alert"] = func(p Params) Effect {
		return Alert(cmp.Or(p.Flashes, DefaultAlertFlashes))
	}
	r.entries["dim"] = func(p Params) Effect {
		return DimSlowly(p.target(), cmp.Or(p.Steps, DefaultDimSteps))
	}
	r.aliases["celebrate"] = "celebration"
	r.aliases["dim_slowly"] = "dim"
	return r
}

// Register adds an effect. Names must be unique.
func (r *Registry) Register(name string, c Constructor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[name]; ok {
		return errors.InvalidInputf("effect %q already registered", name)
	}
	if _, ok := r.aliases[name]; ok {
		return errors.InvalidInputf("effect %q already registered", name)
	}
	r.entries[name] = c
	return nil
}

// New builds the named effect.
func (r *Registry) New(name string, p Params) (Effect, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if target, ok := r.aliases[name]; ok {
		name = target
	}
	c, ok := r.entries[name]
	if !ok {
		return nil, errors.UnknownEffectf("%q (available: %s)", name, strings.Join(r.namesLocked(), ", "))
	}
	return c(p), nil
}

// Names lists the registered effects, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.namesLocked()
}

func (r *Registry) namesLocked() []string {
	return slices.Sorted(maps.Keys(r.entries))
}

// LoadScripts registers every *.lua file in dir as an effect named after
// the file. A missing directory is not an error; scripts that fail to
// compile or clash with an existing name are skipped with a warning.
func (r *Registry) LoadScripts(dir string, logger *slog.Logger) (int, error) {
	if logger == nil {
		logger = slog.Default()
	}
	paths, err := filepath.Glob(filepath.Join(dir, "*.lua"))
	if err != nil {
		return 0, fmt.Errorf("listing %s: %w", dir, err)
	}
	loaded := 0
	for _, path := range paths {
		if info, err := os.Stat(path); err != nil || info.IsDir() {
			continue
		}
		script, err := LoadScript(path)
		if err != nil {
			logger.Warn("skipping effect script", "path", path, "error", err)
			continue
		}
		if err := r.Register(script.Name(), script.WithParams); err != nil {
			logger.Warn("skipping effect script", "path", path, "error", err)
			continue
		}
		logger.Debug("loaded effect script", "name", script.Name(), "path", path)
		loaded++
	}
	return loaded, nil
}
