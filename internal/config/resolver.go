package config

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/samber/lo"

	kerrors "github.com/butterflysky/elgato-keylight/internal/errors"
	"github.com/butterflysky/elgato-keylight/pkg/keylight"
)

// DefaultPresets returns the built-in preset table.
func DefaultPresets() keylight.Presets {
	return keylight.Presets{
		"bright": {Brightness: 100, Temperature: 200},
		"dim":    {Brightness: 15, Temperature: 250},
		"warm":   {Brightness: 60, Temperature: 320},
		"cool":   {Brightness: 70, Temperature: 155},
		"video":  {Brightness: 55, Temperature: 215},
		"webcam": {
			Brightness:  32,
			Temperature: 179,
			Overrides: map[string]keylight.PresetValues{
				"right": {Brightness: 18, Temperature: 181},
				"left":  {Brightness: 46, Temperature: 177},
			},
		},
	}
}

// AppConfig is the resolved light list and preset table.
type AppConfig struct {
	Lights  []keylight.LightConfig
	Presets keylight.Presets

	// Discovered is true when Lights came from network discovery
	Discovered bool
}

// DiscoverFunc finds lights on the network. It must not fail; an empty
// result means nothing was found.
type DiscoverFunc func(ctx context.Context) []keylight.LightConfig

// Resolver produces the light list and preset table. Every call re-reads
// the config file so edits take effect without restarting anything.
type Resolver struct {
	path     string
	defaults keylight.Presets
	discover DiscoverFunc
	logger   *slog.Logger
}

// NewResolver creates a resolver reading path. defaults is the preset
// table user presets are overlaid on; discover may be nil.
func NewResolver(path string, defaults keylight.Presets, discover DiscoverFunc, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	if path == "" {
		path = DefaultConfigPath()
	}
	return &Resolver{path: path, defaults: defaults, discover: discover, logger: logger}
}

// Path is the config file being read.
func (r *Resolver) Path() string {
	return r.path
}

// Load reads the config file. A missing file is the same as an empty one.
// When no lights are declared the resolver falls back to discovery.
func (r *Resolver) Load(ctx context.Context) (*AppConfig, error) {
	data, err := os.ReadFile(r.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, kerrors.WrapErrorf(err, "reading %s", r.path)
	}

	lights, presets, err := Parse(data)
	if err != nil {
		return nil, kerrors.WrapErrorf(err, "%s", r.path)
	}

	cfg := &AppConfig{Lights: lights, Presets: r.defaults.Overlay(presets)}
	if len(cfg.Lights) > 0 {
		return cfg, nil
	}

	cfg.Discovered = true
	if r.discover != nil {
		r.logger.Debug("no lights configured, discovering", "path", r.path)
		cfg.Lights = r.discover(ctx)
	}
	if len(cfg.Lights) == 0 {
		r.logger.Warn("no lights found; add [[lights]] entries to the config file", "path", r.path)
	}
	return cfg, nil
}

// Lights returns the lights whose names are in names, in configuration
// order. Names that match nothing are ignored; no names means all lights.
func (r *Resolver) Lights(ctx context.Context, names []string) ([]keylight.LightConfig, error) {
	cfg, err := r.Load(ctx)
	if err != nil {
		return nil, err
	}
	return FilterLights(cfg.Lights, names), nil
}

// Presets returns the resolved preset table.
func (r *Resolver) Presets(ctx context.Context) (keylight.Presets, error) {
	return r.loadPresets()
}

// Preset looks up one preset by name.
func (r *Resolver) Preset(ctx context.Context, name string) (keylight.Preset, error) {
	presets, err := r.Presets(ctx)
	if err != nil {
		return keylight.Preset{}, err
	}
	p, ok := presets[name]
	if !ok {
		return keylight.Preset{}, kerrors.UnknownPresetf("%q (available: %s)", name, joinNames(presets.Names()))
	}
	return p, nil
}

// loadPresets reads only the preset table, without triggering discovery.
func (r *Resolver) loadPresets() (keylight.Presets, error) {
	data, err := os.ReadFile(r.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, kerrors.WrapErrorf(err, "reading %s", r.path)
	}
	_, presets, err := Parse(data)
	if err != nil {
		return nil, kerrors.WrapErrorf(err, "%s", r.path)
	}
	return r.defaults.Overlay(presets), nil
}

// FilterLights keeps the lights named in names, preserving order.
func FilterLights(lights []keylight.LightConfig, names []string) []keylight.LightConfig {
	if len(names) == 0 {
		return lights
	}
	return lo.Filter(lights, func(l keylight.LightConfig, _ int) bool {
		return slices.Contains(names, l.Name)
	})
}

func joinNames(names []string) string {
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ", ")
}

type fileConfig struct {
	Lights  []fileLight               `toml:"lights"`
	Presets map[string]map[string]any `toml:"presets"`
}

type fileLight struct {
	Name string `toml:"name"`
	Host string `toml:"host"`
	Port int    `toml:"port"`
	ID   string `toml:"id"`
}

// Parse decodes the lights and presets of a config file. Other tables are
// ignored. Within a preset, integer values are the global pair and nested
// tables are per-light overrides keyed by device id or light name.
func Parse(data []byte) ([]keylight.LightConfig, keylight.Presets, error) {
	var raw fileConfig
	if err := toml.Unmarshal(data, &raw); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return nil, nil, kerrors.ConfigParsef("line %d, column %d: %s", row, col, derr.Error())
		}
		return nil, nil, kerrors.ConfigParsef("%v", err)
	}

	lights := make([]keylight.LightConfig, 0, len(raw.Lights))
	seen := make(map[string]bool)
	for i, l := range raw.Lights {
		if l.Name == "" || l.Host == "" {
			return nil, nil, kerrors.ConfigParsef("lights[%d]: name and host are required", i)
		}
		if seen[l.Name] {
			return nil, nil, kerrors.ConfigParsef("lights[%d]: duplicate light name %q", i, l.Name)
		}
		if l.Port < 0 || l.Port > 65535 {
			return nil, nil, kerrors.ConfigParsef("lights[%d]: invalid port %d", i, l.Port)
		}
		seen[l.Name] = true
		if l.Port == 0 {
			l.Port = keylight.DefaultPort
		}
		lights = append(lights, keylight.LightConfig{Name: l.Name, Host: l.Host, Port: l.Port, ID: l.ID})
	}

	presets := make(keylight.Presets, len(raw.Presets))
	for name, table := range raw.Presets {
		p, err := parsePreset(table)
		if err != nil {
			return nil, nil, kerrors.WrapErrorf(err, "presets.%s", name)
		}
		presets[name] = p
	}
	return lights, presets, nil
}

func parsePreset(table map[string]any) (keylight.Preset, error) {
	p := keylight.Preset{
		Brightness:  keylight.DefaultBrightness,
		Temperature: keylight.DefaultTemperature,
	}
	for key, val := range table {
		switch v := val.(type) {
		case map[string]any:
			b, err := requireInt(v, "brightness")
			if err != nil {
				return p, kerrors.WrapErrorf(err, "%s", key)
			}
			t, err := requireInt(v, "temperature")
			if err != nil {
				return p, kerrors.WrapErrorf(err, "%s", key)
			}
			if p.Overrides == nil {
				p.Overrides = make(map[string]keylight.PresetValues)
			}
			p.Overrides[key] = keylight.PresetValues{Brightness: b, Temperature: t}
		default:
			// other scalars (descriptions and the like) are ignored
			if key != "brightness" && key != "temperature" {
				continue
			}
			n, ok := asInt(val)
			if !ok {
				return p, kerrors.ConfigParsef("%s: expected an integer, got %v", key, val)
			}
			if key == "brightness" {
				p.Brightness = n
			} else {
				p.Temperature = n
			}
		}
	}
	return p, nil
}

func requireInt(table map[string]any, key string) (int, error) {
	val, ok := table[key]
	if !ok {
		return 0, kerrors.ConfigParsef("missing %s", key)
	}
	n, ok := asInt(val)
	if !ok {
		return 0, kerrors.ConfigParsef("%s: expected an integer, got %v", key, val)
	}
	return n, nil
}

func asInt(val any) (int, bool) {
	switch v := val.(type) {
	case int64:
		return int(v), true
	case float64:
		if v == float64(int(v)) {
			return int(v), true
		}
	}
	return 0, false
}
