package keylight

import (
	"maps"
	"slices"
)

// PresetValues is a brightness/temperature pair.
type PresetValues struct {
	Brightness  int `json:"brightness" toml:"brightness"`
	Temperature int `json:"temperature" toml:"temperature"`
}

// Preset is a named lighting configuration with optional per-light
// overrides keyed by device id or light name.
type Preset struct {
	Brightness  int                     `json:"brightness"`
	Temperature int                     `json:"temperature"`
	Overrides   map[string]PresetValues `json:"overrides,omitempty"`
}

// Resolve returns the "on" state this preset applies to light. An override
// keyed by the light's device id wins over one keyed by its name; otherwise
// the preset's global values apply.
func (p Preset) Resolve(light LightConfig) LightState {
	v := PresetValues{Brightness: p.Brightness, Temperature: p.Temperature}
	if o, ok := p.Overrides[light.ID]; ok && light.ID != "" {
		v = o
	} else if o, ok := p.Overrides[light.Name]; ok {
		v = o
	}
	return LightState{On: true, Brightness: v.Brightness, Temperature: v.Temperature}
}

// Presets maps preset names to presets.
type Presets map[string]Preset

// Names returns the preset names in sorted order.
func (p Presets) Names() []string {
	return slices.Sorted(maps.Keys(p))
}

// Overlay returns a new table holding p with every entry of user replacing
// the preset of the same name. Neither input is modified.
func (p Presets) Overlay(user Presets) Presets {
	out := make(Presets, len(p)+len(user))
	maps.Copy(out, p)
	maps.Copy(out, user)
	return out
}
