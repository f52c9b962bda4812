package commands

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/pterm/pterm"

	"github.com/butterflysky/elgato-keylight/internal/control"
	"github.com/butterflysky/elgato-keylight/pkg/keylight"
)

func power(on bool) string {
	if on {
		return "on"
	}
	return "off"
}

// statusLine is the one-line human summary of a light.
func statusLine(st control.LightStatus) string {
	name := st.Light.Name
	if label := st.Label(); label != "" {
		name = fmt.Sprintf("%s (%s)", name, label)
	}
	return fmt.Sprintf("%s: %s, brightness=%d%%, temp=%d (~%dK)",
		name, power(st.State.On), st.State.Brightness, st.State.Temperature, st.State.Kelvin())
}

// StatusTableData returns the status table, one row per light.
func StatusTableData(statuses []control.LightStatus) pterm.TableData {
	data := pterm.TableData{
		{"Light", "Device", "Power", "Brightness", "Temperature", "Address"},
	}
	for _, st := range statuses {
		if st.Err != nil {
			data = append(data, []string{pterm.Bold.Sprint(st.Light.Name), "-", pterm.Red("unreachable"), "-", "-", st.Light.Address()})
			continue
		}
		powerCell := pterm.Gray("off")
		if st.State.On {
			powerCell = pterm.Green("on")
		}
		data = append(data, []string{
			pterm.Bold.Sprint(st.Light.Name),
			st.Label(),
			powerCell,
			fmt.Sprintf("%d%%", st.State.Brightness),
			fmt.Sprintf("%d (~%dK)", st.State.Temperature, st.State.Kelvin()),
			st.Light.Address(),
		})
	}
	return data
}

// StatusParseable returns the key=value line for a light
func StatusParseable(st control.LightStatus) string {
	parts := []string{
		fmt.Sprintf("name=%q", st.Light.Name),
		fmt.Sprintf("host=%q", st.Light.Host),
		fmt.Sprintf("port=%d", st.Light.Port),
	}
	if st.Err != nil {
		parts = append(parts, "reachable=false", fmt.Sprintf("error=%q", st.Err.Error()))
		return strings.Join(parts, " ")
	}
	parts = append(parts,
		"reachable=true",
		fmt.Sprintf("device=%q", st.Label()),
		fmt.Sprintf("on=%t", st.State.On),
		fmt.Sprintf("brightness=%d", st.State.Brightness),
		fmt.Sprintf("temperature=%d", st.State.Temperature),
		fmt.Sprintf("kelvin=%d", st.State.Kelvin()),
	)
	return strings.Join(parts, " ")
}

// PresetTableData returns the preset table, one row per preset and
// override.
func PresetTableData(presets keylight.Presets) pterm.TableData {
	data := pterm.TableData{
		{"Preset", "Light", "Brightness", "Temperature"},
	}
	for _, name := range presets.Names() {
		p := presets[name]
		data = append(data, []string{pterm.Bold.Sprint(name), "*", fmt.Sprintf("%d%%", p.Brightness), fmt.Sprintf("%d (~%dK)", p.Temperature, keylight.TemperatureToKelvin(p.Temperature))})
		for _, key := range slices.Sorted(maps.Keys(p.Overrides)) {
			v := p.Overrides[key]
			data = append(data, []string{"", key, fmt.Sprintf("%d%%", v.Brightness), fmt.Sprintf("%d (~%dK)", v.Temperature, keylight.TemperatureToKelvin(v.Temperature))})
		}
	}
	return data
}

// reportResults prints line(r) for each successful result and the error
// for each failed one. It returns an error when any light failed.
func reportResults(out, errOut io.Writer, results []control.LightResult, line func(control.LightResult) string) error {
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(errOut, "%s: error: %v\n", r.Light.Name, r.Err)
			continue
		}
		fmt.Fprintln(out, line(r))
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d light(s) failed", failed, len(results))
	}
	return nil
}
