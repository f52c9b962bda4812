// Package handlers provides typed Huma request/response structs and handler
// implementations for the elgatod HTTP API.
package handlers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/butterflysky/elgato-keylight/internal/control"
	kerrors "github.com/butterflysky/elgato-keylight/internal/errors"
	"github.com/butterflysky/elgato-keylight/pkg/keylight"
)

// AllLights is the {name} path value that targets every light.
const AllLights = "all"

// --- Light types ---

// LightResponse is the API representation of a configured light.
type LightResponse struct {
	Name        string `json:"name" doc:"Configured light name"`
	Host        string `json:"host" doc:"Host name or IP address of the light"`
	Port        int    `json:"port" doc:"Port number of the light"`
	ID          string `json:"id,omitempty" doc:"Device identifier advertised over mDNS"`
	Reachable   bool   `json:"reachable" doc:"Whether the light answered"`
	On          bool   `json:"on" doc:"Whether the light is currently on"`
	Brightness  int    `json:"brightness" doc:"Brightness level (0-100)"`
	Temperature int    `json:"temperature" doc:"Color temperature in device units (143-344)"`
	Kelvin      int    `json:"kelvin,omitempty" doc:"Approximate color temperature in Kelvin"`
	Label       string `json:"label,omitempty" doc:"Display name or product name reported by the light"`

	ProductName     string `json:"product_name,omitempty" doc:"Product name"`
	FirmwareVersion string `json:"firmware_version,omitempty" doc:"Firmware version string"`
	SerialNumber    string `json:"serial_number,omitempty" doc:"Serial number"`

	Error string `json:"error,omitempty" doc:"Why the light could not be read"`
}

// LightFromStatus converts a control.LightStatus to a LightResponse.
func LightFromStatus(s control.LightStatus) LightResponse {
	resp := LightResponse{
		Name: s.Light.Name,
		Host: s.Light.Host,
		Port: portOrDefault(s.Light.Port),
		ID:   s.Light.ID,
	}
	if s.Err != nil {
		resp.Error = s.Err.Error()
		return resp
	}
	resp.Reachable = true
	resp.On = s.State.On
	resp.Brightness = s.State.Brightness
	resp.Temperature = s.State.Temperature
	resp.Kelvin = s.State.Kelvin()
	resp.Label = s.Label()
	if s.Info != nil {
		resp.ProductName = s.Info.ProductName
		resp.FirmwareVersion = s.Info.FirmwareVersion
		resp.SerialNumber = s.Info.SerialNumber
	}
	return resp
}

func portOrDefault(port int) int {
	if port == 0 {
		return keylight.DefaultPort
	}
	return port
}

// LightResultResponse is the outcome of an operation on one light.
type LightResultResponse struct {
	Name        string `json:"name" doc:"Light name"`
	OK          bool   `json:"ok" doc:"Whether the operation succeeded on this light"`
	On          bool   `json:"on" doc:"Power state after the operation"`
	Brightness  int    `json:"brightness,omitempty" doc:"Brightness after the operation"`
	Temperature int    `json:"temperature,omitempty" doc:"Temperature after the operation"`
	Kelvin      int    `json:"kelvin,omitempty" doc:"Approximate color temperature in Kelvin"`
	Error       string `json:"error,omitempty" doc:"Why the operation failed on this light"`
}

// ResultsResponse reports a multi-light operation.
type ResultsResponse struct {
	Status  string                `json:"status" doc:"ok when every light succeeded, partial otherwise"`
	Results []LightResultResponse `json:"results" doc:"Per-light outcomes in configuration order"`
}

// Results converts per-light results. When every light failed the
// failures are returned as an error instead.
func Results(results []control.LightResult) (ResultsResponse, error) {
	resp := ResultsResponse{Status: "ok", Results: make([]LightResultResponse, len(results))}
	failed := 0
	for i, r := range results {
		item := LightResultResponse{Name: r.Light.Name, OK: r.Err == nil}
		if r.Err != nil {
			failed++
			item.Error = r.Err.Error()
		} else if r.State != (keylight.LightState{}) {
			item.On = r.State.On
			item.Brightness = r.State.Brightness
			item.Temperature = r.State.Temperature
			item.Kelvin = r.State.Kelvin()
		}
		resp.Results[i] = item
	}
	switch {
	case failed == 0:
	case failed == len(results):
		return resp, APIError(control.Errors(results))
	default:
		resp.Status = "partial"
	}
	return resp, nil
}

// --- Preset, mood and effect types ---

// PresetResponse is the API representation of a preset.
type PresetResponse struct {
	Name        string                           `json:"name" doc:"Preset name"`
	Brightness  int                              `json:"brightness" doc:"Brightness level (0-100)"`
	Temperature int                              `json:"temperature" doc:"Color temperature in device units"`
	Kelvin      int                              `json:"kelvin" doc:"Approximate color temperature in Kelvin"`
	Overrides   map[string]keylight.PresetValues `json:"overrides,omitempty" doc:"Per-light values keyed by light name or device id"`
}

// PresetsFromKeylight lists presets sorted by name.
func PresetsFromKeylight(presets keylight.Presets) []PresetResponse {
	names := presets.Names()
	result := make([]PresetResponse, len(names))
	for i, name := range names {
		p := presets[name]
		result[i] = PresetResponse{
			Name:        name,
			Brightness:  p.Brightness,
			Temperature: p.Temperature,
			Kelvin:      keylight.TemperatureToKelvin(p.Temperature),
			Overrides:   p.Overrides,
		}
	}
	return result
}

// MoodResponse is the API representation of a mood.
type MoodResponse struct {
	Name        string `json:"name" doc:"Mood name"`
	Brightness  int    `json:"brightness" doc:"Brightness level (0-100)"`
	Temperature int    `json:"temperature" doc:"Color temperature in device units"`
	Kelvin      int    `json:"kelvin" doc:"Approximate color temperature in Kelvin"`
}

// TargetRequest names the lights an operation applies to.
type TargetRequest struct {
	Lights []string `json:"lights,omitempty" doc:"Light names; every light when empty"`
}

// --- Common response types ---

// StatusResponse is a simple status response.
type StatusResponse struct {
	Status string `json:"status" doc:"Operation status"`
}

// targets maps a {name} path value to a light filter.
func targets(name string) []string {
	if name == "" || strings.EqualFold(name, AllLights) {
		return nil
	}
	return []string{name}
}

// APIError maps a domain error to an HTTP error.
func APIError(err error) error {
	if err == nil {
		return nil
	}
	var se huma.StatusError
	if errors.As(err, &se) {
		return err
	}
	msg := err.Error()
	switch {
	case kerrors.IsNotFound(err), kerrors.IsUnknownPreset(err),
		kerrors.IsUnknownMood(err), kerrors.IsUnknownEffect(err):
		return huma.Error404NotFound(msg)
	case kerrors.IsInvalidInput(err):
		return huma.Error400BadRequest(msg)
	case kerrors.IsUnreachable(err):
		return huma.Error502BadGateway(msg)
	default:
		return huma.Error500InternalServerError(fmt.Sprintf("Internal error: %s", msg))
	}
}
