package keylight

import (
	"fmt"
	"net"
	"strconv"
)

// Device limits. Temperature is in the device's own units (mireds-like),
// which map to Kelvin as 1,000,000 / temperature.
const (
	MinBrightness  = 0
	MaxBrightness  = 100
	MinTemperature = 143
	MaxTemperature = 344

	DefaultBrightness  = 50
	DefaultTemperature = 200
	DefaultPort        = 9123
)

// LightState is the observable state of one light.
type LightState struct {
	On          bool `json:"on"`
	Brightness  int  `json:"brightness"`
	Temperature int  `json:"temperature"`
}

// DefaultState returns the state used when a device omits a field: off,
// brightness 50, temperature 200.
func DefaultState() LightState {
	return LightState{Brightness: DefaultBrightness, Temperature: DefaultTemperature}
}

// OffState is DefaultState with On false, the state sent by the "off" steps
// of effects.
func OffState() LightState {
	return DefaultState()
}

// Clamp returns a copy with brightness and temperature forced into range.
func (s LightState) Clamp() LightState {
	s.Brightness = ClampBrightness(s.Brightness)
	s.Temperature = ClampTemperature(s.Temperature)
	return s
}

// Kelvin is the approximate colour temperature in Kelvin.
func (s LightState) Kelvin() int {
	return TemperatureToKelvin(s.Temperature)
}

func (s LightState) String() string {
	power := "off"
	if s.On {
		power = "on"
	}
	return fmt.Sprintf("%s, brightness=%d%%, temp=%d (~%dK)", power, s.Brightness, s.Temperature, s.Kelvin())
}

// StatePatch describes a partial state change; nil fields keep their
// current value.
type StatePatch struct {
	On          *bool `json:"on,omitempty"`
	Brightness  *int  `json:"brightness,omitempty"`
	Temperature *int  `json:"temperature,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p StatePatch) IsEmpty() bool {
	return p.On == nil && p.Brightness == nil && p.Temperature == nil
}

// Apply returns s with the patch's fields replaced.
func (p StatePatch) Apply(s LightState) LightState {
	if p.On != nil {
		s.On = *p.On
	}
	if p.Brightness != nil {
		s.Brightness = *p.Brightness
	}
	if p.Temperature != nil {
		s.Temperature = *p.Temperature
	}
	return s
}

// DeviceInfo is the accessory information reported by a light.
type DeviceInfo struct {
	ProductName         string   `json:"productName"`
	HardwareBoardType   int      `json:"hardwareBoardType"`
	FirmwareBuildNumber int      `json:"firmwareBuildNumber"`
	FirmwareVersion     string   `json:"firmwareVersion"`
	SerialNumber        string   `json:"serialNumber"`
	DisplayName         string   `json:"displayName"`
	Features            []string `json:"features"`
}

// Label is the display name, or the product name when no display name is set.
func (i DeviceInfo) Label() string {
	if i.DisplayName != "" {
		return i.DisplayName
	}
	return i.ProductName
}

// LightConfig identifies one light on the network.
type LightConfig struct {
	Name string `json:"name" toml:"name"`
	Host string `json:"host" toml:"host"`
	Port int    `json:"port" toml:"port"`
	// ID is the device identifier advertised over mDNS (usually the MAC);
	// optional, used to match per-light preset overrides.
	ID string `json:"id,omitempty" toml:"id,omitempty"`
}

// Address is host:port, defaulting the port to 9123.
func (c LightConfig) Address() string {
	port := c.Port
	if port == 0 {
		port = DefaultPort
	}
	return net.JoinHostPort(c.Host, strconv.Itoa(port))
}

// BaseURL is the root of the light's REST API.
func (c LightConfig) BaseURL() string {
	return "http://" + c.Address() + "/elgato"
}

// apiLight is one entry of the device's "lights" array.
type apiLight struct {
	On          int  `json:"on"`
	Brightness  *int `json:"brightness,omitempty"`
	Temperature *int `json:"temperature,omitempty"`
}

// apiLights is the body of GET/PUT /elgato/lights.
type apiLights struct {
	NumberOfLights int        `json:"numberOfLights"`
	Lights         []apiLight `json:"lights"`
}

func (s LightState) toAPI() apiLights {
	b, t := s.Brightness, s.Temperature
	return apiLights{
		NumberOfLights: 1,
		Lights:         []apiLight{{On: boolToInt(s.On), Brightness: &b, Temperature: &t}},
	}
}

func (l apiLight) toState() LightState {
	s := DefaultState()
	s.On = l.On != 0
	if l.Brightness != nil {
		s.Brightness = *l.Brightness
	}
	if l.Temperature != nil {
		s.Temperature = *l.Temperature
	}
	return s
}
