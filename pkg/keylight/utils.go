package keylight

import (
	"strconv"
	"strings"
)

// boolToInt converts a bool to int (true=1, false=0)
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// ClampBrightness forces v into [0, 100].
func ClampBrightness(v int) int {
	return min(max(v, MinBrightness), MaxBrightness)
}

// ClampTemperature forces v into [143, 344].
func ClampTemperature(v int) int {
	return min(max(v, MinTemperature), MaxTemperature)
}

// TemperatureToKelvin converts device temperature units to Kelvin using
// integer division. Non-positive values yield 0.
func TemperatureToKelvin(temperature int) int {
	if temperature <= 0 {
		return 0
	}
	return 1000000 / temperature
}

// KelvinToTemperature converts Kelvin to clamped device temperature units.
func KelvinToTemperature(kelvin int) int {
	if kelvin <= 0 {
		return MaxTemperature
	}
	return ClampTemperature(1000000 / kelvin)
}

// UnescapeRFC6763Label unescapes a DNS-SD label per RFC 6763 section 6.4
func UnescapeRFC6763Label(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 >= len(s) {
			b.WriteByte(s[i])
			continue
		}
		// \DDD decimal escape, as printed by avahi-browse for spaces (\032)
		if i+3 < len(s) && isDigit(s[i+1]) && isDigit(s[i+2]) && isDigit(s[i+3]) {
			if val, err := strconv.Atoi(s[i+1 : i+4]); err == nil && val < 256 {
				b.WriteByte(byte(val))
				i += 3
				continue
			}
		}
		i++
		b.WriteByte(s[i])
	}
	return b.String()
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
