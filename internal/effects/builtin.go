package effects

import (
	"slices"
	"time"

	"github.com/butterflysky/elgato-keylight/pkg/keylight"
)

// Built-in effect defaults.
const (
	DefaultFlashTimes    = 3
	DefaultFlashInterval = 300 * time.Millisecond
	DefaultPulseCycles   = 3
	DefaultPulseStep     = 50 * time.Millisecond
	DefaultAlertFlashes  = 5
	DefaultDimTarget     = 10
	DefaultDimSteps      = 20

	celebrationRounds     = 3
	celebrationBrightness = 80
	celebrationHold       = 200 * time.Millisecond
	alertHold             = 150 * time.Millisecond
	dimStepHold           = 100 * time.Millisecond
	dimFinalHold          = 2 * time.Second
	dimFloor              = 3
)

// celebrationSweep runs cool to warm.
var celebrationSweep = []int{143, 200, 250, 300, 344}

func on(brightness, temperature int) keylight.LightState {
	return keylight.LightState{On: true, Brightness: brightness, Temperature: temperature}
}

// Flash alternates full brightness at neutral temperature with off.
func Flash(times int, interval time.Duration) Effect {
	return builtin{name: "flash", steps: func([]keylight.LightState) []Step {
		var steps []Step
		for range max(times, 0) {
			steps = append(steps,
				Step{State: on(100, 200), Hold: interval},
				Step{State: keylight.OffState(), Hold: interval},
			)
		}
		return steps
	}}
}

// Pulse ramps brightness 10 to 100 and back in steps of 5 at temperature 200.
func Pulse(cycles int, step time.Duration) Effect {
	return builtin{name: "pulse", steps: func([]keylight.LightState) []Step {
		var steps []Step
		for range max(cycles, 0) {
			for b := 10; b <= 100; b += 5 {
				steps = append(steps, Step{State: on(b, 200), Hold: step})
			}
			for b := 100; b >= 10; b -= 5 {
				steps = append(steps, Step{State: on(b, 200), Hold: step})
			}
		}
		return steps
	}}
}

// Celebration sweeps the colour temperature cool to warm and back, three
// times, at brightness 80.
func Celebration() Effect {
	return builtin{name: "celebration", steps: func([]keylight.LightState) []Step {
		sweep := append(slices.Clone(celebrationSweep), reversed(celebrationSweep)...)
		var steps []Step
		for range celebrationRounds {
			for _, t := range sweep {
				steps = append(steps, Step{State: on(celebrationBrightness, t), Hold: celebrationHold})
			}
		}
		return steps
	}}
}

// Alert flashes full brightness at the coolest temperature.
func Alert(flashes int) Effect {
	return builtin{name: "alert", steps: func([]keylight.LightState) []Step {
		var steps []Step
		for range max(flashes, 0) {
			steps = append(steps,
				Step{State: on(100, keylight.MinTemperature), Hold: alertHold},
				Step{State: keylight.OffState(), Hold: alertHold},
			)
		}
		return steps
	}}
}

// DimSlowly fades from the first light's brightness to target over steps+1
// steps (never below 3) at the first light's temperature, then holds for
// two seconds. With no lights it does nothing.
func DimSlowly(target, steps int) Effect {
	return builtin{name: "dim", steps: func(snapshot []keylight.LightState) []Step {
		if len(snapshot) == 0 {
			return nil
		}
		steps := max(steps, 1)
		start, temperature := snapshot[0].Brightness, snapshot[0].Temperature
		out := make([]Step, 0, steps+1)
		for i := 0; i <= steps; i++ {
			b := (start*steps + (target-start)*i) / steps
			out = append(out, Step{State: on(max(dimFloor, b), temperature), Hold: dimStepHold})
		}
		out[len(out)-1].Hold += dimFinalHold
		return out
	}}
}

func reversed(s []int) []int {
	out := slices.Clone(s)
	slices.Reverse(out)
	return out
}
