// Package waybar renders light status as a waybar custom-module record.
package waybar

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/butterflysky/elgato-keylight/internal/control"
)

// Nerd Font lightbulb glyphs.
const (
	IconOn  = "\U000F0335"
	IconOff = "\U000F0336"
)

// CSS classes.
const (
	ClassOn    = "on"
	ClassMixed = "mixed"
	ClassOff   = "off"
	ClassError = "error"
)

// Output is one line of waybar custom-module JSON.
type Output struct {
	Text    string `json:"text"`
	Tooltip string `json:"tooltip"`
	Class   string `json:"class"`
}

// StatusSource reads light state.
type StatusSource interface {
	States(ctx context.Context, names []string) ([]control.LightStatus, error)
}

// Render reads the status of the named lights (all when empty). Failing to
// resolve the lights yields an error record rather than an error.
func Render(ctx context.Context, src StatusSource, names []string) Output {
	statuses, err := src.States(ctx, names)
	if err != nil {
		return ErrorOutput(err)
	}
	return Build(statuses)
}

// ErrorOutput is the record shown when status could not be read at all.
func ErrorOutput(err error) Output {
	return Output{Text: IconOff + " err", Tooltip: err.Error(), Class: ClassError}
}

// Build summarizes statuses. The text shows the average brightness of the
// lights that are on; unreachable lights only appear in the tooltip.
func Build(statuses []control.LightStatus) Output {
	var (
		lines       []string
		unreachable []string
		reachable   int
		on          int
		brightness  int
	)
	for _, st := range statuses {
		if st.Err != nil {
			unreachable = append(unreachable, st.Light.Name+": unreachable")
			continue
		}
		reachable++
		power := "off"
		if st.State.On {
			power = "on"
			on++
			brightness += st.State.Brightness
		}
		lines = append(lines, fmt.Sprintf("%s: %s | %d%% | ~%dK", st.Light.Name, power, st.State.Brightness, st.State.Kelvin()))
	}

	if reachable == 0 && len(unreachable) > 0 {
		return Output{Text: IconOff + " --", Tooltip: "All lights unreachable", Class: ClassError}
	}

	out := Output{Tooltip: strings.Join(append(lines, unreachable...), "\n")}
	switch {
	case on == reachable:
		out.Class = ClassOn
	case on > 0:
		out.Class = ClassMixed
	default:
		out.Class = ClassOff
	}

	if on > 0 {
		out.Text = fmt.Sprintf("%s %d%%", IconOn, brightness/on)
	} else {
		out.Text = IconOff
	}
	return out
}

// Write encodes out as a single JSON line.
func Write(w io.Writer, out Output) error {
	return json.NewEncoder(w).Encode(out)
}
