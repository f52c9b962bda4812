// Package tray implements the elgato-tray status icon: the polled light
// summary, the menu model, the actions behind each menu entry and the
// single-instance lockfile.
package tray

import (
	"fmt"
	"strings"

	"github.com/butterflysky/elgato-keylight/internal/control"
)

// Title is the tray title and tooltip heading.
const Title = "Elgato Key Light"

// LightItem is the polled state of one light.
type LightItem struct {
	Name       string
	Reachable  bool
	On         bool
	Brightness int
	Kelvin     int
}

// Summary is one poll of every configured light.
type Summary struct {
	Lights []LightItem
	Err    error
}

// Summarize converts a status poll. err is the failure to resolve the
// light list at all.
func Summarize(statuses []control.LightStatus, err error) Summary {
	if err != nil {
		return Summary{Err: err}
	}
	s := Summary{Lights: make([]LightItem, 0, len(statuses))}
	for _, st := range statuses {
		item := LightItem{Name: st.Light.Name, Reachable: st.Err == nil}
		if item.Reachable {
			item.On = st.State.On
			item.Brightness = st.State.Brightness
			item.Kelvin = st.State.Kelvin()
		}
		s.Lights = append(s.Lights, item)
	}
	return s
}

// Counts returns how many reachable lights are on and how many are
// reachable.
func (s Summary) Counts() (on, reachable int) {
	for _, l := range s.Lights {
		if !l.Reachable {
			continue
		}
		reachable++
		if l.On {
			on++
		}
	}
	return on, reachable
}

// AnyOn reports whether at least one reachable light is on.
func (s Summary) AnyOn() bool {
	on, _ := s.Counts()
	return on > 0
}

// Icon is unknown when nothing could be read.
func (s Summary) Icon() IconState {
	on, reachable := s.Counts()
	switch {
	case s.Err != nil || reachable == 0:
		return IconUnknown
	case on > 0:
		return IconOn
	default:
		return IconOff
	}
}

// Tooltip lists every light under a count heading.
func (s Summary) Tooltip() string {
	if s.Err != nil {
		return Title + "\n" + s.Err.Error()
	}
	if len(s.Lights) == 0 {
		return Title + " - No lights"
	}

	on, reachable := s.Counts()
	var b strings.Builder
	b.WriteString(Title)
	switch {
	case reachable == 0:
		b.WriteString(" - Unreachable")
	case on == 0:
		b.WriteString(" - All off")
	case on == len(s.Lights):
		b.WriteString(" - All on")
	default:
		fmt.Fprintf(&b, " - %d/%d on", on, len(s.Lights))
	}
	for _, l := range s.Lights {
		b.WriteString("\n")
		b.WriteString(describe(l))
	}
	return b.String()
}

// Light returns the item for name.
func (s Summary) Light(name string) (LightItem, bool) {
	for _, l := range s.Lights {
		if l.Name == name {
			return l, true
		}
	}
	return LightItem{}, false
}

// LightTitle is the menu title of a light: a check mark when on, a marker
// when unreachable.
func LightTitle(l LightItem) string {
	switch {
	case !l.Reachable:
		return "  " + l.Name + " (unreachable)"
	case l.On:
		return "✓ " + l.Name
	default:
		return "  " + l.Name
	}
}

func describe(l LightItem) string {
	switch {
	case !l.Reachable:
		return l.Name + ": unreachable"
	case l.On:
		return fmt.Sprintf("%s: on %d%% %dK", l.Name, l.Brightness, l.Kelvin)
	default:
		return l.Name + ": off"
	}
}
