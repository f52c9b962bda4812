package effects

import (
	"strings"

	"github.com/butterflysky/elgato-keylight/internal/errors"
	"github.com/butterflysky/elgato-keylight/pkg/keylight"
)

// Mood is a named persistent lighting state.
type Mood struct {
	Name  string              `json:"name"`
	State keylight.LightState `json:"state"`
}

// Moods is an ordered mood table.
type Moods []Mood

// DefaultMoods returns the built-in moods.
func DefaultMoods() Moods {
	return Moods{
		{Name: "cozy", State: on(25, 320)},
		{Name: "focus", State: on(70, 200)},
		{Name: "relax", State: on(30, 280)},
		{Name: "energize", State: on(90, 160)},
		{Name: "movie", State: on(10, 300)},
	}
}

// Names lists the moods in table order.
func (m Moods) Names() []string {
	names := make([]string, len(m))
	for i, mood := range m {
		names[i] = mood.Name
	}
	return names
}

// Lookup returns the state of the named mood or ErrUnknownMood.
func (m Moods) Lookup(name string) (keylight.LightState, error) {
	for _, mood := range m {
		if mood.Name == name {
			return mood.State, nil
		}
	}
	return keylight.LightState{}, errors.UnknownMoodf("%q (available: %s)", name, strings.Join(m.Names(), ", "))
}
