// Package effects runs timed lighting effects across several lights and
// puts every light back the way it was afterwards.
package effects

import (
	"context"
	"time"

	"github.com/butterflysky/elgato-keylight/pkg/keylight"
)

// Step is one state broadcast to every light, followed by a hold.
type Step struct {
	State keylight.LightState
	Hold  time.Duration
}

// Effect produces the steps of one run. snapshot holds the state of each
// participating light, in order, captured before anything changed.
type Effect interface {
	Name() string
	Steps(ctx context.Context, snapshot []keylight.LightState) ([]Step, error)
}

// Duration is the total hold time of steps.
func Duration(steps []Step) time.Duration {
	var d time.Duration
	for _, s := range steps {
		d += s.Hold
	}
	return d
}

type stepsFunc func(snapshot []keylight.LightState) []Step

type builtin struct {
	name  string
	steps stepsFunc
}

func (b builtin) Name() string { return b.name }

func (b builtin) Steps(_ context.Context, snapshot []keylight.LightState) ([]Step, error) {
	return b.steps(snapshot), nil
}
