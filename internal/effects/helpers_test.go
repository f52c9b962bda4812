package effects

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	kerrors "github.com/butterflysky/elgato-keylight/internal/errors"
	"github.com/butterflysky/elgato-keylight/pkg/keylight"
)

// recorder keeps the global order of writes across fake lights.
type recorder struct {
	mu     sync.Mutex
	writes []string
}

func (r *recorder) add(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writes = append(r.writes, name)
}

func (r *recorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.writes...)
}

type fakeLight struct {
	name string
	rec  *recorder

	mu      sync.Mutex
	state   keylight.LightState
	sets    []keylight.LightState
	gets    int
	getErr  error
	failSet map[int]bool // 1-based SetState call numbers that fail
}

func newFakeLight(name string, state keylight.LightState, rec *recorder) *fakeLight {
	return &fakeLight{name: name, state: state, rec: rec, failSet: map[int]bool{}}
}

func (f *fakeLight) Name() string { return f.name }

func (f *fakeLight) GetState(ctx context.Context) (keylight.LightState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	if f.getErr != nil {
		return keylight.LightState{}, f.getErr
	}
	return f.state, nil
}

func (f *fakeLight) SetState(ctx context.Context, s keylight.LightState) (keylight.LightState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return keylight.LightState{}, kerrors.Unreachablef("%s: %w", f.name, err)
	}
	call := len(f.sets) + 1
	f.sets = append(f.sets, s)
	if f.rec != nil {
		f.rec.add(f.name)
	}
	if f.failSet[call] {
		return keylight.LightState{}, kerrors.Unreachablef("%s: write %d failed", f.name, call)
	}
	f.state = s
	return s, nil
}

func (f *fakeLight) Sets() []keylight.LightState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]keylight.LightState(nil), f.sets...)
}

func (f *fakeLight) State() keylight.LightState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// sleeper records holds without waiting.
type sleeper struct {
	mu    sync.Mutex
	holds []time.Duration
}

func (s *sleeper) sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	s.holds = append(s.holds, d)
	s.mu.Unlock()
	return ctx.Err()
}

func (s *sleeper) total() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	var d time.Duration
	for _, h := range s.holds {
		d += h
	}
	return d
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func asLights(fakes ...*fakeLight) []Light {
	lights := make([]Light, len(fakes))
	for i, f := range fakes {
		lights[i] = f
	}
	return lights
}

func brightnesses(steps []Step) []int {
	out := make([]int, len(steps))
	for i, s := range steps {
		out[i] = s.State.Brightness
	}
	return out
}
