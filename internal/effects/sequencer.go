package effects

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/butterflysky/elgato-keylight/internal/errors"
	"github.com/butterflysky/elgato-keylight/internal/events"
	"github.com/butterflysky/elgato-keylight/pkg/keylight"
)

// Light is the part of a device client the sequencer needs.
type Light interface {
	Name() string
	GetState(ctx context.Context) (keylight.LightState, error)
	SetState(ctx context.Context, s keylight.LightState) (keylight.LightState, error)
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep is the real-time SleepFunc.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Sequencer runs effects in three phases: snapshot every light, drive the
// effect's steps, restore every light. Runs and moods on one Sequencer are
// serialized, so a run never snapshots another run's intermediate state.
type Sequencer struct {
	logger *slog.Logger
	bus    *events.Bus
	sleep  SleepFunc
	moods  Moods

	// holds a token while a run or mood is in progress
	busy chan struct{}
}

// Option configures a Sequencer.
type Option func(*Sequencer)

// WithBus publishes effect and mood events to bus.
func WithBus(bus *events.Bus) Option {
	return func(s *Sequencer) { s.bus = bus }
}

// WithSleep replaces the hold timer; tests use it to run effects instantly.
func WithSleep(fn SleepFunc) Option {
	return func(s *Sequencer) { s.sleep = fn }
}

// WithMoods replaces the mood table.
func WithMoods(m Moods) Option {
	return func(s *Sequencer) { s.moods = m }
}

// NewSequencer creates a sequencer using DefaultMoods.
func NewSequencer(logger *slog.Logger, opts ...Option) *Sequencer {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Sequencer{logger: logger, sleep: Sleep, moods: DefaultMoods(), busy: make(chan struct{}, 1)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// acquire waits until no other run or mood is in progress. The returned
// func releases the slot.
func (s *Sequencer) acquire(ctx context.Context) (func(), error) {
	select {
	case s.busy <- struct{}{}:
		return func() { <-s.busy }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Moods returns the sequencer's mood table.
func (s *Sequencer) Moods() Moods {
	return s.moods
}

// RestoreOutcome is the result of restoring one light.
type RestoreOutcome struct {
	Light string
	State keylight.LightState
	Err   error
}

// RestoreReport collects the per-light restore outcomes of a run.
type RestoreReport struct {
	Outcomes []RestoreOutcome
}

// Failed lists the lights that could not be restored.
func (r RestoreReport) Failed() []string {
	var names []string
	for _, o := range r.Outcomes {
		if o.Err != nil {
			names = append(names, o.Light)
		}
	}
	return names
}

// Err joins the restore failures, or returns nil when every light was
// restored.
func (r RestoreReport) Err() error {
	var errs []error
	for _, o := range r.Outcomes {
		if o.Err != nil {
			errs = append(errs, fmt.Errorf("restore %s: %w", o.Light, o.Err))
		}
	}
	return stderrors.Join(errs...)
}

// Result describes one effect run.
type Result struct {
	RunID    string
	Effect   string
	Steps    int
	StepsRun int
	Restore  RestoreReport
}

// Run snapshots lights, plays effect and restores the snapshot.
//
// A snapshot failure returns before any light is changed. A step failure
// (or ctx ending) stops the remaining steps; the lights are restored either
// way and the step error is returned. Restore failures never fail the run;
// they are reported in Result.Restore.
func (s *Sequencer) Run(ctx context.Context, lights []Light, effect Effect) (*Result, error) {
	res := &Result{RunID: uuid.NewString(), Effect: effect.Name()}
	logger := s.logger.With("run_id", res.RunID, "effect", res.Effect)

	release, err := s.acquire(ctx)
	if err != nil {
		return res, err
	}
	defer release()

	snapshot, err := s.snapshot(ctx, lights)
	if err != nil {
		return res, err
	}

	steps, err := effect.Steps(ctx, snapshot)
	if err != nil {
		return res, errors.WrapErrorf(err, "effect %s", res.Effect)
	}
	res.Steps = len(steps)

	names := lightNames(lights)
	logger.Info("effect started", "lights", names, "steps", len(steps), "duration", Duration(steps))
	s.bus.Emit(events.EffectStarted, events.EffectPayload{
		RunID: res.RunID, Effect: res.Effect, Lights: names, Steps: len(steps),
	})

	driveErr := s.drive(ctx, lights, steps, res)
	res.Restore = s.restore(context.WithoutCancel(ctx), lights, snapshot)

	finished := events.EffectPayload{
		RunID: res.RunID, Effect: res.Effect, Lights: names, Step: res.StepsRun, Steps: res.Steps,
		RestoreFailed: res.Restore.Failed(),
	}
	if driveErr != nil {
		finished.Error = driveErr.Error()
		logger.Warn("effect aborted", "step", res.StepsRun, "error", driveErr)
	}
	if err := res.Restore.Err(); err != nil {
		logger.Warn("restore incomplete", "failed", finished.RestoreFailed, "error", err)
	}
	logger.Info("effect finished", "steps_run", res.StepsRun)
	s.bus.Emit(events.EffectFinished, finished)

	return res, driveErr
}

// SetMood applies the named mood to every light. Nothing is restored.
func (s *Sequencer) SetMood(ctx context.Context, lights []Light, name string) (keylight.LightState, error) {
	state, err := s.moods.Lookup(name)
	if err != nil {
		return keylight.LightState{}, err
	}
	release, err := s.acquire(ctx)
	if err != nil {
		return keylight.LightState{}, err
	}
	defer release()
	if err := Broadcast(ctx, lights, state); err != nil {
		return keylight.LightState{}, err
	}
	s.logger.Info("mood applied", "mood", name, "lights", lightNames(lights))
	s.bus.Emit(events.MoodApplied, events.NamedPayload{Name: name, Lights: lightNames(lights)})
	return state, nil
}

// Broadcast sends the same state to every light concurrently and waits for
// all of them.
func Broadcast(ctx context.Context, lights []Light, state keylight.LightState) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, l := range lights {
		g.Go(func() error {
			if _, err := l.SetState(ctx, state); err != nil {
				return errors.WrapErrorf(err, "%s", l.Name())
			}
			return nil
		})
	}
	return g.Wait()
}

func (s *Sequencer) snapshot(ctx context.Context, lights []Light) ([]keylight.LightState, error) {
	snapshot := make([]keylight.LightState, len(lights))
	g, gctx := errgroup.WithContext(ctx)
	for i, l := range lights {
		g.Go(func() error {
			state, err := l.GetState(gctx)
			if err != nil {
				return errors.WrapErrorf(err, "snapshot %s", l.Name())
			}
			snapshot[i] = state
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snapshot, nil
}

func (s *Sequencer) drive(ctx context.Context, lights []Light, steps []Step, res *Result) error {
	for i, step := range steps {
		if err := Broadcast(ctx, lights, step.State); err != nil {
			return errors.WrapErrorf(err, "step %d", i+1)
		}
		res.StepsRun++
		s.bus.Emit(events.EffectStep, events.EffectPayload{
			RunID: res.RunID, Effect: res.Effect, Step: i + 1, Steps: len(steps),
		})
		if err := s.sleep(ctx, step.Hold); err != nil {
			return err
		}
	}
	return nil
}

// restore writes the snapshot back one light at a time, in snapshot order.
func (s *Sequencer) restore(ctx context.Context, lights []Light, snapshot []keylight.LightState) RestoreReport {
	report := RestoreReport{Outcomes: make([]RestoreOutcome, 0, len(lights))}
	for i, l := range lights {
		_, err := l.SetState(ctx, snapshot[i])
		report.Outcomes = append(report.Outcomes, RestoreOutcome{Light: l.Name(), State: snapshot[i], Err: err})
	}
	return report
}

func lightNames(lights []Light) []string {
	names := make([]string, len(lights))
	for i, l := range lights {
		names[i] = l.Name()
	}
	return names
}
