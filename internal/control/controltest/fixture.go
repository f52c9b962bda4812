// Package controltest wires a control.Controller to fake lights for
// front-end tests.
package controltest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/butterflysky/elgato-keylight/internal/config"
	"github.com/butterflysky/elgato-keylight/internal/control"
	"github.com/butterflysky/elgato-keylight/internal/effects"
	"github.com/butterflysky/elgato-keylight/internal/events"
	"github.com/butterflysky/elgato-keylight/pkg/keylight"
	"github.com/butterflysky/elgato-keylight/pkg/keylight/keylighttest"
)

// Fixture is a controller whose config file points at fake lights.
type Fixture struct {
	Controller *control.Controller
	Bus        *events.Bus
	ConfigPath string

	// Lights maps light name to its fake server
	Lights map[string]*keylighttest.Server

	// Discovered is what the fake network browse returns
	Discovered []keylight.LightConfig

	t     testing.TB
	names []string
	extra string
}

// New starts one fake light per name, each on at brightness 50 and
// temperature 200, and writes a config file listing them in order.
func New(t testing.TB, names ...string) *Fixture {
	t.Helper()
	f := &Fixture{
		Bus:        events.NewBus(),
		ConfigPath: filepath.Join(t.TempDir(), config.ConfigFilename),
		Lights:     make(map[string]*keylighttest.Server, len(names)),
		t:          t,
		names:      names,
	}
	for _, name := range names {
		f.Lights[name] = keylighttest.NewServer(t, keylight.LightState{On: true, Brightness: 50, Temperature: 200})
	}
	f.write()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	resolver := config.NewResolver(f.ConfigPath, config.DefaultPresets(), f.discover, logger)
	seq := effects.NewSequencer(logger,
		effects.WithBus(f.Bus),
		effects.WithSleep(func(ctx context.Context, d time.Duration) error { return ctx.Err() }),
	)
	f.Controller = control.New(resolver, seq, effects.NewRegistry(), logger,
		control.WithBus(f.Bus),
		control.WithClientOptions(keylight.WithTimeout(2*time.Second)),
		control.WithDiscover(f.discover),
	)
	return f
}

// AddConfig appends raw TOML, typically [presets.*] tables, to the config
// file.
func (f *Fixture) AddConfig(toml string) {
	f.t.Helper()
	f.extra += "\n" + toml + "\n"
	f.write()
}

// Light returns the fake server for name.
func (f *Fixture) Light(name string) *keylighttest.Server {
	f.t.Helper()
	s, ok := f.Lights[name]
	if !ok {
		f.t.Fatalf("no fake light %q", name)
	}
	return s
}

func (f *Fixture) discover(ctx context.Context) []keylight.LightConfig {
	return f.Discovered
}

func (f *Fixture) write() {
	f.t.Helper()
	var b strings.Builder
	for _, name := range f.names {
		cfg := f.Lights[name].LightConfig(name)
		fmt.Fprintf(&b, "[[lights]]\nname = %q\nhost = %q\nport = %d\n\n", cfg.Name, cfg.Host, cfg.Port)
	}
	b.WriteString(f.extra)
	if err := os.WriteFile(f.ConfigPath, []byte(b.String()), 0o600); err != nil {
		f.t.Fatalf("writing config: %v", err)
	}
}
