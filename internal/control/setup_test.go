package control_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/butterflysky/elgato-keylight/internal/config"
	"github.com/butterflysky/elgato-keylight/internal/control"
	"github.com/butterflysky/elgato-keylight/internal/effects"
	"github.com/butterflysky/elgato-keylight/internal/events"
	"github.com/butterflysky/elgato-keylight/pkg/keylight"
	"github.com/butterflysky/elgato-keylight/pkg/keylight/keylighttest"
)

func TestFromSettings(t *testing.T) {
	light := keylighttest.NewServer(t, keylight.LightState{On: true, Brightness: 40, Temperature: 200})
	cfg := light.LightConfig("desk")

	dir := t.TempDir()
	path := filepath.Join(dir, config.ConfigFilename)
	content := fmt.Sprintf("[discovery]\nmethod = \"none\"\n\n[[lights]]\nname = \"desk\"\nhost = %q\nport = %d\n", cfg.Host, cfg.Port)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	require.NoError(t, os.MkdirAll(config.EffectsDir(path), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(config.EffectsDir(path), "blink.lua"),
		[]byte("step{brightness=100}\nstep{brightness=0}\n"), 0o600))

	settings, err := config.LoadSettings(path)
	require.NoError(t, err)

	bus := events.NewBus()
	var types []events.EventType
	bus.Subscribe(func(e events.Event) {
		if e.Type == events.EffectFinished {
			types = append(types, e.Type)
		}
	})

	c := control.FromSettings(settings, bus, nil)
	assert.Contains(t, c.Effects(), "blink")
	assert.Empty(t, c.Discover(context.Background()))

	res, err := c.RunEffect(context.Background(), "blink", effects.Params{}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, res.StepsRun)
	assert.Equal(t, keylight.LightState{On: true, Brightness: 40, Temperature: 200}, light.State())
	assert.Equal(t, []events.EventType{events.EffectFinished}, types)
}
