package effects

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kerrors "github.com/butterflysky/elgato-keylight/internal/errors"
	"github.com/butterflysky/elgato-keylight/pkg/keylight"
)

func TestRegistryBuiltins(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, []string{"alert", "celebration", "dim", "flash", "pulse"}, r.Names())

	tests := []struct {
		name   string
		params Params
		want   string
		steps  int
	}{
		{"flash", Params{}, "flash", 6},
		{"flash", Params{Times: 2, Interval: 0.1}, "flash", 4},
		{"pulse", Params{Cycles: 1}, "pulse", 38},
		{"celebrate", Params{}, "celebration", 30},
		{"alert", Params{Flashes: 2}, "alert", 4},
		{"dim_slowly", Params{Steps: 4, Target: lo.ToPtr(20)}, "dim", 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := r.New(tt.name, tt.params)
			require.NoError(t, err)
			assert.Equal(t, tt.want, e.Name())
			out, err := e.Steps(context.Background(), []keylight.LightState{keylight.DefaultState()})
			require.NoError(t, err)
			assert.Len(t, out, tt.steps)
		})
	}

	e, err := r.New("flash", Params{Interval: 0.1})
	require.NoError(t, err)
	out, _ := e.Steps(context.Background(), nil)
	assert.Equal(t, 100*time.Millisecond, out[0].Hold)
}

func TestRegistryErrors(t *testing.T) {
	r := NewRegistry()

	_, err := r.New("strobe", Params{})
	assert.True(t, kerrors.IsUnknownEffect(err))
	assert.Contains(t, err.Error(), "alert, celebration, dim, flash, pulse")

	_, err = r.New("flash", Params{Times: -1})
	assert.True(t, kerrors.IsInvalidInput(err))

	_, err = r.New("dim", Params{Target: lo.ToPtr(101)})
	assert.True(t, kerrors.IsInvalidInput(err))

	assert.Error(t, r.Register("flash", func(Params) Effect { return Celebration() }))
	assert.Error(t, r.Register("celebrate", func(Params) Effect { return Celebration() }))
	require.NoError(t, r.Register("party", func(Params) Effect { return Celebration() }))
	assert.Contains(t, r.Names(), "party")
}

func TestLoadScripts(t *testing.T) {
	dir := t.TempDir()
	write := func(name, src string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(src), 0o644))
	}
	write("sunrise.lua", `for b = 10, 30, 10 do step{brightness = b, temperature = 300} end`)
	write("broken.lua", `step{brightness = `)
	write("flash.lua", `step{}`)
	write("notes.txt", `not lua`)

	r := NewRegistry()
	n, err := r.LoadScripts(dir, discardLogger())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Contains(t, r.Names(), "sunrise")
	assert.NotContains(t, r.Names(), "broken")

	e, err := r.New("sunrise", Params{})
	require.NoError(t, err)
	out, err := e.Steps(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, []int{10, 20, 30}, brightnesses(out))

	n, err = NewRegistry().LoadScripts(filepath.Join(dir, "missing"), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}
