package keylight_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/butterflysky/elgato-keylight/internal/errors"
	"github.com/butterflysky/elgato-keylight/pkg/keylight"
	"github.com/butterflysky/elgato-keylight/pkg/keylight/keylighttest"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newClient(t *testing.T, initial keylight.LightState) (*keylight.Client, *keylighttest.Server) {
	t.Helper()
	srv := keylighttest.NewServer(t, initial)
	c := keylight.NewClient(srv.LightConfig("desk"), testLogger())
	t.Cleanup(c.Close)
	return c, srv
}

func TestGetState(t *testing.T) {
	c, _ := newClient(t, keylight.LightState{On: true, Brightness: 40, Temperature: 250})

	state, err := c.GetState(context.Background())
	require.NoError(t, err)
	assert.Equal(t, keylight.LightState{On: true, Brightness: 40, Temperature: 250}, state)
	assert.Equal(t, 4000, state.Kelvin())
	assert.Equal(t, "desk", c.Name())
}

func TestGetStateMissingFieldsUseDefaults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"numberOfLights":1,"lights":[{"on":1}]}`))
	}))
	defer srv.Close()

	c := keylight.NewClient(lightConfigFor(t, srv, "x"), testLogger(), keylight.WithHTTPClient(srv.Client()))
	defer c.Close()

	state, err := c.GetState(context.Background())
	require.NoError(t, err)
	assert.Equal(t, keylight.LightState{On: true, Brightness: 50, Temperature: 200}, state)
}

func TestSetStateClampsAndReturnsEcho(t *testing.T) {
	c, srv := newClient(t, keylight.DefaultState())

	state, err := c.SetState(context.Background(), keylight.LightState{On: true, Brightness: 150, Temperature: 100})
	require.NoError(t, err)
	assert.Equal(t, keylight.LightState{On: true, Brightness: 100, Temperature: 143}, state)
	assert.Equal(t, []keylight.LightState{{On: true, Brightness: 100, Temperature: 143}}, srv.Puts())

	state, err = c.SetState(context.Background(), keylight.LightState{Brightness: -5, Temperature: 999})
	require.NoError(t, err)
	assert.Equal(t, keylight.LightState{Brightness: 0, Temperature: 344}, state)
}

func TestSetStateWithoutEchoReturnsSentState(t *testing.T) {
	c, srv := newClient(t, keylight.DefaultState())
	srv.SetNoEcho(true)

	state, err := c.SetState(context.Background(), keylight.LightState{On: true, Brightness: 70, Temperature: 180})
	require.NoError(t, err)
	assert.Equal(t, keylight.LightState{On: true, Brightness: 70, Temperature: 180}, state)
}

func TestMutators(t *testing.T) {
	initial := keylight.LightState{On: false, Brightness: 30, Temperature: 220}
	ctx := context.Background()

	tests := []struct {
		name string
		call func(c *keylight.Client) (keylight.LightState, error)
		want keylight.LightState
	}{
		{"turn on", func(c *keylight.Client) (keylight.LightState, error) { return c.TurnOn(ctx) },
			keylight.LightState{On: true, Brightness: 30, Temperature: 220}},
		{"turn off", func(c *keylight.Client) (keylight.LightState, error) { return c.TurnOff(ctx) },
			keylight.LightState{On: false, Brightness: 30, Temperature: 220}},
		{"toggle", func(c *keylight.Client) (keylight.LightState, error) { return c.Toggle(ctx) },
			keylight.LightState{On: true, Brightness: 30, Temperature: 220}},
		{"set brightness", func(c *keylight.Client) (keylight.LightState, error) { return c.SetBrightness(ctx, 80) },
			keylight.LightState{On: false, Brightness: 80, Temperature: 220}},
		{"adjust brightness up", func(c *keylight.Client) (keylight.LightState, error) { return c.AdjustBrightness(ctx, 10) },
			keylight.LightState{On: false, Brightness: 40, Temperature: 220}},
		{"adjust brightness clamps", func(c *keylight.Client) (keylight.LightState, error) { return c.AdjustBrightness(ctx, -50) },
			keylight.LightState{On: false, Brightness: 0, Temperature: 220}},
		{"set temperature", func(c *keylight.Client) (keylight.LightState, error) { return c.SetTemperature(ctx, 400) },
			keylight.LightState{On: false, Brightness: 30, Temperature: 344}},
		{"update with values", func(c *keylight.Client) (keylight.LightState, error) {
			return c.Update(ctx, keylight.StatePatch{On: lo.ToPtr(true), Brightness: lo.ToPtr(60)})
		}, keylight.LightState{On: true, Brightness: 60, Temperature: 220}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, srv := newClient(t, initial)
			got, err := tt.call(c)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want, srv.State())
			assert.Equal(t, 1, srv.Gets())
		})
	}
}

func TestUpdateEmptyPatchOnlyReads(t *testing.T) {
	c, srv := newClient(t, keylight.LightState{On: true, Brightness: 10, Temperature: 300})

	state, err := c.Update(context.Background(), keylight.StatePatch{})
	require.NoError(t, err)
	assert.Equal(t, keylight.LightState{On: true, Brightness: 10, Temperature: 300}, state)
	assert.Empty(t, srv.Puts())
}

func TestIdentifyAndInfo(t *testing.T) {
	c, srv := newClient(t, keylight.DefaultState())
	srv.SetInfo(keylight.DeviceInfo{ProductName: "Elgato Key Light Air", DisplayName: "Left", SerialNumber: "CW123"})

	require.NoError(t, c.Identify(context.Background()))
	assert.Equal(t, 1, srv.Identifies())

	info, err := c.GetInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Elgato Key Light Air", info.ProductName)
	assert.Equal(t, "CW123", info.SerialNumber)
	assert.Equal(t, "Left", info.Label())
}

func TestUnreachable(t *testing.T) {
	t.Run("non-2xx status", func(t *testing.T) {
		c, srv := newClient(t, keylight.DefaultState())
		srv.SetDown(true)

		_, err := c.GetState(context.Background())
		require.Error(t, err)
		assert.True(t, errors.IsUnreachable(err))

		_, err = c.TurnOn(context.Background())
		assert.True(t, errors.IsUnreachable(err))
		assert.Empty(t, srv.Puts())
	})

	t.Run("connection refused", func(t *testing.T) {
		srv := keylighttest.NewServer(t, keylight.DefaultState())
		cfg := srv.LightConfig("gone")
		srv.Close()

		c := keylight.NewClient(cfg, testLogger())
		defer c.Close()
		err := c.Identify(context.Background())
		assert.True(t, errors.IsUnreachable(err))
	})

	t.Run("timeout", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer srv.Close()

		c := keylight.NewClient(lightConfigFor(t, srv, "slow"), testLogger(), keylight.WithTimeout(20*time.Millisecond))
		defer c.Close()
		_, err := c.GetState(context.Background())
		assert.True(t, errors.IsUnreachable(err))
	})

	t.Run("malformed body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"lights":`))
		}))
		defer srv.Close()

		c := keylight.NewClient(lightConfigFor(t, srv, "broken"), testLogger())
		defer c.Close()
		_, err := c.GetState(context.Background())
		assert.True(t, errors.IsUnreachable(err))
	})

	t.Run("cancelled context", func(t *testing.T) {
		c, _ := newClient(t, keylight.DefaultState())
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := c.GetInfo(ctx)
		assert.True(t, errors.IsUnreachable(err))
	})
}

type countingTransport struct {
	http.RoundTripper
	closes int
}

func (t *countingTransport) CloseIdleConnections() {
	t.closes++
}

func TestSuppliedHTTPClientIsNotModified(t *testing.T) {
	srv := keylighttest.NewServer(t, keylight.DefaultState())
	transport := &countingTransport{RoundTripper: http.DefaultTransport}
	shared := &http.Client{Timeout: time.Minute, Transport: transport}

	c := keylight.NewClient(srv.LightConfig("desk"), testLogger(),
		keylight.WithHTTPClient(shared), keylight.WithTimeout(time.Second))
	_, err := c.GetState(context.Background())
	require.NoError(t, err)
	c.Close()

	assert.Equal(t, time.Minute, shared.Timeout)
	assert.Zero(t, transport.closes)
}
