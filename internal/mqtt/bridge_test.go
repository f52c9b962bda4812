package mqtt

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/butterflysky/elgato-keylight/internal/config"
	"github.com/butterflysky/elgato-keylight/internal/control/controltest"
	kerrors "github.com/butterflysky/elgato-keylight/internal/errors"
	"github.com/butterflysky/elgato-keylight/pkg/keylight"
)

type published struct {
	topic    string
	payload  []byte
	retained bool
}

// fakeConn records publishes and hands subscriptions back to the test.
type fakeConn struct {
	mu        sync.Mutex
	published []published
	handlers  map[string]MessageHandler
}

func newFakeConn() *fakeConn {
	return &fakeConn{handlers: make(map[string]MessageHandler)}
}

func (f *fakeConn) Publish(topic string, payload []byte, _ byte, retained bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, published{topic, payload, retained})
	return nil
}

func (f *fakeConn) Subscribe(topic string, _ byte, handler MessageHandler) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[topic] = handler
	return nil
}

func (f *fakeConn) handler(topic string) MessageHandler {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.handlers[topic]
}

// lastState returns the most recent retained state published for topic.
func (f *fakeConn) lastState(topic string) (StatePayload, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.published) - 1; i >= 0; i-- {
		p := f.published[i]
		if p.topic == topic && p.retained {
			var s StatePayload
			if err := json.Unmarshal(p.payload, &s); err != nil {
				return StatePayload{}, false
			}
			return s, true
		}
	}
	return StatePayload{}, false
}

func (f *fakeConn) count(topic string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, p := range f.published {
		if p.topic == topic {
			n++
		}
	}
	return n
}

func startBridge(t *testing.T, f *controltest.Fixture, first string) (*fakeConn, *Bridge) {
	t.Helper()
	conn := newFakeConn()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	b := NewBridge(conn, f.Controller, f.Bus, config.MQTTConfig{TopicPrefix: "elgato", QoS: 1, PollInterval: time.Hour}, logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-done)
	})

	require.Eventually(t, func() bool {
		_, ok := conn.lastState(b.Topics().State(first))
		return ok
	}, 2*time.Second, 10*time.Millisecond, "initial state not published")
	return conn, b
}

func TestBridge_PublishesInitialState(t *testing.T) {
	f := controltest.New(t, "left", "right")
	f.Light("right").SetDown(true)
	conn, b := startBridge(t, f, "left")

	require.Eventually(t, func() bool {
		_, ok := conn.lastState(b.Topics().State("right"))
		return ok
	}, 2*time.Second, 10*time.Millisecond)

	left, _ := conn.lastState(b.Topics().State("left"))
	assert.Equal(t, NewStatePayload(keylight.LightState{On: true, Brightness: 50, Temperature: 200}), left)

	right, _ := conn.lastState(b.Topics().State("right"))
	assert.False(t, right.Reachable)
	assert.NotEmpty(t, right.Error)
	assert.Zero(t, f.Light("left").InfoGets())
}

func TestBridge_SetCommand(t *testing.T) {
	f := controltest.New(t, "left", "right")
	conn, b := startBridge(t, f, "left")

	h := conn.handler(b.Topics().AllSet())
	require.NotNil(t, h)

	require.NoError(t, h(b.Topics().Set("left"), []byte(`{"brightness":20}`)))
	assert.Equal(t, keylight.LightState{On: true, Brightness: 20, Temperature: 200}, f.Light("left").State())
	assert.Equal(t, 50, f.Light("right").State().Brightness)

	require.Eventually(t, func() bool {
		s, _ := conn.lastState(b.Topics().State("left"))
		return s.Brightness == 20
	}, 2*time.Second, 10*time.Millisecond)
	assert.Positive(t, conn.count(b.Topics().Event()))

	require.NoError(t, h(b.Topics().Set("all"), []byte("OFF")))
	assert.False(t, f.Light("left").State().On)
	assert.False(t, f.Light("right").State().On)

	require.NoError(t, h(b.Topics().Set("right"), []byte("TOGGLE")))
	assert.True(t, f.Light("right").State().On)

	err := h(b.Topics().Set("left"), []byte("DIM"))
	assert.True(t, kerrors.IsInvalidInput(err))

	err = h(b.Topics().Set("nobody"), []byte("ON"))
	assert.True(t, kerrors.IsNotFound(err))
}

func TestBridge_PresetMoodEffect(t *testing.T) {
	f := controltest.New(t, "left")
	conn, b := startBridge(t, f, "left")

	preset := conn.handler(b.Topics().PresetApply())
	require.NoError(t, preset("", []byte("bright")))
	assert.Equal(t, 100, f.Light("left").State().Brightness)
	assert.True(t, kerrors.IsUnknownPreset(preset("", []byte("disco"))))

	mood := conn.handler(b.Topics().MoodSet())
	require.NoError(t, mood("", []byte(`{"mood":"relax","lights":["left"]}`)))
	assert.Equal(t, keylight.LightState{On: true, Brightness: 30, Temperature: 280}, f.Light("left").State())

	require.Eventually(t, func() bool {
		s, _ := conn.lastState(b.Topics().State("left"))
		return s.Brightness == 30 && s.Temperature == 280
	}, 2*time.Second, 10*time.Millisecond, "mood state not republished")

	effect := conn.handler(b.Topics().EffectRun())
	require.NoError(t, effect("", []byte(`{"effect":"alert","flashes":2}`)))
	assert.Equal(t, keylight.LightState{On: true, Brightness: 30, Temperature: 280}, f.Light("left").State())
	assert.True(t, kerrors.IsUnknownEffect(effect("", []byte("disco"))))
}
