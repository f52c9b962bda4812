package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/butterflysky/elgato-keylight/internal/config"
	"github.com/butterflysky/elgato-keylight/internal/control/controltest"
	"github.com/butterflysky/elgato-keylight/internal/events"
	"github.com/butterflysky/elgato-keylight/internal/http/handlers"
	"github.com/butterflysky/elgato-keylight/internal/http/mw"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func testSettings() *config.Settings {
	return &config.Settings{
		Server: config.ServerConfig{Listen: "127.0.0.1:0"},
		MQTT:   config.MQTTConfig{TopicPrefix: "elgato", ClientID: "elgatod-test"},
	}
}

func startServer(t *testing.T, f *controltest.Fixture) (*Server, string) {
	t.Helper()
	srv := New(testLogger(), testSettings(), f.Controller, f.Bus, handlers.VersionInfo{Version: "1.0.0"})
	require.NoError(t, srv.Start())
	t.Cleanup(srv.Stop)
	return srv, "http://" + srv.Addr().String()
}

func TestServer_StartStop(t *testing.T) {
	f := controltest.New(t, "left")
	srv := New(testLogger(), testSettings(), f.Controller, f.Bus, handlers.VersionInfo{Version: "1.0.0"})
	assert.Nil(t, srv.Addr())

	require.NoError(t, srv.Start())
	require.NotNil(t, srv.Addr())

	resp, err := http.Get("http://" + srv.Addr().String() + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(mw.RequestIDHeader))

	done := make(chan struct{})
	go func() {
		srv.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("Stop did not return")
	}
}

func TestServer_ListenError(t *testing.T) {
	f := controltest.New(t, "left")
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer busy.Close()

	settings := testSettings()
	settings.Server.Listen = busy.Addr().String()
	srv := New(testLogger(), settings, f.Controller, f.Bus, handlers.VersionInfo{})
	err = srv.Start()
	srv.Stop()
	assert.Error(t, err)
}

func TestServer_MQTTBrokerDown(t *testing.T) {
	f := controltest.New(t, "left")
	settings := testSettings()
	settings.MQTT.Broker = "tcp://127.0.0.1:1"
	srv := New(testLogger(), settings, f.Controller, f.Bus, handlers.VersionInfo{})
	err := srv.Start()
	srv.Stop()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MQTT broker")
}

func TestServer_API(t *testing.T) {
	f := controltest.New(t, "left", "right")
	_, base := startServer(t, f)

	resp, err := http.Get(base + "/api/v1/lights")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var lights []handlers.LightResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&lights))
	require.Len(t, lights, 2)
	assert.Equal(t, "left", lights[0].Name)
	assert.Equal(t, "right", lights[1].Name)

	resp, err = http.Post(base+"/api/v1/presets/webcam/apply", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 18, f.Light("right").State().Brightness)
	assert.Equal(t, 46, f.Light("left").State().Brightness)

	resp, err = http.Get(base + "/api/v1/version")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `"version":"1.0.0"`)

	resp, err = http.Get(base + "/openapi.json")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_WebSocketEvents(t *testing.T) {
	f := controltest.New(t, "left")
	_, base := startServer(t, f)

	url := "ws" + strings.TrimPrefix(base, "http") + "/api/v1/ws?types=light.state_changed"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	// Give the hub a moment to register the client.
	time.Sleep(50 * time.Millisecond)

	resp, err := http.Post(base+"/api/v1/lights/left/state", "application/json", strings.NewReader(`{"brightness":30}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var evt events.Event
	require.NoError(t, json.Unmarshal(msg, &evt))
	assert.Equal(t, events.LightStateChanged, evt.Type)

	var payload events.LightPayload
	require.NoError(t, evt.Decode(&payload))
	assert.Equal(t, "left", payload.Light)
	require.NotNil(t, payload.State)
	assert.Equal(t, 30, payload.State.Brightness)
}
