// Package keylighttest provides an in-memory Key Light for tests.
package keylighttest

import (
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/butterflysky/elgato-keylight/pkg/keylight"
)

type wireLight struct {
	On          int `json:"on"`
	Brightness  int `json:"brightness"`
	Temperature int `json:"temperature"`
}

type wireLights struct {
	NumberOfLights int         `json:"numberOfLights"`
	Lights         []wireLight `json:"lights"`
}

// Server is a fake light. It serves GET/PUT /elgato/lights,
// POST /elgato/lights/identify and GET /elgato/accessory-info, and records
// every state written to it.
type Server struct {
	*httptest.Server

	mu         sync.Mutex
	state      keylight.LightState
	info       keylight.DeviceInfo
	puts       []keylight.LightState
	gets       int
	infoGets   int
	identifies int
	failAfter  int
	down       bool
	noEcho     bool
}

// NewServer starts a fake light in the given state; it is closed when the
// test ends.
func NewServer(t testing.TB, initial keylight.LightState) *Server {
	t.Helper()
	s := &Server{
		state:     initial,
		failAfter: -1,
		info: keylight.DeviceInfo{
			ProductName:         "Elgato Key Light",
			HardwareBoardType:   53,
			FirmwareBuildNumber: 218,
			FirmwareVersion:     "1.0.3",
			SerialNumber:        "BW33J1A02740",
			Features:            []string{"lights"},
		},
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// LightConfig returns a LightConfig pointing at the fake light.
func (s *Server) LightConfig(name string) keylight.LightConfig {
	host, portStr, _ := net.SplitHostPort(s.Listener.Addr().String())
	port, _ := strconv.Atoi(portStr)
	return keylight.LightConfig{Name: name, Host: host, Port: port}
}

// State returns the light's current state.
func (s *Server) State() keylight.LightState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SetState replaces the light's state without recording a write.
func (s *Server) SetState(state keylight.LightState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}

// SetInfo replaces the accessory info.
func (s *Server) SetInfo(info keylight.DeviceInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.info = info
}

// Puts returns every state written, in order.
func (s *Server) Puts() []keylight.LightState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]keylight.LightState(nil), s.puts...)
}

// Gets is the number of state reads served.
func (s *Server) Gets() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gets
}

// InfoGets is the number of accessory info reads served.
func (s *Server) InfoGets() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.infoGets
}

// Identifies is the number of identify requests served.
func (s *Server) Identifies() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identifies
}

// FailPutsAfter makes every write after the first n fail with a 500.
// A negative n disables the failure.
func (s *Server) FailPutsAfter(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failAfter = n
}

// SetDown makes every request fail with a 503.
func (s *Server) SetDown(down bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.down = down
}

// SetNoEcho makes writes answer with an empty body.
func (s *Server) SetNoEcho(noEcho bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.noEcho = noEcho
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.down {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
		return
	}

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/elgato/lights":
		s.gets++
		writeJSON(w, s.wire())
	case r.Method == http.MethodPut && r.URL.Path == "/elgato/lights":
		var body wireLights
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || len(body.Lights) == 0 {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		if s.failAfter >= 0 && len(s.puts) >= s.failAfter {
			http.Error(w, "write failed", http.StatusInternalServerError)
			return
		}
		l := body.Lights[0]
		s.state = keylight.LightState{On: l.On != 0, Brightness: l.Brightness, Temperature: l.Temperature}
		s.puts = append(s.puts, s.state)
		if s.noEcho {
			w.WriteHeader(http.StatusOK)
			return
		}
		writeJSON(w, s.wire())
	case r.Method == http.MethodPost && r.URL.Path == "/elgato/lights/identify":
		s.identifies++
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodGet && r.URL.Path == "/elgato/accessory-info":
		s.infoGets++
		writeJSON(w, s.info)
	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

func (s *Server) wire() wireLights {
	on := 0
	if s.state.On {
		on = 1
	}
	return wireLights{
		NumberOfLights: 1,
		Lights:         []wireLight{{On: on, Brightness: s.state.Brightness, Temperature: s.state.Temperature}},
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
