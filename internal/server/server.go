// Package server runs the elgatod daemon: the HTTP API, the WebSocket
// event stream and, when a broker is configured, the MQTT bridge.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"

	"github.com/butterflysky/elgato-keylight/internal/config"
	"github.com/butterflysky/elgato-keylight/internal/control"
	"github.com/butterflysky/elgato-keylight/internal/events"
	"github.com/butterflysky/elgato-keylight/internal/http/handlers"
	"github.com/butterflysky/elgato-keylight/internal/http/mw"
	"github.com/butterflysky/elgato-keylight/internal/http/routes"
	"github.com/butterflysky/elgato-keylight/internal/mqtt"
	"github.com/butterflysky/elgato-keylight/internal/ws"
)

const (
	readTimeout  = 15 * time.Second
	idleTimeout  = 60 * time.Second
	stopTimeout  = 5 * time.Second
	writeTimeout = 2 * time.Minute // effects answer once the lights are restored
)

// Server manages the elgatod daemon.
type Server struct {
	logger   *slog.Logger
	settings *config.Settings
	lights   control.Service
	eventBus *events.Bus

	router http.Handler
	hub    *ws.Hub

	listener   net.Listener
	httpServer *http.Server
	mqttClient *mqtt.Client

	wg         sync.WaitGroup
	rootCtx    context.Context
	rootCancel context.CancelFunc
}

// New creates a server for svc. bus must be the bus svc publishes to; it
// feeds the WebSocket hub and the MQTT bridge.
func New(logger *slog.Logger, settings *config.Settings, svc control.Service, bus *events.Bus, info handlers.VersionInfo) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	rootCtx, rootCancel := context.WithCancel(context.Background())

	s := &Server{
		logger:     logger,
		settings:   settings,
		lights:     svc,
		eventBus:   bus,
		hub:        ws.NewHub(logger, bus),
		rootCtx:    rootCtx,
		rootCancel: rootCancel,
	}
	s.router = s.newRouter(info)
	return s
}

func (s *Server) newRouter(info handlers.VersionInfo) http.Handler {
	router := chi.NewRouter()
	router.Use(mw.RequestLogging(s.logger))
	router.Use(mw.RateLimitByIP(mw.RateLimitConfig{RequestsPerMinute: s.settings.Server.RateLimit}))

	api := humachi.New(router, routes.NewHumaConfig(info.Version, ""))
	routes.Register(api, &routes.Handlers{
		HealthCheck:  handlers.HealthCheck,
		VersionCheck: handlers.VersionCheck(info),
		Light:        &handlers.LightHandler{Lights: s.lights, Logger: s.logger},
		Preset:       &handlers.PresetHandler{Lights: s.lights, Logger: s.logger},
		Mood:         &handlers.MoodHandler{Lights: s.lights, Logger: s.logger},
		Effect:       &handlers.EffectHandler{Lights: s.lights, Logger: s.logger},
		Logging:      &handlers.LoggingHandler{Logger: s.logger},
	})

	// The WebSocket endpoint is a raw route: Huma can't describe an upgrade.
	router.Get("/api/v1/ws", ws.Handler(s.hub, s.logger))
	return router
}

// Handler is the HTTP API, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr is the address the HTTP API listens on, nil before Start.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Start runs the WebSocket hub, the HTTP API and the MQTT bridge in the
// background. A listen or broker connection failure is returned.
func (s *Server) Start() error {
	s.logger.Info("Starting elgatod server")

	s.goSafe("WebSocket hub", func() { s.hub.Run(s.rootCtx) })

	listener, err := net.Listen("tcp", s.settings.Server.Listen)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.settings.Server.Listen, err)
	}
	s.listener = listener
	s.logger.Info("Starting HTTP API server", "address", listener.Addr().String())

	s.httpServer = &http.Server{
		Handler:      s.router,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}
	s.goSafe("HTTP server", func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server failed", "error", err)
		}
		s.logger.Info("HTTP server stopped")
	})

	if s.settings.MQTT.Enabled() {
		if err := s.startBridge(); err != nil {
			return err
		}
	}
	return nil
}

func (s *Server) startBridge() error {
	client, err := mqtt.Connect(mqtt.OptionsFromConfig(s.settings.MQTT, s.logger))
	if err != nil {
		return fmt.Errorf("MQTT broker %s: %w", s.settings.MQTT.Broker, err)
	}
	s.mqttClient = client

	bridge := mqtt.NewBridge(client, s.lights, s.eventBus, s.settings.MQTT, s.logger)
	s.goSafe("MQTT bridge", func() {
		if err := bridge.Run(s.rootCtx); err != nil {
			s.logger.Error("MQTT bridge failed", "error", err)
		}
	})
	return nil
}

// goSafe runs fn in a tracked goroutine, logging panics.
func (s *Server) goSafe(name string, fn func()) {
	s.wg.Go(func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("panic in "+name, "recover", r)
			}
		}()
		fn()
	})
}

// Stop gracefully shuts down the server.
func (s *Server) Stop() {
	s.logger.Info("Shutting down elgatod server")
	s.rootCancel()

	if s.httpServer != nil {
		s.logger.Info("Shutting down HTTP server")
		ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("HTTP server shutdown failed", "error", err)
		}
	} else if s.listener != nil {
		s.listener.Close()
	}

	s.logger.Info("Waiting for services to stop...")
	s.wg.Wait()

	if s.mqttClient != nil {
		s.mqttClient.Close()
	}
	s.logger.Info("elgatod server shut down gracefully")
}
