// Package ws streams bus events to WebSocket clients.
package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/butterflysky/elgato-keylight/internal/events"
)

// Hub fans bus events out to the connected clients. Delivery never blocks
// the publisher: a client whose buffer is full is disconnected.
type Hub struct {
	logger *slog.Logger
	unsub  func()

	mu      sync.Mutex
	clients map[*Client]struct{}
	closed  bool
}

// NewHub creates a Hub subscribed to bus.
func NewHub(logger *slog.Logger, bus *events.Bus) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Hub{
		logger:  logger,
		clients: make(map[*Client]struct{}),
	}
	h.unsub = bus.Subscribe(h.dispatch)
	return h
}

// Run blocks until ctx ends, then unsubscribes and disconnects every
// client.
func (h *Hub) Run(ctx context.Context) {
	h.logger.Info("ws: hub started")
	<-ctx.Done()
	h.unsub()

	h.mu.Lock()
	h.closed = true
	for c := range h.clients {
		h.dropLocked(c)
	}
	h.mu.Unlock()
	h.logger.Info("ws: hub stopped")
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Serve attaches conn as a client receiving the events that pass filter
// and starts its read and write loops.
func (h *Hub) Serve(conn *websocket.Conn, filter Filter) {
	c := h.newClient(conn, filter)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = conn.Close()
		return
	}
	h.clients[c] = struct{}{}
	count := len(h.clients)
	h.mu.Unlock()
	h.logger.Info("ws: client connected", "clients", count, "types", []string(filter))

	go c.writeLoop()
	go c.readLoop()
}

func (h *Hub) newClient(conn *websocket.Conn, filter Filter) *Client {
	return &Client{
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		filter: filter,
	}
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		h.dropLocked(c)
	}
	count := len(h.clients)
	h.mu.Unlock()
	if ok {
		h.logger.Info("ws: client disconnected", "clients", count)
	}
}

// dropLocked detaches c and closes its queue. Callers hold mu.
func (h *Hub) dropLocked(c *Client) {
	delete(h.clients, c)
	close(c.send)
}

func (h *Hub) dispatch(e events.Event) {
	var data []byte
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		if !c.filter.Match(e.Type) {
			continue
		}
		if data == nil {
			var err error
			if data, err = json.Marshal(e); err != nil {
				h.logger.Error("ws: failed to marshal event", "type", e.Type, "error", err)
				return
			}
		}
		select {
		case c.send <- data:
		default:
			h.logger.Warn("ws: client too slow, disconnecting", "type", e.Type)
			h.dropLocked(c)
		}
	}
}
