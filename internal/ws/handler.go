package ws

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// LAN-local API without auth
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler upgrades requests to WebSocket connections served by hub. The
// types query parameter limits the events sent.
func Handler(hub *Hub, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := ParseFilter(r.URL.Query()[TypesParam])

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade has already written the error response
			logger.Debug("ws: upgrade failed", "error", err, "remote_addr", r.RemoteAddr)
			return
		}
		hub.Serve(conn, filter)
	}
}
