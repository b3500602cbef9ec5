// Package telemetry serves a websocket endpoint that broadcasts the
// publisher's byte count and ready state to connected observers, so a
// dashboard can watch a publish session without polling the process.
package telemetry

import (
	"encoding/json"
	"net"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Status is one broadcast snapshot.
type Status struct {
	SessionID  string `json:"session_id"`
	BytesSent  int64  `json:"bytes_sent"`
	ReadyState string `json:"ready_state"`
}

// Hub accepts websocket connections and broadcasts every Status published
// to it to all of them.
type Hub struct {
	logger   *zap.SugaredLogger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

// NewHub returns an empty Hub. CheckOrigin is left permissive: this
// endpoint carries no credentials, only publish telemetry.
func NewHub(logger *zap.SugaredLogger) *Hub {
	return &Hub{
		logger:  logger,
		clients: make(map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// ServeHTTP upgrades the request to a websocket and registers the
// connection to receive future Broadcast calls until it disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warnw("telemetry: websocket upgrade failed", "error", err)
		return
	}

	h.mu.Lock()
	h.clients[conn] = struct{}{}
	h.mu.Unlock()

	// Drain and discard whatever the client sends; this endpoint is
	// broadcast-only, but the read is needed to notice a closed socket.
	go func() {
		defer h.remove(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
	conn.Close()
}

// Broadcast sends status as JSON to every connected client in turn,
// dropping any whose write fails. Writes carry no deadline, so a slow
// client holds up the broadcast until its write completes.
func (h *Hub) Broadcast(status Status) {
	payload, err := json.Marshal(status)
	if err != nil {
		h.logger.Errorw("telemetry: marshal status", "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			delete(h.clients, conn)
			conn.Close()
		}
	}
}

// ListenAndServe starts an HTTP server on addr exposing the hub at "/",
// returning once the listener is ready. Serving errors are logged, not
// returned, since telemetry is best-effort and must not block publishing.
func ListenAndServe(addr string, hub *Hub, logger *zap.SugaredLogger) (func() error, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	mux := http.NewServeMux()
	mux.Handle("/", hub)
	server := &http.Server{Handler: mux}

	go func() {
		if err := server.Serve(ln); err != nil && err != http.ErrServerClosed {
			logger.Errorw("telemetry server stopped", "error", err)
		}
	}()

	return server.Close, nil
}
