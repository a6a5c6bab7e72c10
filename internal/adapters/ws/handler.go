package ws

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/okian/sideout/pkg/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Single-scorer deployments front this with their own origin policy.
	CheckOrigin: func(_ *http.Request) bool { return true },
}

// Handler upgrades subscription requests and attaches clients to the hub.
type Handler struct {
	hub *Hub
}

// NewHandler creates a websocket handler for the hub.
func NewHandler(hub *Hub) *Handler {
	return &Handler{hub: hub}
}

// Subscribe handles GET /matches/{id}/ws: upgrades the connection and
// streams snapshots for that match until the peer disconnects.
func (h *Handler) Subscribe(w http.ResponseWriter, r *http.Request, matchID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Get().Named("ws").Warn(r.Context(), "upgrade failed", logger.Error(err))
		return
	}

	c := NewClient(uuid.NewString(), matchID, conn, h.hub)
	h.hub.Register(c)

	// The request context ends when this handler returns; the pumps live
	// for the connection's lifetime.
	go c.WritePump(context.Background())
	go c.ReadPump(context.Background())
}
