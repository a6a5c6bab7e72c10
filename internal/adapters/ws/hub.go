// Package ws broadcasts derived-state snapshots to websocket subscribers.
// Each accepted event re-emits the match snapshot; clients subscribe to a
// single match and receive every snapshot for it. Slow clients have
// messages dropped rather than blocking the scoring path.
package ws

import (
	"context"
	"sync"

	"github.com/okian/sideout/internal/domain/replay"
	"github.com/okian/sideout/pkg/logger"
	"github.com/okian/sideout/pkg/metrics"
)

const broadcastBuffer = 256

// Snapshot is one state update pushed to subscribers.
type Snapshot struct {
	MatchID string       `json:"match_id"`
	State   replay.State `json:"state"`
}

// Hub maintains the set of active clients and fans snapshots out to them.
type Hub struct {
	clients   map[*Client]bool
	clientsMu sync.RWMutex

	broadcast  chan Snapshot
	register   chan *Client
	unregister chan *Client

	logger logger.Logger
}

// NewHub creates a hub. Run must be started before clients connect.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan Snapshot, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger.Get().Named("ws-hub"),
	}
}

// Run starts the hub's main loop until ctx is canceled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.shutdown(ctx)
			return
		case c := <-h.register:
			h.registerClient(ctx, c)
		case c := <-h.unregister:
			h.unregisterClient(ctx, c)
		case snap := <-h.broadcast:
			h.broadcastSnapshot(snap)
		}
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(c *Client) {
	h.register <- c
}

// Unregister removes a client from the hub.
func (h *Hub) Unregister(c *Client) {
	h.unregister <- c
}

// Broadcast queues a snapshot for fan-out. Never blocks: a full buffer
// drops the snapshot, since a fresher one follows the next event.
func (h *Hub) Broadcast(matchID string, state replay.State) {
	select {
	case h.broadcast <- Snapshot{MatchID: matchID, State: state}:
	default:
		metrics.RecordWSMessageDropped()
	}
}

func (h *Hub) registerClient(ctx context.Context, c *Client) {
	h.clientsMu.Lock()
	h.clients[c] = true
	total := len(h.clients)
	h.clientsMu.Unlock()

	metrics.UpdateWSClients(total)
	h.logger.Info(ctx, "client connected",
		logger.String("clientID", c.ID),
		logger.String("matchID", c.MatchID),
		logger.Int("total", total),
	)
}

func (h *Hub) unregisterClient(ctx context.Context, c *Client) {
	h.clientsMu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.Send)
	}
	total := len(h.clients)
	h.clientsMu.Unlock()

	metrics.UpdateWSClients(total)
	h.logger.Info(ctx, "client disconnected",
		logger.String("clientID", c.ID),
		logger.Int("total", total),
	)
}

func (h *Hub) broadcastSnapshot(snap Snapshot) {
	h.clientsMu.RLock()
	targets := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		if c.MatchID == snap.MatchID {
			targets = append(targets, c)
		}
	}
	h.clientsMu.RUnlock()

	for _, c := range targets {
		select {
		case c.Send <- snap:
			metrics.RecordWSMessageSent()
		default:
			// Slow subscriber; drop rather than stall the hub.
			metrics.RecordWSMessageDropped()
		}
	}
}

func (h *Hub) shutdown(ctx context.Context) {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	for c := range h.clients {
		close(c.Send)
		delete(h.clients, c)
	}
	metrics.UpdateWSClients(0)
	h.logger.Info(ctx, "hub stopped")
}
