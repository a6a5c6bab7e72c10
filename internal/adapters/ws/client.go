package ws

import (
	"context"
	"time"

	"github.com/gorilla/websocket"

	"github.com/okian/sideout/pkg/logger"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait).
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer. Subscribers only listen.
	maxMessageSize = 512

	// Buffer size for outbound snapshots.
	sendBufferSize = 64
)

// Client represents one websocket subscriber, bound to a single match.
type Client struct {
	ID      string
	MatchID string
	Send    chan Snapshot

	conn   *websocket.Conn
	hub    Unregisterer
	logger logger.Logger
}

// Unregisterer is the hub surface a client needs on disconnect.
type Unregisterer interface {
	Unregister(c *Client)
}

// NewClient creates a client for an upgraded connection.
func NewClient(id, matchID string, conn *websocket.Conn, hub Unregisterer) *Client {
	return &Client{
		ID:      id,
		MatchID: matchID,
		Send:    make(chan Snapshot, sendBufferSize),
		conn:    conn,
		hub:     hub,
		logger:  logger.Get().Named("ws-client"),
	}
}

// ReadPump drains the connection to process control frames and detect
// disconnects. Subscribers send no application messages.
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn(ctx, "unexpected close",
					logger.String("clientID", c.ID),
					logger.Error(err),
				)
			}
			return
		}
	}
}

// WritePump pushes queued snapshots and pings to the peer.
func (c *Client) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-c.Send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(snap); err != nil {
				c.logger.Warn(ctx, "write failed",
					logger.String("clientID", c.ID),
					logger.Error(err),
				)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
