// Package realtime fans events out to connected clients. The hub tracks
// live connections per user; delivery is best-effort, with the
// notification outbox as the durable record.
package realtime

import (
	"sync"

	"go.uber.org/zap"
)

// Conn is one client connection. Satisfied by websocket and SSE
// transports alike.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// Event is the envelope pushed to clients.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Hub routes events to the connections of their recipient users.
type Hub struct {
	mu     sync.RWMutex
	conns  map[uint64][]Conn
	logger *zap.Logger
}

// NewHub creates an empty hub
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		conns:  make(map[uint64][]Conn),
		logger: logger,
	}
}

// Connect registers a connection for the user. One user may hold several
// connections (multiple tabs or devices).
func (h *Hub) Connect(userID uint64, conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[userID] = append(h.conns[userID], conn)
}

// Disconnect removes the connection and closes it
func (h *Hub) Disconnect(userID uint64, conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	remaining := h.conns[userID][:0]
	for _, c := range h.conns[userID] {
		if c != conn {
			remaining = append(remaining, c)
		}
	}
	if len(remaining) == 0 {
		delete(h.conns, userID)
	} else {
		h.conns[userID] = remaining
	}
	conn.Close()
}

// Broadcast pushes the event to every live connection of the recipients.
// Dead connections are dropped; a failed write never propagates an error
// to the caller.
func (h *Hub) Broadcast(userIDs []uint64, event Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, userID := range userIDs {
		conns := h.conns[userID]
		if len(conns) == 0 {
			continue
		}

		alive := conns[:0]
		for _, conn := range conns {
			if err := conn.WriteJSON(event); err != nil {
				h.logger.Debug("dropping dead connection",
					zap.Uint64("user_id", userID),
					zap.Error(err))
				conn.Close()
				continue
			}
			alive = append(alive, conn)
		}
		if len(alive) == 0 {
			delete(h.conns, userID)
		} else {
			h.conns[userID] = alive
		}
	}
}

// ConnectedUsers returns how many users currently hold at least one
// connection
func (h *Hub) ConnectedUsers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}
