package realtime

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeConn struct {
	events []Event
	failed bool
	closed bool
}

func (c *fakeConn) WriteJSON(v interface{}) error {
	if c.failed {
		return errors.New("connection reset")
	}
	c.events = append(c.events, v.(Event))
	return nil
}

func (c *fakeConn) Close() error {
	c.closed = true
	return nil
}

func TestBroadcastReachesOnlyRecipients(t *testing.T) {
	hub := NewHub(zap.NewNop())
	alice := &fakeConn{}
	bob := &fakeConn{}
	hub.Connect(1, alice)
	hub.Connect(2, bob)

	hub.Broadcast([]uint64{1}, Event{Type: "notification", Payload: "hello"})

	assert.Len(t, alice.events, 1)
	assert.Equal(t, "notification", alice.events[0].Type)
	assert.Empty(t, bob.events)
}

func TestBroadcastToAllConnectionsOfUser(t *testing.T) {
	hub := NewHub(zap.NewNop())
	tab1 := &fakeConn{}
	tab2 := &fakeConn{}
	hub.Connect(1, tab1)
	hub.Connect(1, tab2)

	hub.Broadcast([]uint64{1}, Event{Type: "task_update"})

	assert.Len(t, tab1.events, 1)
	assert.Len(t, tab2.events, 1)
}

func TestBroadcastDropsDeadConnections(t *testing.T) {
	hub := NewHub(zap.NewNop())
	dead := &fakeConn{failed: true}
	live := &fakeConn{}
	hub.Connect(1, dead)
	hub.Connect(1, live)

	hub.Broadcast([]uint64{1}, Event{Type: "ping"})

	assert.True(t, dead.closed)
	assert.Len(t, live.events, 1)

	hub.Broadcast([]uint64{1}, Event{Type: "ping"})
	assert.Len(t, live.events, 2)
}

func TestDisconnectRemovesConnection(t *testing.T) {
	hub := NewHub(zap.NewNop())
	conn := &fakeConn{}
	hub.Connect(1, conn)
	assert.Equal(t, 1, hub.ConnectedUsers())

	hub.Disconnect(1, conn)
	assert.True(t, conn.closed)
	assert.Equal(t, 0, hub.ConnectedUsers())

	hub.Broadcast([]uint64{1}, Event{Type: "ping"})
	assert.Empty(t, conn.events)
}
