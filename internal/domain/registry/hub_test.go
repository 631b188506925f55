package registry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/talkbase/chat-service/internal/domain/event"
	"github.com/talkbase/chat-service/internal/domain/model"
)

func newTestHub(t *testing.T, opts ...Option) *Hub {
	t.Helper()
	h := NewHub(opts...)
	t.Cleanup(h.Shutdown)
	return h
}

func attach(t *testing.T, h *Hub, userID int64) Connector {
	t.Helper()
	conn := NewConnector(context.Background(), userID, 16)
	h.Register(conn)
	return conn
}

func recvOne(t *testing.T, conn Connector) event.Eventer {
	t.Helper()
	select {
	case ev, ok := <-conn.Recv():
		require.True(t, ok)
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("no event delivered")
		return nil
	}
}

func TestHub_Broadcast_Reaches_Registered_Connector(t *testing.T) {
	req := require.New(t)
	h := newTestHub(t)
	conn := attach(t, h, 42)

	req.True(h.IsConnected(42))

	msg := &model.Message{ID: 1, ChatID: 7, SenderID: 1, Text: "hi", CreatedAt: time.Now()}
	req.True(h.Broadcast(event.NewMessageEvent(msg, 42, "alice")))

	got := recvOne(t, conn)
	req.Equal(event.MessageCreated, got.GetKind())
	req.EqualValues(42, got.GetUserID())
}

func TestHub_Broadcast_Misses_Unknown_User(t *testing.T) {
	req := require.New(t)
	h := newTestHub(t)

	msg := &model.Message{ID: 1, ChatID: 7, SenderID: 1, Text: "hi", CreatedAt: time.Now()}
	req.False(h.Broadcast(event.NewMessageEvent(msg, 99, "alice")))
}

func TestHub_Multi_Session_Fan_Out(t *testing.T) {
	req := require.New(t)
	h := newTestHub(t)
	phone := attach(t, h, 42)
	laptop := attach(t, h, 42)

	msg := &model.Message{ID: 1, ChatID: 7, SenderID: 1, Text: "hi", CreatedAt: time.Now()}
	req.True(h.Broadcast(event.NewMessageEvent(msg, 42, "alice")))

	// Every device of the user receives the event.
	req.NotNil(recvOne(t, phone))
	req.NotNil(recvOne(t, laptop))
}

func TestHub_Unregister_Closes_Connector(t *testing.T) {
	req := require.New(t)
	h := newTestHub(t)
	conn := attach(t, h, 42)
	recvCh := conn.Recv()

	h.Unregister(42, conn.GetID())

	req.False(h.IsConnected(42))
	select {
	case _, ok := <-recvCh:
		req.False(ok, "channel should be closed, not carrying events")
	case <-time.After(2 * time.Second):
		t.Fatal("connector channel not closed")
	}
}

func TestHub_Unregister_Keeps_Cell_While_Sessions_Remain(t *testing.T) {
	req := require.New(t)
	h := newTestHub(t)
	phone := attach(t, h, 42)
	laptop := attach(t, h, 42)

	h.Unregister(42, phone.GetID())
	req.True(h.IsConnected(42))

	h.Unregister(42, laptop.GetID())
	req.False(h.IsConnected(42))
}

func TestHub_Stats(t *testing.T) {
	req := require.New(t)
	h := newTestHub(t)
	attach(t, h, 1)
	attach(t, h, 1)
	attach(t, h, 2)

	stats := h.Stats()
	req.Equal(2, stats.TotalUsers)
	req.Equal(3, stats.TotalConnections)
	req.GreaterOrEqual(stats.Uptime, time.Duration(0))
}

func TestCell_Push_Overflow_Returns_False(t *testing.T) {
	req := require.New(t)
	cell := NewCell(42, 1)
	cell.Stop() // freeze the drain loop so the mailbox stays full
	time.Sleep(20 * time.Millisecond)

	msg := &model.Message{ID: 1, ChatID: 7, SenderID: 1, Text: "hi", CreatedAt: time.Now()}
	req.True(cell.Push(event.NewMessageEvent(msg, 42, "alice")))
	req.False(cell.Push(event.NewMessageEvent(msg, 42, "alice")))
}

func TestHub_Janitor_Evicts_Idle_Cells(t *testing.T) {
	req := require.New(t)
	h := newTestHub(t,
		WithIdleTimeout(10*time.Millisecond),
		WithEvictionInterval(10*time.Millisecond),
	)
	conn := attach(t, h, 42)

	// Detach the only session without unregistering the cell.
	h.Unregister(42, conn.GetID())
	req.False(h.IsConnected(42))

	// A cell abandoned by a broken transport is reclaimed too.
	orphan := attach(t, h, 43)
	orphanCell, ok := h.cells.Load(int64(43))
	req.True(ok)
	orphanCell.(Celler).Detach(orphan.GetID())

	req.Eventually(func() bool {
		return !h.IsConnected(43)
	}, 2*time.Second, 20*time.Millisecond)
}
