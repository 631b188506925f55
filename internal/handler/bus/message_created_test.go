package bus

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/talkbase/chat-service/internal/domain/event"
	"github.com/talkbase/chat-service/internal/domain/model"
	"github.com/talkbase/chat-service/internal/domain/registry"
	"github.com/talkbase/chat-service/internal/service/dto"
	"github.com/talkbase/chat-service/internal/session"
)

// brokenDirectory simulates a failing shared store for selected users.
type brokenDirectory struct {
	session.Directory
	brokenUsers map[int64]bool
}

func (d *brokenDirectory) ResolveConnections(ctx context.Context, userID int64) ([]uuid.UUID, error) {
	if d.brokenUsers[userID] {
		return nil, session.ErrDirectoryUnavailable
	}
	return d.Directory.ResolveConnections(ctx, userID)
}

func newCreatedMessage(t *testing.T, payload *dto.MessageCreated) *message.Message {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	return message.NewMessage(watermill.NewUUID(), data)
}

func TestOnMessageCreated_Pushes_To_Live_Subscribers_Only(t *testing.T) {
	req := require.New(t)
	hub := registry.NewHub()
	t.Cleanup(hub.Shutdown)
	directory := session.NewMemoryDirectory()
	h := NewMessageHandler(hub, directory, slog.New(slog.DiscardHandler))
	ctx := context.Background()

	// alice is online, bob is offline
	alice := registry.NewConnector(ctx, 1, 16)
	hub.Register(alice)
	req.NoError(directory.Bind(ctx, alice.GetID(), 1))

	msg := model.Message{ID: 9, ChatID: 7, SenderID: 1, Text: "hi", CreatedAt: time.Now()}
	req.NoError(h.OnMessageCreated(newCreatedMessage(t, &dto.MessageCreated{
		Message:     msg,
		SenderName:  "alice",
		Subscribers: []int64{1, 2},
	})))

	select {
	case ev, ok := <-alice.Recv():
		req.True(ok)
		me, isMsg := ev.(*event.MessageEvent)
		req.True(isMsg)
		req.Equal("alice", me.SenderName)
		req.Equal("hi", me.Message.Text)
		req.EqualValues(1, me.UserID)
	case <-time.After(2 * time.Second):
		t.Fatal("no event delivered to alice")
	}

	// Exactly one push: nothing else queued for alice
	select {
	case ev := <-alice.Recv():
		t.Fatalf("unexpected extra event: %v", ev.GetKind())
	case <-time.After(50 * time.Millisecond):
	}
}

func TestOnMessageCreated_Skips_On_Directory_Failure(t *testing.T) {
	req := require.New(t)
	hub := registry.NewHub()
	t.Cleanup(hub.Shutdown)

	memory := session.NewMemoryDirectory()
	directory := &brokenDirectory{Directory: memory, brokenUsers: map[int64]bool{2: true}}
	h := NewMessageHandler(hub, directory, slog.New(slog.DiscardHandler))
	ctx := context.Background()

	alice := registry.NewConnector(ctx, 1, 16)
	hub.Register(alice)
	req.NoError(memory.Bind(ctx, alice.GetID(), 1))

	bob := registry.NewConnector(ctx, 2, 16)
	hub.Register(bob)
	req.NoError(memory.Bind(ctx, bob.GetID(), 2))

	msg := model.Message{ID: 9, ChatID: 7, SenderID: 1, Text: "hi", CreatedAt: time.Now()}
	// The handler never fails: unreachable recipients are skipped.
	req.NoError(h.OnMessageCreated(newCreatedMessage(t, &dto.MessageCreated{
		Message:     msg,
		SenderName:  "alice",
		Subscribers: []int64{1, 2},
	})))

	select {
	case _, ok := <-alice.Recv():
		req.True(ok)
	case <-time.After(2 * time.Second):
		t.Fatal("alice should still receive hers")
	}

	select {
	case ev := <-bob.Recv():
		t.Fatalf("bob must be skipped, got %v", ev.GetKind())
	case <-time.After(50 * time.Millisecond):
	}
}

func TestOnMessageCreated_Drops_Undecodable_Payload(t *testing.T) {
	req := require.New(t)
	hub := registry.NewHub()
	t.Cleanup(hub.Shutdown)
	h := NewMessageHandler(hub, session.NewMemoryDirectory(), slog.New(slog.DiscardHandler))

	// ACK on garbage: the poison frame must never loop through redelivery.
	req.NoError(h.OnMessageCreated(message.NewMessage(watermill.NewUUID(), []byte("not json"))))
}
