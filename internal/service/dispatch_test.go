package service

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/talkbase/chat-service/internal/domain/model"
	"github.com/talkbase/chat-service/internal/service/dto"
)

type fakeSubscribers struct {
	subs map[int64][]int64
	err  error
}

func (f *fakeSubscribers) ResolveSubscribers(_ context.Context, chatID int64) ([]int64, error) {
	return f.subs[chatID], f.err
}

type fakeAppender struct {
	appended []*model.Message
	err      error
}

func (f *fakeAppender) AppendMessage(m *model.Message) error {
	if f.err != nil {
		return f.err
	}
	m.ID = int64(len(f.appended) + 1)
	f.appended = append(f.appended, m)
	return nil
}

type fakeProfiles struct {
	names map[int64]string
}

func (f *fakeProfiles) Username(_ context.Context, userID int64) (string, error) {
	name, ok := f.names[userID]
	if !ok {
		return "", errors.New("unknown user")
	}
	return name, nil
}

func (f *fakeProfiles) Invalidate(int64) {}

type fakePublisher struct {
	published []*dto.MessageCreated
	err       error
}

func (f *fakePublisher) PublishMessageCreated(_ context.Context, payload *dto.MessageCreated) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, payload)
	return nil
}

func newDispatchFixture() (*DispatchService, *fakeSubscribers, *fakeAppender, *fakePublisher) {
	subs := &fakeSubscribers{subs: map[int64][]int64{7: {1, 2, 3}}}
	store := &fakeAppender{}
	pub := &fakePublisher{}
	profiles := &fakeProfiles{names: map[int64]string{1: "alice", 2: "bob", 3: "carol"}}
	svc := NewDispatchService(subs, store, profiles, pub, slog.New(slog.DiscardHandler))
	return svc, subs, store, pub
}

func TestDispatch_Publishes_After_Persist(t *testing.T) {
	req := require.New(t)
	svc, _, store, pub := newDispatchFixture()

	req.NoError(svc.Dispatch(context.Background(), 1, 7, "hi"))

	req.Len(store.appended, 1)
	req.EqualValues(7, store.appended[0].ChatID)
	req.EqualValues(1, store.appended[0].SenderID)
	req.Equal("hi", store.appended[0].Text)

	req.Len(pub.published, 1)
	payload := pub.published[0]
	req.Equal("alice", payload.SenderName)
	req.Equal([]int64{1, 2, 3}, payload.Subscribers)
	// The published message carries the id assigned at persist time.
	req.Equal(store.appended[0].ID, payload.Message.ID)
}

func TestDispatch_Rejects_Non_Subscriber(t *testing.T) {
	req := require.New(t)
	svc, _, store, pub := newDispatchFixture()

	err := svc.Dispatch(context.Background(), 99, 7, "hi")
	req.ErrorIs(err, ErrNotSubscriber)

	// Nothing persisted, nothing published.
	req.Empty(store.appended)
	req.Empty(pub.published)
}

func TestDispatch_Unknown_Chat_Is_Non_Subscriber(t *testing.T) {
	req := require.New(t)
	svc, _, store, pub := newDispatchFixture()

	// Chat 404 resolves to an empty subscriber set.
	err := svc.Dispatch(context.Background(), 1, 404, "hi")
	req.ErrorIs(err, ErrNotSubscriber)
	req.Empty(store.appended)
	req.Empty(pub.published)
}

func TestDispatch_Persist_Failure_Blocks_Publish(t *testing.T) {
	req := require.New(t)
	svc, _, store, pub := newDispatchFixture()
	store.err = errors.New("disk full")

	err := svc.Dispatch(context.Background(), 1, 7, "hi")
	req.Error(err)
	req.Empty(pub.published)
}

func TestDispatch_Publish_Failure_Surfaces_After_Persist(t *testing.T) {
	req := require.New(t)
	svc, _, store, pub := newDispatchFixture()
	pub.err = errors.New("bus down")

	err := svc.Dispatch(context.Background(), 1, 7, "hi")
	req.Error(err)
	// The message is durable even though delivery never started.
	req.Len(store.appended, 1)
}
