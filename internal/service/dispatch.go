package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/talkbase/chat-service/internal/domain/model"
	"github.com/talkbase/chat-service/internal/service/dto"
)

// Dispatcher is the single entry point for sending a message into a chat.
// Socket handlers never persist directly; the subscriber check and the
// write-before-notify ordering both live here.
type Dispatcher interface {
	Dispatch(ctx context.Context, senderID, chatID int64, text string) error
}

// subscriberResolver yields a chat's current membership; empty for unknown
// chats.
type subscriberResolver interface {
	ResolveSubscribers(ctx context.Context, chatID int64) ([]int64, error)
}

// messageAppender is the slice of the store the dispatcher writes through.
type messageAppender interface {
	AppendMessage(m *model.Message) error
}

// EventPublisher hands persisted messages to the delivery pipeline.
type EventPublisher interface {
	PublishMessageCreated(ctx context.Context, payload *dto.MessageCreated) error
}

type DispatchService struct {
	subscribers subscriberResolver
	messages    messageAppender
	profiles    Profiler
	publisher   EventPublisher
	logger      *slog.Logger
}

func NewDispatchService(
	subscribers subscriberResolver,
	messages messageAppender,
	profiles Profiler,
	publisher EventPublisher,
	logger *slog.Logger,
) *DispatchService {
	return &DispatchService{
		subscribers: subscribers,
		messages:    messages,
		profiles:    profiles,
		publisher:   publisher,
		logger:      logger,
	}
}

// Dispatch validates, persists, and fans out one message.
//
// The order is load-bearing: the subscriber check guards against spoofed or
// stale sessions, and persistence strictly precedes any delivery so a
// failed write can never reach a recipient.
func (s *DispatchService) Dispatch(ctx context.Context, senderID, chatID int64, text string) error {
	subs, err := s.subscribers.ResolveSubscribers(ctx, chatID)
	if err != nil {
		return fmt.Errorf("dispatch: resolve subscribers of chat %d: %w", chatID, err)
	}

	// A missing chat yields an empty set, which can never contain the
	// sender, so ChatNotFound and NotSubscriber collapse into one failure.
	if !slices.Contains(subs, senderID) {
		return fmt.Errorf("dispatch: user %d to chat %d: %w", senderID, chatID, ErrNotSubscriber)
	}

	senderName, err := s.profiles.Username(ctx, senderID)
	if err != nil {
		return fmt.Errorf("dispatch: resolve sender %d: %w", senderID, err)
	}

	msg := &model.Message{
		ChatID:   chatID,
		SenderID: senderID,
		Text:     text,
	}
	if err := s.messages.AppendMessage(msg); err != nil {
		return fmt.Errorf("dispatch: persist message: %w", err)
	}

	payload := &dto.MessageCreated{
		Message:     *msg,
		SenderName:  senderName,
		Subscribers: subs,
	}
	if err := s.publisher.PublishMessageCreated(ctx, payload); err != nil {
		// The message is durable at this point; only delivery is degraded.
		s.logger.Error("message persisted but not published",
			"chat_id", chatID,
			"message_id", msg.ID,
			"err", err,
		)
		return fmt.Errorf("dispatch: publish: %w", err)
	}

	s.logger.Debug("message dispatched",
		"chat_id", chatID,
		"message_id", msg.ID,
		"subscribers", len(subs),
	)
	return nil
}
