package bus

import (
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/talkbase/chat-service/internal/adapter/pubsub"
	"github.com/talkbase/chat-service/internal/service/dto"
)

const (
	// Undeliverable payloads are parked here instead of being redelivered.
	DeliveryPoisonTopic = "message.created.poison"
)

func NewWatermillRouter(logger watermill.LoggerAdapter) (*message.Router, error) {
	return message.NewRouter(message.RouterConfig{
		CloseTimeout: 10 * time.Second,
	}, logger)
}

// RegisterHandlers wires every domain listener onto the router.
func (h *MessageHandler) RegisterHandlers(router *message.Router, sub message.Subscriber, dispatcher *pubsub.EventDispatcher) error {
	poison, err := middleware.PoisonQueue(dispatcher.Publisher(), DeliveryPoisonTopic)
	if err != nil {
		return fmt.Errorf("poison queue setup: %w", err)
	}

	configs := []struct {
		name    string
		topic   string
		handler message.NoPublishHandlerFunc
	}{
		{"on_message_created", dto.TopicMessageCreated, h.OnMessageCreated},

		// Add new domain listeners here by following this table-driven pattern.
	}

	for _, c := range configs {
		// No Retry middleware: a failed push is dropped, never replayed,
		// so a recipient can never see the same message twice.
		router.AddConsumerHandler(c.name, c.topic, sub, c.handler).AddMiddleware(
			TraceIDMiddleware,
			LoggingMiddleware(h.logger),
			middleware.Recoverer,
			poison,
			middleware.Timeout(time.Second*30),
		)
	}

	h.logger.Info("delivery pipeline ready", "handlers", len(configs))
	return nil
}
