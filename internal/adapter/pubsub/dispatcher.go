package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/talkbase/chat-service/internal/service/dto"
)

// EventDispatcher publishes domain events onto the delivery bus. It keeps
// the dispatch service agnostic of the transport implementation.
type EventDispatcher struct {
	publisher message.Publisher
}

func NewEventDispatcher(pub message.Publisher) *EventDispatcher {
	return &EventDispatcher{publisher: pub}
}

func (d *EventDispatcher) PublishMessageCreated(ctx context.Context, payload *dto.MessageCreated) error {
	if payload == nil {
		return fmt.Errorf("event dispatcher: cannot publish nil payload")
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("event dispatcher: marshal failure: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.SetContext(ctx)

	if err := d.publisher.Publish(dto.TopicMessageCreated, msg); err != nil {
		return fmt.Errorf("event dispatcher: failed to publish to topic %s: %w", dto.TopicMessageCreated, err)
	}

	return nil
}

// Publisher exposes the raw publisher for router middleware (poison queue).
func (d *EventDispatcher) Publisher() message.Publisher {
	return d.publisher
}
