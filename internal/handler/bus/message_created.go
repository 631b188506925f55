package bus

import (
	"encoding/json"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/talkbase/chat-service/internal/domain/event"
	"github.com/talkbase/chat-service/internal/domain/registry"
	"github.com/talkbase/chat-service/internal/service/dto"
	"github.com/talkbase/chat-service/internal/session"
)

// MessageHandler turns persisted-message events into per-recipient pushes.
type MessageHandler struct {
	hub       registry.Hubber
	directory session.Directory
	logger    *slog.Logger
}

func NewMessageHandler(hub registry.Hubber, directory session.Directory, logger *slog.Logger) *MessageHandler {
	return &MessageHandler{hub: hub, directory: directory, logger: logger}
}

// OnMessageCreated fans one message out to every reachable subscriber.
//
// Delivery is at-most-once per recipient: a directory failure or an offline
// subscriber skips that recipient and is never surfaced to the sender or to
// other subscribers. The handler returns nil unconditionally so the router
// never redelivers.
func (h *MessageHandler) OnMessageCreated(msg *message.Message) error {
	var payload dto.MessageCreated
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		// Poison pill protection: ack and drop.
		h.logger.Error("undecodable message event", "msg_id", msg.UUID, "err", err)
		return nil
	}

	ctx := msg.Context()
	for _, userID := range payload.Subscribers {
		conns, err := h.directory.ResolveConnections(ctx, userID)
		if err != nil {
			// Directory trouble means "unreachable", not "failed dispatch".
			h.logger.Warn("recipient skipped, session directory unavailable",
				"user_id", userID,
				"chat_id", payload.Message.ChatID,
				"err", err,
			)
			continue
		}
		if len(conns) == 0 {
			continue // offline, no push
		}

		ev := event.NewMessageEvent(&payload.Message, userID, payload.SenderName)
		if !h.hub.Broadcast(ev) {
			h.logger.Debug("recipient cell missed or saturated",
				"user_id", userID,
				"message_id", payload.Message.ID,
			)
		}
	}

	return nil
}
