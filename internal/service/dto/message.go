package dto

import "github.com/talkbase/chat-service/internal/domain/model"

// Topics published on the in-process bus.
const TopicMessageCreated = "message.created"

// MessageCreated is the bus payload emitted after a message has been
// persisted. Subscribers carries the chat's membership snapshot taken at
// dispatch time so delivery never re-reads the chat.
type MessageCreated struct {
	Message     model.Message `json:"message"`
	SenderName  string        `json:"sender_name"`
	Subscribers []int64       `json:"subscribers"`
}
