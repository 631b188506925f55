package event

import (
	"github.com/google/uuid"
	"github.com/talkbase/chat-service/internal/domain/model"
)

var _ Eventer = (*MessageEvent)(nil)

// MessageEvent carries one persisted message toward one recipient.
//
// [STRATEGY]
// It distinguishes between:
//   - [BUSINESS_PEER] (Message.SenderID): the logical author (the "Who").
//   - [ROUTING_TARGET] (UserID): the physical recipient of this event
//     instance (the "Where").
//
// Fan-out to a chat therefore produces one MessageEvent per subscriber,
// each routed to that subscriber's own cell in the Hub.
type MessageEvent struct {
	ID         uuid.UUID
	UserID     int64 // [PHYSICAL_RECIPIENT]
	Message    *model.Message
	SenderName string
	Cached     any `json:"-"` // [INTERNAL] memoized wire form
}

func NewMessageEvent(msg *model.Message, recipientID int64, senderName string) *MessageEvent {
	return &MessageEvent{
		ID:         uuid.New(),
		UserID:     recipientID,
		Message:    msg,
		SenderName: senderName,
	}
}

func (e *MessageEvent) GetID() string         { return e.ID.String() }
func (e *MessageEvent) GetKind() Kind         { return MessageCreated }
func (e *MessageEvent) GetUserID() int64      { return e.UserID }
func (e *MessageEvent) GetPriority() Priority { return PriorityHigh }
func (e *MessageEvent) GetOccurredAt() int64  { return e.Message.CreatedAt.UnixMilli() }
func (e *MessageEvent) GetPayload() any       { return e.Message }
func (e *MessageEvent) GetCached() any        { return e.Cached }
func (e *MessageEvent) SetCached(v any)       { e.Cached = v }
