package event

import (
	"time"

	"github.com/google/uuid"
)

var _ Eventer = (*SystemEvent)(nil)

// SystemEvent carries connection lifecycle notifications (handshake acks).
type SystemEvent struct {
	ID         uuid.UUID
	UserID     int64
	Kind       Kind
	Priority   Priority
	Payload    any
	OccurredAt int64
	Cached     any `json:"-"`
}

func NewSystemEvent(userID int64, kind Kind, priority Priority, payload any) *SystemEvent {
	return &SystemEvent{
		ID:         uuid.New(),
		UserID:     userID,
		Kind:       kind,
		Priority:   priority,
		Payload:    payload,
		OccurredAt: time.Now().UnixMilli(),
	}
}

func (e *SystemEvent) GetID() string         { return e.ID.String() }
func (e *SystemEvent) GetKind() Kind         { return e.Kind }
func (e *SystemEvent) GetUserID() int64      { return e.UserID }
func (e *SystemEvent) GetPriority() Priority { return e.Priority }
func (e *SystemEvent) GetOccurredAt() int64  { return e.OccurredAt }
func (e *SystemEvent) GetPayload() any       { return e.Payload }
func (e *SystemEvent) GetCached() any        { return e.Cached }
func (e *SystemEvent) SetCached(v any)       { e.Cached = v }
