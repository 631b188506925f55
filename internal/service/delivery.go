package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/talkbase/chat-service/config"
	"github.com/talkbase/chat-service/internal/domain/registry"
)

// Deliverer is the primary interface for transport handlers (socket layer).
type Deliverer interface {
	Subscribe(ctx context.Context, userID int64) (registry.Connector, error)
	Unsubscribe(userID int64, connID uuid.UUID)
}

type DeliveryService struct {
	hub        registry.Hubber
	bufferSize int
}

func NewDeliveryService(hub registry.Hubber, cfg *config.Config) *DeliveryService {
	bufferSize := cfg.Hub.MailboxSize
	if bufferSize <= 0 {
		bufferSize = 1024
	}
	return &DeliveryService{
		hub:        hub,
		bufferSize: bufferSize,
	}
}

// Subscribe creates a pooled connector and attaches it to the user's cell.
// The connector's id is the ConnectionId the caller records in the session
// directory.
func (s *DeliveryService) Subscribe(ctx context.Context, userID int64) (registry.Connector, error) {
	conn := registry.NewConnector(ctx, userID, s.bufferSize)
	s.hub.Register(conn)
	return conn, nil
}

// Unsubscribe detaches the connector; the hub closes it, which recycles the
// object.
func (s *DeliveryService) Unsubscribe(userID int64, connID uuid.UUID) {
	s.hub.Unregister(userID, connID)
}
