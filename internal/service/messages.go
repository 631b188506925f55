package service

import (
	"context"

	"github.com/talkbase/chat-service/internal/domain/model"
	"github.com/talkbase/chat-service/internal/storage"
)

// MessageService covers the read/edit side of messages. Creation goes
// exclusively through the Dispatcher so the subscriber check can never be
// bypassed.
type MessageService struct {
	store *storage.Store
}

func NewMessageService(store *storage.Store) *MessageService {
	return &MessageService{store: store}
}

func (s *MessageService) Get(_ context.Context, id int64) (*model.Message, error) {
	return s.store.GetMessage(id)
}

func (s *MessageService) ListByChat(_ context.Context, chatID int64, offset, limit int) ([]*model.Message, error) {
	if _, err := s.store.GetChat(chatID); err != nil {
		return nil, err
	}
	return s.store.MessagesByChat(chatID, offset, limit)
}

func (s *MessageService) Update(_ context.Context, id int64, text string) (*model.Message, error) {
	msg, err := s.store.GetMessage(id)
	if err != nil {
		return nil, err
	}
	msg.Text = text
	if err := s.store.UpdateMessage(msg); err != nil {
		return nil, err
	}
	return msg, nil
}

func (s *MessageService) Delete(_ context.Context, id int64) error {
	return s.store.DeleteMessage(id)
}
