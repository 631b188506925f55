package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/talkbase/chat-service/internal/domain/model"
	"github.com/talkbase/chat-service/internal/storage"
)

// ChatUpdate carries the mutable chat fields; zero values mean unchanged.
type ChatUpdate struct {
	Name      string
	CreatorID int64
}

type ChatService struct {
	store *storage.Store
}

func NewChatService(store *storage.Store) *ChatService {
	return &ChatService{store: store}
}

// Create persists a new chat with the creator as its first subscriber.
// Non-pv chats require a display name.
func (s *ChatService) Create(_ context.Context, creatorID int64, chatType model.ChatType, name string) (*model.Chat, error) {
	if _, err := s.store.GetUser(creatorID); err != nil {
		return nil, err
	}
	if chatType != model.ChatPV && name == "" {
		return nil, fmt.Errorf("chat create (%s): %w", chatType, ErrChatNameRequired)
	}

	chat := &model.Chat{
		Name:      name,
		Type:      chatType,
		CreatorID: creatorID,
	}
	if err := s.store.CreateChat(chat); err != nil {
		return nil, err
	}
	return chat, nil
}

func (s *ChatService) Get(_ context.Context, id int64) (*model.Chat, error) {
	return s.store.GetChat(id)
}

// Update renames the chat and/or transfers creatorship. A new creator must
// already be a subscriber.
func (s *ChatService) Update(_ context.Context, id int64, upd ChatUpdate) (*model.Chat, error) {
	chat, err := s.store.GetChat(id)
	if err != nil {
		return nil, err
	}

	if upd.CreatorID != 0 {
		if _, err := s.store.GetUser(upd.CreatorID); err != nil {
			return nil, err
		}
		if !chat.IsSubscriber(upd.CreatorID) {
			return nil, ErrNotSubscriber
		}
		chat.CreatorID = upd.CreatorID
	}
	if upd.Name != "" {
		chat.Name = upd.Name
	}

	if err := s.store.UpdateChat(chat); err != nil {
		return nil, err
	}
	return chat, nil
}

// Delete removes a chat. Only the creator may delete; subscriptions are
// cleared before the row goes away so no dangling membership survives.
func (s *ChatService) Delete(_ context.Context, id, requesterID int64) error {
	chat, err := s.store.GetChat(id)
	if err != nil {
		return err
	}
	if chat.CreatorID != requesterID {
		return ErrForbidden
	}

	chat.Subscribers = nil
	if err := s.store.UpdateChat(chat); err != nil {
		return err
	}
	return s.store.DeleteChat(id)
}

func (s *ChatService) Subscribe(_ context.Context, chatID, userID int64) (*model.Chat, error) {
	if _, err := s.store.GetUser(userID); err != nil {
		return nil, err
	}
	chat, err := s.store.GetChat(chatID)
	if err != nil {
		return nil, err
	}

	if !chat.Subscribe(userID) {
		return nil, ErrAlreadyMember
	}
	if err := s.store.UpdateChat(chat); err != nil {
		return nil, err
	}
	return chat, nil
}

func (s *ChatService) Unsubscribe(_ context.Context, chatID, userID int64) (*model.Chat, error) {
	chat, err := s.store.GetChat(chatID)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.GetUser(userID); err != nil {
		return nil, err
	}

	if !chat.IsSubscriber(userID) {
		return nil, ErrNotMember
	}
	if chat.Type != model.ChatPV && chat.CreatorID == userID {
		return nil, ErrCreatorCannotLeave
	}

	chat.Unsubscribe(userID)
	if err := s.store.UpdateChat(chat); err != nil {
		return nil, err
	}
	return chat, nil
}

// ResolveSubscribers returns the chat's current subscriber set. A missing
// chat yields an empty set and no error; callers that need existence
// checks must ask for the chat itself.
func (s *ChatService) ResolveSubscribers(_ context.Context, chatID int64) ([]int64, error) {
	chat, err := s.store.GetChat(chatID)
	if errors.Is(err, storage.ErrChatNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return chat.Subscribers, nil
}
