package storage

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/talkbase/chat-service/internal/domain/model"
)

// CreateChat assigns an id and persists the chat. Callers are expected to
// have seeded Subscribers with the creator already; the store enforces it
// as a backstop since a chat without its creator is unreachable.
func (s *Store) CreateChat(c *model.Chat) error {
	id, err := nextID(s.chatSeq)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	c.ID = id
	c.CreatedAt = now
	c.UpdatedAt = now
	c.Subscribe(c.CreatorID)

	return s.db.Update(func(txn *badger.Txn) error {
		data, err := json.Marshal(c)
		if err != nil {
			return err
		}
		return txn.Set(chatKey(c.ID), data)
	})
}

func (s *Store) GetChat(id int64) (*model.Chat, error) {
	chat := &model.Chat{}
	err := s.db.View(func(txn *badger.Txn) error {
		data, err := getValue(txn, chatKey(id), ErrChatNotFound)
		if err != nil {
			return err
		}
		return json.Unmarshal(data, chat)
	})
	if err != nil {
		return nil, err
	}
	return chat, nil
}

func (s *Store) UpdateChat(c *model.Chat) error {
	c.UpdatedAt = time.Now().UTC()
	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := getValue(txn, chatKey(c.ID), ErrChatNotFound); err != nil {
			return err
		}
		data, err := json.Marshal(c)
		if err != nil {
			return err
		}
		return txn.Set(chatKey(c.ID), data)
	})
}

// DeleteChat removes the chat and every message stored under it.
func (s *Store) DeleteChat(id int64) error {
	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := getValue(txn, chatKey(id), ErrChatNotFound); err != nil {
			return err
		}

		it := txn.NewIterator(badger.IteratorOptions{PrefetchValues: false})
		prefix := msgKey(id, 0)[:len("msg:")+20+1]
		var msgKeys [][]byte
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			msgKeys = append(msgKeys, it.Item().KeyCopy(nil))
		}
		it.Close()
		for _, k := range msgKeys {
			if err := txn.Delete(k); err != nil {
				return err
			}
			// The key ends in the zero-padded message id; drop its
			// reference entry in the same transaction.
			msgID, err := strconv.ParseInt(string(k[len(k)-20:]), 10, 64)
			if err != nil {
				return err
			}
			if err := txn.Delete(msgRefKey(msgID)); err != nil {
				return err
			}
		}
		return txn.Delete(chatKey(id))
	})
}

// ChatsByUser scans the chat table for chats the user subscribes to or
// created. A membership index would avoid the scan; at the expected chat
// cardinality the scan is cheaper than maintaining one.
func (s *Store) ChatsByUser(userID int64) ([]*model.Chat, error) {
	var chats []*model.Chat
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte("chat:")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			chat := &model.Chat{}
			if err := it.Item().Value(func(v []byte) error {
				return json.Unmarshal(v, chat)
			}); err != nil {
				return err
			}
			if chat.IsSubscriber(userID) || chat.CreatorID == userID {
				chats = append(chats, chat)
			}
		}
		return nil
	})
	return chats, err
}
