package storage

import (
	"encoding/json"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/talkbase/chat-service/internal/domain/model"
)

// AppendMessage assigns an id and persists the message under its chat.
// Keys are "msg:{chat}:{id}" with zero-padded ids, so a prefix scan yields
// messages in insertion order. A reference key is kept for id-only lookups.
func (s *Store) AppendMessage(m *model.Message) error {
	id, err := nextID(s.msgSeq)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	m.ID = id
	m.CreatedAt = now
	m.UpdatedAt = now

	return s.db.Update(func(txn *badger.Txn) error {
		data, err := json.Marshal(m)
		if err != nil {
			return err
		}
		key := msgKey(m.ChatID, m.ID)
		if err := txn.Set(key, data); err != nil {
			return err
		}
		return txn.Set(msgRefKey(m.ID), key)
	})
}

func (s *Store) GetMessage(id int64) (*model.Message, error) {
	msg := &model.Message{}
	err := s.db.View(func(txn *badger.Txn) error {
		key, err := getValue(txn, msgRefKey(id), ErrMessageNotFound)
		if err != nil {
			return err
		}
		data, err := getValue(txn, key, ErrMessageNotFound)
		if err != nil {
			return err
		}
		return json.Unmarshal(data, msg)
	})
	if err != nil {
		return nil, err
	}
	return msg, nil
}

func (s *Store) UpdateMessage(m *model.Message) error {
	m.UpdatedAt = time.Now().UTC()
	return s.db.Update(func(txn *badger.Txn) error {
		key := msgKey(m.ChatID, m.ID)
		if _, err := getValue(txn, key, ErrMessageNotFound); err != nil {
			return err
		}
		data, err := json.Marshal(m)
		if err != nil {
			return err
		}
		return txn.Set(key, data)
	})
}

func (s *Store) DeleteMessage(id int64) error {
	return s.db.Update(func(txn *badger.Txn) error {
		key, err := getValue(txn, msgRefKey(id), ErrMessageNotFound)
		if err != nil {
			return err
		}
		if err := txn.Delete(key); err != nil {
			return err
		}
		return txn.Delete(msgRefKey(id))
	})
}

// MessagesByChat returns the chat's messages in insertion order, skipping
// offset and returning at most limit entries.
func (s *Store) MessagesByChat(chatID int64, offset, limit int) ([]*model.Message, error) {
	var messages []*model.Message
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := msgKey(chatID, 0)[:len("msg:")+20+1]
		skipped := 0
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if skipped < offset {
				skipped++
				continue
			}
			if limit > 0 && len(messages) >= limit {
				break
			}
			msg := &model.Message{}
			if err := it.Item().Value(func(v []byte) error {
				return json.Unmarshal(v, msg)
			}); err != nil {
				return err
			}
			messages = append(messages, msg)
		}
		return nil
	})
	return messages, err
}
