package storage

import (
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/talkbase/chat-service/internal/domain/model"
)

// userRecord is the on-disk shape of a user. It exists because the domain
// entity hides the password hash from serialization, while the store must
// keep it.
type userRecord struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Username  string    `json:"username"`
	Password  string    `json:"password"`
	Age       int       `json:"age"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func fromUser(u *model.User) userRecord {
	return userRecord{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Username:  u.Username,
		Password:  u.Password,
		Age:       u.Age,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func (r userRecord) toUser() *model.User {
	return &model.User{
		ID:        r.ID,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Username:  r.Username,
		Password:  r.Password,
		Age:       r.Age,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// CreateUser assigns an id and persists the user. The username index is
// written in the same transaction, so concurrent signups with the same
// username cannot both succeed.
func (s *Store) CreateUser(u *model.User) error {
	id, err := nextID(s.userSeq)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	u.ID = id
	u.CreatedAt = now
	u.UpdatedAt = now

	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(usernameKey(u.Username)); err == nil {
			return ErrUsernameTaken
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		data, err := json.Marshal(fromUser(u))
		if err != nil {
			return err
		}
		if err := txn.Set(userKey(u.ID), data); err != nil {
			return err
		}
		return txn.Set(usernameKey(u.Username), []byte(strconv.FormatInt(u.ID, 10)))
	})
}

func (s *Store) GetUser(id int64) (*model.User, error) {
	var rec userRecord
	err := s.db.View(func(txn *badger.Txn) error {
		data, err := getValue(txn, userKey(id), ErrUserNotFound)
		if err != nil {
			return err
		}
		return json.Unmarshal(data, &rec)
	})
	if err != nil {
		return nil, err
	}
	return rec.toUser(), nil
}

func (s *Store) GetUserByUsername(username string) (*model.User, error) {
	var id int64
	err := s.db.View(func(txn *badger.Txn) error {
		data, err := getValue(txn, usernameKey(username), ErrUserNotFound)
		if err != nil {
			return err
		}
		id, err = strconv.ParseInt(string(data), 10, 64)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.GetUser(id)
}

// ListUsers returns users ordered by id, skipping offset and returning at
// most limit entries.
func (s *Store) ListUsers(offset, limit int) ([]*model.User, error) {
	var users []*model.User
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte("user:")
		skipped := 0
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if skipped < offset {
				skipped++
				continue
			}
			if limit > 0 && len(users) >= limit {
				break
			}
			var rec userRecord
			if err := it.Item().Value(func(v []byte) error {
				return json.Unmarshal(v, &rec)
			}); err != nil {
				return err
			}
			users = append(users, rec.toUser())
		}
		return nil
	})
	return users, err
}

// UpdateUser persists a modified user and moves the username index when the
// name changed.
func (s *Store) UpdateUser(u *model.User) error {
	u.UpdatedAt = time.Now().UTC()
	return s.db.Update(func(txn *badger.Txn) error {
		data, err := getValue(txn, userKey(u.ID), ErrUserNotFound)
		if err != nil {
			return err
		}
		var old userRecord
		if err := json.Unmarshal(data, &old); err != nil {
			return err
		}

		if old.Username != u.Username {
			if _, err := txn.Get(usernameKey(u.Username)); err == nil {
				return ErrUsernameTaken
			} else if !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
			if err := txn.Delete(usernameKey(old.Username)); err != nil {
				return err
			}
			if err := txn.Set(usernameKey(u.Username), []byte(strconv.FormatInt(u.ID, 10))); err != nil {
				return err
			}
		}

		next, err := json.Marshal(fromUser(u))
		if err != nil {
			return err
		}
		return txn.Set(userKey(u.ID), next)
	})
}

func (s *Store) DeleteUser(id int64) error {
	return s.db.Update(func(txn *badger.Txn) error {
		data, err := getValue(txn, userKey(id), ErrUserNotFound)
		if err != nil {
			return err
		}
		var rec userRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			return err
		}
		if err := txn.Delete(usernameKey(rec.Username)); err != nil {
			return err
		}
		return txn.Delete(userKey(id))
	})
}
