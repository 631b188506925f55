package storage

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/talkbase/chat-service/config"
	"github.com/talkbase/chat-service/internal/domain/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	cfg := &config.Config{}
	cfg.Storage.Path = "" // in-memory

	store, err := Open(cfg, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore_Create_And_Get_User(t *testing.T) {
	req := require.New(t)
	store := newTestStore(t)

	user := &model.User{FirstName: "Alice", Username: "alice", Password: "hash", Age: 30}
	req.NoError(store.CreateUser(user))
	req.NotZero(user.ID)
	req.False(user.CreatedAt.IsZero())

	got, err := store.GetUser(user.ID)
	req.NoError(err)
	req.Equal("alice", got.Username)
	req.Equal("hash", got.Password)

	_, err = store.GetUser(9999)
	req.ErrorIs(err, ErrUserNotFound)
}

func TestStore_Username_Index(t *testing.T) {
	req := require.New(t)
	store := newTestStore(t)

	req.NoError(store.CreateUser(&model.User{Username: "alice", Password: "h"}))

	// Duplicate usernames are rejected at creation
	err := store.CreateUser(&model.User{Username: "alice", Password: "h"})
	req.ErrorIs(err, ErrUsernameTaken)

	got, err := store.GetUserByUsername("alice")
	req.NoError(err)
	req.Equal("alice", got.Username)

	_, err = store.GetUserByUsername("nobody")
	req.ErrorIs(err, ErrUserNotFound)
}

func TestStore_Update_User_Moves_Username_Index(t *testing.T) {
	req := require.New(t)
	store := newTestStore(t)

	user := &model.User{Username: "alice", Password: "h"}
	req.NoError(store.CreateUser(user))

	user.Username = "alice2"
	req.NoError(store.UpdateUser(user))

	// Old name is free again, new name resolves
	_, err := store.GetUserByUsername("alice")
	req.ErrorIs(err, ErrUserNotFound)

	got, err := store.GetUserByUsername("alice2")
	req.NoError(err)
	req.Equal(user.ID, got.ID)
}

func TestStore_Update_User_Rejects_Taken_Username(t *testing.T) {
	req := require.New(t)
	store := newTestStore(t)

	req.NoError(store.CreateUser(&model.User{Username: "alice", Password: "h"}))
	bob := &model.User{Username: "bob", Password: "h"}
	req.NoError(store.CreateUser(bob))

	bob.Username = "alice"
	req.ErrorIs(store.UpdateUser(bob), ErrUsernameTaken)
}

func TestStore_Delete_User_Frees_Username(t *testing.T) {
	req := require.New(t)
	store := newTestStore(t)

	user := &model.User{Username: "alice", Password: "h"}
	req.NoError(store.CreateUser(user))
	req.NoError(store.DeleteUser(user.ID))

	_, err := store.GetUser(user.ID)
	req.ErrorIs(err, ErrUserNotFound)

	// The name can be reused
	req.NoError(store.CreateUser(&model.User{Username: "alice", Password: "h"}))
}

func TestStore_List_Users_Pagination(t *testing.T) {
	req := require.New(t)
	store := newTestStore(t)

	names := []string{"alice", "bob", "carol", "dave"}
	for _, n := range names {
		req.NoError(store.CreateUser(&model.User{Username: n, Password: "h"}))
	}

	page, err := store.ListUsers(1, 2)
	req.NoError(err)
	req.Len(page, 2)
	req.Equal("bob", page[0].Username)
	req.Equal("carol", page[1].Username)

	all, err := store.ListUsers(0, 100)
	req.NoError(err)
	req.Len(all, 4)
}
