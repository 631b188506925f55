package service

import (
	"context"
	"fmt"

	"github.com/talkbase/chat-service/internal/domain/model"
	"github.com/talkbase/chat-service/internal/storage"
)

// SignupParams carries validated signup input.
type SignupParams struct {
	FirstName string
	LastName  string
	Username  string
	Password  string
	Age       int
}

// UserUpdate carries the mutable account fields; nil means unchanged.
type UserUpdate struct {
	FirstName *string
	LastName  *string
	Username  *string
	Age       *int
}

type UserService struct {
	store    *storage.Store
	auth     Auther
	profiles Profiler
}

func NewUserService(store *storage.Store, auth Auther, profiles Profiler) *UserService {
	return &UserService{store: store, auth: auth, profiles: profiles}
}

// Signup creates the account and returns it with a fresh token.
func (s *UserService) Signup(_ context.Context, p SignupParams) (*model.User, string, error) {
	hash, err := HashPassword(p.Password)
	if err != nil {
		return nil, "", fmt.Errorf("signup: hash password: %w", err)
	}

	user := &model.User{
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Username:  p.Username,
		Password:  hash,
		Age:       p.Age,
	}
	if err := s.store.CreateUser(user); err != nil {
		return nil, "", err
	}

	token, err := s.auth.IssueToken(user)
	if err != nil {
		return nil, "", fmt.Errorf("signup: issue token: %w", err)
	}
	return user, token, nil
}

// Login verifies credentials and returns a token. Unknown users keep their
// distinct error so the REST layer can answer 404 as the API always has.
func (s *UserService) Login(_ context.Context, username, password string) (string, error) {
	user, err := s.store.GetUserByUsername(username)
	if err != nil {
		return "", err
	}

	ok, err := ComparePassword(password, user.Password)
	if err != nil {
		return "", fmt.Errorf("login: %w", err)
	}
	if !ok {
		return "", ErrAuthFailure
	}

	return s.auth.IssueToken(user)
}

func (s *UserService) Get(_ context.Context, id int64) (*model.User, error) {
	return s.store.GetUser(id)
}

func (s *UserService) List(_ context.Context, offset, limit int) ([]*model.User, error) {
	return s.store.ListUsers(offset, limit)
}

// Update applies the changed fields. A username change checks for conflicts
// and drops the cached profile so subsequent fan-outs render the new name.
func (s *UserService) Update(_ context.Context, id int64, upd UserUpdate) (*model.User, error) {
	user, err := s.store.GetUser(id)
	if err != nil {
		return nil, err
	}

	if upd.FirstName != nil {
		user.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		user.LastName = *upd.LastName
	}
	if upd.Username != nil {
		user.Username = *upd.Username
	}
	if upd.Age != nil {
		user.Age = *upd.Age
	}

	if err := s.store.UpdateUser(user); err != nil {
		return nil, err
	}
	s.profiles.Invalidate(id)
	return user, nil
}

func (s *UserService) Delete(_ context.Context, id int64) error {
	if err := s.store.DeleteUser(id); err != nil {
		return err
	}
	s.profiles.Invalidate(id)
	return nil
}

// Chats lists every chat the user subscribes to or created.
func (s *UserService) Chats(_ context.Context, id int64) ([]*model.Chat, error) {
	if _, err := s.store.GetUser(id); err != nil {
		return nil, err
	}
	return s.store.ChatsByUser(id)
}
