package service

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/talkbase/chat-service/internal/domain/model"
)

// Profiler resolves display data for message senders. Every dispatch needs
// the sender's username to render the outbound notification, so lookups sit
// on the hot path.
type Profiler interface {
	Username(ctx context.Context, userID int64) (string, error)
	// Invalidate drops a cached profile after the account changes.
	Invalidate(userID int64)
}

// userGetter is the slice of the store the resolver needs.
type userGetter interface {
	GetUser(id int64) (*model.User, error)
}

type ProfileResolver struct {
	users userGetter
	cache *lru.Cache[int64, string]
}

// NewProfileResolver provides a thread-safe resolver with an internal LRU
// cache holding "hot" identities.
func NewProfileResolver(users userGetter) *ProfileResolver {
	cache, _ := lru.New[int64, string](10000)
	return &ProfileResolver{
		users: users,
		cache: cache,
	}
}

// Username implements the cache-aside strategy over the user table.
func (r *ProfileResolver) Username(_ context.Context, userID int64) (string, error) {
	if name, ok := r.cache.Get(userID); ok {
		return name, nil
	}

	user, err := r.users.GetUser(userID)
	if err != nil {
		return "", err
	}

	r.cache.Add(userID, user.Username)
	return user.Username, nil
}

func (r *ProfileResolver) Invalidate(userID int64) {
	r.cache.Remove(userID)
}
