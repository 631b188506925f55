package session

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
)

// BreakerDirectory decorates a Directory with a circuit breaker so a
// struggling backing store degrades into "users unreachable" instead of
// stalling every dispatch on timeouts. Any failure — including an open
// circuit — surfaces as ErrDirectoryUnavailable.
type BreakerDirectory struct {
	next Directory
	cb   *gobreaker.CircuitBreaker
}

func NewBreakerDirectory(next Directory) *BreakerDirectory {
	return &BreakerDirectory{
		next: next,
		cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "session-directory",
			MaxRequests: 3,
			Interval:    30 * time.Second,
			Timeout:     10 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}),
	}
}

func (b *BreakerDirectory) Bind(ctx context.Context, connID uuid.UUID, userID int64) error {
	_, err := b.cb.Execute(func() (any, error) {
		return nil, b.next.Bind(ctx, connID, userID)
	})
	return b.wrap(err)
}

func (b *BreakerDirectory) Unbind(ctx context.Context, connID uuid.UUID) error {
	_, err := b.cb.Execute(func() (any, error) {
		return nil, b.next.Unbind(ctx, connID)
	})
	return b.wrap(err)
}

func (b *BreakerDirectory) ResolveConnections(ctx context.Context, userID int64) ([]uuid.UUID, error) {
	res, err := b.cb.Execute(func() (any, error) {
		return b.next.ResolveConnections(ctx, userID)
	})
	if err != nil {
		return nil, b.wrap(err)
	}
	return res.([]uuid.UUID), nil
}

type userBinding struct {
	userID int64
	bound  bool
}

func (b *BreakerDirectory) ResolveUser(ctx context.Context, connID uuid.UUID) (int64, bool, error) {
	res, err := b.cb.Execute(func() (any, error) {
		userID, bound, err := b.next.ResolveUser(ctx, connID)
		return userBinding{userID, bound}, err
	})
	if err != nil {
		return 0, false, b.wrap(err)
	}
	binding := res.(userBinding)
	return binding.userID, binding.bound, nil
}

func (b *BreakerDirectory) wrap(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
}
