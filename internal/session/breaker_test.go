package session

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// flakyDirectory fails every call until healed.
type flakyDirectory struct {
	*MemoryDirectory
	failing bool
}

func (d *flakyDirectory) ResolveConnections(ctx context.Context, userID int64) ([]uuid.UUID, error) {
	if d.failing {
		return nil, errors.New("connection refused")
	}
	return d.MemoryDirectory.ResolveConnections(ctx, userID)
}

func TestBreakerDirectory_Wraps_Backend_Failures(t *testing.T) {
	req := require.New(t)
	backend := &flakyDirectory{MemoryDirectory: NewMemoryDirectory(), failing: true}
	d := NewBreakerDirectory(backend)

	_, err := d.ResolveConnections(context.Background(), 42)
	req.ErrorIs(err, ErrDirectoryUnavailable)
}

func TestBreakerDirectory_Opens_After_Consecutive_Failures(t *testing.T) {
	req := require.New(t)
	backend := &flakyDirectory{MemoryDirectory: NewMemoryDirectory(), failing: true}
	d := NewBreakerDirectory(backend)
	ctx := context.Background()

	// Given enough consecutive failures to trip the breaker
	for range 5 {
		_, err := d.ResolveConnections(ctx, 42)
		req.ErrorIs(err, ErrDirectoryUnavailable)
	}

	// When the backend heals but the circuit is still open
	backend.failing = false

	// Then calls keep failing fast until the cool-down elapses
	_, err := d.ResolveConnections(ctx, 42)
	req.ErrorIs(err, ErrDirectoryUnavailable)
}

func TestBreakerDirectory_Passes_Healthy_Calls_Through(t *testing.T) {
	req := require.New(t)
	backend := NewMemoryDirectory()
	d := NewBreakerDirectory(backend)
	ctx := context.Background()
	connID := uuid.New()

	req.NoError(d.Bind(ctx, connID, 42))

	userID, bound, err := d.ResolveUser(ctx, connID)
	req.NoError(err)
	req.True(bound)
	req.EqualValues(42, userID)

	conns, err := d.ResolveConnections(ctx, 42)
	req.NoError(err)
	req.Equal([]uuid.UUID{connID}, conns)

	req.NoError(d.Unbind(ctx, connID))
}
