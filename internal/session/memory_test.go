package session

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestMemoryDirectory_Bind_And_Resolve(t *testing.T) {
	req := require.New(t)
	d := NewMemoryDirectory()
	ctx := context.Background()
	connID := uuid.New()

	// Given an unbound connection
	_, bound, err := d.ResolveUser(ctx, connID)
	req.NoError(err)
	req.False(bound)

	// When the connection binds
	req.NoError(d.Bind(ctx, connID, 42))

	// Then both directions resolve
	userID, bound, err := d.ResolveUser(ctx, connID)
	req.NoError(err)
	req.True(bound)
	req.EqualValues(42, userID)

	conns, err := d.ResolveConnections(ctx, 42)
	req.NoError(err)
	req.Equal([]uuid.UUID{connID}, conns)
}

func TestMemoryDirectory_Bind_Is_Idempotent(t *testing.T) {
	req := require.New(t)
	d := NewMemoryDirectory()
	ctx := context.Background()
	connID := uuid.New()

	req.NoError(d.Bind(ctx, connID, 42))
	req.NoError(d.Bind(ctx, connID, 42))

	conns, err := d.ResolveConnections(ctx, 42)
	req.NoError(err)
	req.Len(conns, 1)
}

func TestMemoryDirectory_Rebind_Moves_Reverse_Index(t *testing.T) {
	req := require.New(t)
	d := NewMemoryDirectory()
	ctx := context.Background()
	connID := uuid.New()

	// Given a connection bound to alice
	req.NoError(d.Bind(ctx, connID, 1))

	// When the same connection authenticates as bob
	req.NoError(d.Bind(ctx, connID, 2))

	// Then alice no longer owns the connection
	conns, err := d.ResolveConnections(ctx, 1)
	req.NoError(err)
	req.Empty(conns)

	conns, err = d.ResolveConnections(ctx, 2)
	req.NoError(err)
	req.Equal([]uuid.UUID{connID}, conns)
}

func TestMemoryDirectory_Unbind_Cleans_Both_Indexes(t *testing.T) {
	req := require.New(t)
	d := NewMemoryDirectory()
	ctx := context.Background()
	connID := uuid.New()

	req.NoError(d.Bind(ctx, connID, 42))
	req.NoError(d.Unbind(ctx, connID))

	_, bound, err := d.ResolveUser(ctx, connID)
	req.NoError(err)
	req.False(bound)

	conns, err := d.ResolveConnections(ctx, 42)
	req.NoError(err)
	req.Empty(conns)

	// Unbinding an unknown connection is a no-op
	req.NoError(d.Unbind(ctx, uuid.New()))
}

func TestMemoryDirectory_Multi_Device(t *testing.T) {
	req := require.New(t)
	d := NewMemoryDirectory()
	ctx := context.Background()
	phone := uuid.New()
	laptop := uuid.New()

	// Given two devices bound for the same user
	req.NoError(d.Bind(ctx, phone, 42))
	req.NoError(d.Bind(ctx, laptop, 42))

	// Then both appear in the connection set
	conns, err := d.ResolveConnections(ctx, 42)
	req.NoError(err)
	req.ElementsMatch([]uuid.UUID{phone, laptop}, conns)

	// And dropping one leaves the other bound
	req.NoError(d.Unbind(ctx, phone))

	conns, err = d.ResolveConnections(ctx, 42)
	req.NoError(err)
	req.Equal([]uuid.UUID{laptop}, conns)
}
