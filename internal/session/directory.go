// Package session owns the live binding between connection ids and
// authenticated users. It is the only state shared across gateway
// instances: the forward index (connection -> user) answers "who is on
// this socket", the reverse index (user -> connection set) answers
// "where can this user be reached".
package session

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrDirectoryUnavailable wraps any backing-store failure. Callers on the
// fan-out path must treat it as "user not reachable", never as fatal.
var ErrDirectoryUnavailable = errors.New("session directory unavailable")

// Directory is the bidirectional session index.
//
// Invariants:
//   - a connection binds to at most one user; re-binding moves the
//     connection out of the previous user's reverse set (last login wins);
//   - a user binds to any number of connections (multi-device).
type Directory interface {
	// Bind is an idempotent upsert of (connID -> userID).
	Bind(ctx context.Context, connID uuid.UUID, userID int64) error
	// Unbind removes both index entries. No-op for unknown connections.
	Unbind(ctx context.Context, connID uuid.UUID) error
	// ResolveConnections returns the user's live connection ids; empty
	// means not connected, which is not an error.
	ResolveConnections(ctx context.Context, userID int64) ([]uuid.UUID, error)
	// ResolveUser returns the user bound to a connection, if any.
	ResolveUser(ctx context.Context, connID uuid.UUID) (int64, bool, error)
}
