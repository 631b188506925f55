package session

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryDirectory is the single-process Directory used by tests and dev
// runs. Semantics mirror RedisDirectory exactly.
type MemoryDirectory struct {
	mu     sync.Mutex
	byConn map[uuid.UUID]int64
	byUser map[int64]map[uuid.UUID]struct{}
}

func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{
		byConn: make(map[uuid.UUID]int64),
		byUser: make(map[int64]map[uuid.UUID]struct{}),
	}
}

func (d *MemoryDirectory) Bind(_ context.Context, connID uuid.UUID, userID int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if prev, ok := d.byConn[connID]; ok && prev != userID {
		d.dropReverse(prev, connID)
	}
	d.byConn[connID] = userID
	set, ok := d.byUser[userID]
	if !ok {
		set = make(map[uuid.UUID]struct{})
		d.byUser[userID] = set
	}
	set[connID] = struct{}{}
	return nil
}

func (d *MemoryDirectory) Unbind(_ context.Context, connID uuid.UUID) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	userID, ok := d.byConn[connID]
	if !ok {
		return nil
	}
	delete(d.byConn, connID)
	d.dropReverse(userID, connID)
	return nil
}

func (d *MemoryDirectory) ResolveConnections(_ context.Context, userID int64) ([]uuid.UUID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	set := d.byUser[userID]
	conns := make([]uuid.UUID, 0, len(set))
	for id := range set {
		conns = append(conns, id)
	}
	return conns, nil
}

func (d *MemoryDirectory) ResolveUser(_ context.Context, connID uuid.UUID) (int64, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	userID, ok := d.byConn[connID]
	return userID, ok, nil
}

// dropReverse must be called with the lock held.
func (d *MemoryDirectory) dropReverse(userID int64, connID uuid.UUID) {
	if set, ok := d.byUser[userID]; ok {
		delete(set, connID)
		if len(set) == 0 {
			delete(d.byUser, userID)
		}
	}
}
