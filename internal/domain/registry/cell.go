/*
Package registry provides the in-process half of session delivery, based on
the Actor Model.

Key Architectural Concepts:
  - Virtual Cells: every connected user is represented by an isolated 'Cell'
    (Actor) that encapsulates all concurrent socket sessions for that identity.
  - Decoupling & Backpressure: per-user mailboxes ensure that slow consumers
    do not block global system throughput.
  - Concurrency Management: lock-free lookups via sync.Map and fine-grained
    locking within individual cells eliminate global mutex contention.

The cross-process half — which user is reachable at all, and on which
connection ids — lives in the session directory, not here.
*/
package registry

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/talkbase/chat-service/internal/domain/event"
)

// Celler defines the internal API for user-specific delivery units.
type Celler interface {
	Push(ev event.Eventer) bool
	Attach(conn Connector)
	Detach(connID uuid.UUID) bool
	Sessions() int
	IsIdle(timeout time.Duration) bool
	Stop()
}

// Cell implements isolated delivery for a single user.
type Cell struct {
	// The user managed by this actor instance.
	userID int64

	// [MAILBOX]
	// Buffered channel decoupling the dispatcher from individual delivery.
	// Acts as a shock absorber so slow consumer latency does not propagate
	// back to the Hub.
	mailbox chan event.Eventer

	// [SESSIONS]
	// All active transports for the user. Allows multiplexing a single
	// event to multiple devices (mobile, web, desktop).
	sessions map[uuid.UUID]Connector

	// RWMutex because read-heavy delivery outnumbers registration events.
	mu sync.RWMutex

	// Terminates the background goroutine; no leaks after the user goes offline.
	doneCh chan struct{}

	// lastActivityAt records the last time an event was processed for this cell.
	lastActivityAt time.Time
}

func NewCell(userID int64, bufferSize int) *Cell {
	c := &Cell{
		userID:         userID,
		mailbox:        make(chan event.Eventer, bufferSize),
		sessions:       make(map[uuid.UUID]Connector),
		doneCh:         make(chan struct{}),
		lastActivityAt: time.Now(),
	}
	go c.loop()
	return c
}

// IsIdle returns true if the user has no active sessions and hasn't received
// events lately.
func (c *Cell) IsIdle(timeout time.Duration) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.sessions) == 0 && time.Since(c.lastActivityAt) > timeout
}

func (c *Cell) touch() {
	c.mu.Lock()
	c.lastActivityAt = time.Now()
	c.mu.Unlock()
}

func (c *Cell) Push(ev event.Eventer) bool {
	c.touch()
	select {
	case c.mailbox <- ev:
		return true
	default:
		return false
	}
}

func (c *Cell) Attach(conn Connector) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastActivityAt = time.Now()
	c.sessions[conn.GetID()] = conn
}

func (c *Cell) Detach(connID uuid.UUID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if conn, ok := c.sessions[connID]; ok {
		delete(c.sessions, connID)
		conn.Close()
	}
	c.lastActivityAt = time.Now()
	return len(c.sessions) == 0
}

func (c *Cell) Sessions() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.sessions)
}

func (c *Cell) loop() {
	for {
		select {
		case <-c.doneCh:
			return
		case ev := <-c.mailbox:
			c.deliver(ev)
		}
	}
}

func (c *Cell) deliver(ev event.Eventer) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.sessions) == 0 {
		return
	}

	for _, conn := range c.sessions {
		conn.Send(ev, time.Millisecond*500)
	}
}

func (c *Cell) Stop() {
	close(c.doneCh)
}
