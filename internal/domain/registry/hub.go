package registry

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/talkbase/chat-service/internal/domain/event"
	"github.com/talkbase/chat-service/internal/domain/model"
)

// Hubber defines the gateway for user session management and event routing.
type Hubber interface {
	Broadcast(ev event.Eventer) bool
	Register(conn Connector)
	Unregister(userID int64, connID uuid.UUID)
	IsConnected(userID int64) bool
	Stats() model.HubStats
	Shutdown()
}

type hubConfig struct {
	mailboxSize      int
	idleTimeout      time.Duration
	evictionInterval time.Duration
}

// Hub maps user ids to their virtual cells. Optimized for read-heavy
// workloads via sync.Map.
type Hub struct {
	cells     sync.Map // int64 -> Celler
	config    hubConfig
	startedAt time.Time
	stopOnce  sync.Once
	doneCh    chan struct{}
}

func NewHub(opts ...Option) *Hub {
	h := &Hub{
		config: hubConfig{
			mailboxSize:      2048,
			idleTimeout:      30 * time.Minute,
			evictionInterval: 15 * time.Minute,
		},
		startedAt: time.Now(),
		doneCh:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	go h.janitor()
	return h
}

func (h *Hub) IsConnected(userID int64) bool {
	_, ok := h.cells.Load(userID)
	return ok
}

// Broadcast routes the event to the recipient's cell. Returns false on miss
// or mailbox overflow.
func (h *Hub) Broadcast(ev event.Eventer) bool {
	if val, ok := h.cells.Load(ev.GetUserID()); ok {
		if cell, ok := val.(Celler); ok {
			return cell.Push(ev)
		}
	}
	return false
}

// Register ensures [IDEMPOTENT] cell creation and attaches a new transport.
func (h *Hub) Register(conn Connector) {
	uID := conn.GetUserID()
	// [LAZY_INIT] Create the cell only when the first connection arrives.
	val, _ := h.cells.LoadOrStore(uID, Celler(NewCell(uID, h.config.mailboxSize)))

	if cell, ok := val.(Celler); ok {
		cell.Attach(conn)
	}
}

// Unregister performs [GRACEFUL_RECLAMATION] of resources when sessions end.
func (h *Hub) Unregister(userID int64, connID uuid.UUID) {
	if val, ok := h.cells.Load(userID); ok {
		if cell, ok := val.(Celler); ok {
			// If no sessions remain, purge the cell from memory.
			if cell.Detach(connID) {
				cell.Stop()
				h.cells.Delete(userID)
			}
		}
	}
}

func (h *Hub) Stats() model.HubStats {
	stats := model.HubStats{Uptime: time.Since(h.startedAt)}
	h.cells.Range(func(_, val any) bool {
		stats.TotalUsers++
		if cell, ok := val.(Celler); ok {
			stats.TotalConnections += cell.Sessions()
		}
		return true
	})
	return stats
}

// janitor periodically reclaims cells that lost all sessions without a clean
// unregister (broken transports, crashed pumps).
func (h *Hub) janitor() {
	ticker := time.NewTicker(h.config.evictionInterval)
	defer ticker.Stop()

	for {
		select {
		case <-h.doneCh:
			return
		case <-ticker.C:
			h.cells.Range(func(key, val any) bool {
				if cell, ok := val.(Celler); ok && cell.IsIdle(h.config.idleTimeout) {
					cell.Stop()
					h.cells.Delete(key)
				}
				return true
			})
		}
	}
}

// Shutdown stops all actor goroutines.
func (h *Hub) Shutdown() {
	h.stopOnce.Do(func() {
		close(h.doneCh)
		h.cells.Range(func(key, val any) bool {
			if cell, ok := val.(Celler); ok {
				cell.Stop()
			}
			h.cells.Delete(key)
			return true
		})
	})
}
