package service

import (
	"context"
	"log/slog"
	"time"
)

// ProfilerMiddleware implements [DECORATOR_PATTERN] to add observability
// to profile resolution without touching business logic.
type ProfilerMiddleware struct {
	Next   Profiler
	Logger *slog.Logger
}

func (m *ProfilerMiddleware) Username(ctx context.Context, userID int64) (string, error) {
	start := time.Now()

	name, err := m.Next.Username(ctx, userID)
	if err != nil {
		m.Logger.Warn("profile resolution failed",
			"user_id", userID,
			"err", err,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}

	return name, err
}

func (m *ProfilerMiddleware) Invalidate(userID int64) {
	m.Next.Invalidate(userID)
}
