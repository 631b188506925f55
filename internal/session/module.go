package session

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/talkbase/chat-service/config"
	"go.uber.org/fx"
)

var Module = fx.Module("session",
	fx.Provide(NewDirectory),
)

// NewDirectory selects the backend from configuration. The redis backend is
// always wrapped in the circuit breaker; the in-memory backend cannot fail
// and is used bare.
func NewDirectory(lc fx.Lifecycle, cfg *config.Config, logger *slog.Logger) Directory {
	if cfg.Session.Backend == "memory" {
		logger.Warn("session directory running in-memory, sessions are not shared across instances")
		return NewMemoryDirectory()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Session.RedisAddr,
		Password: cfg.Session.RedisPassword,
		DB:       cfg.Session.RedisDB,
	})

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx).Err(); err != nil {
				logger.Warn("session directory redis unreachable at startup", "addr", cfg.Session.RedisAddr, "err", err)
			}
			return nil
		},
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})

	return NewBreakerDirectory(NewRedisDirectory(client))
}
