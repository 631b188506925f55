package cmd

import (
	"log/slog"
	"os"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/talkbase/chat-service/config"
)

// ProvideLogger builds the root slog.Logger. The level is backed by a
// slog.LevelVar so configuration reloads can adjust it at runtime.
func ProvideLogger(cfg *config.Config) *slog.Logger {
	lvl := new(slog.LevelVar)
	lvl.Set(cfg.LogLevel())

	var handler slog.Handler
	if cfg.Server.Dev {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	}

	logger := slog.New(handler).With("service", ServiceName)
	slog.SetDefault(logger)

	cfg.OnReload(func(next *config.Config) {
		lvl.Set(next.LogLevel())
	})

	return logger
}

// ProvideWatermillLogger bridges the in-process message router onto slog.
func ProvideWatermillLogger(logger *slog.Logger) watermill.LoggerAdapter {
	return watermill.NewSlogLogger(logger)
}
