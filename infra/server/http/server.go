package http

import (
	"context"
	"errors"
	"log/slog"
	nethttp "net/http"
	"time"

	"github.com/talkbase/chat-service/config"
	"go.uber.org/fx"
)

// NewServer runs the assembled router as the process's public listener,
// tied to the fx lifecycle.
func NewServer(lc fx.Lifecycle, cfg *config.Config, handler nethttp.Handler, logger *slog.Logger) *nethttp.Server {
	srv := &nethttp.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				logger.Info("http server listening", "addr", srv.Addr)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
					logger.Error("http server failed", "err", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})

	return srv
}
