package cmd

import (
	"log/slog"

	"github.com/talkbase/chat-service/config"
	httpsrv "github.com/talkbase/chat-service/infra/server/http"
	"github.com/talkbase/chat-service/internal/domain/registry"
	"github.com/talkbase/chat-service/internal/handler/bus"
	"github.com/talkbase/chat-service/internal/handler/rest"
	"github.com/talkbase/chat-service/internal/handler/ws"
	"github.com/talkbase/chat-service/internal/service"
	"github.com/talkbase/chat-service/internal/session"
	"github.com/talkbase/chat-service/internal/storage"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
)

func NewApp(cfg *config.Config) *fx.App {
	return fx.New(
		fx.Provide(
			func() *config.Config { return cfg },
			ProvideLogger,
			ProvideWatermillLogger,
		),
		fx.WithLogger(func(log *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: log}
		}),
		storage.Module,
		session.Module,
		registry.Module,
		service.Module,
		bus.Module,
		ws.Module,
		rest.Module,
		httpsrv.Module,
	)
}
