package service

import (
	"log/slog"

	"github.com/talkbase/chat-service/internal/storage"
	"go.uber.org/fx"
)

var Module = fx.Module(
	"service",

	fx.Provide(
		// Domain services
		fx.Annotate(
			NewAuthService,
			fx.As(new(Auther)),
		),
		fx.Annotate(
			func(store *storage.Store) *ProfileResolver { return NewProfileResolver(store) },
			fx.As(new(Profiler)),
		),
		fx.Annotate(
			NewDeliveryService,
			fx.As(new(Deliverer)),
		),
		NewChatService,
		NewUserService,
		NewMessageService,
		fx.Annotate(
			func(chats *ChatService, store *storage.Store, profiles Profiler, pub EventPublisher, logger *slog.Logger) *DispatchService {
				return NewDispatchService(chats, store, profiles, pub, logger)
			},
			fx.As(new(Dispatcher)),
		),
	),

	// [DECORATION_LAYER] Intercept the Profiler to add cross-cutting concerns.
	fx.Decorate(func(orig Profiler, logger *slog.Logger) Profiler {
		return &ProfilerMiddleware{
			Next:   orig,
			Logger: logger,
		}
	}),
)
