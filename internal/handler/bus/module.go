package bus

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	pubsubadapter "github.com/talkbase/chat-service/internal/adapter/pubsub"
	"github.com/talkbase/chat-service/internal/service"
	"go.uber.org/fx"
)

var Module = fx.Module("bus-handler",
	fx.Provide(
		pubsubadapter.NewGoChannel,
		func(ch *gochannel.GoChannel) message.Publisher { return ch },
		func(ch *gochannel.GoChannel) message.Subscriber { return ch },

		pubsubadapter.NewEventDispatcher,
		func(d *pubsubadapter.EventDispatcher) service.EventPublisher { return d },

		NewMessageHandler,
		NewWatermillRouter,
	),

	fx.Invoke(RegisterHandlers),
)

// RegisterHandlers registers listeners and ties the router to the fx lifecycle.
func RegisterHandlers(
	lc fx.Lifecycle,
	h *MessageHandler,
	router *message.Router,
	sub message.Subscriber,
	dispatcher *pubsubadapter.EventDispatcher,
) error {
	if err := h.RegisterHandlers(router, sub, dispatcher); err != nil {
		return err
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				if err := router.Run(context.Background()); err != nil {
					h.logger.Error("delivery router stopped", "err", err)
				}
			}()
			return nil
		},
		OnStop: func(context.Context) error {
			return router.Close()
		},
	})
	return nil
}
