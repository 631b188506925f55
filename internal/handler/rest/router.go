package rest

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/talkbase/chat-service/internal/handler/ws"
	"github.com/talkbase/chat-service/internal/service"
)

// NewRouter assembles the public HTTP surface: the REST API plus the
// WebSocket endpoint, behind the common middleware chain.
func NewRouter(
	logger *slog.Logger,
	auth service.Auther,
	chats *service.ChatService,
	messageSvc *service.MessageService,
	users *UserHandler,
	chatH *ChatHandler,
	messages *MessageHandler,
	stats *StatsHandler,
	gateway *ws.Gateway,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)

	// Public surface.
	r.Post("/signup", users.Signup)
	r.Post("/login", users.Login)
	r.Get("/stats", stats.Stats)
	r.Handle("/ws", gateway)

	// Token-guarded surface.
	r.Group(func(r chi.Router) {
		r.Use(Authenticator(auth))

		r.Route("/users", func(r chi.Router) {
			r.Get("/", users.List)
			r.Get("/{id}", users.Get)
			r.Get("/{id}/chats", users.Chats)

			r.With(UserAccess).Patch("/{id}", users.Update)
			r.With(UserAccess).Delete("/{id}", users.Delete)
		})

		r.Route("/chats", func(r chi.Router) {
			r.Post("/", chatH.Create)
			r.Post("/subscribe", chatH.Subscribe)
			r.Post("/unsubscribe", chatH.Unsubscribe)

			r.Route("/{id}", func(r chi.Router) {
				r.Use(ChatAccess(chats))
				r.Get("/", chatH.Get)
				r.Patch("/", chatH.Update)
				r.Delete("/", chatH.Delete)
				r.Get("/messages", messages.ListByChat)
			})
		})

		r.Route("/messages", func(r chi.Router) {
			r.Use(MessageAccess(messageSvc))
			r.Patch("/{id}", messages.Update)
			r.Delete("/{id}", messages.Delete)
		})
	})

	return r
}

// requestLogger emits one structured line per request.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(wrapped, r)

			logger.Debug("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", wrapped.Status(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
