package rest

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/talkbase/chat-service/internal/service"
)

type ctxKey struct{}

// requesterID extracts the authenticated user set by Authenticator.
func requesterID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(ctxKey{}).(int64)
	return id, ok
}

// Authenticator admits only requests with a valid bearer token and stores the
// token's user id in the request context.
func Authenticator(auth service.Auther) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if raw == "" || raw == r.Header.Get("Authorization") {
				writeError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			userID, err := auth.VerifyToken(raw)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, userID)))
		})
	}
}

// UserAccess lets a user touch only their own account.
func UserAccess(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requester, ok := requesterID(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid user id")
			return
		}
		if id != requester {
			writeError(w, http.StatusForbidden, "cannot modify another account")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// ChatAccess admits only subscribers of the chat named in the URL.
func ChatAccess(chats *service.ChatService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requester, ok := requesterID(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			chatID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid chat id")
				return
			}

			chat, err := chats.Get(r.Context(), chatID)
			if err != nil {
				respondError(w, err)
				return
			}
			if !chat.IsSubscriber(requester) {
				writeError(w, http.StatusForbidden, "not a member of this chat")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// MessageAccess lets a user edit or delete only messages they sent.
func MessageAccess(messages *service.MessageService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requester, ok := requesterID(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid message id")
				return
			}

			msg, err := messages.Get(r.Context(), id)
			if err != nil {
				respondError(w, err)
				return
			}
			if msg.SenderID != requester {
				writeError(w, http.StatusForbidden, "not the sender of this message")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// pathID parses the {id} URL parameter.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

// pageParams reads offset/limit with the listing defaults.
func pageParams(r *http.Request) (offset, limit int) {
	offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return offset, limit
}
