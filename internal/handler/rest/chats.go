package rest

import (
	"log/slog"
	"net/http"

	"github.com/talkbase/chat-service/internal/domain/model"
	"github.com/talkbase/chat-service/internal/service"
)

type ChatHandler struct {
	chats  *service.ChatService
	logger *slog.Logger
}

func NewChatHandler(chats *service.ChatService, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{chats: chats, logger: logger}
}

type chatCreateRequest struct {
	Name string `json:"username"`
	Type string `json:"type" validate:"required,oneof=pv group bot"`
}

func (h *ChatHandler) Create(w http.ResponseWriter, r *http.Request) {
	requester, ok := requesterID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	var req chatCreateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	chat, err := h.chats.Create(r.Context(), requester, model.ChatType(req.Type), req.Name)
	if err != nil {
		respondError(w, err)
		return
	}

	h.logger.Info("chat created", "chat_id", chat.ID, "type", chat.Type, "creator", requester)
	writeJSON(w, http.StatusCreated, chat)
}

func (h *ChatHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	chat, err := h.chats.Get(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, chat)
}

type chatUpdateRequest struct {
	Name      string `json:"username"`
	CreatorID int64  `json:"createBy"`
}

func (h *ChatHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req chatUpdateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	chat, err := h.chats.Update(r.Context(), id, service.ChatUpdate{
		Name:      req.Name,
		CreatorID: req.CreatorID,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, chat)
}

func (h *ChatHandler) Delete(w http.ResponseWriter, r *http.Request) {
	requester, ok := requesterID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.chats.Delete(r.Context(), id, requester); err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type membershipRequest struct {
	ChatID int64 `json:"chatId" validate:"required,gt=0"`
}

func (h *ChatHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	requester, ok := requesterID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	var req membershipRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	chat, err := h.chats.Subscribe(r.Context(), req.ChatID, requester)
	if err != nil {
		respondError(w, err)
		return
	}

	h.logger.Info("chat joined", "chat_id", chat.ID, "user_id", requester)
	writeJSON(w, http.StatusOK, chat)
}

func (h *ChatHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	requester, ok := requesterID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	var req membershipRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	chat, err := h.chats.Unsubscribe(r.Context(), req.ChatID, requester)
	if err != nil {
		respondError(w, err)
		return
	}

	h.logger.Info("chat left", "chat_id", chat.ID, "user_id", requester)
	writeJSON(w, http.StatusOK, chat)
}
