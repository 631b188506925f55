package rest

import (
	"log/slog"
	"net/http"

	"github.com/talkbase/chat-service/internal/service"
)

type MessageHandler struct {
	messages *service.MessageService
	logger   *slog.Logger
}

func NewMessageHandler(messages *service.MessageService, logger *slog.Logger) *MessageHandler {
	return &MessageHandler{messages: messages, logger: logger}
}

// ListByChat serves a chat's history page. The route sits behind ChatAccess,
// so only subscribers ever reach it.
func (h *MessageHandler) ListByChat(w http.ResponseWriter, r *http.Request) {
	chatID, ok := pathID(w, r)
	if !ok {
		return
	}
	offset, limit := pageParams(r)

	messages, err := h.messages.ListByChat(r.Context(), chatID, offset, limit)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messages)
}

type messageUpdateRequest struct {
	Text string `json:"context" validate:"required"`
}

// Update and Delete sit behind MessageAccess, so only the sender reaches them.
func (h *MessageHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req messageUpdateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	msg, err := h.messages.Update(r.Context(), id, req.Text)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, msg)
}

func (h *MessageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.messages.Delete(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
