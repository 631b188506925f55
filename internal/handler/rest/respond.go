package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/talkbase/chat-service/internal/service"
	"github.com/talkbase/chat-service/internal/storage"
)

// errorBody is the error envelope every endpoint answers with.
type errorBody struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Message: msg})
}

// respondError maps domain and storage failures onto the API's status table.
func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrUsernameTaken),
		errors.Is(err, service.ErrAlreadyMember):
		writeError(w, http.StatusConflict, err.Error())

	case errors.Is(err, storage.ErrUserNotFound),
		errors.Is(err, storage.ErrChatNotFound),
		errors.Is(err, storage.ErrMessageNotFound),
		errors.Is(err, service.ErrNotMember):
		writeError(w, http.StatusNotFound, err.Error())

	case errors.Is(err, service.ErrAuthFailure):
		writeError(w, http.StatusUnauthorized, err.Error())

	case errors.Is(err, service.ErrForbidden),
		errors.Is(err, service.ErrNotSubscriber):
		writeError(w, http.StatusForbidden, err.Error())

	case errors.Is(err, service.ErrCreatorCannotLeave),
		errors.Is(err, service.ErrChatNameRequired):
		writeError(w, http.StatusBadRequest, err.Error())

	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// decodeJSON reads the request body into dst; a malformed body is always the
// caller's fault.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return false
	}
	return true
}
