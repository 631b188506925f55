package rest

import (
	"net/http"

	"github.com/talkbase/chat-service/internal/domain/registry"
)

type StatsHandler struct {
	hub registry.Hubber
}

func NewStatsHandler(hub registry.Hubber) *StatsHandler {
	return &StatsHandler{hub: hub}
}

// Stats reports live hub occupancy for operators.
func (h *StatsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.hub.Stats())
}
