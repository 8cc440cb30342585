package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers position sizing routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/risk/position-size", h.HandleCalculatePositionSize)
}
