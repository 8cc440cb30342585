package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers exposure routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/risk/exposure", h.HandleGetExposure)
}
