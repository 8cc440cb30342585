package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers performance routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/risk/metrics", h.HandleGetMetrics)
	r.Get("/risk/recommendations", h.HandleGetRecommendations)
}
