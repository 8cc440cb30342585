package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers correlation routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/risk/correlations", h.HandleGetCorrelations)
	r.Get("/risk/correlations/pairs/{symbolA}/{symbolB}", func(w http.ResponseWriter, r *http.Request) {
		h.HandleGetPairHistory(w, r, chi.URLParam(r, "symbolA"), chi.URLParam(r, "symbolB"))
	})
	r.Get("/risk/betas", h.HandleGetBetas)
}
