package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers exit level routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/risk/positions/{id}", func(r chi.Router) {
		r.Get("/levels", func(w http.ResponseWriter, r *http.Request) {
			h.HandleGetLevels(w, r, chi.URLParam(r, "id"))
		})
		r.Get("/check", func(w http.ResponseWriter, r *http.Request) {
			h.HandleCheck(w, r, chi.URLParam(r, "id"))
		})
	})
}
