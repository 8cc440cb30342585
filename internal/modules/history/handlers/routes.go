package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers price history routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/history/{symbol}", func(r chi.Router) {
		r.Put("/", func(w http.ResponseWriter, r *http.Request) {
			h.HandleSync(w, r, chi.URLParam(r, "symbol"))
		})
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			h.HandleGetHistory(w, r, chi.URLParam(r, "symbol"))
		})
	})
}
