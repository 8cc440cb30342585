package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers portfolio routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/portfolio", func(r chi.Router) {
		r.Get("/", h.HandleGetPortfolio)
		r.Post("/positions", h.HandleOpenPosition)
		r.Post("/positions/{id}/close", func(w http.ResponseWriter, r *http.Request) {
			h.HandleClosePosition(w, r, chi.URLParam(r, "id"))
		})
		r.Put("/positions/{id}/price", func(w http.ResponseWriter, r *http.Request) {
			h.HandleUpdatePrice(w, r, chi.URLParam(r, "id"))
		})
	})
}
