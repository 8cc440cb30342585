// Package handlers provides HTTP handlers for the risk profile. PUT here
// is the only path that mutates the profile; the recommender only ever
// proposes values.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/mag7labs/riskengine/internal/domain"
	"github.com/mag7labs/riskengine/internal/modules/profile"
)

// Handler handles risk profile HTTP requests
type Handler struct {
	repo *profile.Repository
	log  zerolog.Logger
}

// NewHandler creates a new profile handler
func NewHandler(repo *profile.Repository, log zerolog.Logger) *Handler {
	return &Handler{
		repo: repo,
		log:  log.With().Str("handler", "profile").Logger(),
	}
}

// HandleGet handles GET /api/profile
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	p, err := h.repo.Get()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load risk profile")
		http.Error(w, "Failed to load risk profile", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": p,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleUpdate handles PUT /api/profile
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var p domain.RiskProfile
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.repo.Update(p); err != nil {
		var vErr *domain.ValidationError
		if errors.As(err, &vErr) {
			http.Error(w, vErr.Error(), http.StatusBadRequest)
			return
		}
		h.log.Error().Err(err).Msg("Failed to update risk profile")
		http.Error(w, "Failed to update risk profile", http.StatusInternalServerError)
		return
	}

	h.log.Info().
		Float64("max_portfolio_risk", p.MaxPortfolioRisk).
		Float64("max_portfolio_exposure", p.MaxPortfolioExposure).
		Msg("Risk profile updated")

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": p,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
