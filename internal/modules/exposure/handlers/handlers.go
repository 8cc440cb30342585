// Package handlers provides HTTP handlers for exposure checks.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/mag7labs/riskengine/internal/domain"
	"github.com/mag7labs/riskengine/internal/modules/exposure"
	"github.com/mag7labs/riskengine/internal/modules/portfolio"
)

// MatrixSource supplies the latest stored correlation matrix for the
// advisory correlation alert. Optional: a miss just skips the alert.
type MatrixSource interface {
	LatestMatrix() (domain.CorrelationMatrix, string, error)
}

// Handler handles exposure HTTP requests
type Handler struct {
	exposure  *exposure.Service
	portfolio *portfolio.Service
	positions domain.PositionProvider
	profiles  domain.ProfileProvider
	matrices  MatrixSource
	log       zerolog.Logger
}

// NewHandler creates a new exposure handler
func NewHandler(
	exposureSvc *exposure.Service,
	portfolioSvc *portfolio.Service,
	positions domain.PositionProvider,
	profiles domain.ProfileProvider,
	matrices MatrixSource,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		exposure:  exposureSvc,
		portfolio: portfolioSvc,
		positions: positions,
		profiles:  profiles,
		matrices:  matrices,
		log:       log.With().Str("handler", "exposure").Logger(),
	}
}

// HandleGetExposure handles GET /api/risk/exposure
func (h *Handler) HandleGetExposure(w http.ResponseWriter, r *http.Request) {
	profile, err := h.profiles.Get()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load risk profile")
		http.Error(w, "Failed to load risk profile", http.StatusInternalServerError)
		return
	}

	snapshot, err := h.portfolio.Snapshot()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load portfolio snapshot")
		http.Error(w, "Failed to load portfolio", http.StatusInternalServerError)
		return
	}

	positions, err := h.positions.GetActive()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load positions")
		http.Error(w, "Failed to load positions", http.StatusInternalServerError)
		return
	}

	var matrix domain.CorrelationMatrix
	if h.matrices != nil {
		m, _, err := h.matrices.LatestMatrix()
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			h.log.Warn().Err(err).Msg("Failed to load correlation matrix, skipping correlation alert")
		} else {
			matrix = m
		}
	}

	report, err := h.exposure.Check(exposure.Input{
		Positions:      positions,
		Profile:        profile,
		PortfolioValue: snapshot.TotalValue,
		Correlations:   matrix,
	})
	if err != nil {
		var vErr *domain.ValidationError
		if errors.As(err, &vErr) {
			http.Error(w, vErr.Error(), http.StatusBadRequest)
			return
		}
		h.log.Error().Err(err).Msg("Failed to check exposure")
		http.Error(w, "Failed to check exposure", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": report,
		"metadata": map[string]interface{}{
			"portfolio_value": snapshot.TotalValue,
			"timestamp":       time.Now().Format(time.RFC3339),
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
