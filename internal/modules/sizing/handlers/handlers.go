// Package handlers provides HTTP handlers for position sizing.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mag7labs/riskengine/internal/domain"
	"github.com/mag7labs/riskengine/internal/modules/portfolio"
	"github.com/mag7labs/riskengine/internal/modules/sizing"
)

// Handler handles position sizing HTTP requests
type Handler struct {
	sizer     *sizing.Service
	portfolio *portfolio.Service
	profiles  domain.ProfileProvider
	log       zerolog.Logger
}

// NewHandler creates a new position sizing handler
func NewHandler(
	sizer *sizing.Service,
	portfolioSvc *portfolio.Service,
	profiles domain.ProfileProvider,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		sizer:     sizer,
		portfolio: portfolioSvc,
		profiles:  profiles,
		log:       log.With().Str("handler", "sizing").Logger(),
	}
}

type sizeRequest struct {
	Symbol      string  `json:"symbol"`
	Confidence  float64 `json:"confidence"`
	OptionPrice float64 `json:"option_price"`
}

// HandleCalculatePositionSize handles POST /api/risk/position-size
func (h *Handler) HandleCalculatePositionSize(w http.ResponseWriter, r *http.Request) {
	var req sizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	req.Symbol = strings.ToUpper(strings.TrimSpace(req.Symbol))
	if req.Symbol == "" {
		http.Error(w, "symbol is required", http.StatusBadRequest)
		return
	}

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

	allocation, err := h.portfolio.AllocationFor(req.Symbol)
	if err != nil {
		h.log.Error().Err(err).Str("symbol", req.Symbol).Msg("Failed to load allocation")
		http.Error(w, "Failed to load allocation", http.StatusInternalServerError)
		return
	}

	result, err := h.sizer.Size(sizing.Request{
		Profile:           profile,
		PortfolioValue:    snapshot.TotalValue,
		Confidence:        req.Confidence,
		OptionPrice:       req.OptionPrice,
		CurrentAllocation: allocation,
	})
	if err != nil {
		var vErr *domain.ValidationError
		if errors.As(err, &vErr) {
			http.Error(w, vErr.Error(), http.StatusBadRequest)
			return
		}
		h.log.Error().Err(err).Msg("Failed to size position")
		http.Error(w, "Failed to size position", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": result,
		"metadata": map[string]interface{}{
			"symbol":    req.Symbol,
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
