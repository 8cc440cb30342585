// Package handlers provides HTTP handlers for the portfolio round-trip:
// open, re-price, close.
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
)

// Handler handles portfolio HTTP requests
type Handler struct {
	portfolio *portfolio.Service
	positions domain.PositionProvider
	log       zerolog.Logger
}

// NewHandler creates a new portfolio handler
func NewHandler(portfolioSvc *portfolio.Service, positions domain.PositionProvider, log zerolog.Logger) *Handler {
	return &Handler{
		portfolio: portfolioSvc,
		positions: positions,
		log:       log.With().Str("handler", "portfolio").Logger(),
	}
}

// HandleGetPortfolio handles GET /api/portfolio
func (h *Handler) HandleGetPortfolio(w http.ResponseWriter, r *http.Request) {
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

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"portfolio": snapshot,
			"positions": positions,
		},
		"metadata": map[string]interface{}{
			"position_count": len(positions),
			"timestamp":      time.Now().Format(time.RFC3339),
		},
	})
}

// HandleOpenPosition handles POST /api/portfolio/positions
func (h *Handler) HandleOpenPosition(w http.ResponseWriter, r *http.Request) {
	var req portfolio.OpenPositionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	req.Symbol = strings.ToUpper(strings.TrimSpace(req.Symbol))

	pos, err := h.portfolio.OpenPosition(req)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, map[string]interface{}{
		"data": pos,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

type closeRequest struct {
	ExitPrice float64 `json:"exit_price"`
}

// HandleClosePosition handles POST /api/portfolio/positions/{id}/close
func (h *Handler) HandleClosePosition(w http.ResponseWriter, r *http.Request, id string) {
	var req closeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	trade, err := h.portfolio.ClosePosition(id, req.ExitPrice)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": trade,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

type priceRequest struct {
	CurrentPrice float64 `json:"current_price"`
}

// HandleUpdatePrice handles PUT /api/portfolio/positions/{id}/price
func (h *Handler) HandleUpdatePrice(w http.ResponseWriter, r *http.Request, id string) {
	var req priceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.portfolio.UpdatePrice(id, req.CurrentPrice); err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"id":            id,
			"current_price": req.CurrentPrice,
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

func (h *Handler) respondServiceError(w http.ResponseWriter, err error) {
	var vErr *domain.ValidationError
	if errors.As(err, &vErr) {
		http.Error(w, vErr.Error(), http.StatusBadRequest)
		return
	}
	if errors.Is(err, domain.ErrNotFound) {
		http.Error(w, "Position not found", http.StatusNotFound)
		return
	}
	h.log.Error().Err(err).Msg("Portfolio operation failed")
	http.Error(w, "Portfolio operation failed", http.StatusInternalServerError)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
