// Package handlers provides HTTP handlers for correlation operations.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mag7labs/riskengine/internal/domain"
	"github.com/mag7labs/riskengine/internal/modules/correlation"
)

// Handler handles correlation HTTP requests
type Handler struct {
	correlation *correlation.Service
	repo        *correlation.Repository
	log         zerolog.Logger
}

// NewHandler creates a new correlation handler
func NewHandler(correlationSvc *correlation.Service, repo *correlation.Repository, log zerolog.Logger) *Handler {
	return &Handler{
		correlation: correlationSvc,
		repo:        repo,
		log:         log.With().Str("handler", "correlation").Logger(),
	}
}

// HandleGetCorrelations handles GET /api/risk/correlations. The matrix is
// computed fresh over the requested lookback window; the stored daily
// snapshots only serve the exposure check and pair history.
func (h *Handler) HandleGetCorrelations(w http.ResponseWriter, r *http.Request) {
	lookback, ok := h.lookbackParam(w, r)
	if !ok {
		return
	}

	result, err := h.correlation.BuildMatrix(lookback)
	if err != nil {
		h.respondComputeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"correlations":  result.Matrix,
			"symbols":       result.Symbols,
			"lookback_days": result.LookbackDays,
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleGetPairHistory handles GET /api/risk/correlations/pairs/{a}/{b}
func (h *Handler) HandleGetPairHistory(w http.ResponseWriter, r *http.Request, symbolA, symbolB string) {
	symbolA = strings.ToUpper(symbolA)
	symbolB = strings.ToUpper(symbolB)

	limit := 90
	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = v
	}

	points, err := h.repo.PairHistory(symbolA, symbolB, limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load pair history")
		http.Error(w, "Failed to load pair history", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"symbol_a": symbolA,
			"symbol_b": symbolB,
			"history":  points,
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleGetBetas handles GET /api/risk/betas?benchmark=SPY
func (h *Handler) HandleGetBetas(w http.ResponseWriter, r *http.Request) {
	benchmark := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("benchmark")))
	if benchmark == "" {
		http.Error(w, "benchmark is required", http.StatusBadRequest)
		return
	}

	lookback, ok := h.lookbackParam(w, r)
	if !ok {
		return
	}

	betas, err := h.correlation.Betas(benchmark, lookback)
	if err != nil {
		h.respondComputeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"benchmark": benchmark,
			"betas":     betas,
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// lookbackParam parses lookback_days, 0 meaning the configured default.
func (h *Handler) lookbackParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("lookback_days")
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		http.Error(w, "Invalid lookback_days", http.StatusBadRequest)
		return 0, false
	}
	return v, true
}

func (h *Handler) respondComputeError(w http.ResponseWriter, err error) {
	var vErr *domain.ValidationError
	if errors.As(err, &vErr) {
		http.Error(w, vErr.Error(), http.StatusBadRequest)
		return
	}
	if errors.Is(err, domain.ErrInsufficientData) {
		http.Error(w, "Not enough price history", http.StatusUnprocessableEntity)
		return
	}
	h.log.Error().Err(err).Msg("Failed to compute correlations")
	http.Error(w, "Failed to compute correlations", http.StatusInternalServerError)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
