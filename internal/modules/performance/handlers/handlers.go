// Package handlers provides HTTP handlers for performance metrics and
// profile recommendations.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/mag7labs/riskengine/internal/config"
	"github.com/mag7labs/riskengine/internal/domain"
	"github.com/mag7labs/riskengine/internal/modules/performance"
)

// AccountSource supplies cash balance and initial capital.
type AccountSource interface {
	Get() (cash float64, initialCapital float64, err error)
}

// Handler handles performance HTTP requests
type Handler struct {
	performance *performance.Service
	trades      domain.TradeProvider
	profiles    domain.ProfileProvider
	account     AccountSource
	cfg         config.RiskConfig
	log         zerolog.Logger
}

// NewHandler creates a new performance handler
func NewHandler(
	performanceSvc *performance.Service,
	trades domain.TradeProvider,
	profiles domain.ProfileProvider,
	account AccountSource,
	cfg config.RiskConfig,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		performance: performanceSvc,
		trades:      trades,
		profiles:    profiles,
		account:     account,
		cfg:         cfg,
		log:         log.With().Str("handler", "performance").Logger(),
	}
}

// HandleGetMetrics handles GET /api/risk/metrics
func (h *Handler) HandleGetMetrics(w http.ResponseWriter, r *http.Request) {
	report, ok := h.computeReport(w)
	if !ok {
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": report,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleGetRecommendations handles GET /api/risk/recommendations
func (h *Handler) HandleGetRecommendations(w http.ResponseWriter, r *http.Request) {
	report, ok := h.computeReport(w)
	if !ok {
		return
	}

	profile, err := h.profiles.Get()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load risk profile")
		http.Error(w, "Failed to load risk profile", http.StatusInternalServerError)
		return
	}

	recommendation := h.performance.Recommend(profile, report, h.cfg)

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": recommendation,
		"metadata": map[string]interface{}{
			"trade_count": report.TradeCount,
			"timestamp":   time.Now().Format(time.RFC3339),
		},
	})
}

func (h *Handler) computeReport(w http.ResponseWriter) (performance.Report, bool) {
	trades, err := h.trades.GetAllChronological()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load trades")
		http.Error(w, "Failed to load trades", http.StatusInternalServerError)
		return performance.Report{}, false
	}

	_, initialCapital, err := h.account.Get()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load account")
		http.Error(w, "Failed to load account", http.StatusInternalServerError)
		return performance.Report{}, false
	}

	return h.performance.Compute(trades, initialCapital), true
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
