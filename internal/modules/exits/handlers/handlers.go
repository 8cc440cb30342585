// Package handlers provides HTTP handlers for exit level operations.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/mag7labs/riskengine/internal/domain"
	"github.com/mag7labs/riskengine/internal/modules/exits"
)

// LevelWriter persists computed exit levels back onto the position.
type LevelWriter interface {
	SetExitLevels(id string, stopLoss, takeProfit float64) error
}

// Handler handles exit level HTTP requests
type Handler struct {
	exits     *exits.Service
	positions domain.PositionProvider
	profiles  domain.ProfileProvider
	writer    LevelWriter
	log       zerolog.Logger
}

// NewHandler creates a new exit levels handler
func NewHandler(
	exitsSvc *exits.Service,
	positions domain.PositionProvider,
	profiles domain.ProfileProvider,
	writer LevelWriter,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		exits:     exitsSvc,
		positions: positions,
		profiles:  profiles,
		writer:    writer,
		log:       log.With().Str("handler", "exits").Logger(),
	}
}

// HandleGetLevels handles GET /api/risk/positions/{id}/levels. An
// optional risk_reward_ratio query parameter overrides the profile's
// ratio for this computation only. Computed levels are persisted onto
// the position so subsequent checks use them.
func (h *Handler) HandleGetLevels(w http.ResponseWriter, r *http.Request, id string) {
	pos, err := h.positions.GetByID(id)
	if err != nil {
		h.respondLookupError(w, err, id)
		return
	}

	profile, err := h.profiles.Get()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load risk profile")
		http.Error(w, "Failed to load risk profile", http.StatusInternalServerError)
		return
	}

	if raw := r.URL.Query().Get("risk_reward_ratio"); raw != "" {
		ratio, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			http.Error(w, "Invalid risk_reward_ratio", http.StatusBadRequest)
			return
		}
		profile.RiskRewardRatio = ratio
	}

	levels, err := h.exits.ComputeLevels(*pos, profile)
	if err != nil {
		var vErr *domain.ValidationError
		if errors.As(err, &vErr) {
			http.Error(w, vErr.Error(), http.StatusBadRequest)
			return
		}
		h.log.Error().Err(err).Str("position_id", id).Msg("Failed to compute exit levels")
		http.Error(w, "Failed to compute exit levels", http.StatusInternalServerError)
		return
	}

	if err := h.writer.SetExitLevels(id, levels.StopLoss, levels.TakeProfit); err != nil {
		h.log.Error().Err(err).Str("position_id", id).Msg("Failed to persist exit levels")
		http.Error(w, "Failed to persist exit levels", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": levels,
		"metadata": map[string]interface{}{
			"position_id": id,
			"timestamp":   time.Now().Format(time.RFC3339),
		},
	})
}

// HandleCheck handles GET /api/risk/positions/{id}/check
func (h *Handler) HandleCheck(w http.ResponseWriter, r *http.Request, id string) {
	pos, err := h.positions.GetByID(id)
	if err != nil {
		h.respondLookupError(w, err, id)
		return
	}

	result, err := h.exits.Check(*pos)
	if err != nil {
		var vErr *domain.ValidationError
		if errors.As(err, &vErr) {
			http.Error(w, vErr.Error(), http.StatusBadRequest)
			return
		}
		h.log.Error().Err(err).Str("position_id", id).Msg("Failed to check exit levels")
		http.Error(w, "Failed to check exit levels", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": checkPayload(result),
		"metadata": map[string]interface{}{
			"position_id": id,
			"timestamp":   time.Now().Format(time.RFC3339),
		},
	})
}

// checkPayload augments the raw check result with the distance-to-level
// percentages and an operator-facing message.
func checkPayload(result exits.CheckResult) map[string]interface{} {
	payload := map[string]interface{}{
		"action":              result.Action,
		"current_price":       result.CurrentPrice,
		"stop_loss":           result.StopLoss,
		"take_profit":         result.TakeProfit,
		"days_to_expiration":  result.DaysToExpiration,
		"unrealized_pnl":      result.UnrealizedPnL,
		"current_risk_reward": result.CurrentRiskReward,
	}

	message := "Position within exit levels"
	switch result.Action {
	case exits.ActionExpired:
		message = "Contract has expired"
	case exits.ActionStopLoss:
		message = "Stop-loss hit"
	case exits.ActionTakeProfit:
		message = "Take-profit hit"
	}

	if result.StopLoss != nil && result.CurrentPrice > 0 {
		pct := (result.CurrentPrice - *result.StopLoss) / result.CurrentPrice * 100
		payload["pct_to_stop_loss"] = pct
		if result.Action == exits.ActionHold && pct >= 0 && pct < 5 {
			message = fmt.Sprintf("Approaching stop-loss (%.1f%% away)", pct)
		}
	}
	if result.TakeProfit != nil && result.CurrentPrice > 0 {
		pct := (*result.TakeProfit - result.CurrentPrice) / result.CurrentPrice * 100
		payload["pct_to_take_profit"] = pct
		if result.Action == exits.ActionHold && pct >= 0 && pct < 5 {
			message = fmt.Sprintf("Approaching take-profit (%.1f%% away)", pct)
		}
	}

	payload["message"] = message
	return payload
}

func (h *Handler) respondLookupError(w http.ResponseWriter, err error, id string) {
	if errors.Is(err, domain.ErrNotFound) {
		http.Error(w, "Position not found", http.StatusNotFound)
		return
	}
	h.log.Error().Err(err).Str("position_id", id).Msg("Failed to load position")
	http.Error(w, "Failed to load position", http.StatusInternalServerError)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
