// Package handlers provides HTTP handlers for the daily price history.
// PUT is the sync boundary for the external data feed; everything the
// correlation module reads comes in through it.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mag7labs/riskengine/internal/modules/history"
)

// Handler handles price history HTTP requests
type Handler struct {
	store *history.HistoryDB
	log   zerolog.Logger
}

// NewHandler creates a new history handler
func NewHandler(store *history.HistoryDB, log zerolog.Logger) *Handler {
	return &Handler{
		store: store,
		log:   log.With().Str("handler", "history").Logger(),
	}
}

type dailyCloseInput struct {
	Date  string  `json:"date"`
	Close float64 `json:"close"`
}

type syncRequest struct {
	Closes []dailyCloseInput `json:"closes"`
}

// HandleSync handles PUT /api/history/{symbol}. Closes are upserted by
// (symbol, date), so re-syncing an overlapping window overwrites in place.
func (h *Handler) HandleSync(w http.ResponseWriter, r *http.Request, symbol string) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		http.Error(w, "symbol is required", http.StatusBadRequest)
		return
	}

	var req syncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Closes) == 0 {
		http.Error(w, "closes must not be empty", http.StatusBadRequest)
		return
	}

	for _, c := range req.Closes {
		if _, err := time.Parse("2006-01-02", c.Date); err != nil {
			http.Error(w, "Invalid date: "+c.Date, http.StatusBadRequest)
			return
		}
		if c.Close <= 0 {
			http.Error(w, "close must be positive", http.StatusBadRequest)
			return
		}
	}

	for _, c := range req.Closes {
		if err := h.store.UpsertDailyClose(symbol, c.Date, c.Close); err != nil {
			h.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to store daily close")
			http.Error(w, "Failed to store daily closes", http.StatusInternalServerError)
			return
		}
	}

	h.log.Info().
		Str("symbol", symbol).
		Int("count", len(req.Closes)).
		Msg("Price history synced")

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"symbol": symbol,
			"stored": len(req.Closes),
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleGetHistory handles GET /api/history/{symbol}?days=N
func (h *Handler) HandleGetHistory(w http.ResponseWriter, r *http.Request, symbol string) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		http.Error(w, "symbol is required", http.StatusBadRequest)
		return
	}

	days := 30
	if raw := r.URL.Query().Get("days"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			http.Error(w, "Invalid days", http.StatusBadRequest)
			return
		}
		days = v
	}

	closes, err := h.store.GetDailyCloses(symbol, days)
	if err != nil {
		h.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to load daily closes")
		http.Error(w, "Failed to load daily closes", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"symbol": symbol,
			"closes": closes,
		},
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
