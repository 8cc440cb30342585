package handlers

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/mag7labs/riskengine/internal/config"
	"github.com/mag7labs/riskengine/internal/domain"
	"github.com/mag7labs/riskengine/internal/modules/portfolio"
	"github.com/mag7labs/riskengine/internal/modules/profile"
	"github.com/mag7labs/riskengine/internal/modules/sizing"
)

func newTestRouter(t *testing.T) chi.Router {
	t.Helper()

	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	log := zerolog.Nop()

	positionRepo, err := portfolio.NewPositionRepository(db, log)
	require.NoError(t, err)
	tradeRepo, err := portfolio.NewTradeRepository(db, log)
	require.NoError(t, err)
	accountRepo, err := portfolio.NewAccountRepository(db, 100000, log)
	require.NoError(t, err)
	profileRepo, err := profile.NewRepository(db, log)
	require.NoError(t, err)

	portfolioSvc := portfolio.NewService(positionRepo, tradeRepo, accountRepo, domain.SystemClock{}, log)
	sizer := sizing.NewService(config.RiskConfig{
		ConfidenceFloor:   0.6,
		ConfidenceCeiling: 1.3,
	}, log)

	r := chi.NewRouter()
	NewHandler(sizer, portfolioSvc, profileRepo, log).RegisterRoutes(r)
	return r
}

func postSize(t *testing.T, router chi.Router, payload string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/risk/position-size", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCalculatePositionSize(t *testing.T) {
	router := newTestRouter(t)

	rec := postSize(t, router, `{"symbol": "aapl", "confidence": 0.8, "option_price": 2.0}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data struct {
			Contracts            int     `json:"contracts"`
			MaxCapital           float64 `json:"max_capital"`
			ConfidenceMultiplier float64 `json:"confidence_multiplier"`
			Reason               string  `json:"reason"`
		} `json:"data"`
		Metadata struct {
			Symbol string `json:"symbol"`
		} `json:"metadata"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	// Default profile on a fresh 100k account: max capital 25000,
	// multiplier 1.15 at 0.8 confidence, capped by the 10k per-stock
	// budget over a 200-per-contract premium.
	assert.InDelta(t, 25000, body.Data.MaxCapital, 1e-9)
	assert.InDelta(t, 1.15, body.Data.ConfidenceMultiplier, 1e-9)
	assert.Equal(t, 50, body.Data.Contracts)
	assert.Empty(t, body.Data.Reason)
	assert.Equal(t, "AAPL", body.Metadata.Symbol)
}

func TestCalculatePositionSizeLowConfidence(t *testing.T) {
	router := newTestRouter(t)

	rec := postSize(t, router, `{"symbol": "AAPL", "confidence": 0.5, "option_price": 2.0}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data struct {
			Contracts int    `json:"contracts"`
			Reason    string `json:"reason"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Zero(t, body.Data.Contracts)
	assert.Equal(t, "INSUFFICIENT_CONFIDENCE", body.Data.Reason)
}

func TestCalculatePositionSizeValidation(t *testing.T) {
	router := newTestRouter(t)

	rec := postSize(t, router, `{"symbol": "", "confidence": 0.8, "option_price": 2.0}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postSize(t, router, `{"symbol": "AAPL", "confidence": 0.8, "option_price": 0}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postSize(t, router, `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
