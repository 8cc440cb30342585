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

	"github.com/mag7labs/riskengine/internal/modules/profile"
)

func newTestRouter(t *testing.T) chi.Router {
	t.Helper()

	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	repo, err := profile.NewRepository(db, zerolog.Nop())
	require.NoError(t, err)

	r := chi.NewRouter()
	NewHandler(repo, zerolog.Nop()).RegisterRoutes(r)
	return r
}

func TestGetProfileReturnsDefaults(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data struct {
			MaxPortfolioRisk     float64 `json:"max_portfolio_risk"`
			MaxPortfolioExposure float64 `json:"max_portfolio_exposure"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.InDelta(t, 0.02, body.Data.MaxPortfolioRisk, 1e-9)
	assert.InDelta(t, 0.50, body.Data.MaxPortfolioExposure, 1e-9)
}

func TestUpdateProfileRoundTrip(t *testing.T) {
	router := newTestRouter(t)

	payload := `{
		"max_portfolio_risk": 0.03,
		"max_portfolio_exposure": 0.6,
		"max_stock_allocation": 0.12,
		"max_loss_per_trade": 0.2,
		"risk_reward_ratio": 1.8
	}`
	req := httptest.NewRequest(http.MethodPut, "/profile", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/profile", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data struct {
			MaxPortfolioRisk float64 `json:"max_portfolio_risk"`
			RiskRewardRatio  float64 `json:"risk_reward_ratio"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.InDelta(t, 0.03, body.Data.MaxPortfolioRisk, 1e-9)
	assert.InDelta(t, 1.8, body.Data.RiskRewardRatio, 1e-9)
}

func TestUpdateProfileRejectsOutOfRange(t *testing.T) {
	router := newTestRouter(t)

	payload := `{
		"max_portfolio_risk": 1.5,
		"max_portfolio_exposure": 0.6,
		"max_stock_allocation": 0.12,
		"max_loss_per_trade": 0.2,
		"risk_reward_ratio": 1.8
	}`
	req := httptest.NewRequest(http.MethodPut, "/profile", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateProfileRejectsBadJSON(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPut, "/profile", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
