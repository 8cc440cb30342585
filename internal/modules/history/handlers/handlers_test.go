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

	"github.com/mag7labs/riskengine/internal/modules/history"
)

func newTestRouter(t *testing.T) (chi.Router, *history.HistoryDB) {
	t.Helper()

	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	store, err := history.NewHistoryDB(db, zerolog.Nop())
	require.NoError(t, err)

	r := chi.NewRouter()
	NewHandler(store, zerolog.Nop()).RegisterRoutes(r)
	return r, store
}

func TestSyncStoresCloses(t *testing.T) {
	router, store := newTestRouter(t)

	payload := `{"closes": [
		{"date": "2026-02-02", "close": 210.5},
		{"date": "2026-02-03", "close": 212.0}
	]}`
	req := httptest.NewRequest(http.MethodPut, "/history/aapl", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data struct {
			Symbol string `json:"symbol"`
			Stored int    `json:"stored"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "AAPL", body.Data.Symbol)
	assert.Equal(t, 2, body.Data.Stored)

	closes, err := store.GetDailyCloses("AAPL", 30)
	require.NoError(t, err)
	require.Len(t, closes, 2)
	assert.Equal(t, "2026-02-02", closes[0].Date)
	assert.InDelta(t, 210.5, closes[0].Close, 1e-9)
}

func TestSyncOverwritesExistingDate(t *testing.T) {
	router, store := newTestRouter(t)

	first := `{"closes": [{"date": "2026-02-02", "close": 210.5}]}`
	req := httptest.NewRequest(http.MethodPut, "/history/AAPL", strings.NewReader(first))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	corrected := `{"closes": [{"date": "2026-02-02", "close": 211.0}]}`
	req = httptest.NewRequest(http.MethodPut, "/history/AAPL", strings.NewReader(corrected))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	closes, err := store.GetDailyCloses("AAPL", 30)
	require.NoError(t, err)
	require.Len(t, closes, 1)
	assert.InDelta(t, 211.0, closes[0].Close, 1e-9)
}

func TestSyncRejectsBadInput(t *testing.T) {
	router, _ := newTestRouter(t)

	cases := []struct {
		name    string
		payload string
	}{
		{"bad json", "{not json"},
		{"empty closes", `{"closes": []}`},
		{"bad date", `{"closes": [{"date": "02/02/2026", "close": 210.5}]}`},
		{"non-positive close", `{"closes": [{"date": "2026-02-02", "close": 0}]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPut, "/history/AAPL", strings.NewReader(tc.payload))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestGetHistoryWindow(t *testing.T) {
	router, store := newTestRouter(t)

	require.NoError(t, store.UpsertDailyClose("MSFT", "2026-02-02", 400))
	require.NoError(t, store.UpsertDailyClose("MSFT", "2026-02-03", 402))
	require.NoError(t, store.UpsertDailyClose("MSFT", "2026-02-04", 405))

	req := httptest.NewRequest(http.MethodGet, "/history/msft?days=2", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data struct {
			Closes []struct {
				Date  string  `json:"date"`
				Close float64 `json:"close"`
			} `json:"closes"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data.Closes, 2)
	assert.Equal(t, "2026-02-03", body.Data.Closes[0].Date)
	assert.Equal(t, "2026-02-04", body.Data.Closes[1].Date)
}
