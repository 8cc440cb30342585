// Package history provides read access to the daily price time-series.
// Prices arrive through the external data feed's sync path; the analytic
// modules only ever read them as immutable snapshots.
package history

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mag7labs/riskengine/internal/domain"
)

// HistoryDB handles daily price storage on history.db.
type HistoryDB struct {
	db  *sql.DB
	log zerolog.Logger
}

const historySchema = `
CREATE TABLE IF NOT EXISTS daily_prices (
	symbol TEXT NOT NULL,
	date   TEXT NOT NULL,
	close  REAL NOT NULL,
	PRIMARY KEY (symbol, date)
);
CREATE INDEX IF NOT EXISTS idx_daily_prices_date ON daily_prices(date);
`

// NewHistoryDB creates the history store and ensures its schema exists.
func NewHistoryDB(db *sql.DB, log zerolog.Logger) (*HistoryDB, error) {
	if _, err := db.Exec(historySchema); err != nil {
		return nil, fmt.Errorf("failed to create history schema: %w", err)
	}
	return &HistoryDB{
		db:  db,
		log: log.With().Str("repo", "history").Logger(),
	}, nil
}

// GetDailyCloses returns up to the last `days` closes for a symbol,
// ordered ascending by date.
func (h *HistoryDB) GetDailyCloses(symbol string, days int) ([]domain.DailyClose, error) {
	rows, err := h.db.Query(`
		SELECT date, close FROM (
			SELECT date, close FROM daily_prices
			WHERE symbol = ?
			ORDER BY date DESC
			LIMIT ?
		) ORDER BY date ASC`, symbol, days)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily prices: %w", err)
	}
	defer rows.Close()

	var closes []domain.DailyClose
	for rows.Next() {
		var c domain.DailyClose
		if err := rows.Scan(&c.Date, &c.Close); err != nil {
			return nil, fmt.Errorf("failed to scan daily price: %w", err)
		}
		closes = append(closes, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating daily prices: %w", err)
	}
	return closes, nil
}

// UpsertDailyClose records one day's close for a symbol. This is the data
// feed boundary; re-syncs overwrite in place.
func (h *HistoryDB) UpsertDailyClose(symbol, date string, close float64) error {
	_, err := h.db.Exec(`INSERT INTO daily_prices (symbol, date, close) VALUES (?, ?, ?)
		ON CONFLICT(symbol, date) DO UPDATE SET close = excluded.close`,
		symbol, date, close)
	if err != nil {
		return fmt.Errorf("failed to upsert daily price: %w", err)
	}
	return nil
}

// MaxAvailableDays returns the largest number of daily observations held
// for any tracked symbol, used to validate lookback requests.
func (h *HistoryDB) MaxAvailableDays() (int, error) {
	var days sql.NullInt64
	err := h.db.QueryRow(`SELECT MAX(n) FROM (
		SELECT COUNT(*) AS n FROM daily_prices GROUP BY symbol
	)`).Scan(&days)
	if err != nil {
		return 0, fmt.Errorf("failed to count history: %w", err)
	}
	if !days.Valid {
		return 0, nil
	}
	return int(days.Int64), nil
}
