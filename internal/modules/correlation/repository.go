package correlation

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/mag7labs/riskengine/internal/domain"
)

// Repository persists daily correlation snapshots two ways: individual
// pair rows for queries across time, and the whole matrix msgpack-encoded
// for cheap latest-matrix reads. Both are recomputable from price history,
// so this lives on the cache database profile.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

const correlationSchema = `
CREATE TABLE IF NOT EXISTS correlation_pairs (
	date        TEXT NOT NULL,
	symbol_a    TEXT NOT NULL,
	symbol_b    TEXT NOT NULL,
	coefficient REAL NOT NULL,
	PRIMARY KEY (date, symbol_a, symbol_b)
);
CREATE TABLE IF NOT EXISTS correlation_matrices (
	date          TEXT PRIMARY KEY,
	lookback_days INTEGER NOT NULL,
	matrix        BLOB NOT NULL
);
`

// NewRepository creates the correlation store and ensures its schema.
func NewRepository(db *sql.DB, log zerolog.Logger) (*Repository, error) {
	if _, err := db.Exec(correlationSchema); err != nil {
		return nil, fmt.Errorf("failed to create correlation schema: %w", err)
	}
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "correlation").Logger(),
	}, nil
}

// SaveSnapshot stores one day's matrix: the encoded blob plus one row per
// unordered pair (upper triangle only). Re-running a day overwrites it.
func (r *Repository) SaveSnapshot(date string, result Result) error {
	blob, err := msgpack.Marshal(result.Matrix)
	if err != nil {
		return fmt.Errorf("failed to encode correlation matrix: %w", err)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO correlation_matrices (date, lookback_days, matrix) VALUES (?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET lookback_days = excluded.lookback_days, matrix = excluded.matrix`,
		date, result.LookbackDays, blob)
	if err != nil {
		return fmt.Errorf("failed to upsert correlation matrix: %w", err)
	}

	for i := 0; i < len(result.Symbols); i++ {
		for j := i + 1; j < len(result.Symbols); j++ {
			a, b := result.Symbols[i], result.Symbols[j]
			_, err = tx.Exec(`INSERT INTO correlation_pairs (date, symbol_a, symbol_b, coefficient) VALUES (?, ?, ?, ?)
				ON CONFLICT(date, symbol_a, symbol_b) DO UPDATE SET coefficient = excluded.coefficient`,
				date, a, b, result.Matrix[a][b])
			if err != nil {
				return fmt.Errorf("failed to upsert correlation pair %s/%s: %w", a, b, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit correlation snapshot: %w", err)
	}

	r.log.Debug().Str("date", date).Int("symbols", len(result.Symbols)).Msg("saved correlation snapshot")
	return nil
}

// LatestMatrix returns the most recently stored matrix and its date.
// domain.ErrNotFound when nothing has been stored yet.
func (r *Repository) LatestMatrix() (domain.CorrelationMatrix, string, error) {
	var (
		date string
		blob []byte
	)
	err := r.db.QueryRow(`SELECT date, matrix FROM correlation_matrices ORDER BY date DESC LIMIT 1`).
		Scan(&date, &blob)
	if err == sql.ErrNoRows {
		return nil, "", domain.ErrNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to load latest correlation matrix: %w", err)
	}

	var matrix domain.CorrelationMatrix
	if err := msgpack.Unmarshal(blob, &matrix); err != nil {
		return nil, "", fmt.Errorf("failed to decode correlation matrix: %w", err)
	}
	return matrix, date, nil
}

// PairHistory returns the stored coefficients for one unordered pair,
// oldest first. Callers may pass the symbols in either order.
func (r *Repository) PairHistory(symbolA, symbolB string, limit int) ([]PairPoint, error) {
	rows, err := r.db.Query(`
		SELECT date, coefficient FROM (
			SELECT date, coefficient FROM correlation_pairs
			WHERE (symbol_a = ? AND symbol_b = ?) OR (symbol_a = ? AND symbol_b = ?)
			ORDER BY date DESC
			LIMIT ?
		) ORDER BY date ASC`, symbolA, symbolB, symbolB, symbolA, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query pair history: %w", err)
	}
	defer rows.Close()

	var points []PairPoint
	for rows.Next() {
		var p PairPoint
		if err := rows.Scan(&p.Date, &p.Coefficient); err != nil {
			return nil, fmt.Errorf("failed to scan pair point: %w", err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pair history: %w", err)
	}
	return points, nil
}

// PairPoint is one day's stored coefficient for a symbol pair.
type PairPoint struct {
	Date        string  `json:"date"`
	Coefficient float64 `json:"coefficient"`
}
