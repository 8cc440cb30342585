// Package portfolio owns account state: open positions, closed trades and
// cash. Repositories follow the engine's convention of creating their own
// schema on construction.
package portfolio

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/mag7labs/riskengine/internal/domain"
)

// PositionRepositoryInterface defines the contract for position storage.
type PositionRepositoryInterface interface {
	domain.PositionProvider
	GetActiveBySymbol(symbol string) ([]domain.Position, error)
	Insert(pos domain.Position) error
	UpdatePrice(id string, price float64) error
	SetExitLevels(id string, stopLoss, takeProfit float64) error
	MarkClosed(id string) error
}

// PositionRepository handles position database operations on portfolio.db.
type PositionRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

const positionSchema = `
CREATE TABLE IF NOT EXISTS positions (
	id                TEXT PRIMARY KEY,
	symbol            TEXT NOT NULL,
	position_type     TEXT NOT NULL,
	strike            REAL NOT NULL,
	expiration_date   INTEGER NOT NULL,
	entry_date        INTEGER NOT NULL,
	contracts         INTEGER NOT NULL,
	entry_price       REAL NOT NULL,
	current_price     REAL,
	stop_loss_price   REAL,
	take_profit_price REAL,
	status            TEXT NOT NULL DEFAULT 'ACTIVE'
);
CREATE INDEX IF NOT EXISTS idx_positions_status ON positions(status);
CREATE INDEX IF NOT EXISTS idx_positions_symbol ON positions(symbol);
`

// NewPositionRepository creates a new position repository and ensures its
// schema exists.
func NewPositionRepository(db *sql.DB, log zerolog.Logger) (*PositionRepository, error) {
	if _, err := db.Exec(positionSchema); err != nil {
		return nil, fmt.Errorf("failed to create positions schema: %w", err)
	}
	return &PositionRepository{
		db:  db,
		log: log.With().Str("repo", "position").Logger(),
	}, nil
}

const positionColumns = `id, symbol, position_type, strike, expiration_date, entry_date,
	contracts, entry_price, current_price, stop_loss_price, take_profit_price, status`

// GetActive returns all open positions.
func (r *PositionRepository) GetActive() ([]domain.Position, error) {
	return r.query(`SELECT `+positionColumns+` FROM positions WHERE status = ? ORDER BY entry_date`, string(domain.StatusActive))
}

// GetActiveBySymbol returns open positions in one underlying.
func (r *PositionRepository) GetActiveBySymbol(symbol string) ([]domain.Position, error) {
	return r.query(`SELECT `+positionColumns+` FROM positions WHERE status = ? AND symbol = ? ORDER BY entry_date`,
		string(domain.StatusActive), symbol)
}

// GetByID returns a single position or domain.ErrNotFound.
func (r *PositionRepository) GetByID(id string) (*domain.Position, error) {
	row := r.db.QueryRow(`SELECT `+positionColumns+` FROM positions WHERE id = ?`, id)
	pos, err := scanPosition(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan position: %w", err)
	}
	return &pos, nil
}

// Insert stores a new position.
func (r *PositionRepository) Insert(pos domain.Position) error {
	_, err := r.db.Exec(`INSERT INTO positions (`+positionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		pos.ID, pos.Symbol, string(pos.Type), pos.Strike,
		pos.Expiration.Unix(), pos.EntryDate.Unix(),
		pos.Contracts, pos.EntryPrice,
		pos.CurrentPrice, pos.StopLossPrice, pos.TakeProfitPrice,
		string(pos.Status))
	if err != nil {
		return fmt.Errorf("failed to insert position: %w", err)
	}
	return nil
}

// UpdatePrice records a new market price for an open position.
func (r *PositionRepository) UpdatePrice(id string, price float64) error {
	return r.execOne(`UPDATE positions SET current_price = ? WHERE id = ? AND status = ?`,
		price, id, string(domain.StatusActive))
}

// SetExitLevels stores computed stop-loss/take-profit levels on a position.
func (r *PositionRepository) SetExitLevels(id string, stopLoss, takeProfit float64) error {
	return r.execOne(`UPDATE positions SET stop_loss_price = ?, take_profit_price = ? WHERE id = ? AND status = ?`,
		stopLoss, takeProfit, id, string(domain.StatusActive))
}

// MarkClosed transitions a position to CLOSED. The transition is terminal:
// the WHERE clause refuses to touch an already-closed row.
func (r *PositionRepository) MarkClosed(id string) error {
	return r.execOne(`UPDATE positions SET status = ? WHERE id = ? AND status = ?`,
		string(domain.StatusClosed), id, string(domain.StatusActive))
}

func (r *PositionRepository) execOne(query string, args ...interface{}) error {
	res, err := r.db.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("failed to update position: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PositionRepository) query(query string, args ...interface{}) ([]domain.Position, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query positions: %w", err)
	}
	defer rows.Close()

	var positions []domain.Position
	for rows.Next() {
		pos, err := scanPosition(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		positions = append(positions, pos)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating positions: %w", err)
	}
	return positions, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPosition(row rowScanner) (domain.Position, error) {
	var (
		pos                  domain.Position
		posType, status      string
		expirationUnix       int64
		entryUnix            int64
		currentPrice         sql.NullFloat64
		stopLoss, takeProfit sql.NullFloat64
	)

	err := row.Scan(&pos.ID, &pos.Symbol, &posType, &pos.Strike,
		&expirationUnix, &entryUnix, &pos.Contracts, &pos.EntryPrice,
		&currentPrice, &stopLoss, &takeProfit, &status)
	if err != nil {
		return domain.Position{}, err
	}

	pos.Type = domain.PositionType(posType)
	pos.Status = domain.PositionStatus(status)
	pos.Expiration = time.Unix(expirationUnix, 0).UTC()
	pos.EntryDate = time.Unix(entryUnix, 0).UTC()
	if currentPrice.Valid {
		pos.CurrentPrice = &currentPrice.Float64
	}
	if stopLoss.Valid {
		pos.StopLossPrice = &stopLoss.Float64
	}
	if takeProfit.Valid {
		pos.TakeProfitPrice = &takeProfit.Float64
	}

	return pos, nil
}
