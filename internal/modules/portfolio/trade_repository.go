package portfolio

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/mag7labs/riskengine/internal/domain"
)

// TradeRepositoryInterface defines the contract for closed-trade storage.
// Trades are append-only: there is no update or delete.
type TradeRepositoryInterface interface {
	domain.TradeProvider
	Insert(trade domain.Trade) error
}

// TradeRepository handles the immutable closed-trade ledger.
type TradeRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

const tradeSchema = `
CREATE TABLE IF NOT EXISTS trades (
	id              TEXT PRIMARY KEY,
	position_id     TEXT NOT NULL,
	symbol          TEXT NOT NULL,
	position_type   TEXT NOT NULL,
	strike          REAL NOT NULL,
	expiration_date INTEGER NOT NULL,
	entry_date      INTEGER NOT NULL,
	exit_date       INTEGER NOT NULL,
	contracts       INTEGER NOT NULL,
	entry_price     REAL NOT NULL,
	exit_price      REAL NOT NULL,
	cost            REAL NOT NULL,
	proceeds        REAL NOT NULL,
	pnl             REAL NOT NULL,
	pnl_percentage  REAL NOT NULL,
	holding_days    INTEGER NOT NULL,
	result          TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_trades_exit_date ON trades(exit_date);
`

// NewTradeRepository creates a new trade repository and ensures its schema
// exists.
func NewTradeRepository(db *sql.DB, log zerolog.Logger) (*TradeRepository, error) {
	if _, err := db.Exec(tradeSchema); err != nil {
		return nil, fmt.Errorf("failed to create trades schema: %w", err)
	}
	return &TradeRepository{
		db:  db,
		log: log.With().Str("repo", "trade").Logger(),
	}, nil
}

// Insert appends a closed trade to the ledger.
func (r *TradeRepository) Insert(trade domain.Trade) error {
	_, err := r.db.Exec(`INSERT INTO trades (id, position_id, symbol, position_type, strike,
		expiration_date, entry_date, exit_date, contracts, entry_price, exit_price,
		cost, proceeds, pnl, pnl_percentage, holding_days, result)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		trade.ID, trade.PositionID, trade.Symbol, string(trade.Type), trade.Strike,
		trade.Expiration.Unix(), trade.EntryDate.Unix(), trade.ExitDate.Unix(),
		trade.Contracts, trade.EntryPrice, trade.ExitPrice,
		trade.Cost, trade.Proceeds, trade.PnL, trade.PnLPercentage,
		trade.HoldingDays, string(trade.Result))
	if err != nil {
		return fmt.Errorf("failed to insert trade: %w", err)
	}
	return nil
}

// GetAllChronological returns all trades ordered by exit date ascending,
// the order the performance metrics engine folds them in.
func (r *TradeRepository) GetAllChronological() ([]domain.Trade, error) {
	rows, err := r.db.Query(`SELECT id, position_id, symbol, position_type, strike,
		expiration_date, entry_date, exit_date, contracts, entry_price, exit_price,
		cost, proceeds, pnl, pnl_percentage, holding_days, result
		FROM trades ORDER BY exit_date, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query trades: %w", err)
	}
	defer rows.Close()

	var trades []domain.Trade
	for rows.Next() {
		var (
			t                      domain.Trade
			posType, result        string
			expUnix, entryU, exitU int64
		)
		err := rows.Scan(&t.ID, &t.PositionID, &t.Symbol, &posType, &t.Strike,
			&expUnix, &entryU, &exitU, &t.Contracts, &t.EntryPrice, &t.ExitPrice,
			&t.Cost, &t.Proceeds, &t.PnL, &t.PnLPercentage, &t.HoldingDays, &result)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade: %w", err)
		}
		t.Type = domain.PositionType(posType)
		t.Result = domain.TradeResult(result)
		t.Expiration = time.Unix(expUnix, 0).UTC()
		t.EntryDate = time.Unix(entryU, 0).UTC()
		t.ExitDate = time.Unix(exitU, 0).UTC()
		trades = append(trades, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trades: %w", err)
	}
	return trades, nil
}
