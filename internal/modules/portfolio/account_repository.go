package portfolio

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"
)

// AccountRepositoryInterface defines the contract for cash-balance storage.
type AccountRepositoryInterface interface {
	Get() (cashBalance, initialCapital float64, err error)
	AdjustCash(delta float64) error
}

// AccountRepository stores the single account row: cash balance and the
// initial capital the equity curve starts from.
type AccountRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

const accountSchema = `
CREATE TABLE IF NOT EXISTS account (
	id              INTEGER PRIMARY KEY CHECK (id = 1),
	cash_balance    REAL NOT NULL,
	initial_capital REAL NOT NULL
);
`

// NewAccountRepository creates the repository and seeds the account row
// with the configured initial capital if none exists yet.
func NewAccountRepository(db *sql.DB, initialCapital float64, log zerolog.Logger) (*AccountRepository, error) {
	if _, err := db.Exec(accountSchema); err != nil {
		return nil, fmt.Errorf("failed to create account schema: %w", err)
	}
	_, err := db.Exec(`INSERT OR IGNORE INTO account (id, cash_balance, initial_capital) VALUES (1, ?, ?)`,
		initialCapital, initialCapital)
	if err != nil {
		return nil, fmt.Errorf("failed to seed account: %w", err)
	}
	return &AccountRepository{
		db:  db,
		log: log.With().Str("repo", "account").Logger(),
	}, nil
}

// Get returns the current cash balance and the initial capital.
func (r *AccountRepository) Get() (float64, float64, error) {
	var cash, initial float64
	err := r.db.QueryRow(`SELECT cash_balance, initial_capital FROM account WHERE id = 1`).Scan(&cash, &initial)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read account: %w", err)
	}
	return cash, initial, nil
}

// AdjustCash applies a signed delta to the cash balance.
func (r *AccountRepository) AdjustCash(delta float64) error {
	_, err := r.db.Exec(`UPDATE account SET cash_balance = cash_balance + ? WHERE id = 1`, delta)
	if err != nil {
		return fmt.Errorf("failed to adjust cash: %w", err)
	}
	return nil
}
