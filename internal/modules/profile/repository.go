// Package profile owns the user's risk profile. The repository's Update
// is the only code path that mutates the stored profile; the recommender
// only ever proposes values.
package profile

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mag7labs/riskengine/internal/domain"
)

// RepositoryInterface defines the contract for risk profile storage.
type RepositoryInterface interface {
	domain.ProfileProvider
	Update(p domain.RiskProfile) error
}

// Repository stores the single risk profile row.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

const profileSchema = `
CREATE TABLE IF NOT EXISTS risk_profile (
	id                     INTEGER PRIMARY KEY CHECK (id = 1),
	max_portfolio_risk     REAL NOT NULL,
	max_portfolio_exposure REAL NOT NULL,
	max_stock_allocation   REAL NOT NULL,
	max_loss_per_trade     REAL NOT NULL,
	risk_reward_ratio      REAL NOT NULL
);
`

// NewRepository creates the repository and ensures its schema exists.
func NewRepository(db *sql.DB, log zerolog.Logger) (*Repository, error) {
	if _, err := db.Exec(profileSchema); err != nil {
		return nil, fmt.Errorf("failed to create risk profile schema: %w", err)
	}
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "profile").Logger(),
	}, nil
}

// Get returns the stored profile, or the default profile when none has
// been saved yet.
func (r *Repository) Get() (domain.RiskProfile, error) {
	var p domain.RiskProfile
	err := r.db.QueryRow(`SELECT max_portfolio_risk, max_portfolio_exposure,
		max_stock_allocation, max_loss_per_trade, risk_reward_ratio
		FROM risk_profile WHERE id = 1`).
		Scan(&p.MaxPortfolioRisk, &p.MaxPortfolioExposure,
			&p.MaxStockAllocation, &p.MaxLossPerTrade, &p.RiskRewardRatio)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.DefaultRiskProfile(), nil
	}
	if err != nil {
		return domain.RiskProfile{}, fmt.Errorf("failed to read risk profile: %w", err)
	}
	return p, nil
}

// Update validates and stores a new profile.
func (r *Repository) Update(p domain.RiskProfile) error {
	if err := p.Validate(); err != nil {
		return err
	}

	_, err := r.db.Exec(`INSERT INTO risk_profile (id, max_portfolio_risk, max_portfolio_exposure,
		max_stock_allocation, max_loss_per_trade, risk_reward_ratio)
		VALUES (1, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			max_portfolio_risk = excluded.max_portfolio_risk,
			max_portfolio_exposure = excluded.max_portfolio_exposure,
			max_stock_allocation = excluded.max_stock_allocation,
			max_loss_per_trade = excluded.max_loss_per_trade,
			risk_reward_ratio = excluded.risk_reward_ratio`,
		p.MaxPortfolioRisk, p.MaxPortfolioExposure,
		p.MaxStockAllocation, p.MaxLossPerTrade, p.RiskRewardRatio)
	if err != nil {
		return fmt.Errorf("failed to update risk profile: %w", err)
	}

	r.log.Info().
		Float64("max_portfolio_risk", p.MaxPortfolioRisk).
		Float64("max_stock_allocation", p.MaxStockAllocation).
		Msg("Risk profile updated")
	return nil
}
