package portfolio

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mag7labs/riskengine/internal/domain"
)

// Service orchestrates the position lifecycle: open, re-price, close.
// Closing a position produces the immutable Trade record and recomputes
// the portfolio snapshot; nothing else touches closed rows.
type Service struct {
	positions PositionRepositoryInterface
	trades    TradeRepositoryInterface
	account   AccountRepositoryInterface
	clock     domain.Clock
	log       zerolog.Logger
}

// NewService creates a new portfolio service.
func NewService(
	positions PositionRepositoryInterface,
	trades TradeRepositoryInterface,
	account AccountRepositoryInterface,
	clock domain.Clock,
	log zerolog.Logger,
) *Service {
	return &Service{
		positions: positions,
		trades:    trades,
		account:   account,
		clock:     clock,
		log:       log.With().Str("service", "portfolio").Logger(),
	}
}

// OpenPositionRequest carries the fields needed to open a position.
type OpenPositionRequest struct {
	Symbol     string              `json:"symbol"`
	Type       domain.PositionType `json:"position_type"`
	Strike     float64             `json:"strike"`
	Expiration time.Time           `json:"expiration_date"`
	Contracts  int                 `json:"contracts"`
	EntryPrice float64             `json:"entry_price"`
}

// OpenPosition validates and stores a new position and deducts its cost
// from cash.
func (s *Service) OpenPosition(req OpenPositionRequest) (*domain.Position, error) {
	pos := domain.Position{
		ID:         uuid.NewString(),
		Symbol:     req.Symbol,
		Type:       req.Type,
		Strike:     req.Strike,
		Expiration: req.Expiration,
		EntryDate:  s.clock.Now(),
		Contracts:  req.Contracts,
		EntryPrice: req.EntryPrice,
		Status:     domain.StatusActive,
	}

	if err := pos.Validate(); err != nil {
		return nil, err
	}

	cash, _, err := s.account.Get()
	if err != nil {
		return nil, err
	}
	cost := pos.Cost()
	if cost > cash {
		return nil, domain.NewValidationError("contracts", "cost exceeds available cash")
	}

	if err := s.positions.Insert(pos); err != nil {
		return nil, err
	}
	if err := s.account.AdjustCash(-cost); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("position_id", pos.ID).
		Str("symbol", pos.Symbol).
		Int("contracts", pos.Contracts).
		Float64("cost", cost).
		Msg("Opened position")

	return &pos, nil
}

// UpdatePrice records a market snapshot price on an open position.
func (s *Service) UpdatePrice(id string, price float64) error {
	if price <= 0 {
		return domain.NewValidationError("current_price", "must be positive")
	}
	return s.positions.UpdatePrice(id, price)
}

// ClosePosition closes an active position at the given exit price,
// credits the proceeds to cash and appends the trade record.
func (s *Service) ClosePosition(id string, exitPrice float64) (*domain.Trade, error) {
	if exitPrice < 0 {
		return nil, domain.NewValidationError("exit_price", "must not be negative")
	}

	pos, err := s.positions.GetByID(id)
	if err != nil {
		return nil, err
	}
	if pos.Status != domain.StatusActive {
		return nil, domain.NewValidationError("status", "position is already closed")
	}

	trade := domain.NewTrade(uuid.NewString(), *pos, exitPrice, s.clock.Now())

	if err := s.positions.MarkClosed(id); err != nil {
		return nil, err
	}
	if err := s.trades.Insert(trade); err != nil {
		return nil, err
	}
	if err := s.account.AdjustCash(trade.Proceeds); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("position_id", id).
		Float64("pnl", trade.PnL).
		Str("result", string(trade.Result)).
		Msg("Closed position")

	return &trade, nil
}

// Snapshot recomputes the portfolio snapshot: cash plus the current value
// of all open positions. Positions without a price yet contribute their
// cost, the best known value before the first market snapshot.
func (s *Service) Snapshot() (domain.Portfolio, error) {
	cash, initial, err := s.account.Get()
	if err != nil {
		return domain.Portfolio{}, err
	}

	positions, err := s.positions.GetActive()
	if err != nil {
		return domain.Portfolio{}, fmt.Errorf("failed to load active positions: %w", err)
	}

	total := cash
	for _, pos := range positions {
		if value, ok := pos.Value(); ok {
			total += value
		} else {
			total += pos.Cost()
		}
	}

	return domain.Portfolio{
		CashBalance:    cash,
		TotalValue:     total,
		InitialCapital: initial,
	}, nil
}

// AllocationFor returns the current notional value held in one underlying,
// the figure the position sizer subtracts from the per-stock budget.
func (s *Service) AllocationFor(symbol string) (float64, error) {
	positions, err := s.positions.GetActiveBySymbol(symbol)
	if err != nil {
		return 0, err
	}

	var allocation float64
	for _, pos := range positions {
		if value, ok := pos.Value(); ok {
			allocation += value
		} else {
			allocation += pos.Cost()
		}
	}
	return allocation, nil
}
