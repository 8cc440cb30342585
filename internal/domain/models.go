// Package domain contains the core entities of the risk engine and the
// contracts the analytic modules use to read them. The package is pure:
// no infrastructure dependencies, no I/O.
package domain

import (
	"time"
)

// Shared trading conventions. Every component reads these from here so the
// option multiplier and calendar assumptions cannot drift between modules.
const (
	// OptionMultiplier is the number of shares controlled by one contract.
	OptionMultiplier = 100

	// TradingDaysPerYear is used to annualize daily return statistics.
	TradingDaysPerYear = 252

	// TargetHoldingDays is the intended holding window for the short-dated
	// contracts this system trades (one week to expiration).
	TargetHoldingDays = 7
)

// PositionType identifies the option strategy of a position.
type PositionType string

const (
	LongCall PositionType = "LONG_CALL"
	LongPut  PositionType = "LONG_PUT"
)

// PositionStatus tracks a position through its lifecycle. CLOSED is
// terminal; a closed position is never mutated again.
type PositionStatus string

const (
	StatusActive PositionStatus = "ACTIVE"
	StatusClosed PositionStatus = "CLOSED"
)

// TradeResult classifies a closed trade. Breakeven counts as a win.
type TradeResult string

const (
	ResultWin  TradeResult = "WIN"
	ResultLoss TradeResult = "LOSS"
)

// RiskProfile is a user's risk configuration. All parameters except
// RiskRewardRatio are fractions of capital in (0, 1]. The profile is only
// mutated through the explicit update path; the recommender proposes new
// values but never commits them.
type RiskProfile struct {
	MaxPortfolioRisk     float64 `json:"max_portfolio_risk"`     // Fraction of capital risked per trade
	MaxPortfolioExposure float64 `json:"max_portfolio_exposure"` // Fraction of capital at risk portfolio-wide
	MaxStockAllocation   float64 `json:"max_stock_allocation"`   // Fraction of capital in a single underlying
	MaxLossPerTrade      float64 `json:"max_loss_per_trade"`     // Fraction of premium tolerated as loss
	RiskRewardRatio      float64 `json:"risk_reward_ratio"`      // Target reward-to-risk multiple
}

// DefaultRiskProfile returns the baseline profile recommended to users
// with no trading history.
func DefaultRiskProfile() RiskProfile {
	return RiskProfile{
		MaxPortfolioRisk:     0.02,
		MaxPortfolioExposure: 0.50,
		MaxStockAllocation:   0.10,
		MaxLossPerTrade:      0.25,
		RiskRewardRatio:      2.0,
	}
}

// Validate checks profile parameters are in range.
func (p RiskProfile) Validate() error {
	check := func(name string, v float64) error {
		if v <= 0 || v > 1 {
			return NewValidationError(name, "must be a fraction in (0, 1]")
		}
		return nil
	}

	if err := check("max_portfolio_risk", p.MaxPortfolioRisk); err != nil {
		return err
	}
	if err := check("max_portfolio_exposure", p.MaxPortfolioExposure); err != nil {
		return err
	}
	if err := check("max_stock_allocation", p.MaxStockAllocation); err != nil {
		return err
	}
	if err := check("max_loss_per_trade", p.MaxLossPerTrade); err != nil {
		return err
	}
	if p.RiskRewardRatio <= 0 {
		return NewValidationError("risk_reward_ratio", "must be positive")
	}
	return nil
}

// Portfolio is a point-in-time snapshot of a user's account. TotalValue is
// cash plus the current value of all open positions and is recomputed
// whenever a position is opened, closed or re-priced.
type Portfolio struct {
	CashBalance    float64 `json:"cash_balance"`
	TotalValue     float64 `json:"total_value"`
	InitialCapital float64 `json:"initial_capital"`
}

// Position is an open (or closed) option position on one of the tracked
// underlyings. CurrentPrice is nil until the first market snapshot arrives.
type Position struct {
	ID              string         `json:"id"`
	Symbol          string         `json:"symbol"`
	Type            PositionType   `json:"position_type"`
	Strike          float64        `json:"strike"`
	Expiration      time.Time      `json:"expiration_date"`
	EntryDate       time.Time      `json:"entry_date"`
	Contracts       int            `json:"contracts"`
	EntryPrice      float64        `json:"entry_price"`
	CurrentPrice    *float64       `json:"current_price,omitempty"`
	StopLossPrice   *float64       `json:"stop_loss_price,omitempty"`
	TakeProfitPrice *float64       `json:"take_profit_price,omitempty"`
	Status          PositionStatus `json:"status"`
}

// Validate enforces the position invariants: positive contract count,
// positive strike, expiration strictly after entry.
func (p Position) Validate() error {
	if p.Symbol == "" {
		return NewValidationError("symbol", "is required")
	}
	if p.Type != LongCall && p.Type != LongPut {
		return NewValidationError("position_type", "must be LONG_CALL or LONG_PUT")
	}
	if p.Contracts <= 0 {
		return NewValidationError("contracts", "must be a positive integer")
	}
	if p.Strike <= 0 {
		return NewValidationError("strike", "must be positive")
	}
	if p.EntryPrice <= 0 {
		return NewValidationError("entry_price", "must be positive")
	}
	if !p.Expiration.After(p.EntryDate) {
		return NewValidationError("expiration_date", "must be after entry date")
	}
	return nil
}

// Cost returns the premium paid for the position.
func (p Position) Cost() float64 {
	return p.EntryPrice * float64(p.Contracts) * OptionMultiplier
}

// Value returns the current notional value of the position and whether a
// market price has been observed yet.
func (p Position) Value() (float64, bool) {
	if p.CurrentPrice == nil {
		return 0, false
	}
	return *p.CurrentPrice * float64(p.Contracts) * OptionMultiplier, true
}

// UnrealizedPnL returns current value minus cost, or false before the
// first price snapshot.
func (p Position) UnrealizedPnL() (float64, bool) {
	value, ok := p.Value()
	if !ok {
		return 0, false
	}
	return value - p.Cost(), true
}

// DaysToExpiration returns the whole days remaining before expiration as
// of the given date, floored at zero.
func (p Position) DaysToExpiration(asOf time.Time) int {
	days := int(p.Expiration.Sub(asOf).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// Trade is the immutable record of a closed position.
type Trade struct {
	ID            string       `json:"id"`
	PositionID    string       `json:"position_id"`
	Symbol        string       `json:"symbol"`
	Type          PositionType `json:"position_type"`
	Strike        float64      `json:"strike"`
	Expiration    time.Time    `json:"expiration_date"`
	EntryDate     time.Time    `json:"entry_date"`
	ExitDate      time.Time    `json:"exit_date"`
	Contracts     int          `json:"contracts"`
	EntryPrice    float64      `json:"entry_price"`
	ExitPrice     float64      `json:"exit_price"`
	Cost          float64      `json:"cost"`
	Proceeds      float64      `json:"proceeds"`
	PnL           float64      `json:"pnl"`
	PnLPercentage float64      `json:"pnl_percentage"`
	HoldingDays   int          `json:"holding_period"`
	Result        TradeResult  `json:"result"`
}

// NewTrade derives the closed-trade record from a position and its exit.
func NewTrade(id string, pos Position, exitPrice float64, exitDate time.Time) Trade {
	cost := pos.Cost()
	proceeds := exitPrice * float64(pos.Contracts) * OptionMultiplier
	pnl := proceeds - cost

	pnlPct := 0.0
	if cost > 0 {
		pnlPct = pnl / cost * 100
	}

	holding := int(exitDate.Sub(pos.EntryDate).Hours() / 24)
	if holding < 0 {
		holding = 0
	}

	result := ResultWin
	if pnl < 0 {
		result = ResultLoss
	}

	return Trade{
		ID:            id,
		PositionID:    pos.ID,
		Symbol:        pos.Symbol,
		Type:          pos.Type,
		Strike:        pos.Strike,
		Expiration:    pos.Expiration,
		EntryDate:     pos.EntryDate,
		ExitDate:      exitDate,
		Contracts:     pos.Contracts,
		EntryPrice:    pos.EntryPrice,
		ExitPrice:     exitPrice,
		Cost:          cost,
		Proceeds:      proceeds,
		PnL:           pnl,
		PnLPercentage: pnlPct,
		HoldingDays:   holding,
		Result:        result,
	}
}

// DailyClose is one day's closing price for a symbol.
type DailyClose struct {
	Date  string  `json:"date"` // YYYY-MM-DD
	Close float64 `json:"close"`
}

// EquityPoint is one point on a cumulative equity curve.
type EquityPoint struct {
	Date   time.Time `json:"date"`
	Equity float64   `json:"equity"`
}

// CorrelationMatrix maps symbol×symbol to a Pearson coefficient in
// [-1, 1]. The diagonal is always exactly 1.0 and the matrix is exactly
// symmetric.
type CorrelationMatrix map[string]map[string]float64
