// Package exits computes stop-loss and take-profit levels for open option
// positions and evaluates whether a position has hit one of them.
package exits

import (
	"math"

	"github.com/rs/zerolog"

	"github.com/mag7labs/riskengine/internal/domain"
)

// minStopPrice keeps the stop strictly positive; an option premium cannot
// be stopped out at zero.
const minStopPrice = 0.01

// Check actions.
const (
	ActionHold       = "HOLD"
	ActionStopLoss   = "STOP_LOSS"
	ActionTakeProfit = "TAKE_PROFIT"
	ActionExpired    = "EXPIRED"
)

// Levels are the exit prices computed for a position. Stops tighten as
// expiration approaches: the tolerated loss is scaled by days remaining
// over the week-long target holding window.
type Levels struct {
	StopLoss         float64 `json:"stop_loss"`
	TakeProfit       float64 `json:"take_profit"`
	EntryPrice       float64 `json:"entry_price"`
	RiskAmount       float64 `json:"risk_amount"`
	RewardAmount     float64 `json:"reward_amount"`
	StopLossPct      float64 `json:"stop_loss_percentage"`
	TakeProfitPct    float64 `json:"take_profit_percentage"`
	DaysToExpiration int     `json:"days_to_expiration"`
	AdjustedMaxLoss  float64 `json:"adjusted_max_loss"`
	RiskRewardRatio  float64 `json:"risk_reward_ratio"`
}

// CheckResult reports whether a position should exit and why.
type CheckResult struct {
	Action            string   `json:"action"`
	CurrentPrice      float64  `json:"current_price"`
	StopLoss          *float64 `json:"stop_loss,omitempty"`
	TakeProfit        *float64 `json:"take_profit,omitempty"`
	DaysToExpiration  int      `json:"days_to_expiration"`
	UnrealizedPnL     float64  `json:"unrealized_pnl"`
	CurrentRiskReward float64  `json:"current_risk_reward"`
}

// Service computes and evaluates exit levels. The clock is injected so
// days-to-expiration arithmetic is testable.
type Service struct {
	clock domain.Clock
	log   zerolog.Logger
}

// NewService creates a new exit level service.
func NewService(clock domain.Clock, log zerolog.Logger) *Service {
	return &Service{
		clock: clock,
		log:   log.With().Str("service", "exits").Logger(),
	}
}

// ComputeLevels derives stop-loss and take-profit prices for a position
// under the given profile. The stop distance is the profile's maximum
// loss per trade scaled down linearly when fewer than the target holding
// days remain, so short-dated contracts get tighter stops. The target is
// placed at the profile's reward-to-risk multiple of the stop distance
// above entry.
func (s *Service) ComputeLevels(pos domain.Position, profile domain.RiskProfile) (Levels, error) {
	if err := pos.Validate(); err != nil {
		return Levels{}, err
	}
	if err := profile.Validate(); err != nil {
		return Levels{}, err
	}

	dte := pos.DaysToExpiration(s.clock.Now())

	dteFactor := float64(dte) / float64(domain.TargetHoldingDays)
	if dteFactor > 1 {
		dteFactor = 1
	}
	adjustedMaxLoss := profile.MaxLossPerTrade * dteFactor

	stop := pos.EntryPrice * (1 - adjustedMaxLoss)
	if stop < minStopPrice {
		stop = minStopPrice
	}

	risk := pos.EntryPrice - stop
	reward := risk * profile.RiskRewardRatio
	target := pos.EntryPrice + reward

	s.log.Debug().
		Str("position_id", pos.ID).
		Int("dte", dte).
		Float64("stop", stop).
		Float64("target", target).
		Msg("computed exit levels")

	return Levels{
		StopLoss:         round2(stop),
		TakeProfit:       round2(target),
		EntryPrice:       pos.EntryPrice,
		RiskAmount:       risk * float64(pos.Contracts) * domain.OptionMultiplier,
		RewardAmount:     reward * float64(pos.Contracts) * domain.OptionMultiplier,
		StopLossPct:      (pos.EntryPrice - stop) / pos.EntryPrice * 100,
		TakeProfitPct:    (target - pos.EntryPrice) / pos.EntryPrice * 100,
		DaysToExpiration: dte,
		AdjustedMaxLoss:  adjustedMaxLoss,
		RiskRewardRatio:  profile.RiskRewardRatio,
	}, nil
}

// Check evaluates whether a position has hit an exit level. Expiration
// dominates everything: a position at zero days to expiration is EXPIRED
// regardless of price. When a price satisfies both levels at once the
// take-profit wins. A position without a current price cannot be checked.
func (s *Service) Check(pos domain.Position) (CheckResult, error) {
	if pos.CurrentPrice == nil {
		return CheckResult{}, domain.NewValidationError("current_price", "position has no price snapshot")
	}
	price := *pos.CurrentPrice

	dte := pos.DaysToExpiration(s.clock.Now())
	pnl, _ := pos.UnrealizedPnL()

	result := CheckResult{
		Action:            ActionHold,
		CurrentPrice:      price,
		StopLoss:          pos.StopLossPrice,
		TakeProfit:        pos.TakeProfitPrice,
		DaysToExpiration:  dte,
		UnrealizedPnL:     pnl,
		CurrentRiskReward: currentRiskReward(pos, price),
	}

	if dte == 0 {
		result.Action = ActionExpired
		return result, nil
	}
	if pos.TakeProfitPrice != nil && price >= *pos.TakeProfitPrice {
		result.Action = ActionTakeProfit
		return result, nil
	}
	if pos.StopLossPrice != nil && price <= *pos.StopLossPrice {
		result.Action = ActionStopLoss
		return result, nil
	}
	return result, nil
}

// currentRiskReward is the move from entry over the planned risk, zero
// when the position has no stop. Underwater positions report a negative
// ratio measuring progress toward the stop.
func currentRiskReward(pos domain.Position, price float64) float64 {
	if pos.StopLossPrice == nil {
		return 0
	}
	risk := pos.EntryPrice - *pos.StopLossPrice
	if risk <= 0 {
		return 0
	}
	return (price - pos.EntryPrice) / risk
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
