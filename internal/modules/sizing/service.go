// Package sizing computes contract quantities for new trades from the
// risk profile, portfolio value and signal confidence.
package sizing

import (
	"math"

	"github.com/rs/zerolog"

	"github.com/mag7labs/riskengine/internal/config"
	"github.com/mag7labs/riskengine/internal/domain"
)

// Reason marks a recoverable business condition that produced a zero-size
// result. Callers still render a full response for these.
type Reason string

const (
	// ReasonInsufficientConfidence - the signal was below the confidence floor.
	ReasonInsufficientConfidence Reason = "INSUFFICIENT_CONFIDENCE"
	// ReasonAllocationExhausted - the per-stock budget is already used up.
	ReasonAllocationExhausted Reason = "ALLOCATION_EXHAUSTED"
)

// Request carries a position-sizing question. All monetary figures are in
// account currency; Confidence is 0-1; CurrentAllocation is the notional
// value already held in the target underlying.
type Request struct {
	Profile           domain.RiskProfile
	PortfolioValue    float64
	Confidence        float64
	OptionPrice       float64
	CurrentAllocation float64
}

// Result is the sizing decision with the capital figures that produced
// it, so the decision is auditable after the fact.
type Result struct {
	Contracts            int     `json:"contracts"`
	MaxCapital           float64 `json:"max_capital"`
	RiskPerTrade         float64 `json:"risk_per_trade"`
	ContractValue        float64 `json:"contract_value"`
	ConfidenceMultiplier float64 `json:"confidence_multiplier"`
	PortfolioValue       float64 `json:"portfolio_value"`
	CurrentAllocation    float64 `json:"current_allocation"`
	AvailableAllocation  float64 `json:"available_allocation"`
	Reason               Reason  `json:"reason,omitempty"`
}

// Service is the position sizer. It is pure: no portfolio state is read
// or written here, everything arrives in the request.
type Service struct {
	cfg config.RiskConfig
	log zerolog.Logger
}

// NewService creates a new position sizing service.
func NewService(cfg config.RiskConfig, log zerolog.Logger) *Service {
	return &Service{
		cfg: cfg,
		log: log.With().Str("service", "sizing").Logger(),
	}
}

// Size computes the contract quantity for a new trade.
//
// The confidence multiplier scales linearly from 1.0 at the confidence
// floor up to the configured ceiling at confidence 1.0. Confidence below
// the floor is a recoverable condition, not an error: the caller gets a
// zero-contract result tagged INSUFFICIENT_CONFIDENCE. Risk per trade is
// capped by the remaining per-stock allocation; when that budget is
// already spent the result is tagged ALLOCATION_EXHAUSTED.
func (s *Service) Size(req Request) (Result, error) {
	if err := req.Profile.Validate(); err != nil {
		return Result{}, err
	}
	if req.Confidence < 0 || req.Confidence > 1 {
		return Result{}, domain.NewValidationError("confidence", "must be in [0, 1]")
	}
	if req.OptionPrice <= 0 {
		return Result{}, domain.NewValidationError("option_price", "must be positive")
	}
	if req.PortfolioValue <= 0 {
		return Result{}, domain.NewValidationError("portfolio_value", "must be positive")
	}
	if req.CurrentAllocation < 0 {
		return Result{}, domain.NewValidationError("current_allocation", "must not be negative")
	}

	contractValue := req.OptionPrice * domain.OptionMultiplier
	maxCapital := req.PortfolioValue * req.Profile.MaxLossPerTrade

	availableAllocation := req.Profile.MaxStockAllocation*req.PortfolioValue - req.CurrentAllocation
	if availableAllocation < 0 {
		availableAllocation = 0
	}

	result := Result{
		MaxCapital:          maxCapital,
		ContractValue:       contractValue,
		PortfolioValue:      req.PortfolioValue,
		CurrentAllocation:   req.CurrentAllocation,
		AvailableAllocation: availableAllocation,
	}

	if req.Confidence < s.cfg.ConfidenceFloor {
		result.Reason = ReasonInsufficientConfidence
		s.log.Debug().Float64("confidence", req.Confidence).Msg("Signal below confidence floor")
		return result, nil
	}

	multiplier := 1.0 + (req.Confidence-s.cfg.ConfidenceFloor)/(1.0-s.cfg.ConfidenceFloor)*(s.cfg.ConfidenceCeiling-1.0)
	result.ConfidenceMultiplier = multiplier

	// The reported risk figure is the capped one the contract math uses,
	// never more than the remaining allocation.
	result.RiskPerTrade = math.Min(maxCapital*multiplier, availableAllocation)

	if availableAllocation <= 0 {
		result.Reason = ReasonAllocationExhausted
		s.log.Debug().Float64("current_allocation", req.CurrentAllocation).Msg("Per-stock allocation exhausted")
		return result, nil
	}

	result.Contracts = int(math.Floor(result.RiskPerTrade / contractValue))

	return result, nil
}
