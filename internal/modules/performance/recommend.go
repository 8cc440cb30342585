package performance

import (
	"math"

	"github.com/mag7labs/riskengine/internal/config"
	"github.com/mag7labs/riskengine/internal/domain"
)

// Rule thresholds for the recommender. Advisory only: the output is a
// proposed profile, committed only through the explicit update path.
const (
	strongWinRate      = 0.7
	strongProfitFactor = 2.0
	weakWinRate        = 0.4
	weakProfitFactor   = 1.0

	strongSharpe = 1.5
	weakSharpe   = 0.5
	lowDrawdown  = 10.0 // percent
	highDrawdown = 20.0 // percent

	shortHolding = 3.0 // days
	longHolding  = 5.0 // days

	riskStep     = 1.2
	riskCut      = 0.8
	exposureStep = 1.2
	exposureCut  = 0.8
	lossTighten  = 0.9
	lossWiden    = 1.1

	minPortfolioRisk = 0.005
	maxExposure      = 0.70
	minExposure      = 0.30
	maxAllocation    = 0.15
	tightenedLossCap = 0.20
	widenedLossFloor = 0.30

	minRiskReward = 1.5
	maxRiskReward = 2.5
)

// MetricsSummary is the subset of metrics the recommendation was derived
// from, echoed back so the caller can see the inputs.
type MetricsSummary struct {
	WinRate              float64 `json:"win_rate"`
	ProfitFactor         float64 `json:"profit_factor"`
	AverageHoldingPeriod float64 `json:"average_holding_period"`
	SharpeRatio          float64 `json:"sharpe_ratio"`
	MaxDrawdownPct       float64 `json:"max_drawdown_percentage"`
}

// Recommendation is the advisory output of the rule table.
type Recommendation struct {
	CurrentProfile domain.RiskProfile `json:"current_profile"`
	Recommended    domain.RiskProfile `json:"recommendations"`
	MetricsSummary MetricsSummary     `json:"metrics_summary"`
	Message        string             `json:"message,omitempty"`
}

// Recommend applies the deterministic rule table to the current profile
// and the computed metrics. With no trade history it proposes the default
// profile with an explanatory message rather than an error.
func (s *Service) Recommend(profile domain.RiskProfile, report Report, cfg config.RiskConfig) Recommendation {
	if report.TradeCount == 0 {
		return Recommendation{
			CurrentProfile: profile,
			Recommended:    domain.DefaultRiskProfile(),
			Message:        "No trading history found. Using default recommendations.",
		}
	}

	m := report.Metrics
	rec := profile

	// Per-trade risk follows realized edge.
	switch {
	case m.WinRate > strongWinRate && m.ProfitFactor > strongProfitFactor:
		rec.MaxPortfolioRisk = math.Min(cfg.MaxPortfolioRiskCap, profile.MaxPortfolioRisk*riskStep)
	case m.WinRate < weakWinRate || m.ProfitFactor < weakProfitFactor:
		rec.MaxPortfolioRisk = math.Max(minPortfolioRisk, profile.MaxPortfolioRisk*riskCut)
	}

	// Portfolio exposure follows risk-adjusted returns.
	switch {
	case m.SharpeRatio > strongSharpe && m.MaxDrawdownPct < lowDrawdown:
		rec.MaxPortfolioExposure = math.Min(maxExposure, profile.MaxPortfolioExposure*exposureStep)
	case m.SharpeRatio < weakSharpe || m.MaxDrawdownPct > highDrawdown:
		rec.MaxPortfolioExposure = math.Max(minExposure, profile.MaxPortfolioExposure*exposureCut)
	}

	// Single-name concentration is capped regardless of performance; the
	// universe is only seven symbols.
	rec.MaxStockAllocation = math.Min(maxAllocation, profile.MaxStockAllocation)

	// Stop width follows how long trades actually run.
	switch {
	case m.AverageHoldingPeriod < shortHolding:
		rec.MaxLossPerTrade = math.Min(tightenedLossCap, profile.MaxLossPerTrade*lossTighten)
	case m.AverageHoldingPeriod > longHolding:
		rec.MaxLossPerTrade = math.Max(widenedLossFloor, profile.MaxLossPerTrade*lossWiden)
		if rec.MaxLossPerTrade > 1 {
			rec.MaxLossPerTrade = 1
		}
	}

	// Reward-to-risk holds steady unless the holding period has drifted
	// well off the one-week target; then it is nudged back into bounds,
	// upward when the win rate is weak.
	if math.Abs(m.AverageHoldingPeriod-float64(domain.TargetHoldingDays)) > 2 {
		adj := lossTighten
		if m.WinRate < 0.5 {
			adj = riskStep
		}
		rec.RiskRewardRatio = clamp(profile.RiskRewardRatio*adj, minRiskReward, maxRiskReward)
	}

	s.log.Debug().
		Float64("win_rate", m.WinRate).
		Float64("profit_factor", m.ProfitFactor).
		Float64("sharpe", m.SharpeRatio).
		Msg("generated profile recommendation")

	return Recommendation{
		CurrentProfile: profile,
		Recommended:    rec,
		MetricsSummary: MetricsSummary{
			WinRate:              m.WinRate,
			ProfitFactor:         m.ProfitFactor,
			AverageHoldingPeriod: m.AverageHoldingPeriod,
			SharpeRatio:          m.SharpeRatio,
			MaxDrawdownPct:       m.MaxDrawdownPct,
		},
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
