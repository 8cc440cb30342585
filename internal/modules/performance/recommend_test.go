package performance

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/mag7labs/riskengine/internal/config"
	"github.com/mag7labs/riskengine/internal/domain"
)

func testCfg() config.RiskConfig {
	return config.RiskConfig{MaxPortfolioRiskCap: 0.05}
}

func reportWith(m Metrics, tradeCount int) Report {
	return Report{Metrics: m, TradeCount: tradeCount}
}

func TestRecommend_NoHistoryReturnsDefaults(t *testing.T) {
	svc := NewService(zerolog.Nop())

	profile := domain.DefaultRiskProfile()
	profile.MaxPortfolioRisk = 0.04

	rec := svc.Recommend(profile, reportWith(Metrics{}, 0), testCfg())
	assert.Equal(t, domain.DefaultRiskProfile(), rec.Recommended)
	assert.Equal(t, profile, rec.CurrentProfile)
	assert.NotEmpty(t, rec.Message)
}

func TestRecommend_StrongEdgeRaisesRisk(t *testing.T) {
	svc := NewService(zerolog.Nop())

	profile := domain.DefaultRiskProfile() // risk 0.02
	rec := svc.Recommend(profile, reportWith(Metrics{
		WinRate:              0.75,
		ProfitFactor:         2.5,
		AverageHoldingPeriod: 6,
	}, 20), testCfg())

	assert.InDelta(t, 0.024, rec.Recommended.MaxPortfolioRisk, 1e-9)
	// Advisory only.
	assert.InDelta(t, 0.02, rec.CurrentProfile.MaxPortfolioRisk, 1e-9)
}

func TestRecommend_RiskRaiseIsCapped(t *testing.T) {
	svc := NewService(zerolog.Nop())

	profile := domain.DefaultRiskProfile()
	profile.MaxPortfolioRisk = 0.045

	rec := svc.Recommend(profile, reportWith(Metrics{
		WinRate:              0.8,
		ProfitFactor:         3.0,
		AverageHoldingPeriod: 6,
	}, 20), testCfg())
	assert.InDelta(t, 0.05, rec.Recommended.MaxPortfolioRisk, 1e-9)
}

func TestRecommend_WeakEdgeCutsRisk(t *testing.T) {
	svc := NewService(zerolog.Nop())

	rec := svc.Recommend(domain.DefaultRiskProfile(), reportWith(Metrics{
		WinRate:              0.3,
		ProfitFactor:         1.2,
		AverageHoldingPeriod: 6,
	}, 20), testCfg())
	assert.InDelta(t, 0.016, rec.Recommended.MaxPortfolioRisk, 1e-9)
}

func TestRecommend_ModerateEdgeHoldsRisk(t *testing.T) {
	svc := NewService(zerolog.Nop())

	rec := svc.Recommend(domain.DefaultRiskProfile(), reportWith(Metrics{
		WinRate:              0.55,
		ProfitFactor:         1.4,
		AverageHoldingPeriod: 6,
	}, 20), testCfg())
	assert.InDelta(t, 0.02, rec.Recommended.MaxPortfolioRisk, 1e-9)
}

func TestRecommend_SharpeDrivesExposure(t *testing.T) {
	svc := NewService(zerolog.Nop())
	profile := domain.DefaultRiskProfile() // exposure 0.50

	up := svc.Recommend(profile, reportWith(Metrics{
		WinRate: 0.5, ProfitFactor: 1.4, AverageHoldingPeriod: 6,
		SharpeRatio: 2.0, MaxDrawdownPct: 5,
	}, 20), testCfg())
	assert.InDelta(t, 0.60, up.Recommended.MaxPortfolioExposure, 1e-9)

	down := svc.Recommend(profile, reportWith(Metrics{
		WinRate: 0.5, ProfitFactor: 1.4, AverageHoldingPeriod: 6,
		SharpeRatio: 0.2, MaxDrawdownPct: 25,
	}, 20), testCfg())
	assert.InDelta(t, 0.40, down.Recommended.MaxPortfolioExposure, 1e-9)
}

func TestRecommend_AllocationCapped(t *testing.T) {
	svc := NewService(zerolog.Nop())

	profile := domain.DefaultRiskProfile()
	profile.MaxStockAllocation = 0.25

	rec := svc.Recommend(profile, reportWith(Metrics{
		WinRate: 0.5, ProfitFactor: 1.4, AverageHoldingPeriod: 6,
	}, 20), testCfg())
	assert.InDelta(t, 0.15, rec.Recommended.MaxStockAllocation, 1e-9)
}

func TestRecommend_HoldingPeriodDrivesStopWidth(t *testing.T) {
	svc := NewService(zerolog.Nop())
	profile := domain.DefaultRiskProfile() // max loss 0.25

	quick := svc.Recommend(profile, reportWith(Metrics{
		WinRate: 0.5, ProfitFactor: 1.4, AverageHoldingPeriod: 2,
	}, 20), testCfg())
	assert.InDelta(t, 0.20, quick.Recommended.MaxLossPerTrade, 1e-9)

	slow := svc.Recommend(profile, reportWith(Metrics{
		WinRate: 0.5, ProfitFactor: 1.4, AverageHoldingPeriod: 6.5,
	}, 20), testCfg())
	assert.InDelta(t, 0.30, slow.Recommended.MaxLossPerTrade, 1e-9)
}

func TestRecommend_RiskRewardNudgedOffTarget(t *testing.T) {
	svc := NewService(zerolog.Nop())
	profile := domain.DefaultRiskProfile() // rr 2.0

	// On-target holding: ratio untouched.
	onTarget := svc.Recommend(profile, reportWith(Metrics{
		WinRate: 0.3, ProfitFactor: 0.8, AverageHoldingPeriod: 7,
	}, 20), testCfg())
	assert.InDelta(t, 2.0, onTarget.Recommended.RiskRewardRatio, 1e-9)

	// Far below target with a weak win rate: nudged up, inside bounds.
	weak := svc.Recommend(profile, reportWith(Metrics{
		WinRate: 0.3, ProfitFactor: 0.8, AverageHoldingPeriod: 2,
	}, 20), testCfg())
	assert.InDelta(t, 2.4, weak.Recommended.RiskRewardRatio, 1e-9)

	// Same deviation with a solid win rate: nudged down, floored at 1.5.
	strong := svc.Recommend(profile, reportWith(Metrics{
		WinRate: 0.6, ProfitFactor: 1.4, AverageHoldingPeriod: 2,
	}, 20), testCfg())
	assert.InDelta(t, 1.8, strong.Recommended.RiskRewardRatio, 1e-9)
}

func TestRecommend_SummaryEchoesMetrics(t *testing.T) {
	svc := NewService(zerolog.Nop())

	rec := svc.Recommend(domain.DefaultRiskProfile(), reportWith(Metrics{
		WinRate:              0.5,
		ProfitFactor:         1.4,
		AverageHoldingPeriod: 6,
		SharpeRatio:          1.1,
		MaxDrawdownPct:       8,
	}, 20), testCfg())

	assert.InDelta(t, 0.5, rec.MetricsSummary.WinRate, 1e-9)
	assert.InDelta(t, 1.4, rec.MetricsSummary.ProfitFactor, 1e-9)
	assert.InDelta(t, 1.1, rec.MetricsSummary.SharpeRatio, 1e-9)
	assert.InDelta(t, 8.0, rec.MetricsSummary.MaxDrawdownPct, 1e-9)
}
