package performance

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mag7labs/riskengine/internal/domain"
)

var baseExit = time.Date(2026, 2, 2, 16, 0, 0, 0, time.UTC)

func trade(pnl float64, holdingDays, daysAfterBase int) domain.Trade {
	result := domain.ResultWin
	if pnl < 0 {
		result = domain.ResultLoss
	}
	return domain.Trade{
		ID:          "t",
		Symbol:      "AAPL",
		PnL:         pnl,
		HoldingDays: holdingDays,
		ExitDate:    baseExit.AddDate(0, 0, daysAfterBase),
		Result:      result,
	}
}

func TestCompute_BasicMetrics(t *testing.T) {
	svc := NewService(zerolog.Nop())

	trades := []domain.Trade{
		trade(100, 5, 0),
		trade(-50, 3, 1),
		trade(150, 7, 2),
		trade(-25, 4, 3),
	}
	report := svc.Compute(trades, 100000)

	m := report.Metrics
	assert.InDelta(t, 0.5, m.WinRate, 1e-9)
	assert.InDelta(t, 250.0/75.0, m.ProfitFactor, 1e-9)
	assert.InDelta(t, 125, m.AverageWin, 1e-9)
	assert.InDelta(t, 37.5, m.AverageLoss, 1e-9)
	assert.InDelta(t, 150, m.LargestWin, 1e-9)
	assert.InDelta(t, -50, m.LargestLoss, 1e-9)
	assert.InDelta(t, 4.75, m.AverageHoldingPeriod, 1e-9)
	assert.InDelta(t, 175, m.TotalPnL, 1e-9)
	assert.Equal(t, 4, report.TradeCount)
}

func TestCompute_EquityCurveFold(t *testing.T) {
	svc := NewService(zerolog.Nop())

	report := svc.Compute([]domain.Trade{
		trade(100, 5, 0),
		trade(-50, 3, 1),
		trade(150, 7, 2),
	}, 100000)

	require.Len(t, report.EquityCurve, 3)
	assert.InDelta(t, 100100, report.EquityCurve[0].Equity, 1e-9)
	assert.InDelta(t, 100050, report.EquityCurve[1].Equity, 1e-9)
	assert.InDelta(t, 100200, report.EquityCurve[2].Equity, 1e-9)
}

func TestCompute_Deterministic(t *testing.T) {
	svc := NewService(zerolog.Nop())

	trades := []domain.Trade{
		trade(100, 5, 0),
		trade(-50, 3, 1),
		trade(150, 7, 2),
	}
	first := svc.Compute(trades, 100000)
	second := svc.Compute(trades, 100000)

	assert.Equal(t, first.Metrics, second.Metrics)
	assert.Equal(t, first.EquityCurve, second.EquityCurve)
}

func TestCompute_NoTrades(t *testing.T) {
	svc := NewService(zerolog.Nop())

	report := svc.Compute(nil, 100000)
	assert.Zero(t, report.Metrics.WinRate)
	assert.Zero(t, report.Metrics.ProfitFactor)
	assert.Zero(t, report.Metrics.SharpeRatio)
	assert.Zero(t, report.Metrics.MaxDrawdown)
	assert.Empty(t, report.EquityCurve)
	assert.Zero(t, report.TradeCount)
}

func TestCompute_ProfitFactorCappedWithoutLosses(t *testing.T) {
	svc := NewService(zerolog.Nop())

	report := svc.Compute([]domain.Trade{
		trade(100, 5, 0),
		trade(200, 6, 1),
	}, 100000)
	assert.Equal(t, ProfitFactorCap, report.Metrics.ProfitFactor)
	assert.Zero(t, report.Metrics.AverageLoss)
	assert.Zero(t, report.Metrics.LargestLoss)
}

func TestCompute_BreakevenCountsAsWin(t *testing.T) {
	svc := NewService(zerolog.Nop())

	report := svc.Compute([]domain.Trade{
		trade(0, 5, 0),
		trade(-50, 3, 1),
	}, 100000)
	assert.InDelta(t, 0.5, report.Metrics.WinRate, 1e-9)

	// The breakeven trade adds nothing to gross profit, so with no real
	// winners the average win is zero.
	assert.Zero(t, report.Metrics.AverageWin)
}

func TestCompute_DrawdownFromInitialCapital(t *testing.T) {
	svc := NewService(zerolog.Nop())

	// A losing first trade draws down from the starting balance even
	// though the curve itself only rises afterwards.
	report := svc.Compute([]domain.Trade{
		trade(-1000, 5, 0),
		trade(500, 4, 1),
	}, 100000)

	assert.InDelta(t, 1000, report.Metrics.MaxDrawdown, 1e-9)
	assert.InDelta(t, 1.0, report.Metrics.MaxDrawdownPct, 1e-9)
}

func TestCompute_DrawdownPeakToTrough(t *testing.T) {
	svc := NewService(zerolog.Nop())

	report := svc.Compute([]domain.Trade{
		trade(2000, 5, 0),  // 102000 peak
		trade(-1500, 3, 1), // 100500
		trade(-1000, 4, 2), // 99500 trough
		trade(3000, 6, 3),  // 102500
	}, 100000)

	assert.InDelta(t, 2500, report.Metrics.MaxDrawdown, 1e-9)
	assert.InDelta(t, 2500.0/102000*100, report.Metrics.MaxDrawdownPct, 1e-9)
}

func TestCompute_SharpeZeroOnFlatEquity(t *testing.T) {
	svc := NewService(zerolog.Nop())

	// Alternating wins and losses of identical size leave day-over-day
	// changes with nonzero variance, but all-breakeven trades do not.
	report := svc.Compute([]domain.Trade{
		trade(0, 5, 0),
		trade(0, 5, 1),
		trade(0, 5, 2),
	}, 100000)
	assert.Zero(t, report.Metrics.SharpeRatio)
}

func TestCompute_SharpePositiveOnSteadyGains(t *testing.T) {
	svc := NewService(zerolog.Nop())

	trades := make([]domain.Trade, 0, 10)
	for i := 0; i < 10; i++ {
		trades = append(trades, trade(100+float64(i)*10, 5, i))
	}
	report := svc.Compute(trades, 100000)
	assert.Greater(t, report.Metrics.SharpeRatio, 0.0)
}

func TestCompute_SingleTradeSharpeZero(t *testing.T) {
	svc := NewService(zerolog.Nop())

	report := svc.Compute([]domain.Trade{trade(100, 5, 0)}, 100000)
	assert.Zero(t, report.Metrics.SharpeRatio)
}
