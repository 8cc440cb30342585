// Package performance computes portfolio metrics from closed trades and
// derives risk profile recommendations from them. Everything is recomputed
// fresh on every call; there is no cached or incremental state to drift
// out of sync with the trade history.
package performance

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/mag7labs/riskengine/internal/domain"
	"github.com/mag7labs/riskengine/pkg/formulas"
)

// ProfitFactorCap stands in for an infinite profit factor when there are
// no losing trades. Reported instead of +Inf so the value survives JSON.
const ProfitFactorCap = 999.99

// Metrics are the realized performance statistics over a trade history.
// AverageLoss is a positive magnitude; LargestLoss is the signed pnl of
// the worst trade. Drawdown is reported as a positive decline.
type Metrics struct {
	WinRate              float64 `json:"win_rate"`
	ProfitFactor         float64 `json:"profit_factor"`
	AverageWin           float64 `json:"average_win"`
	AverageLoss          float64 `json:"average_loss"`
	LargestWin           float64 `json:"largest_win"`
	LargestLoss          float64 `json:"largest_loss"`
	AverageHoldingPeriod float64 `json:"average_holding_period"`
	SharpeRatio          float64 `json:"sharpe_ratio"`
	MaxDrawdown          float64 `json:"max_drawdown"`
	MaxDrawdownPct       float64 `json:"max_drawdown_percentage"`
	TotalPnL             float64 `json:"total_pnl"`
}

// Report is the full metrics output: the statistics plus the equity curve
// the drawdown and Sharpe figures were derived from.
type Report struct {
	Metrics     Metrics              `json:"metrics"`
	EquityCurve []domain.EquityPoint `json:"equity_curve"`
	TradeCount  int                  `json:"trade_count"`
}

// Service computes metrics and recommendations.
type Service struct {
	log zerolog.Logger
}

// NewService creates a new performance service.
func NewService(log zerolog.Logger) *Service {
	return &Service{
		log: log.With().Str("service", "performance").Logger(),
	}
}

// Compute derives all metrics from the closed trades, which must be
// ordered chronologically by exit date. An empty history is not an error:
// every metric is zero and the curve is empty.
func (s *Service) Compute(trades []domain.Trade, initialCapital float64) Report {
	if len(trades) == 0 {
		return Report{EquityCurve: []domain.EquityPoint{}}
	}

	var (
		wins, losses []domain.Trade
		grossProfit  float64
		grossLoss    float64
		totalPnL     float64
		totalHolding int
		largestWin   float64
		largestLoss  float64
	)
	for _, t := range trades {
		totalPnL += t.PnL
		totalHolding += t.HoldingDays

		if t.Result == domain.ResultWin {
			wins = append(wins, t)
		} else {
			losses = append(losses, t)
		}
		if t.PnL > 0 {
			grossProfit += t.PnL
		} else {
			grossLoss += -t.PnL
		}
		if t.PnL > largestWin {
			largestWin = t.PnL
		}
		if t.PnL < largestLoss {
			largestLoss = t.PnL
		}
	}

	m := Metrics{
		WinRate:              float64(len(wins)) / float64(len(trades)),
		LargestWin:           largestWin,
		LargestLoss:          largestLoss,
		AverageHoldingPeriod: float64(totalHolding) / float64(len(trades)),
		TotalPnL:             totalPnL,
	}

	if grossLoss > 0 {
		m.ProfitFactor = grossProfit / grossLoss
	} else {
		m.ProfitFactor = ProfitFactorCap
	}
	if len(wins) > 0 {
		m.AverageWin = grossProfit / float64(len(wins))
	}
	if len(losses) > 0 {
		m.AverageLoss = grossLoss / float64(len(losses))
	}

	curve := equityCurve(trades, initialCapital)

	// Drawdown is measured from the starting balance, so a losing first
	// trade already counts as a decline.
	equities := make([]float64, 0, len(curve)+1)
	equities = append(equities, initialCapital)
	for _, p := range curve {
		equities = append(equities, p.Equity)
	}
	dd := formulas.CalculateDrawdown(equities)
	m.MaxDrawdown = dd.MaxDrawdown
	m.MaxDrawdownPct = dd.MaxDrawdownPct

	m.SharpeRatio = formulas.SharpeRatio(dailyReturns(curve), domain.TradingDaysPerYear)

	return Report{
		Metrics:     m,
		EquityCurve: curve,
		TradeCount:  len(trades),
	}
}

// equityCurve folds trades onto a running balance starting at initial
// capital, one point per trade at its exit date.
func equityCurve(trades []domain.Trade, initialCapital float64) []domain.EquityPoint {
	curve := make([]domain.EquityPoint, 0, len(trades))
	equity := initialCapital
	for _, t := range trades {
		equity += t.PnL
		curve = append(curve, domain.EquityPoint{Date: t.ExitDate, Equity: equity})
	}
	return curve
}

// dailyReturns resamples the per-trade equity curve onto a daily grid,
// carrying the last known equity across days without an exit, and returns
// day-over-day percentage changes. Multiple exits on one day collapse to
// the day's final equity.
func dailyReturns(curve []domain.EquityPoint) []float64 {
	if len(curve) < 2 {
		return nil
	}

	byDay := make(map[string]float64)
	first := day(curve[0].Date)
	last := first
	for _, p := range curve {
		d := day(p.Date)
		byDay[d.Format("2006-01-02")] = p.Equity
		if d.After(last) {
			last = d
		}
		if d.Before(first) {
			first = d
		}
	}

	var daily []float64
	prev := byDay[first.Format("2006-01-02")]
	for d := first.AddDate(0, 0, 1); !d.After(last); d = d.AddDate(0, 0, 1) {
		equity, ok := byDay[d.Format("2006-01-02")]
		if !ok {
			equity = prev
		}
		if prev != 0 {
			daily = append(daily, (equity-prev)/prev)
		}
		prev = equity
	}
	return daily
}

func day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
