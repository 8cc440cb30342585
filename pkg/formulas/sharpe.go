package formulas

import "math"

// SharpeRatio calculates the annualized Sharpe ratio from a series of
// periodic returns with a zero risk-free rate:
//
//	Sharpe = mean(returns) / stddev(returns) × sqrt(periodsPerYear)
//
// A series with fewer than two points or with zero variance yields 0,
// never NaN, so the value is always safe to serialize.
func SharpeRatio(returns []float64, periodsPerYear int) float64 {
	if len(returns) < 2 {
		return 0
	}

	stdDev := StdDev(returns)
	if stdDev == 0 {
		return 0
	}

	return Mean(returns) / stdDev * math.Sqrt(float64(periodsPerYear))
}

// AnnualizedVolatility calculates annualized volatility from daily returns:
// stddev of daily returns × sqrt(252 trading days).
func AnnualizedVolatility(dailyReturns []float64) float64 {
	if len(dailyReturns) < 2 {
		return 0
	}
	return StdDev(dailyReturns) * math.Sqrt(252)
}
