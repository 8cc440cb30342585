// Package formulas provides the pure math used by the risk engine:
// return series, dispersion, correlation, Sharpe and drawdown metrics.
// Every function is a plain computation over caller-supplied data.
package formulas

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Mean(data, nil)
}

// StdDev calculates the sample standard deviation of a slice of float64 values
func StdDev(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	return stat.StdDev(data, nil)
}

// CalculateReturns converts a price series to simple daily returns.
// Returns[i] = (Price[i+1] - Price[i]) / Price[i]
func CalculateReturns(prices []float64) []float64 {
	if len(prices) < 2 {
		return []float64{}
	}

	returns := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] != 0 {
			returns[i-1] = (prices[i] - prices[i-1]) / prices[i-1]
		}
	}

	return returns
}

// GappedReturns converts a date-aligned price series with gaps into a
// return series of the same alignment. closes maps date -> close price;
// dates is the full trading calendar, sorted ascending. A return is NaN
// whenever the day or the previous day has no observation, so gaps stay
// gaps instead of fabricating a multi-day return.
func GappedReturns(dates []string, closes map[string]float64) []float64 {
	if len(dates) < 2 {
		return []float64{}
	}

	returns := make([]float64, len(dates)-1)
	for i := 1; i < len(dates); i++ {
		prev, okPrev := closes[dates[i-1]]
		cur, okCur := closes[dates[i]]
		if !okPrev || !okCur || prev == 0 {
			returns[i-1] = math.NaN()
			continue
		}
		returns[i-1] = (cur - prev) / prev
	}

	return returns
}

// PairwiseCorrelation computes the Pearson correlation between two
// date-aligned return series, dropping any day where either side is NaN.
// This is pairwise-complete: a gap in one symbol only removes that day
// from this pair, not from the whole matrix. Returns the coefficient and
// the number of complete observations used.
func PairwiseCorrelation(x, y []float64) (float64, int) {
	if len(x) != len(y) {
		return 0, 0
	}

	var xs, ys []float64
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}

	if len(xs) < 2 {
		return 0, len(xs)
	}

	r := stat.Correlation(xs, ys, nil)
	if math.IsNaN(r) {
		// Zero variance on one side; no linear relationship to report.
		return 0, len(xs)
	}
	return r, len(xs)
}

// Covariance calculates the sample covariance between two equal-length series
func Covariance(x, y []float64) float64 {
	if len(x) < 2 || len(x) != len(y) {
		return 0
	}
	return stat.Covariance(x, y, nil)
}

// Beta calculates the beta of a return series against a market return
// series: cov(asset, market) / var(market). Returns 0 when the market
// series has no variance.
func Beta(asset, market []float64) float64 {
	if len(asset) < 2 || len(asset) != len(market) {
		return 0
	}

	marketVar := stat.Variance(market, nil)
	if marketVar == 0 {
		return 0
	}
	return stat.Covariance(asset, market, nil) / marketVar
}
