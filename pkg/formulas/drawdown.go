package formulas

// DrawdownMetrics represents the result of a peak-to-trough analysis over
// an equity curve. Magnitudes are reported as positive numbers.
type DrawdownMetrics struct {
	MaxDrawdown    float64 `json:"max_drawdown"`     // Largest decline in currency terms
	MaxDrawdownPct float64 `json:"max_drawdown_pct"` // Largest decline as % of the peak (0-100)
	PeakEquity     float64 `json:"peak_equity"`      // Equity at the peak preceding the worst trough
	TroughEquity   float64 `json:"trough_equity"`    // Equity at the worst trough
}

// CalculateDrawdown walks an equity curve and finds the largest
// peak-to-trough decline, both absolute and as a percentage of the peak.
// Fewer than two points means no drawdown can exist and zeros are returned.
func CalculateDrawdown(equity []float64) DrawdownMetrics {
	if len(equity) < 2 {
		return DrawdownMetrics{}
	}

	peak := equity[0]
	m := DrawdownMetrics{PeakEquity: equity[0], TroughEquity: equity[0]}

	for _, e := range equity {
		if e > peak {
			peak = e
		}

		decline := peak - e
		if decline > m.MaxDrawdown {
			m.MaxDrawdown = decline
			m.PeakEquity = peak
			m.TroughEquity = e
			if peak > 0 {
				m.MaxDrawdownPct = decline / peak * 100
			}
		}
	}

	return m
}
