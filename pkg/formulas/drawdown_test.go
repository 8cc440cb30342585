package formulas

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateDrawdown(t *testing.T) {
	// Peak at 120, trough at 90: decline of 30, 25% of the peak.
	equity := []float64{100, 120, 110, 90, 115}

	m := CalculateDrawdown(equity)
	assert.InDelta(t, 30.0, m.MaxDrawdown, 1e-9)
	assert.InDelta(t, 25.0, m.MaxDrawdownPct, 1e-9)
	assert.Equal(t, 120.0, m.PeakEquity)
	assert.Equal(t, 90.0, m.TroughEquity)
}

func TestCalculateDrawdownMonotonicRise(t *testing.T) {
	m := CalculateDrawdown([]float64{100, 110, 120})
	assert.Equal(t, 0.0, m.MaxDrawdown)
	assert.Equal(t, 0.0, m.MaxDrawdownPct)
}

func TestCalculateDrawdownTooFewPoints(t *testing.T) {
	assert.Equal(t, DrawdownMetrics{}, CalculateDrawdown([]float64{100}))
	assert.Equal(t, DrawdownMetrics{}, CalculateDrawdown(nil))
}
