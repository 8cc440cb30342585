package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPosition() Position {
	entry := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	return Position{
		ID:         "pos-1",
		Symbol:     "AAPL",
		Type:       LongCall,
		Strike:     190,
		Expiration: entry.AddDate(0, 0, 7),
		EntryDate:  entry,
		Contracts:  2,
		EntryPrice: 2.0,
		Status:     StatusActive,
	}
}

func TestPositionValidate(t *testing.T) {
	assert.NoError(t, validPosition().Validate())

	cases := []struct {
		name   string
		mutate func(*Position)
	}{
		{"zero contracts", func(p *Position) { p.Contracts = 0 }},
		{"negative contracts", func(p *Position) { p.Contracts = -1 }},
		{"zero strike", func(p *Position) { p.Strike = 0 }},
		{"bad type", func(p *Position) { p.Type = "SHORT_STRADDLE" }},
		{"expiration before entry", func(p *Position) { p.Expiration = p.EntryDate.AddDate(0, 0, -1) }},
		{"missing symbol", func(p *Position) { p.Symbol = "" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pos := validPosition()
			tc.mutate(&pos)
			err := pos.Validate()
			require.Error(t, err)
			assert.True(t, IsValidationError(err))
		})
	}
}

func TestPositionCostAndValue(t *testing.T) {
	pos := validPosition()
	assert.Equal(t, 400.0, pos.Cost())

	_, ok := pos.Value()
	assert.False(t, ok, "no value before first price snapshot")

	price := 2.5
	pos.CurrentPrice = &price
	value, ok := pos.Value()
	require.True(t, ok)
	assert.Equal(t, 500.0, value)

	pnl, ok := pos.UnrealizedPnL()
	require.True(t, ok)
	assert.Equal(t, 100.0, pnl)
}

func TestPositionDaysToExpiration(t *testing.T) {
	pos := validPosition()

	assert.Equal(t, 7, pos.DaysToExpiration(pos.EntryDate))
	assert.Equal(t, 2, pos.DaysToExpiration(pos.Expiration.AddDate(0, 0, -2)))
	// Past expiration floors at zero.
	assert.Equal(t, 0, pos.DaysToExpiration(pos.Expiration.AddDate(0, 0, 3)))
}

func TestNewTradeRoundTrip(t *testing.T) {
	pos := validPosition()
	exitDate := pos.EntryDate.AddDate(0, 0, 5)

	trade := NewTrade("trade-1", pos, 2.5, exitDate)

	assert.Equal(t, 400.0, trade.Cost)
	assert.Equal(t, 500.0, trade.Proceeds)
	assert.Equal(t, 100.0, trade.PnL)
	assert.Equal(t, 25.0, trade.PnLPercentage)
	assert.Equal(t, 5, trade.HoldingDays)
	assert.Equal(t, ResultWin, trade.Result)
}

func TestNewTradeBreakevenIsWin(t *testing.T) {
	pos := validPosition()
	trade := NewTrade("trade-2", pos, pos.EntryPrice, pos.EntryDate.AddDate(0, 0, 1))

	assert.Equal(t, 0.0, trade.PnL)
	assert.Equal(t, ResultWin, trade.Result)
}

func TestRiskProfileValidate(t *testing.T) {
	assert.NoError(t, DefaultRiskProfile().Validate())

	p := DefaultRiskProfile()
	p.MaxStockAllocation = 1.5
	assert.Error(t, p.Validate())

	p = DefaultRiskProfile()
	p.RiskRewardRatio = 0
	assert.Error(t, p.Validate())

	p = DefaultRiskProfile()
	p.RiskRewardRatio = -1
	assert.Error(t, p.Validate())
}
