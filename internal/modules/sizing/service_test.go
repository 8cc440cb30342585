package sizing

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mag7labs/riskengine/internal/config"
	"github.com/mag7labs/riskengine/internal/domain"
)

func testRiskConfig() config.RiskConfig {
	return config.RiskConfig{
		ConfidenceFloor:   0.6,
		ConfidenceCeiling: 1.3,
	}
}

func newTestService() *Service {
	return NewService(testRiskConfig(), zerolog.Nop())
}

func baseRequest() Request {
	return Request{
		Profile:           domain.DefaultRiskProfile(), // maxLoss 0.25, maxStock 0.10
		PortfolioValue:    100000,
		Confidence:        0.8,
		OptionPrice:       2.0,
		CurrentAllocation: 0,
	}
}

func TestSizeBasic(t *testing.T) {
	svc := newTestService()

	res, err := svc.Size(baseRequest())
	require.NoError(t, err)

	// maxCapital = 100000 * 0.25 = 25000
	// multiplier at 0.8 = 1 + 0.5*0.3 = 1.15
	// uncapped risk 28750, reported capped at available 10000
	// contracts = floor(10000 / 200) = 50
	assert.Equal(t, 25000.0, res.MaxCapital)
	assert.InDelta(t, 1.15, res.ConfidenceMultiplier, 1e-9)
	assert.InDelta(t, 10000.0, res.RiskPerTrade, 1e-9)
	assert.Equal(t, 10000.0, res.AvailableAllocation)
	assert.Equal(t, 50, res.Contracts)
	assert.Empty(t, res.Reason)
}

func TestSizeRiskPerTradeBelowAllocationUncapped(t *testing.T) {
	svc := newTestService()

	req := baseRequest()
	req.Profile.MaxLossPerTrade = 0.05 // risk 5000 * 1.15 fits inside the 10000 budget
	res, err := svc.Size(req)
	require.NoError(t, err)

	assert.InDelta(t, 5750.0, res.RiskPerTrade, 1e-9)
	assert.Equal(t, 28, res.Contracts)
}

func TestSizeMultiplierEndpoints(t *testing.T) {
	svc := newTestService()

	req := baseRequest()
	req.Confidence = 0.6
	res, err := svc.Size(req)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, res.ConfidenceMultiplier, 1e-9)

	req.Confidence = 1.0
	res, err = svc.Size(req)
	require.NoError(t, err)
	assert.InDelta(t, 1.3, res.ConfidenceMultiplier, 1e-9)
}

func TestSizeInsufficientConfidence(t *testing.T) {
	svc := newTestService()

	req := baseRequest()
	req.Confidence = 0.55
	res, err := svc.Size(req)
	require.NoError(t, err, "below-floor confidence is a business condition, not an error")

	assert.Equal(t, ReasonInsufficientConfidence, res.Reason)
	assert.Equal(t, 0, res.Contracts)
	assert.Equal(t, 0.0, res.RiskPerTrade)
}

func TestSizeAllocationExhausted(t *testing.T) {
	svc := newTestService()

	req := baseRequest()
	req.CurrentAllocation = 10000 // exactly the 10% budget
	res, err := svc.Size(req)
	require.NoError(t, err)

	assert.Equal(t, ReasonAllocationExhausted, res.Reason)
	assert.Equal(t, 0, res.Contracts)
	assert.Equal(t, 0.0, res.AvailableAllocation)

	req.CurrentAllocation = 12000 // over budget reports zero, not negative
	res, err = svc.Size(req)
	require.NoError(t, err)
	assert.Equal(t, ReasonAllocationExhausted, res.Reason)
	assert.Equal(t, 0.0, res.AvailableAllocation)
}

func TestSizeSpendNeverExceedsAllocation(t *testing.T) {
	svc := newTestService()

	req := baseRequest()
	for _, alloc := range []float64{0, 1000, 5000, 9900, 9999} {
		req.CurrentAllocation = alloc
		res, err := svc.Size(req)
		require.NoError(t, err)

		assert.GreaterOrEqual(t, res.Contracts, 0)
		assert.LessOrEqual(t, res.RiskPerTrade, res.AvailableAllocation)
		spent := float64(res.Contracts) * req.OptionPrice * domain.OptionMultiplier
		assert.LessOrEqual(t, spent, res.AvailableAllocation)
	}
}

func TestSizeValidation(t *testing.T) {
	svc := newTestService()

	req := baseRequest()
	req.Confidence = 1.2
	_, err := svc.Size(req)
	require.Error(t, err)
	assert.True(t, domain.IsValidationError(err))

	req = baseRequest()
	req.OptionPrice = 0
	_, err = svc.Size(req)
	assert.Error(t, err)

	req = baseRequest()
	req.PortfolioValue = -5
	_, err = svc.Size(req)
	assert.Error(t, err)

	req = baseRequest()
	req.Profile.RiskRewardRatio = 0
	_, err = svc.Size(req)
	assert.Error(t, err)
}

func TestSizeExpensiveOption(t *testing.T) {
	svc := newTestService()

	req := baseRequest()
	req.OptionPrice = 150 // contract value 15000 > available 10000
	res, err := svc.Size(req)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Contracts)
	assert.Empty(t, res.Reason, "affordable=0 is not the same as allocation exhausted")
}
