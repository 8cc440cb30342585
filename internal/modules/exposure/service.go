// Package exposure aggregates notional exposure per underlying and
// portfolio-wide and compares it against the risk profile's limits. The
// check is advisory and read-only: it reports, it never blocks a trade.
package exposure

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/mag7labs/riskengine/internal/config"
	"github.com/mag7labs/riskengine/internal/domain"
)

// Alert levels and types.
const (
	LevelHigh   = "high"
	LevelMedium = "medium"

	AlertTotalExposure = "total_exposure"
	AlertStockExposure = "stock_exposure"
	AlertCorrelation   = "correlation"
)

// Statuses of an exposure report.
const (
	StatusOK      = "ok"
	StatusWarning = "warning"
)

// warnFraction is the share of a limit at which a medium alert fires.
const warnFraction = 0.8

// SymbolExposure is the notional value held in one underlying and its
// share of portfolio value (0-100).
type SymbolExposure struct {
	Value      float64 `json:"value"`
	Percentage float64 `json:"percentage"`
}

// CorrelatedPair names two held symbols whose returns move together.
type CorrelatedPair struct {
	Symbol1     string  `json:"symbol1"`
	Symbol2     string  `json:"symbol2"`
	Correlation float64 `json:"correlation"`
}

// Alert is one limit violation or near-violation.
type Alert struct {
	Type    string           `json:"type"`
	Level   string           `json:"level"`
	Symbol  string           `json:"symbol,omitempty"`
	Message string           `json:"message"`
	Pairs   []CorrelatedPair `json:"correlations,omitempty"`
}

// Report is the full exposure picture. It is always returned, over limit
// or not; Status distinguishes the two.
type Report struct {
	Status             string                    `json:"status"`
	TotalExposure      float64                   `json:"total_exposure"`
	MaxExposure        float64                   `json:"max_exposure"`
	ExposurePercentage float64                   `json:"exposure_percentage"`
	SymbolExposures    map[string]SymbolExposure `json:"stock_exposures"`
	Alerts             []Alert                   `json:"alerts"`
}

// Input is the snapshot the check runs over. Correlations is optional;
// when present and two or more symbols are held, highly correlated pairs
// raise an additional advisory alert.
type Input struct {
	Positions      []domain.Position
	Profile        domain.RiskProfile
	PortfolioValue float64
	Correlations   domain.CorrelationMatrix
}

// Service is the exposure aggregator.
type Service struct {
	cfg config.RiskConfig
	log zerolog.Logger
}

// NewService creates a new exposure service.
func NewService(cfg config.RiskConfig, log zerolog.Logger) *Service {
	return &Service{
		cfg: cfg,
		log: log.With().Str("service", "exposure").Logger(),
	}
}

// Check aggregates exposure and evaluates it against the profile limits.
// Total exposure is the sum of the per-symbol sums, so the two always
// agree exactly. Positions that have not received a price snapshot yet
// are valued at cost.
func (s *Service) Check(in Input) (Report, error) {
	if err := in.Profile.Validate(); err != nil {
		return Report{}, err
	}
	if in.PortfolioValue <= 0 {
		return Report{}, domain.NewValidationError("portfolio_value", "must be positive")
	}

	symbolValues := make(map[string]float64)
	for _, pos := range in.Positions {
		if pos.Status != domain.StatusActive {
			continue
		}
		value, ok := pos.Value()
		if !ok {
			value = pos.Cost()
		}
		symbolValues[pos.Symbol] += value
	}

	var totalExposure float64
	exposures := make(map[string]SymbolExposure, len(symbolValues))
	for symbol, value := range symbolValues {
		totalExposure += value
		exposures[symbol] = SymbolExposure{
			Value:      value,
			Percentage: value / in.PortfolioValue * 100,
		}
	}

	maxExposure := in.Profile.MaxPortfolioExposure * in.PortfolioValue
	exposurePct := 0.0
	if maxExposure > 0 {
		exposurePct = totalExposure / maxExposure * 100
	}

	report := Report{
		Status:             StatusOK,
		TotalExposure:      totalExposure,
		MaxExposure:        maxExposure,
		ExposurePercentage: exposurePct,
		SymbolExposures:    exposures,
		Alerts:             []Alert{},
	}

	if exposurePct > 100 {
		report.Alerts = append(report.Alerts, Alert{
			Type:  AlertTotalExposure,
			Level: LevelHigh,
			Message: fmt.Sprintf("Total portfolio exposure (%.2f%% of limit) exceeds maximum allowed (%.2f)",
				exposurePct, maxExposure),
		})
	} else if exposurePct > warnFraction*100 {
		report.Alerts = append(report.Alerts, Alert{
			Type:  AlertTotalExposure,
			Level: LevelMedium,
			Message: fmt.Sprintf("Total portfolio exposure (%.2f%% of limit) is approaching maximum allowed (%.2f)",
				exposurePct, maxExposure),
		})
	}

	maxStockPct := in.Profile.MaxStockAllocation * 100
	for _, symbol := range sortedSymbols(exposures) {
		pct := exposures[symbol].Percentage
		if pct > maxStockPct {
			report.Alerts = append(report.Alerts, Alert{
				Type:   AlertStockExposure,
				Level:  LevelHigh,
				Symbol: symbol,
				Message: fmt.Sprintf("Exposure to %s (%.2f%%) exceeds maximum allowed (%.2f%%)",
					symbol, pct, maxStockPct),
			})
		} else if pct > warnFraction*maxStockPct {
			report.Alerts = append(report.Alerts, Alert{
				Type:   AlertStockExposure,
				Level:  LevelMedium,
				Symbol: symbol,
				Message: fmt.Sprintf("Exposure to %s (%.2f%%) is approaching maximum allowed (%.2f%%)",
					symbol, pct, maxStockPct),
			})
		}
	}

	if pairs := s.correlatedPairs(exposures, in.Correlations); len(pairs) > 0 {
		report.Alerts = append(report.Alerts, Alert{
			Type:    AlertCorrelation,
			Level:   LevelMedium,
			Message: "High correlation detected between held underlyings",
			Pairs:   pairs,
		})
	}

	for _, a := range report.Alerts {
		if a.Level == LevelHigh {
			report.Status = StatusWarning
			break
		}
	}

	return report, nil
}

// correlatedPairs returns held symbol pairs whose correlation exceeds
// the configured threshold.
func (s *Service) correlatedPairs(exposures map[string]SymbolExposure, matrix domain.CorrelationMatrix) []CorrelatedPair {
	if matrix == nil || len(exposures) < 2 {
		return nil
	}

	symbols := sortedSymbols(exposures)
	var pairs []CorrelatedPair
	for i := 0; i < len(symbols); i++ {
		for j := i + 1; j < len(symbols); j++ {
			row, ok := matrix[symbols[i]]
			if !ok {
				continue
			}
			r, ok := row[symbols[j]]
			if !ok {
				continue
			}
			if r > s.cfg.HighCorrelation {
				pairs = append(pairs, CorrelatedPair{
					Symbol1:     symbols[i],
					Symbol2:     symbols[j],
					Correlation: r,
				})
			}
		}
	}
	return pairs
}

func sortedSymbols(exposures map[string]SymbolExposure) []string {
	symbols := make([]string, 0, len(exposures))
	for s := range exposures {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)
	return symbols
}
