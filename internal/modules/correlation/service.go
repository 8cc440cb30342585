// Package correlation builds the pairwise return-correlation matrix for
// the tracked universe and persists the daily snapshot.
package correlation

import (
	"fmt"
	"math"
	"sort"

	"github.com/rs/zerolog"

	"github.com/mag7labs/riskengine/internal/config"
	"github.com/mag7labs/riskengine/internal/domain"
	"github.com/mag7labs/riskengine/pkg/formulas"
)

// HistorySource is the price history surface the builder reads from.
type HistorySource interface {
	domain.PriceHistoryProvider
	MaxAvailableDays() (int, error)
}

// Result is a computed matrix plus the window it was computed over.
type Result struct {
	Matrix       domain.CorrelationMatrix `json:"matrix"`
	Symbols      []string                 `json:"symbols"`
	LookbackDays int                      `json:"lookback_days"`
	Observations map[string]int           `json:"-"`
}

// Service builds correlation matrices over the configured universe.
type Service struct {
	history HistorySource
	symbols []string
	cfg     config.RiskConfig
	log     zerolog.Logger
}

// NewService creates a new correlation service.
func NewService(history HistorySource, symbols []string, cfg config.RiskConfig, log zerolog.Logger) *Service {
	return &Service{
		history: history,
		symbols: symbols,
		cfg:     cfg,
		log:     log.With().Str("service", "correlation").Logger(),
	}
}

// BuildMatrix computes Pearson correlations of daily returns between every
// symbol pair over the lookback window. Days missing from one symbol are
// excluded from that symbol's pairs only, never from the whole matrix.
// The diagonal is pinned to 1.0 and the lower triangle mirrors the upper,
// so the output is exactly symmetric. A lookback of 0 means the default.
func (s *Service) BuildMatrix(lookbackDays int) (Result, error) {
	if lookbackDays == 0 {
		lookbackDays = s.cfg.DefaultLookbackDays
	}
	if lookbackDays < 2 {
		return Result{}, domain.NewValidationError("lookback_days", "must be at least 2")
	}
	if lookbackDays > s.cfg.MaxLookbackDays {
		return Result{}, domain.NewValidationError("lookback_days",
			fmt.Sprintf("must not exceed %d", s.cfg.MaxLookbackDays))
	}

	available, err := s.history.MaxAvailableDays()
	if err != nil {
		return Result{}, fmt.Errorf("failed to check available history: %w", err)
	}
	if available == 0 {
		return Result{}, domain.ErrInsufficientData
	}
	if lookbackDays > available {
		return Result{}, domain.NewValidationError("lookback_days",
			fmt.Sprintf("exceeds available history of %d days", available))
	}

	series, dates, err := s.loadSeries(lookbackDays)
	if err != nil {
		return Result{}, err
	}
	if len(dates) < 2 {
		return Result{}, domain.ErrInsufficientData
	}

	returns := make(map[string][]float64, len(s.symbols))
	for _, symbol := range s.symbols {
		returns[symbol] = formulas.GappedReturns(dates, series[symbol])
	}

	matrix := make(domain.CorrelationMatrix, len(s.symbols))
	observations := make(map[string]int)
	for _, symbol := range s.symbols {
		matrix[symbol] = make(map[string]float64, len(s.symbols))
		matrix[symbol][symbol] = 1.0
	}

	// Upper triangle once, then mirror.
	for i := 0; i < len(s.symbols); i++ {
		for j := i + 1; j < len(s.symbols); j++ {
			a, b := s.symbols[i], s.symbols[j]
			r, n := formulas.PairwiseCorrelation(returns[a], returns[b])
			matrix[a][b] = r
			matrix[b][a] = r
			observations[a+":"+b] = n
		}
	}

	s.log.Debug().
		Int("lookback_days", lookbackDays).
		Int("dates", len(dates)).
		Msg("built correlation matrix")

	return Result{
		Matrix:       matrix,
		Symbols:      append([]string(nil), s.symbols...),
		LookbackDays: lookbackDays,
		Observations: observations,
	}, nil
}

// Betas computes each tracked symbol's beta against a benchmark symbol
// over the lookback window, cov(symbol, benchmark) / var(benchmark).
// Days missing on either side are dropped from that symbol's pairing.
func (s *Service) Betas(benchmark string, lookbackDays int) (map[string]float64, error) {
	if lookbackDays == 0 {
		lookbackDays = s.cfg.DefaultLookbackDays
	}
	if lookbackDays < 2 {
		return nil, domain.NewValidationError("lookback_days", "must be at least 2")
	}

	series, dates, err := s.loadSeriesFor(append([]string{benchmark}, s.symbols...), lookbackDays)
	if err != nil {
		return nil, err
	}
	if len(series[benchmark]) < 2 {
		return nil, domain.ErrInsufficientData
	}

	benchReturns := formulas.GappedReturns(dates, series[benchmark])

	betas := make(map[string]float64, len(s.symbols))
	for _, symbol := range s.symbols {
		if symbol == benchmark {
			betas[symbol] = 1.0
			continue
		}
		asset, market := completePairs(formulas.GappedReturns(dates, series[symbol]), benchReturns)
		betas[symbol] = formulas.Beta(asset, market)
	}
	return betas, nil
}

// loadSeries fetches the window for the configured universe and returns
// per-symbol date→close maps plus the sorted union of observed dates.
func (s *Service) loadSeries(days int) (map[string]map[string]float64, []string, error) {
	return s.loadSeriesFor(s.symbols, days)
}

func (s *Service) loadSeriesFor(symbols []string, days int) (map[string]map[string]float64, []string, error) {
	series := make(map[string]map[string]float64, len(symbols))
	dateSet := make(map[string]struct{})

	for _, symbol := range symbols {
		if _, done := series[symbol]; done {
			continue
		}
		closes, err := s.history.GetDailyCloses(symbol, days)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load closes for %s: %w", symbol, err)
		}
		bySymbol := make(map[string]float64, len(closes))
		for _, c := range closes {
			bySymbol[c.Date] = c.Close
			dateSet[c.Date] = struct{}{}
		}
		series[symbol] = bySymbol
	}

	dates := make([]string, 0, len(dateSet))
	for d := range dateSet {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return series, dates, nil
}

// completePairs drops positions where either series is NaN.
func completePairs(x, y []float64) ([]float64, []float64) {
	var xs, ys []float64
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	return xs, ys
}
