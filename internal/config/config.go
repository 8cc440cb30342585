// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultSymbols is the fixed universe of seven underlyings the engine
// tracks. Overridable via SYMBOLS for testing against other universes.
var DefaultSymbols = []string{"AAPL", "MSFT", "GOOGL", "AMZN", "NVDA", "TSLA", "META"}

// Config holds application configuration
type Config struct {
	DataDir  string // Base directory for all databases (always absolute)
	Port     int
	LogLevel string
	DevMode  bool

	// Symbols is the tracked underlying universe.
	Symbols []string

	// InitialCapital seeds the equity curve for accounts with no explicit
	// starting balance.
	InitialCapital float64

	Risk RiskConfig
}

// RiskConfig centralizes the tunable conventions shared by the analytic
// modules, so scaling factors cannot drift between components.
type RiskConfig struct {
	// ConfidenceFloor is the minimum signal confidence accepted by the
	// position sizer. Below it the request is rejected, not clamped.
	ConfidenceFloor float64

	// ConfidenceCeiling is the risk multiplier applied at confidence 1.0;
	// the multiplier scales linearly from 1.0 at the floor up to this.
	ConfidenceCeiling float64

	// MaxPortfolioRiskCap is the hard ceiling the recommender never
	// proposes above, as a fraction of capital per trade.
	MaxPortfolioRiskCap float64

	// HighCorrelation is the pairwise coefficient above which the
	// exposure check raises a correlation alert.
	HighCorrelation float64

	// DefaultLookbackDays is the correlation window used when the caller
	// does not specify one.
	DefaultLookbackDays int

	// MaxLookbackDays bounds correlation requests so a single call stays
	// cheap.
	MaxLookbackDays int
}

// Load reads configuration from the environment, loading a .env file
// first if one is present.
func Load() (*Config, error) {
	// Missing .env is fine; env vars may be set directly.
	_ = godotenv.Load()

	dataDir := getEnv("DATA_DIR", "./data")
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data dir: %w", err)
	}

	port, err := getEnvInt("PORT", 8080)
	if err != nil {
		return nil, err
	}

	initialCapital, err := getEnvFloat("INITIAL_CAPITAL", 100000)
	if err != nil {
		return nil, err
	}

	symbols := DefaultSymbols
	if raw := os.Getenv("SYMBOLS"); raw != "" {
		symbols = nil
		for _, s := range strings.Split(raw, ",") {
			if s = strings.TrimSpace(s); s != "" {
				symbols = append(symbols, strings.ToUpper(s))
			}
		}
	}

	cfg := &Config{
		DataDir:        absDataDir,
		Port:           port,
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		DevMode:        os.Getenv("DEV_MODE") == "true",
		Symbols:        symbols,
		InitialCapital: initialCapital,
		Risk: RiskConfig{
			ConfidenceFloor:     0.6,
			ConfidenceCeiling:   1.3,
			MaxPortfolioRiskCap: 0.05,
			HighCorrelation:     0.8,
			DefaultLookbackDays: 30,
			MaxLookbackDays:     365,
		},
	}

	return cfg, nil
}

// DatabasePath returns the absolute path of a named database file.
func (c *Config) DatabasePath(name string) string {
	return filepath.Join(c.DataDir, name)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}
