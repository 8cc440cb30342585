package domain

import "time"

// PositionProvider is the read surface the analytic modules need for open
// positions. Implemented by the portfolio module's repository.
type PositionProvider interface {
	GetActive() ([]Position, error)
	GetByID(id string) (*Position, error)
}

// TradeProvider supplies closed trades in chronological order by exit
// date, which the performance metrics engine requires.
type TradeProvider interface {
	GetAllChronological() ([]Trade, error)
}

// PriceHistoryProvider supplies daily closing prices, most recent window
// of the requested length, ordered ascending by date. The engine treats
// the data as a read-only snapshot; consistency is the provider's job.
type PriceHistoryProvider interface {
	GetDailyCloses(symbol string, days int) ([]DailyClose, error)
}

// ProfileProvider supplies the current risk profile for evaluation.
type ProfileProvider interface {
	Get() (RiskProfile, error)
}

// Clock abstracts "now" so expiration checks are deterministic in tests.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time { return time.Now().UTC() }
