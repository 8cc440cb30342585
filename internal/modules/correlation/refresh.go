package correlation

import (
	"errors"

	"github.com/rs/zerolog"

	"github.com/mag7labs/riskengine/internal/domain"
)

// RefreshJob recomputes the default-window matrix and persists the
// snapshot. Registered with the scheduler to run once a day after the
// close; the matrix only moves when new daily closes arrive.
type RefreshJob struct {
	service *Service
	repo    *Repository
	clock   domain.Clock
	log     zerolog.Logger
}

// NewRefreshJob creates the daily correlation refresh job.
func NewRefreshJob(service *Service, repo *Repository, clock domain.Clock, log zerolog.Logger) *RefreshJob {
	return &RefreshJob{
		service: service,
		repo:    repo,
		clock:   clock,
		log:     log.With().Str("job", "correlation_refresh").Logger(),
	}
}

// Name implements scheduler.Job.
func (j *RefreshJob) Name() string { return "correlation_refresh" }

// Run implements scheduler.Job. Insufficient history is expected on a
// fresh install and is logged, not propagated as a failure.
func (j *RefreshJob) Run() error {
	result, err := j.service.BuildMatrix(0)
	if errors.Is(err, domain.ErrInsufficientData) || domain.IsValidationError(err) {
		j.log.Warn().Err(err).Msg("not enough price history, skipping correlation refresh")
		return nil
	}
	if err != nil {
		return err
	}

	date := j.clock.Now().Format("2006-01-02")
	return j.repo.SaveSnapshot(date, result)
}
