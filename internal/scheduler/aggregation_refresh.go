package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/stockdesk/dashboard/internal/modules/aggregation"
)

// AggregationRefreshJob periodically recomputes portfolio rows and totals.
// Background cycles fail quietly: the error is logged and the last
// known-good snapshot keeps serving until the next cycle succeeds.
type AggregationRefreshJob struct {
	service     *aggregation.Service
	marketHours *MarketHoursService
	timeout     time.Duration
	log         zerolog.Logger
}

// NewAggregationRefreshJob creates a new aggregation refresh job.
// marketHours may be nil, in which case every cycle runs.
func NewAggregationRefreshJob(service *aggregation.Service, marketHours *MarketHoursService, timeout time.Duration, log zerolog.Logger) *AggregationRefreshJob {
	return &AggregationRefreshJob{
		service:     service,
		marketHours: marketHours,
		timeout:     timeout,
		log:         log.With().Str("job", "aggregation_refresh").Logger(),
	}
}

// Name returns the job name
func (j *AggregationRefreshJob) Name() string {
	return "aggregation_refresh"
}

// Run executes one aggregation cycle
func (j *AggregationRefreshJob) Run() error {
	// Skip off-hours cycles, but never before the first snapshot exists:
	// a dashboard started on a weekend still needs its initial data.
	if _, ok := j.service.View(); ok && j.marketHours != nil && !j.marketHours.IsMarketOpen(time.Now()) {
		j.log.Debug().Msg("Market closed, skipping aggregation cycle")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	snap, err := j.service.Refresh(ctx)
	if err != nil {
		return err
	}

	j.log.Info().
		Int("positions", len(snap.Rows)).
		Dur("duration", time.Since(start)).
		Msg("Background aggregation cycle completed")
	return nil
}
