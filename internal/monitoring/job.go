package monitoring

import (
	"context"
	"log/slog"
	"time"

	"github.com/PioneData/CAT-Backend/internal/monitoring/weathergov"
	"github.com/PioneData/CAT-Backend/internal/observability"
	"github.com/jonboulle/clockwork"
)

// AlertFetcher is the feed collaborator; *weathergov.Client satisfies it.
type AlertFetcher interface {
	FetchActiveAlerts(ctx context.Context) ([]weathergov.Feature, error)
}

// BatchProcessor is the ingestion collaborator; *Ingestor satisfies it.
type BatchProcessor interface {
	ProcessAlerts(ctx context.Context, features []weathergov.Feature) (*SyncResult, error)
}

// FetchJob is the periodic ingestion task. It is owned by the process
// lifecycle: started once at startup, stopped by cancelling the context
// passed to Run. The single goroutine serializes batches, which the
// reference cache and the dedup check rely on.
type FetchJob struct {
	fetcher   AlertFetcher
	processor BatchProcessor
	interval  time.Duration
	clock     clockwork.Clock
	logger    *slog.Logger
	metrics   *observability.Metrics
}

func NewFetchJob(fetcher AlertFetcher, processor BatchProcessor, interval time.Duration, logger *slog.Logger, metrics *observability.Metrics) *FetchJob {
	return &FetchJob{
		fetcher:   fetcher,
		processor: processor,
		interval:  interval,
		clock:     clockwork.NewRealClock(),
		logger:    logger,
		metrics:   metrics,
	}
}

// SetClock swaps the time source; tests inject a fake for deterministic ticks.
func (j *FetchJob) SetClock(c clockwork.Clock) {
	if c == nil {
		j.clock = clockwork.NewRealClock()
		return
	}
	j.clock = c
}

// Run executes one batch immediately, then one per tick until the context is
// cancelled. A failed batch is logged and retried on the next tick.
func (j *FetchJob) Run(ctx context.Context) {
	j.metrics.JobRunning.Set(1)
	defer j.metrics.JobRunning.Set(0)

	j.logger.Info("alert fetch job started", "interval", j.interval)
	j.runOnce(ctx)

	ticker := j.clock.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("alert fetch job stopping", "reason", ctx.Err())
			return
		case <-ticker.Chan():
			j.runOnce(ctx)
		}
	}
}

func (j *FetchJob) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	start := j.clock.Now()
	features, err := j.fetcher.FetchActiveAlerts(ctx)
	j.metrics.FeedDuration.Observe(j.clock.Since(start).Seconds())
	if err != nil {
		j.logger.Error("feed fetch failed", "error", err)
		return
	}

	if _, err := j.processor.ProcessAlerts(ctx, features); err != nil {
		j.logger.Error("batch processing failed", "error", err)
	}
}
