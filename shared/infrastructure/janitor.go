package infrastructure

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/orderprocessing/order-system/shared/saga"
)

// ProcessedEventJanitor prunes processed-event records older than the
// retention window on a fixed interval. The window must exceed the bus's
// maximum redelivery delay, otherwise a very late duplicate would slip
// past the dedup check after its record is gone.
type ProcessedEventJanitor struct {
	store     saga.ProcessedEventStore
	retention time.Duration
	interval  time.Duration
	logger    *zap.SugaredLogger
}

// NewProcessedEventJanitor creates a janitor over the given store
func NewProcessedEventJanitor(store saga.ProcessedEventStore, retention, interval time.Duration, logger *zap.SugaredLogger) *ProcessedEventJanitor {
	return &ProcessedEventJanitor{
		store:     store,
		retention: retention,
		interval:  interval,
		logger:    logger,
	}
}

// Run blocks, pruning on every tick until ctx is cancelled
func (j *ProcessedEventJanitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := j.RunOnce(ctx); err != nil {
				j.logger.Errorw("processed event cleanup failed", "error", err)
			}
		}
	}
}

// RunOnce prunes a single time
func (j *ProcessedEventJanitor) RunOnce(ctx context.Context) error {
	cutoff := time.Now().Add(-j.retention)

	deleted, err := j.store.DeleteBefore(ctx, cutoff)
	if err != nil {
		return err
	}

	if deleted > 0 {
		j.logger.Infow("pruned processed events",
			"deleted", deleted,
			"cutoff", cutoff,
		)
	}
	return nil
}
