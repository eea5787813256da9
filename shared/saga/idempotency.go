package saga

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/orderprocessing/order-system/shared/events"
	"github.com/orderprocessing/order-system/shared/models"
)

// ProcessedEventStore is the per-service record set of handled event ids.
// Each consuming service owns its own set; existence of a record is the
// sole authority for "already handled" in that service.
type ProcessedEventStore interface {
	// MarkProcessedIfNew records the event id for the consumer and
	// returns true when the record is new, false when it already existed.
	MarkProcessedIfNew(ctx context.Context, consumer string, eventID models.ID, eventType string, processedAt time.Time) (bool, error)

	// Exists reports whether the consumer already handled the event id
	Exists(ctx context.Context, consumer string, eventID models.ID) (bool, error)

	// DeleteBefore prunes records older than the cutoff and returns the
	// number removed. The retention window must exceed the bus's maximum
	// redelivery delay.
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// IdempotentProcessor wraps a handler so a given event id produces its
// side effect at most once per consuming service. A duplicate delivery is
// absorbed without running the handler; a handler failure leaves no
// processed marker behind so the bus redelivers.
type IdempotentProcessor struct {
	consumer string
	store    ProcessedEventStore
	next     events.EventHandler
	logger   *zap.SugaredLogger
}

// NewIdempotentProcessor creates an IdempotentProcessor for one consumer
// service
func NewIdempotentProcessor(consumer string, store ProcessedEventStore, next events.EventHandler, logger *zap.SugaredLogger) *IdempotentProcessor {
	return &IdempotentProcessor{
		consumer: consumer,
		store:    store,
		next:     next,
		logger:   logger,
	}
}

// Handle implements events.EventHandler
func (p *IdempotentProcessor) Handle(ctx context.Context, event *events.Event) error {
	seen, err := p.store.Exists(ctx, p.consumer, event.ID)
	if err != nil {
		return errors.Wrap(err, "failed to check processed events")
	}

	if seen {
		p.logger.Warnw("duplicate event detected, skipping",
			"consumer", p.consumer,
			"event_id", event.ID,
			"event_type", event.EventType,
			"order_id", event.OrderID,
			"correlation_id", event.CorrelationID,
		)
		return nil
	}

	if err := p.next.Handle(ctx, event); err != nil {
		// No marker on failure: the bus redelivers and the handler
		// runs again.
		return err
	}

	inserted, err := p.store.MarkProcessedIfNew(ctx, p.consumer, event.ID, event.EventType, time.Now())
	if err != nil {
		return errors.Wrap(err, "failed to mark event processed")
	}

	if !inserted {
		// A concurrent delivery won the race after our Exists check.
		// The side effect already happened once; nothing to undo here
		// beyond noting it.
		p.logger.Warnw("event processed concurrently by another delivery",
			"consumer", p.consumer,
			"event_id", event.ID,
		)
	}

	return nil
}
