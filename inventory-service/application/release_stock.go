package application

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/orderprocessing/order-system/inventory-service/domain"
	"github.com/orderprocessing/order-system/shared/models"
	"github.com/orderprocessing/order-system/shared/telemetry"
)

// ReleaseStockCommand represents the compensation request carried by a
// payment.failed event
type ReleaseStockCommand struct {
	OrderID       models.ID
	CorrelationID models.ID
	Reason        string
}

// ReleaseStock use case undoes a reservation after the payment was
// declined. It emits nothing: compensation is the end of the saga on the
// inventory side.
type ReleaseStock struct {
	reservationRepository domain.ReservationRepository
	logger                *zap.SugaredLogger
}

// NewReleaseStock creates a new ReleaseStock use case
func NewReleaseStock(reservationRepository domain.ReservationRepository, logger *zap.SugaredLogger) *ReleaseStock {
	return &ReleaseStock{
		reservationRepository: reservationRepository,
		logger:                logger,
	}
}

// Execute releases the stock held for the order. A missing or already
// released reservation is a no-op so redeliveries and out-of-order
// compensations stay harmless.
func (uc *ReleaseStock) Execute(ctx context.Context, cmd *ReleaseStockCommand) error {
	start := time.Now()
	ctx, span := telemetry.StartSpan(ctx, "release_stock",
		trace.WithAttributes(attribute.String("order_id", cmd.OrderID.String())),
	)
	defer span.End()

	var status string = "error"
	defer func() {
		duration := time.Since(start)
		telemetry.RecordCounter(ctx, "inventory_operations_total", "Total inventory operations", 1,
			attribute.String("operation", "release_stock"),
			attribute.String("status", status),
		)
		telemetry.RecordHistogram(ctx, "inventory_operation_duration_seconds", "Inventory operation duration", duration.Seconds(),
			attribute.String("operation", "release_stock"),
			attribute.String("status", status),
		)
	}()

	uc.logger.Warnw("compensating: releasing inventory",
		"order_id", cmd.OrderID,
		"correlation_id", cmd.CorrelationID,
		"reason", cmd.Reason,
	)

	reservation, err := uc.reservationRepository.FindByOrderID(ctx, cmd.OrderID)
	if err != nil {
		span.RecordError(err)
		return errors.Wrap(err, "failed to find reservation")
	}

	if reservation == nil {
		uc.logger.Warnw("no reservation to release",
			"order_id", cmd.OrderID,
			"correlation_id", cmd.CorrelationID,
		)
		status = "success"
		return nil
	}

	wasReserved := reservation.Reserved()
	reservation.Release()

	if wasReserved {
		if err := uc.reservationRepository.Save(ctx, reservation); err != nil {
			span.RecordError(err)
			return errors.Wrap(err, "failed to save reservation")
		}

		uc.logger.Infow("inventory released",
			"order_id", cmd.OrderID,
			"correlation_id", cmd.CorrelationID,
			"reservation_id", reservation.ID,
		)
	}

	status = "success"
	span.SetAttributes(attribute.Bool("released", wasReserved))
	return nil
}
