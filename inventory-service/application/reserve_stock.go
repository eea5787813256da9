package application

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/orderprocessing/order-system/inventory-service/domain"
	"github.com/orderprocessing/order-system/shared/events"
	"github.com/orderprocessing/order-system/shared/models"
	"github.com/orderprocessing/order-system/shared/telemetry"
)

// ReserveStockCommand represents the reservation request carried by an
// order.created event
type ReserveStockCommand struct {
	OrderID       models.ID
	CorrelationID models.ID
	Amount        models.Money
}

// ReserveStock use case attempts to hold stock for a new order and
// reports the outcome on the bus. The inventory.reserved event is
// published either way; Reserved carries the verdict.
type ReserveStock struct {
	reservationRepository domain.ReservationRepository
	allocator             domain.StockAllocator
	eventPublisher        events.Publisher
	logger                *zap.SugaredLogger
}

// NewReserveStock creates a new ReserveStock use case
func NewReserveStock(
	reservationRepository domain.ReservationRepository,
	allocator domain.StockAllocator,
	eventPublisher events.Publisher,
	logger *zap.SugaredLogger,
) *ReserveStock {
	return &ReserveStock{
		reservationRepository: reservationRepository,
		allocator:             allocator,
		eventPublisher:        eventPublisher,
		logger:                logger,
	}
}

// Execute attempts the reservation and publishes the outcome
func (uc *ReserveStock) Execute(ctx context.Context, cmd *ReserveStockCommand) error {
	start := time.Now()
	ctx, span := telemetry.StartSpan(ctx, "reserve_stock",
		trace.WithAttributes(attribute.String("order_id", cmd.OrderID.String())),
	)
	defer span.End()

	var status string = "error"
	defer func() {
		duration := time.Since(start)
		telemetry.RecordCounter(ctx, "inventory_operations_total", "Total inventory operations", 1,
			attribute.String("operation", "reserve_stock"),
			attribute.String("status", status),
		)
		telemetry.RecordHistogram(ctx, "inventory_operation_duration_seconds", "Inventory operation duration", duration.Seconds(),
			attribute.String("operation", "reserve_stock"),
			attribute.String("status", status),
		)
	}()

	if cmd.OrderID.IsZero() {
		return errors.New("order ID is required")
	}

	reserved, err := uc.allocator.Reserve(ctx, cmd.OrderID, cmd.Amount)
	if err != nil {
		span.RecordError(err)
		return errors.Wrap(err, "allocator failed")
	}

	reservation := domain.NewReservation(cmd.OrderID, cmd.Amount, reserved)
	if err := uc.reservationRepository.Save(ctx, reservation); err != nil {
		span.RecordError(err)
		return errors.Wrap(err, "failed to save reservation")
	}

	if reserved {
		uc.logger.Infow("inventory reserved",
			"order_id", cmd.OrderID,
			"correlation_id", cmd.CorrelationID,
			"reservation_id", reservation.ID,
		)
	} else {
		uc.logger.Warnw("inventory reservation failed",
			"order_id", cmd.OrderID,
			"correlation_id", cmd.CorrelationID,
		)
	}

	event := events.NewEvent(cmd.OrderID, events.InventoryReservedEvent, events.InventoryReservedData{
		OrderID:  cmd.OrderID,
		Reserved: reserved,
	}).WithCorrelationID(cmd.CorrelationID)

	if err := uc.eventPublisher.Publish(ctx, event); err != nil {
		span.RecordError(err)
		return errors.Wrap(err, "failed to publish inventory reserved event")
	}

	status = "success"
	span.SetAttributes(attribute.Bool("reserved", reserved))
	return nil
}
