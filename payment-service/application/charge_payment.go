package application

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/orderprocessing/order-system/payment-service/domain"
	"github.com/orderprocessing/order-system/shared/events"
	"github.com/orderprocessing/order-system/shared/models"
	"github.com/orderprocessing/order-system/shared/telemetry"
)

// ChargePaymentCommand represents the charge request carried by an
// inventory.reserved event
type ChargePaymentCommand struct {
	OrderID       models.ID
	CorrelationID models.ID
	Reserved      bool
}

// ChargePayment use case attempts the charge for an order whose stock is
// held and publishes the verdict. When the reservation did not hold, no
// payment is attempted and nothing is emitted: the saga stalls there for
// that order, visible in the logs.
type ChargePayment struct {
	policy         domain.ChargePolicy
	eventPublisher events.Publisher
	logger         *zap.SugaredLogger
}

// NewChargePayment creates a new ChargePayment use case
func NewChargePayment(
	policy domain.ChargePolicy,
	eventPublisher events.Publisher,
	logger *zap.SugaredLogger,
) *ChargePayment {
	return &ChargePayment{
		policy:         policy,
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

// Execute attempts the charge and publishes payment.success or
// payment.failed
func (uc *ChargePayment) Execute(ctx context.Context, cmd *ChargePaymentCommand) error {
	start := time.Now()
	ctx, span := telemetry.StartSpan(ctx, "charge_payment",
		trace.WithAttributes(
			attribute.String("order_id", cmd.OrderID.String()),
			attribute.Bool("reserved", cmd.Reserved),
		),
	)
	defer span.End()

	var status string = "error"
	defer func() {
		duration := time.Since(start)
		telemetry.RecordCounter(ctx, "payment_operations_total", "Total payment operations", 1,
			attribute.String("operation", "charge_payment"),
			attribute.String("status", status),
		)
		telemetry.RecordHistogram(ctx, "payment_operation_duration_seconds", "Payment operation duration", duration.Seconds(),
			attribute.String("operation", "charge_payment"),
			attribute.String("status", status),
		)
	}()

	if cmd.OrderID.IsZero() {
		return errors.New("order ID is required")
	}

	if !cmd.Reserved {
		uc.logger.Warnw("inventory not reserved, skipping payment",
			"order_id", cmd.OrderID,
			"correlation_id", cmd.CorrelationID,
		)
		status = "skipped"
		return nil
	}

	result, err := uc.policy.Charge(ctx, cmd.OrderID)
	if err != nil {
		span.RecordError(err)
		return errors.Wrap(err, "charge failed")
	}

	var event *events.Event
	if result.Succeeded {
		uc.logger.Infow("payment successful",
			"order_id", cmd.OrderID,
			"correlation_id", cmd.CorrelationID,
			"amount", result.Amount.Amount,
			"currency", result.Amount.Currency,
		)

		event = events.NewEvent(cmd.OrderID, events.PaymentSucceededEvent, events.PaymentSucceededData{
			OrderID: cmd.OrderID,
			Amount:  result.Amount,
		})
	} else {
		uc.logger.Warnw("payment declined",
			"order_id", cmd.OrderID,
			"correlation_id", cmd.CorrelationID,
			"reason", result.Reason,
		)

		event = events.NewEvent(cmd.OrderID, events.PaymentFailedEvent, events.PaymentFailedData{
			OrderID: cmd.OrderID,
			Reason:  result.Reason,
		})
	}
	event.WithCorrelationID(cmd.CorrelationID)

	if err := uc.eventPublisher.Publish(ctx, event); err != nil {
		span.RecordError(err)
		return errors.Wrap(err, "failed to publish payment outcome event")
	}

	status = "success"
	span.SetAttributes(attribute.Bool("succeeded", result.Succeeded))
	return nil
}
