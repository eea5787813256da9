package application

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/orderprocessing/order-system/order-service/domain"
	"github.com/orderprocessing/order-system/shared/models"
	"github.com/orderprocessing/order-system/shared/saga"
	"github.com/orderprocessing/order-system/shared/telemetry"
)

// ProcessPaymentOutcomeCommand represents the payment result for an
// order. Succeeded decides between the CONFIRMED and FAILED transitions.
type ProcessPaymentOutcomeCommand struct {
	OrderID       models.ID
	CorrelationID models.ID
	Succeeded     bool
	Reason        string
}

// ProcessPaymentOutcome use case closes the saga for an order by moving
// it to its terminal state.
type ProcessPaymentOutcome struct {
	orderRepository domain.OrderRepository
	logger          *zap.SugaredLogger
}

// NewProcessPaymentOutcome creates a new ProcessPaymentOutcome use case
func NewProcessPaymentOutcome(orderRepository domain.OrderRepository, logger *zap.SugaredLogger) *ProcessPaymentOutcome {
	return &ProcessPaymentOutcome{
		orderRepository: orderRepository,
		logger:          logger,
	}
}

// Execute applies the payment outcome to the order. A missing order or a
// transition the state machine rejects is terminal for the message and
// ends up on the dead-letter topic.
func (uc *ProcessPaymentOutcome) Execute(ctx context.Context, cmd *ProcessPaymentOutcomeCommand) error {
	start := time.Now()
	ctx, span := telemetry.StartSpan(ctx, "process_payment_outcome",
		trace.WithAttributes(
			attribute.String("order_id", cmd.OrderID.String()),
			attribute.Bool("succeeded", cmd.Succeeded),
		),
	)
	defer span.End()

	var status string = "error"
	defer func() {
		duration := time.Since(start)
		telemetry.RecordCounter(ctx, "order_operations_total", "Total order operations", 1,
			attribute.String("operation", "process_payment_outcome"),
			attribute.String("status", status),
		)
		telemetry.RecordHistogram(ctx, "order_operation_duration_seconds", "Order operation duration", duration.Seconds(),
			attribute.String("operation", "process_payment_outcome"),
			attribute.String("status", status),
		)
	}()

	order, err := uc.orderRepository.FindByID(ctx, cmd.OrderID)
	if err != nil {
		span.RecordError(err)
		return errors.Wrap(err, "failed to find order")
	}

	if order == nil {
		err := saga.NewNotFound(cmd.OrderID)
		span.RecordError(err)
		return err
	}

	from := order.State

	if cmd.Succeeded {
		err = order.Confirm()
	} else {
		err = order.Fail()
	}

	if err != nil {
		span.RecordError(err)
		uc.logger.Errorw("payment outcome rejected by state machine",
			"order_id", order.ID,
			"correlation_id", cmd.CorrelationID,
			"from", from,
			"succeeded", cmd.Succeeded,
			"error", err,
		)
		return err
	}

	if err := uc.orderRepository.Save(ctx, order); err != nil {
		span.RecordError(err)
		return errors.Wrap(err, "failed to save order")
	}

	if cmd.Succeeded {
		uc.logger.Infow("order confirmed",
			"order_id", order.ID,
			"correlation_id", cmd.CorrelationID,
			"from", from,
			"to", order.State,
		)
	} else {
		uc.logger.Warnw("order failed",
			"order_id", order.ID,
			"correlation_id", cmd.CorrelationID,
			"from", from,
			"to", order.State,
			"reason", cmd.Reason,
		)
	}

	status = "success"
	span.SetAttributes(attribute.String("order_state", string(order.State)))
	return nil
}
