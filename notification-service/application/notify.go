package application

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/orderprocessing/order-system/shared/models"
	"github.com/orderprocessing/order-system/shared/telemetry"
)

// Notification is a customer-facing message about an order outcome
type Notification struct {
	OrderID       models.ID
	CorrelationID models.ID
	Subject       string
	Body          string
}

// Sender delivers notifications. The default sender writes to the log;
// email or SMS providers plug in here.
type Sender interface {
	Send(ctx context.Context, notification *Notification) error
}

// SenderFunc adapts a function to the Sender interface
type SenderFunc func(ctx context.Context, notification *Notification) error

func (f SenderFunc) Send(ctx context.Context, notification *Notification) error {
	return f(ctx, notification)
}

// NewLogSender returns a Sender that records notifications in the
// service log
func NewLogSender(logger *zap.SugaredLogger) Sender {
	return SenderFunc(func(ctx context.Context, notification *Notification) error {
		logger.Infow("notification sent",
			"order_id", notification.OrderID,
			"correlation_id", notification.CorrelationID,
			"subject", notification.Subject,
			"body", notification.Body,
		)
		return nil
	})
}

// NotifyOutcomeCommand carries the payment verdict for an order
type NotifyOutcomeCommand struct {
	OrderID       models.ID
	CorrelationID models.ID
	Succeeded     bool
	Amount        models.Money
	Reason        string
}

// NotifyOutcome use case notifies the customer of the payment outcome.
// It sits at the end of the choreography and emits no events.
type NotifyOutcome struct {
	sender Sender
	logger *zap.SugaredLogger
}

// NewNotifyOutcome creates a new NotifyOutcome use case
func NewNotifyOutcome(sender Sender, logger *zap.SugaredLogger) *NotifyOutcome {
	return &NotifyOutcome{
		sender: sender,
		logger: logger,
	}
}

// Execute sends the outcome notification
func (uc *NotifyOutcome) Execute(ctx context.Context, cmd *NotifyOutcomeCommand) error {
	start := time.Now()
	ctx, span := telemetry.StartSpan(ctx, "notify_outcome",
		trace.WithAttributes(
			attribute.String("order_id", cmd.OrderID.String()),
			attribute.Bool("succeeded", cmd.Succeeded),
		),
	)
	defer span.End()

	var status string = "error"
	defer func() {
		duration := time.Since(start)
		telemetry.RecordCounter(ctx, "notification_operations_total", "Total notification operations", 1,
			attribute.String("operation", "notify_outcome"),
			attribute.String("status", status),
		)
		telemetry.RecordHistogram(ctx, "notification_operation_duration_seconds", "Notification operation duration", duration.Seconds(),
			attribute.String("operation", "notify_outcome"),
			attribute.String("status", status),
		)
	}()

	if cmd.OrderID.IsZero() {
		return errors.New("order ID is required")
	}

	notification := buildNotification(cmd)
	if err := uc.sender.Send(ctx, notification); err != nil {
		span.RecordError(err)
		return errors.Wrap(err, "failed to send notification")
	}

	status = "success"
	return nil
}

func buildNotification(cmd *NotifyOutcomeCommand) *Notification {
	n := &Notification{
		OrderID:       cmd.OrderID,
		CorrelationID: cmd.CorrelationID,
	}

	if cmd.Succeeded {
		n.Subject = "Order confirmed"
		n.Body = fmt.Sprintf("Your order %s has been confirmed. Charged %d %s.",
			cmd.OrderID, cmd.Amount.Amount, cmd.Amount.Currency)
		return n
	}

	n.Subject = "Order failed"
	n.Body = fmt.Sprintf("Your order %s could not be completed: %s.", cmd.OrderID, cmd.Reason)
	return n
}
