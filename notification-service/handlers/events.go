package handlers

import (
	"context"

	"github.com/pkg/errors"

	"github.com/orderprocessing/order-system/notification-service/application"
	"github.com/orderprocessing/order-system/shared/events"
)

// NotificationEventHandlers contains event handlers for the notification
// service. It listens to payment outcomes only.
type NotificationEventHandlers struct {
	notifyOutcome *application.NotifyOutcome
}

// NewNotificationEventHandlers creates new notification event handlers
func NewNotificationEventHandlers(notifyOutcome *application.NotifyOutcome) *NotificationEventHandlers {
	return &NotificationEventHandlers{notifyOutcome: notifyOutcome}
}

// Handle implements the events.EventHandler interface
func (h *NotificationEventHandlers) Handle(ctx context.Context, event *events.Event) error {
	switch event.EventType {
	case events.PaymentSucceededEvent:
		return h.HandlePaymentSucceeded(ctx, event)
	case events.PaymentFailedEvent:
		return h.HandlePaymentFailed(ctx, event)
	default:
		return nil
	}
}

// HandlePaymentSucceeded notifies the customer of a confirmed order
func (h *NotificationEventHandlers) HandlePaymentSucceeded(ctx context.Context, event *events.Event) error {
	var data events.PaymentSucceededData
	if err := event.UnmarshalPayload(&data); err != nil {
		return errors.Wrap(err, "failed to unmarshal payment succeeded payload")
	}

	return h.notifyOutcome.Execute(ctx, &application.NotifyOutcomeCommand{
		OrderID:       data.OrderID,
		CorrelationID: event.CorrelationID,
		Succeeded:     true,
		Amount:        data.Amount,
	})
}

// HandlePaymentFailed notifies the customer of a failed order
func (h *NotificationEventHandlers) HandlePaymentFailed(ctx context.Context, event *events.Event) error {
	var data events.PaymentFailedData
	if err := event.UnmarshalPayload(&data); err != nil {
		return errors.Wrap(err, "failed to unmarshal payment failed payload")
	}

	return h.notifyOutcome.Execute(ctx, &application.NotifyOutcomeCommand{
		OrderID:       data.OrderID,
		CorrelationID: event.CorrelationID,
		Succeeded:     false,
		Reason:        data.Reason,
	})
}
