package handlers

import (
	"context"

	"github.com/pkg/errors"

	"github.com/orderprocessing/order-system/order-service/application"
	"github.com/orderprocessing/order-system/shared/events"
)

// OrderEventHandlers contains event handlers for the order service. The
// order service closes the saga: payment outcomes move the order to its
// terminal state.
type OrderEventHandlers struct {
	processPaymentOutcome *application.ProcessPaymentOutcome
}

// NewOrderEventHandlers creates new order event handlers
func NewOrderEventHandlers(processPaymentOutcome *application.ProcessPaymentOutcome) *OrderEventHandlers {
	return &OrderEventHandlers{processPaymentOutcome: processPaymentOutcome}
}

// Handle implements the events.EventHandler interface
func (h *OrderEventHandlers) Handle(ctx context.Context, event *events.Event) error {
	switch event.EventType {
	case events.PaymentSucceededEvent:
		return h.HandlePaymentSucceeded(ctx, event)
	case events.PaymentFailedEvent:
		return h.HandlePaymentFailed(ctx, event)
	default:
		return nil
	}
}

// HandlePaymentSucceeded confirms the order
func (h *OrderEventHandlers) HandlePaymentSucceeded(ctx context.Context, event *events.Event) error {
	var data events.PaymentSucceededData
	if err := event.UnmarshalPayload(&data); err != nil {
		return errors.Wrap(err, "failed to unmarshal payment succeeded payload")
	}

	return h.processPaymentOutcome.Execute(ctx, &application.ProcessPaymentOutcomeCommand{
		OrderID:       data.OrderID,
		CorrelationID: event.CorrelationID,
		Succeeded:     true,
	})
}

// HandlePaymentFailed fails the order
func (h *OrderEventHandlers) HandlePaymentFailed(ctx context.Context, event *events.Event) error {
	var data events.PaymentFailedData
	if err := event.UnmarshalPayload(&data); err != nil {
		return errors.Wrap(err, "failed to unmarshal payment failed payload")
	}

	return h.processPaymentOutcome.Execute(ctx, &application.ProcessPaymentOutcomeCommand{
		OrderID:       data.OrderID,
		CorrelationID: event.CorrelationID,
		Succeeded:     false,
		Reason:        data.Reason,
	})
}
