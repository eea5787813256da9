package handlers

import (
	"context"

	"github.com/pkg/errors"

	"github.com/orderprocessing/order-system/payment-service/application"
	"github.com/orderprocessing/order-system/shared/events"
)

// PaymentEventHandlers contains event handlers for the payment service
type PaymentEventHandlers struct {
	chargePayment *application.ChargePayment
}

// NewPaymentEventHandlers creates new payment event handlers
func NewPaymentEventHandlers(chargePayment *application.ChargePayment) *PaymentEventHandlers {
	return &PaymentEventHandlers{chargePayment: chargePayment}
}

// Handle implements the events.EventHandler interface
func (h *PaymentEventHandlers) Handle(ctx context.Context, event *events.Event) error {
	switch event.EventType {
	case events.InventoryReservedEvent:
		return h.HandleInventoryReserved(ctx, event)
	default:
		return nil
	}
}

// HandleInventoryReserved charges the order once its stock is held
func (h *PaymentEventHandlers) HandleInventoryReserved(ctx context.Context, event *events.Event) error {
	var data events.InventoryReservedData
	if err := event.UnmarshalPayload(&data); err != nil {
		return errors.Wrap(err, "failed to unmarshal inventory reserved payload")
	}

	return h.chargePayment.Execute(ctx, &application.ChargePaymentCommand{
		OrderID:       data.OrderID,
		CorrelationID: event.CorrelationID,
		Reserved:      data.Reserved,
	})
}
