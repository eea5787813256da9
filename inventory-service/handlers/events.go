package handlers

import (
	"context"

	"github.com/pkg/errors"

	"github.com/orderprocessing/order-system/inventory-service/application"
	"github.com/orderprocessing/order-system/shared/events"
)

// InventoryEventHandlers contains event handlers for the inventory
// service: reservation on order.created, compensation on payment.failed.
type InventoryEventHandlers struct {
	reserveStock *application.ReserveStock
	releaseStock *application.ReleaseStock
}

// NewInventoryEventHandlers creates new inventory event handlers
func NewInventoryEventHandlers(
	reserveStock *application.ReserveStock,
	releaseStock *application.ReleaseStock,
) *InventoryEventHandlers {
	return &InventoryEventHandlers{
		reserveStock: reserveStock,
		releaseStock: releaseStock,
	}
}

// Handle implements the events.EventHandler interface
func (h *InventoryEventHandlers) Handle(ctx context.Context, event *events.Event) error {
	switch event.EventType {
	case events.OrderCreatedEvent:
		return h.HandleOrderCreated(ctx, event)
	case events.PaymentFailedEvent:
		return h.HandlePaymentFailed(ctx, event)
	default:
		return nil
	}
}

// HandleOrderCreated attempts a stock reservation for the new order
func (h *InventoryEventHandlers) HandleOrderCreated(ctx context.Context, event *events.Event) error {
	var data events.OrderCreatedData
	if err := event.UnmarshalPayload(&data); err != nil {
		return errors.Wrap(err, "failed to unmarshal order created payload")
	}

	return h.reserveStock.Execute(ctx, &application.ReserveStockCommand{
		OrderID:       data.OrderID,
		CorrelationID: event.CorrelationID,
		Amount:        data.TotalAmount,
	})
}

// HandlePaymentFailed releases the stock held for the order
func (h *InventoryEventHandlers) HandlePaymentFailed(ctx context.Context, event *events.Event) error {
	var data events.PaymentFailedData
	if err := event.UnmarshalPayload(&data); err != nil {
		return errors.Wrap(err, "failed to unmarshal payment failed payload")
	}

	return h.releaseStock.Execute(ctx, &application.ReleaseStockCommand{
		OrderID:       data.OrderID,
		CorrelationID: event.CorrelationID,
		Reason:        data.Reason,
	})
}
