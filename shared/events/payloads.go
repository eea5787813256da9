package events

import (
	"github.com/orderprocessing/order-system/shared/models"
)

// Payload structures for the order processing choreography. The event
// envelope carries id, correlation id, order id and timestamp; payloads
// carry the per-type fields.

// OrderCreatedData is published by the order service when a new order is
// accepted and persisted in its initial state.
type OrderCreatedData struct {
	OrderID      models.ID    `json:"order_id"`
	CustomerName string       `json:"customer_name"`
	TotalAmount  models.Money `json:"total_amount"`
}

// InventoryReservedData is published by the inventory service after the
// reservation attempt. Reserved is false when stock could not be held.
type InventoryReservedData struct {
	OrderID  models.ID `json:"order_id"`
	Reserved bool      `json:"reserved"`
}

// PaymentSucceededData is published by the payment service when the
// charge went through.
type PaymentSucceededData struct {
	OrderID models.ID    `json:"order_id"`
	Amount  models.Money `json:"amount"`
}

// PaymentFailedData is published by the payment service when the charge
// was declined. It is the compensation trigger for inventory.
type PaymentFailedData struct {
	OrderID models.ID `json:"order_id"`
	Reason  string    `json:"reason"`
}
