package domain

import (
	"context"

	"github.com/pkg/errors"

	"github.com/orderprocessing/order-system/shared/events"
	"github.com/orderprocessing/order-system/shared/models"
)

// Order aggregate root
type Order struct {
	ID            models.ID    `json:"id"`
	CustomerName  string       `json:"customer_name"`
	TotalAmount   models.Money `json:"total_amount"`
	State         OrderState   `json:"state"`
	CorrelationID models.ID    `json:"correlation_id"`
	Timestamps    models.Timestamps
	Version       models.Version

	events []*events.Event
}

// CreateOrder factory method. New orders always start in PENDING and the
// correlation id minted here travels on every event of the saga.
func CreateOrder(customerName string, totalAmount models.Money) (*Order, error) {
	if customerName == "" {
		return nil, errors.New("customer name is required")
	}

	if !totalAmount.IsPositive() {
		return nil, errors.New("total amount must be positive")
	}

	order := &Order{
		ID:            models.GenerateUUID(),
		CustomerName:  customerName,
		TotalAmount:   totalAmount,
		State:         OrderStatePending,
		CorrelationID: models.GenerateUUID(),
		Timestamps:    models.NewTimestamps(),
		Version:       models.NewVersion(),
	}

	event := events.NewEvent(order.ID, events.OrderCreatedEvent, events.OrderCreatedData{
		OrderID:      order.ID,
		CustomerName: order.CustomerName,
		TotalAmount:  order.TotalAmount,
	}).WithCorrelationID(order.CorrelationID)

	order.recordEvent(event)
	return order, nil
}

// StartProcessing moves the order from PENDING to PROCESSING once the
// saga is underway
func (o *Order) StartProcessing() error {
	return o.transition(OrderStateProcessing)
}

// Confirm moves the order to CONFIRMED on a successful payment
func (o *Order) Confirm() error {
	return o.transition(OrderStateConfirmed)
}

// Fail moves the order to FAILED on a declined payment
func (o *Order) Fail() error {
	return o.transition(OrderStateFailed)
}

// Cancel moves the order to CANCELLED before the saga started
func (o *Order) Cancel() error {
	return o.transition(OrderStateCancelled)
}

func (o *Order) transition(to OrderState) error {
	next, err := Transition(o.State, to)
	if err != nil {
		return err
	}

	o.State = next
	o.Timestamps = o.Timestamps.Update()
	o.Version = o.Version.Update()
	return nil
}

// Events returns domain events
func (o *Order) Events() []*events.Event {
	return o.events
}

// ClearEvents clears domain events
func (o *Order) ClearEvents() {
	o.events = make([]*events.Event, 0)
}

func (o *Order) recordEvent(event *events.Event) {
	o.events = append(o.events, event)
}

// OrderRepository persists orders. FindByID returns (nil, nil) when the
// order does not exist.
type OrderRepository interface {
	Save(ctx context.Context, order *Order) error
	FindByID(ctx context.Context, id models.ID) (*Order, error)
}
