package domain

import (
	"context"

	"github.com/orderprocessing/order-system/shared/models"
)

// ReservationStatus represents the status of a stock reservation
type ReservationStatus string

const (
	ReservationStatusReserved ReservationStatus = "RESERVED"
	ReservationStatusRejected ReservationStatus = "REJECTED"
	ReservationStatusReleased ReservationStatus = "RELEASED"
)

// Reservation holds the stock reserved for one order. One reservation
// exists per order at most.
type Reservation struct {
	ID         models.ID         `json:"id"`
	OrderID    models.ID         `json:"order_id"`
	Amount     models.Money      `json:"amount"`
	Status     ReservationStatus `json:"status"`
	Timestamps models.Timestamps
}

// NewReservation records the outcome of a reservation attempt
func NewReservation(orderID models.ID, amount models.Money, reserved bool) *Reservation {
	status := ReservationStatusReserved
	if !reserved {
		status = ReservationStatusRejected
	}

	return &Reservation{
		ID:         models.GenerateUUID(),
		OrderID:    orderID,
		Amount:     amount,
		Status:     status,
		Timestamps: models.NewTimestamps(),
	}
}

// Reserved reports whether stock is currently held for the order
func (r *Reservation) Reserved() bool {
	return r.Status == ReservationStatusReserved
}

// Release frees the held stock. Releasing a reservation that holds
// nothing is a no-op so compensation stays idempotent.
func (r *Reservation) Release() {
	if r.Status != ReservationStatusReserved {
		return
	}
	r.Status = ReservationStatusReleased
	r.Timestamps = r.Timestamps.Update()
}

// StockAllocator decides whether stock can be held for an order. The
// default allocator always reserves; real warehouses plug in here.
type StockAllocator interface {
	Reserve(ctx context.Context, orderID models.ID, amount models.Money) (bool, error)
}

// StockAllocatorFunc adapts a function to the StockAllocator interface
type StockAllocatorFunc func(ctx context.Context, orderID models.ID, amount models.Money) (bool, error)

func (f StockAllocatorFunc) Reserve(ctx context.Context, orderID models.ID, amount models.Money) (bool, error) {
	return f(ctx, orderID, amount)
}

// AlwaysReserve returns an allocator that holds stock for every order
func AlwaysReserve() StockAllocator {
	return StockAllocatorFunc(func(ctx context.Context, orderID models.ID, amount models.Money) (bool, error) {
		return true, nil
	})
}

// ReservationRepository persists reservations. FindByOrderID returns
// (nil, nil) when no reservation exists for the order.
type ReservationRepository interface {
	Save(ctx context.Context, reservation *Reservation) error
	FindByOrderID(ctx context.Context, orderID models.ID) (*Reservation, error)
}
