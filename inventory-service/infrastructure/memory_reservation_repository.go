package infrastructure

import (
	"context"
	"sync"

	"github.com/orderprocessing/order-system/inventory-service/domain"
	"github.com/orderprocessing/order-system/shared/models"
)

// MemoryReservationRepository implements ReservationRepository in
// memory, for tests and local runs without Postgres.
type MemoryReservationRepository struct {
	mu           sync.RWMutex
	reservations map[models.ID]domain.Reservation
}

// NewMemoryReservationRepository creates a new
// MemoryReservationRepository
func NewMemoryReservationRepository() *MemoryReservationRepository {
	return &MemoryReservationRepository{reservations: make(map[models.ID]domain.Reservation)}
}

// Save stores a copy of the reservation keyed by order id
func (r *MemoryReservationRepository) Save(ctx context.Context, reservation *domain.Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.reservations[reservation.OrderID] = *reservation
	return nil
}

// FindByOrderID returns a copy of the stored reservation, or (nil, nil)
// when absent
func (r *MemoryReservationRepository) FindByOrderID(ctx context.Context, orderID models.ID) (*domain.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reservation, ok := r.reservations[orderID]
	if !ok {
		return nil, nil
	}

	found := reservation
	return &found, nil
}
