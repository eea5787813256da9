package infrastructure

import (
	"context"
	"sync"

	"github.com/orderprocessing/order-system/order-service/domain"
	"github.com/orderprocessing/order-system/shared/models"
)

// MemoryOrderRepository implements OrderRepository in memory, for tests
// and local runs without Postgres.
type MemoryOrderRepository struct {
	mu     sync.RWMutex
	orders map[models.ID]domain.Order
}

// NewMemoryOrderRepository creates a new MemoryOrderRepository
func NewMemoryOrderRepository() *MemoryOrderRepository {
	return &MemoryOrderRepository{orders: make(map[models.ID]domain.Order)}
}

// Save stores a copy of the order
func (r *MemoryOrderRepository) Save(ctx context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *order
	stored.ClearEvents()
	r.orders[order.ID] = stored
	return nil
}

// FindByID returns a copy of the stored order, or (nil, nil) when absent
func (r *MemoryOrderRepository) FindByID(ctx context.Context, id models.ID) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, nil
	}

	found := order
	return &found, nil
}
