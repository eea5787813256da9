package infrastructure

import (
	"context"
	"sync"
	"time"

	"github.com/orderprocessing/order-system/shared/models"
	"github.com/orderprocessing/order-system/shared/saga"
)

var _ saga.ProcessedEventStore = (*MemoryProcessedEventStore)(nil)

type processedRecord struct {
	eventType   string
	processedAt time.Time
}

// MemoryProcessedEventStore is an in-memory saga.ProcessedEventStore for
// tests and local runs.
type MemoryProcessedEventStore struct {
	mu      sync.Mutex
	records map[string]map[models.ID]processedRecord
}

// NewMemoryProcessedEventStore creates a new in-memory store
func NewMemoryProcessedEventStore() *MemoryProcessedEventStore {
	return &MemoryProcessedEventStore{
		records: make(map[string]map[models.ID]processedRecord),
	}
}

// MarkProcessedIfNew implements saga.ProcessedEventStore
func (s *MemoryProcessedEventStore) MarkProcessedIfNew(ctx context.Context, consumer string, eventID models.ID, eventType string, processedAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.records[consumer]
	if !ok {
		set = make(map[models.ID]processedRecord)
		s.records[consumer] = set
	}

	if _, exists := set[eventID]; exists {
		return false, nil
	}

	set[eventID] = processedRecord{eventType: eventType, processedAt: processedAt}
	return true, nil
}

// Exists implements saga.ProcessedEventStore
func (s *MemoryProcessedEventStore) Exists(ctx context.Context, consumer string, eventID models.ID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.records[consumer]
	if !ok {
		return false, nil
	}
	_, exists := set[eventID]
	return exists, nil
}

// DeleteBefore implements saga.ProcessedEventStore
func (s *MemoryProcessedEventStore) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for _, set := range s.records {
		for id, record := range set {
			if record.processedAt.Before(cutoff) {
				delete(set, id)
				deleted++
			}
		}
	}
	return deleted, nil
}

// Count returns the number of records held for a consumer
func (s *MemoryProcessedEventStore) Count(consumer string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records[consumer])
}
