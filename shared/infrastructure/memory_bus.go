package infrastructure

import (
	"context"
	"sync"

	"github.com/orderprocessing/order-system/shared/events"
)

// MemoryBus is an in-process events.Publisher that delivers synchronously
// to registered handlers, in publish order per call site. Used by tests
// and local wiring; it mimics the bus contract that matters to handlers:
// at-least-once capable (Redeliver), ordered per order id, no delivery of
// an event before its publish returns.
type MemoryBus struct {
	mu       sync.Mutex
	handlers map[string][]events.EventHandler
	log      []*events.Event
}

// NewMemoryBus creates a new in-memory bus
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{
		handlers: make(map[string][]events.EventHandler),
	}
}

// Register registers a handler for an event type
func (b *MemoryBus) Register(eventType string, handler events.EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// Publish implements events.Publisher. Delivery is depth-first: an event
// published by a handler is delivered before control returns here, which
// keeps per-order sequencing identical to a single-partition stream.
func (b *MemoryBus) Publish(ctx context.Context, evts ...*events.Event) error {
	for _, event := range evts {
		b.mu.Lock()
		b.log = append(b.log, event)
		handlers := append([]events.EventHandler(nil), b.handlers[event.EventType]...)
		b.mu.Unlock()

		for _, handler := range handlers {
			if err := handler.Handle(ctx, event); err != nil {
				return err
			}
		}
	}
	return nil
}

// Redeliver delivers an already-published event again, simulating
// at-least-once duplicate delivery.
func (b *MemoryBus) Redeliver(ctx context.Context, event *events.Event) error {
	b.mu.Lock()
	handlers := append([]events.EventHandler(nil), b.handlers[event.EventType]...)
	b.mu.Unlock()

	for _, handler := range handlers {
		if err := handler.Handle(ctx, event); err != nil {
			return err
		}
	}
	return nil
}

// Published returns all events published so far, in order
func (b *MemoryBus) Published() []*events.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*events.Event(nil), b.log...)
}

// PublishedOfType returns published events of one type, in order
func (b *MemoryBus) PublishedOfType(eventType string) []*events.Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []*events.Event
	for _, event := range b.log {
		if event.EventType == eventType {
			out = append(out, event)
		}
	}
	return out
}
