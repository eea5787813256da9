package saga

import (
	"context"

	"go.uber.org/zap"

	"github.com/orderprocessing/order-system/shared/events"
)

// EventRouter dispatches an inbound event to the handlers registered for
// its type. There is no central coordinator: each service registers only
// the handlers for the events it reacts to, and handler errors propagate
// to the subscriber so the bus's redelivery performs the retry.
type EventRouter struct {
	handlers map[string][]events.EventHandler
	logger   *zap.SugaredLogger
}

// NewEventRouter creates a new event router
func NewEventRouter(logger *zap.SugaredLogger) *EventRouter {
	return &EventRouter{
		handlers: make(map[string][]events.EventHandler),
		logger:   logger,
	}
}

// Register registers an event handler for a specific event type
func (r *EventRouter) Register(eventType string, handler events.EventHandler) {
	r.handlers[eventType] = append(r.handlers[eventType], handler)
}

// Handle implements events.EventHandler. An event with no registered
// handlers is acknowledged without effect.
func (r *EventRouter) Handle(ctx context.Context, event *events.Event) error {
	handlers, ok := r.handlers[event.EventType]
	if !ok {
		r.logger.Debugw("no handlers registered for event type",
			"event_type", event.EventType,
			"event_id", event.ID,
		)
		return nil
	}

	for _, handler := range handlers {
		if err := handler.Handle(ctx, event); err != nil {
			return err
		}
	}

	return nil
}
