package saga

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orderprocessing/order-system/shared/events"
	"github.com/orderprocessing/order-system/shared/logger"
	"github.com/orderprocessing/order-system/shared/models"
)

func TestEventRouter(t *testing.T) {
	orderID := models.GenerateUUID()

	t.Run("dispatches to registered handlers in order", func(t *testing.T) {
		router := NewEventRouter(logger.NewNop())

		var calls []string
		router.Register(events.OrderCreatedEvent, events.EventHandlerFunc(func(ctx context.Context, event *events.Event) error {
			calls = append(calls, "first")
			return nil
		}))
		router.Register(events.OrderCreatedEvent, events.EventHandlerFunc(func(ctx context.Context, event *events.Event) error {
			calls = append(calls, "second")
			return nil
		}))

		event := events.NewEvent(orderID, events.OrderCreatedEvent, nil)
		require.NoError(t, router.Handle(context.Background(), event))
		assert.Equal(t, []string{"first", "second"}, calls)
	})

	t.Run("unregistered event type is acknowledged", func(t *testing.T) {
		router := NewEventRouter(logger.NewNop())

		event := events.NewEvent(orderID, events.PaymentFailedEvent, nil)
		assert.NoError(t, router.Handle(context.Background(), event))
	})

	t.Run("handler error stops dispatch and propagates", func(t *testing.T) {
		router := NewEventRouter(logger.NewNop())

		handlerErr := errors.New("transient store failure")
		var secondCalled bool
		router.Register(events.OrderCreatedEvent, events.EventHandlerFunc(func(ctx context.Context, event *events.Event) error {
			return handlerErr
		}))
		router.Register(events.OrderCreatedEvent, events.EventHandlerFunc(func(ctx context.Context, event *events.Event) error {
			secondCalled = true
			return nil
		}))

		event := events.NewEvent(orderID, events.OrderCreatedEvent, nil)
		err := router.Handle(context.Background(), event)
		assert.Equal(t, handlerErr, err)
		assert.False(t, secondCalled)
	})
}
