package infrastructure

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orderprocessing/order-system/shared/events"
	"github.com/orderprocessing/order-system/shared/models"
)

func TestMemoryBus_DeliversInPublishOrder(t *testing.T) {
	bus := NewMemoryBus()
	orderID := models.GenerateUUID()

	var seen []string
	bus.Register(events.OrderCreatedEvent, events.EventHandlerFunc(func(ctx context.Context, event *events.Event) error {
		seen = append(seen, event.EventType)
		return nil
	}))
	bus.Register(events.InventoryReservedEvent, events.EventHandlerFunc(func(ctx context.Context, event *events.Event) error {
		seen = append(seen, event.EventType)
		return nil
	}))

	err := bus.Publish(context.Background(),
		events.NewEvent(orderID, events.OrderCreatedEvent, nil),
		events.NewEvent(orderID, events.InventoryReservedEvent, nil),
	)
	require.NoError(t, err)

	assert.Equal(t, []string{events.OrderCreatedEvent, events.InventoryReservedEvent}, seen)
	assert.Len(t, bus.Published(), 2)
}

func TestMemoryBus_DepthFirstChaining(t *testing.T) {
	bus := NewMemoryBus()
	orderID := models.GenerateUUID()

	// A handler publishing a follow-up event sees it delivered before its
	// own publish returns, matching single-partition sequencing.
	var seen []string
	bus.Register(events.OrderCreatedEvent, events.EventHandlerFunc(func(ctx context.Context, event *events.Event) error {
		seen = append(seen, event.EventType)
		return bus.Publish(ctx, events.NewEvent(orderID, events.InventoryReservedEvent, nil))
	}))
	bus.Register(events.InventoryReservedEvent, events.EventHandlerFunc(func(ctx context.Context, event *events.Event) error {
		seen = append(seen, event.EventType)
		return nil
	}))

	require.NoError(t, bus.Publish(context.Background(), events.NewEvent(orderID, events.OrderCreatedEvent, nil)))
	assert.Equal(t, []string{events.OrderCreatedEvent, events.InventoryReservedEvent}, seen)
}

func TestMemoryBus_Redeliver(t *testing.T) {
	bus := NewMemoryBus()
	orderID := models.GenerateUUID()

	var deliveries int
	bus.Register(events.OrderCreatedEvent, events.EventHandlerFunc(func(ctx context.Context, event *events.Event) error {
		deliveries++
		return nil
	}))

	event := events.NewEvent(orderID, events.OrderCreatedEvent, nil)
	require.NoError(t, bus.Publish(context.Background(), event))
	require.NoError(t, bus.Redeliver(context.Background(), event))

	assert.Equal(t, 2, deliveries)
	// Redelivery does not duplicate the log entry.
	assert.Len(t, bus.Published(), 1)
}

func TestMemoryBus_PublishedOfType(t *testing.T) {
	bus := NewMemoryBus()
	orderID := models.GenerateUUID()

	require.NoError(t, bus.Publish(context.Background(),
		events.NewEvent(orderID, events.OrderCreatedEvent, nil),
		events.NewEvent(orderID, events.PaymentFailedEvent, nil),
		events.NewEvent(orderID, events.PaymentFailedEvent, nil),
	))

	assert.Len(t, bus.PublishedOfType(events.PaymentFailedEvent), 2)
	assert.Empty(t, bus.PublishedOfType(events.PaymentSucceededEvent))
}
