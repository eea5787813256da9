package infrastructure

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orderprocessing/order-system/shared/events"
	"github.com/orderprocessing/order-system/shared/logger"
	"github.com/orderprocessing/order-system/shared/models"
)

func TestMemoryProcessedEventStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryProcessedEventStore()
	eventID := models.GenerateUUID()

	exists, err := store.Exists(ctx, "order-service", eventID)
	require.NoError(t, err)
	assert.False(t, exists)

	inserted, err := store.MarkProcessedIfNew(ctx, "order-service", eventID, events.OrderCreatedEvent, time.Now())
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = store.MarkProcessedIfNew(ctx, "order-service", eventID, events.OrderCreatedEvent, time.Now())
	require.NoError(t, err)
	assert.False(t, inserted)

	exists, err = store.Exists(ctx, "order-service", eventID)
	require.NoError(t, err)
	assert.True(t, exists)

	// Records are per consumer.
	exists, err = store.Exists(ctx, "payment-service", eventID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestMemoryProcessedEventStore_DeleteBefore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryProcessedEventStore()

	old := time.Now().Add(-48 * time.Hour)
	recent := time.Now()

	_, err := store.MarkProcessedIfNew(ctx, "order-service", models.GenerateUUID(), events.OrderCreatedEvent, old)
	require.NoError(t, err)
	_, err = store.MarkProcessedIfNew(ctx, "order-service", models.GenerateUUID(), events.OrderCreatedEvent, recent)
	require.NoError(t, err)

	deleted, err := store.DeleteBefore(ctx, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
	assert.Equal(t, 1, store.Count("order-service"))
}

func TestProcessedEventJanitor_RunOnce(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryProcessedEventStore()

	_, err := store.MarkProcessedIfNew(ctx, "order-service", models.GenerateUUID(), events.OrderCreatedEvent, time.Now().Add(-48*time.Hour))
	require.NoError(t, err)
	_, err = store.MarkProcessedIfNew(ctx, "order-service", models.GenerateUUID(), events.OrderCreatedEvent, time.Now())
	require.NoError(t, err)

	janitor := NewProcessedEventJanitor(store, 24*time.Hour, time.Hour, logger.NewNop())
	require.NoError(t, janitor.RunOnce(ctx))

	assert.Equal(t, 1, store.Count("order-service"))
}
