package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orderprocessing/order-system/shared/events"
	"github.com/orderprocessing/order-system/shared/models"
	"github.com/orderprocessing/order-system/shared/saga"
)

func TestCreateOrder(t *testing.T) {
	order, err := CreateOrder("Alice", models.NewMoney(2599, "USD"))
	require.NoError(t, err)

	assert.False(t, order.ID.IsZero())
	assert.False(t, order.CorrelationID.IsZero())
	assert.Equal(t, OrderStatePending, order.State)
	assert.Equal(t, "Alice", order.CustomerName)
	assert.Equal(t, int64(2599), order.TotalAmount.Amount)
	assert.Equal(t, 1, order.Version.Value)

	require.Len(t, order.Events(), 1)
	event := order.Events()[0]
	assert.Equal(t, events.OrderCreatedEvent, event.EventType)
	assert.Equal(t, order.ID, event.OrderID)
	assert.Equal(t, order.CorrelationID, event.CorrelationID)

	data, ok := event.Data.(events.OrderCreatedData)
	require.True(t, ok)
	assert.Equal(t, order.ID, data.OrderID)
	assert.Equal(t, "Alice", data.CustomerName)
}

func TestCreateOrder_Validation(t *testing.T) {
	_, err := CreateOrder("", models.NewMoney(100, "USD"))
	assert.Error(t, err)

	_, err = CreateOrder("Alice", models.NewMoney(0, "USD"))
	assert.Error(t, err)

	_, err = CreateOrder("Alice", models.NewMoney(-500, "USD"))
	assert.Error(t, err)
}

func TestOrder_Lifecycle(t *testing.T) {
	order, err := CreateOrder("Bob", models.NewMoney(1000, "USD"))
	require.NoError(t, err)

	require.NoError(t, order.StartProcessing())
	assert.Equal(t, OrderStateProcessing, order.State)
	assert.Equal(t, 2, order.Version.Value)

	require.NoError(t, order.Confirm())
	assert.Equal(t, OrderStateConfirmed, order.State)
	assert.Equal(t, 3, order.Version.Value)

	// Terminal state rejects further transitions
	err = order.Fail()
	assert.True(t, saga.IsInvalidTransition(err))
	assert.Equal(t, OrderStateConfirmed, order.State)
	assert.Equal(t, 3, order.Version.Value)
}

func TestOrder_FailPath(t *testing.T) {
	order, err := CreateOrder("Carol", models.NewMoney(1000, "USD"))
	require.NoError(t, err)

	require.NoError(t, order.StartProcessing())
	require.NoError(t, order.Fail())
	assert.Equal(t, OrderStateFailed, order.State)
}

func TestOrder_Cancel(t *testing.T) {
	order, err := CreateOrder("Dave", models.NewMoney(1000, "USD"))
	require.NoError(t, err)

	require.NoError(t, order.Cancel())
	assert.Equal(t, OrderStateCancelled, order.State)

	// Cannot start processing a cancelled order
	err = order.StartProcessing()
	assert.True(t, saga.IsInvalidTransition(err))
}
