package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orderprocessing/order-system/shared/models"
)

func TestEvent_RoundTrip(t *testing.T) {
	orderID := models.GenerateUUID()
	correlationID := models.GenerateUUID()

	event := NewEvent(orderID, OrderCreatedEvent, OrderCreatedData{
		OrderID:      orderID,
		CustomerName: "Alice",
		TotalAmount:  models.NewMoney(5000, "USD"),
	}).WithCorrelationID(correlationID)

	raw, err := event.ToJSON()
	require.NoError(t, err)

	decoded, err := FromJSON(raw)
	require.NoError(t, err)
	assert.Equal(t, event.ID, decoded.ID)
	assert.Equal(t, orderID, decoded.OrderID)
	assert.Equal(t, correlationID, decoded.CorrelationID)

	// The decoded payload arrives as generic JSON; UnmarshalPayload
	// recovers the typed form consumers work with.
	var data OrderCreatedData
	require.NoError(t, decoded.UnmarshalPayload(&data))
	assert.Equal(t, "Alice", data.CustomerName)
	assert.Equal(t, int64(5000), data.TotalAmount.Amount)
}

func TestEvent_UnmarshalPayloadTyped(t *testing.T) {
	orderID := models.GenerateUUID()
	event := NewEvent(orderID, InventoryReservedEvent, InventoryReservedData{
		OrderID:  orderID,
		Reserved: true,
	})

	var data InventoryReservedData
	require.NoError(t, event.UnmarshalPayload(&data))
	assert.True(t, data.Reserved)

	assert.ErrorIs(t, event.UnmarshalPayload(InventoryReservedData{}), ErrInvalidReceiver)
}

func TestTopicName(t *testing.T) {
	assert.Equal(t, "order-created", TopicName(OrderCreatedEvent))
	assert.Equal(t, "payment-success", TopicName(PaymentSucceededEvent))
	assert.Len(t, AllTopics(), 4)
}
