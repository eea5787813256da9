package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/orderprocessing/order-system/order-service/domain"
	"github.com/orderprocessing/order-system/order-service/mocks"
	"github.com/orderprocessing/order-system/shared/models"
	"github.com/orderprocessing/order-system/shared/saga"
)

func TestGetOrder_Execute(t *testing.T) {
	order, err := domain.CreateOrder("Alice", models.NewMoney(2599, "USD"))
	require.NoError(t, err)

	t.Run("found", func(t *testing.T) {
		repo := mocks.NewMockOrderRepository(t)
		repo.EXPECT().FindByID(mock.Anything, order.ID).Return(order, nil).Once()

		useCase := NewGetOrder(repo)
		response, err := useCase.Execute(context.Background(), &GetOrderQuery{OrderID: order.ID.String()})

		require.NoError(t, err)
		assert.Equal(t, order.ID.String(), response.OrderID)
		assert.Equal(t, "Alice", response.CustomerName)
		assert.Equal(t, string(domain.OrderStatePending), response.State)
		assert.Equal(t, order.CorrelationID.String(), response.CorrelationID)
	})

	t.Run("not found", func(t *testing.T) {
		repo := mocks.NewMockOrderRepository(t)
		repo.EXPECT().FindByID(mock.Anything, order.ID).Return(nil, nil).Once()

		useCase := NewGetOrder(repo)
		_, err := useCase.Execute(context.Background(), &GetOrderQuery{OrderID: order.ID.String()})

		assert.True(t, saga.IsNotFound(err))
	})

	t.Run("invalid id", func(t *testing.T) {
		repo := mocks.NewMockOrderRepository(t)

		useCase := NewGetOrder(repo)
		_, err := useCase.Execute(context.Background(), &GetOrderQuery{OrderID: "not-a-uuid"})

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "invalid order ID")
	})
}
