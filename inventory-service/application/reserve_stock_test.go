package application

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/orderprocessing/order-system/inventory-service/domain"
	"github.com/orderprocessing/order-system/inventory-service/mocks"
	"github.com/orderprocessing/order-system/shared/events"
	"github.com/orderprocessing/order-system/shared/logger"
	"github.com/orderprocessing/order-system/shared/models"
)

func TestReserveStock_Execute(t *testing.T) {
	orderID := models.ID("550e8400-e29b-41d4-a716-446655440001")
	correlationID := models.ID("550e8400-e29b-41d4-a716-446655440099")
	amount := models.NewMoney(2599, "USD")

	tests := []struct {
		name          string
		setupMocks    func(*mocks.MockReservationRepository, *mocks.MockStockAllocator, *mocks.MockPublisher, func(...*events.Event))
		expectedError string
		wantReserved  bool
	}{
		{
			name: "stock reserved",
			setupMocks: func(repo *mocks.MockReservationRepository, allocator *mocks.MockStockAllocator, publisher *mocks.MockPublisher, record func(...*events.Event)) {
				allocator.EXPECT().Reserve(mock.Anything, orderID, amount).Return(true, nil).Once()
				repo.EXPECT().Save(mock.Anything, mock.Anything).Return(nil).Once()
				publisher.EXPECT().Publish(mock.Anything, mock.Anything).
					Run(func(ctx context.Context, evts ...*events.Event) { record(evts...) }).
					Return(nil).Once()
			},
			wantReserved: true,
		},
		{
			name: "stock not available still publishes outcome",
			setupMocks: func(repo *mocks.MockReservationRepository, allocator *mocks.MockStockAllocator, publisher *mocks.MockPublisher, record func(...*events.Event)) {
				allocator.EXPECT().Reserve(mock.Anything, orderID, amount).Return(false, nil).Once()
				repo.EXPECT().Save(mock.Anything, mock.Anything).Return(nil).Once()
				publisher.EXPECT().Publish(mock.Anything, mock.Anything).
					Run(func(ctx context.Context, evts ...*events.Event) { record(evts...) }).
					Return(nil).Once()
			},
			wantReserved: false,
		},
		{
			name: "allocator error",
			setupMocks: func(repo *mocks.MockReservationRepository, allocator *mocks.MockStockAllocator, publisher *mocks.MockPublisher, record func(...*events.Event)) {
				allocator.EXPECT().Reserve(mock.Anything, orderID, amount).
					Return(false, errors.New("warehouse unavailable")).Once()
			},
			expectedError: "allocator failed",
		},
		{
			name: "repository save error",
			setupMocks: func(repo *mocks.MockReservationRepository, allocator *mocks.MockStockAllocator, publisher *mocks.MockPublisher, record func(...*events.Event)) {
				allocator.EXPECT().Reserve(mock.Anything, orderID, amount).Return(true, nil).Once()
				repo.EXPECT().Save(mock.Anything, mock.Anything).
					Return(errors.New("database error")).Once()
			},
			expectedError: "failed to save reservation",
		},
		{
			name: "publisher error",
			setupMocks: func(repo *mocks.MockReservationRepository, allocator *mocks.MockStockAllocator, publisher *mocks.MockPublisher, record func(...*events.Event)) {
				allocator.EXPECT().Reserve(mock.Anything, orderID, amount).Return(true, nil).Once()
				repo.EXPECT().Save(mock.Anything, mock.Anything).Return(nil).Once()
				publisher.EXPECT().Publish(mock.Anything, mock.Anything).
					Return(errors.New("broker unavailable")).Once()
			},
			expectedError: "failed to publish inventory reserved event",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := mocks.NewMockReservationRepository(t)
			allocator := mocks.NewMockStockAllocator(t)
			publisher := mocks.NewMockPublisher(t)

			var published *events.Event
			tt.setupMocks(repo, allocator, publisher, func(evts ...*events.Event) {
				published = evts[0]
			})

			useCase := NewReserveStock(repo, allocator, publisher, logger.NewNop())
			err := useCase.Execute(context.Background(), &ReserveStockCommand{
				OrderID:       orderID,
				CorrelationID: correlationID,
				Amount:        amount,
			})

			if tt.expectedError != "" {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, published)
			assert.Equal(t, events.InventoryReservedEvent, published.EventType)
			assert.Equal(t, orderID, published.OrderID)
			assert.Equal(t, correlationID, published.CorrelationID)

			data, ok := published.Data.(events.InventoryReservedData)
			require.True(t, ok)
			assert.Equal(t, tt.wantReserved, data.Reserved)
		})
	}
}

func TestReserveStock_RequiresOrderID(t *testing.T) {
	repo := mocks.NewMockReservationRepository(t)
	allocator := mocks.NewMockStockAllocator(t)
	publisher := mocks.NewMockPublisher(t)

	useCase := NewReserveStock(repo, allocator, publisher, logger.NewNop())
	err := useCase.Execute(context.Background(), &ReserveStockCommand{})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "order ID is required")
}

func TestAlwaysReserve(t *testing.T) {
	reserved, err := domain.AlwaysReserve().Reserve(context.Background(), models.GenerateUUID(), models.NewMoney(100, "USD"))
	require.NoError(t, err)
	assert.True(t, reserved)
}
