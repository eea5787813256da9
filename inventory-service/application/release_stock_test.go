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
	"github.com/orderprocessing/order-system/shared/logger"
	"github.com/orderprocessing/order-system/shared/models"
)

func TestReleaseStock_Execute(t *testing.T) {
	orderID := models.ID("550e8400-e29b-41d4-a716-446655440001")
	correlationID := models.ID("550e8400-e29b-41d4-a716-446655440099")
	amount := models.NewMoney(2599, "USD")

	tests := []struct {
		name          string
		setupMocks    func(*mocks.MockReservationRepository) *domain.Reservation
		expectedError string
	}{
		{
			name: "releases held stock",
			setupMocks: func(repo *mocks.MockReservationRepository) *domain.Reservation {
				reservation := domain.NewReservation(orderID, amount, true)
				repo.EXPECT().FindByOrderID(mock.Anything, orderID).Return(reservation, nil).Once()
				repo.EXPECT().Save(mock.Anything, reservation).Return(nil).Once()
				return reservation
			},
		},
		{
			name: "missing reservation is a no-op",
			setupMocks: func(repo *mocks.MockReservationRepository) *domain.Reservation {
				repo.EXPECT().FindByOrderID(mock.Anything, orderID).Return(nil, nil).Once()
				return nil
			},
		},
		{
			name: "already released reservation is a no-op",
			setupMocks: func(repo *mocks.MockReservationRepository) *domain.Reservation {
				reservation := domain.NewReservation(orderID, amount, true)
				reservation.Release()
				repo.EXPECT().FindByOrderID(mock.Anything, orderID).Return(reservation, nil).Once()
				return reservation
			},
		},
		{
			name: "rejected reservation is a no-op",
			setupMocks: func(repo *mocks.MockReservationRepository) *domain.Reservation {
				reservation := domain.NewReservation(orderID, amount, false)
				repo.EXPECT().FindByOrderID(mock.Anything, orderID).Return(reservation, nil).Once()
				return reservation
			},
		},
		{
			name: "repository find error",
			setupMocks: func(repo *mocks.MockReservationRepository) *domain.Reservation {
				repo.EXPECT().FindByOrderID(mock.Anything, orderID).
					Return(nil, errors.New("database error")).Once()
				return nil
			},
			expectedError: "failed to find reservation",
		},
		{
			name: "repository save error",
			setupMocks: func(repo *mocks.MockReservationRepository) *domain.Reservation {
				reservation := domain.NewReservation(orderID, amount, true)
				repo.EXPECT().FindByOrderID(mock.Anything, orderID).Return(reservation, nil).Once()
				repo.EXPECT().Save(mock.Anything, reservation).
					Return(errors.New("database error")).Once()
				return reservation
			},
			expectedError: "failed to save reservation",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := mocks.NewMockReservationRepository(t)
			reservation := tt.setupMocks(repo)

			useCase := NewReleaseStock(repo, logger.NewNop())
			err := useCase.Execute(context.Background(), &ReleaseStockCommand{
				OrderID:       orderID,
				CorrelationID: correlationID,
				Reason:        "Insufficient funds",
			})

			if tt.expectedError != "" {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError)
				return
			}

			require.NoError(t, err)
			if reservation != nil && reservation.Status != domain.ReservationStatusRejected {
				assert.Equal(t, domain.ReservationStatusReleased, reservation.Status)
			}
		})
	}
}
