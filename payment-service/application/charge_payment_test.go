package application

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/orderprocessing/order-system/payment-service/domain"
	"github.com/orderprocessing/order-system/payment-service/mocks"
	"github.com/orderprocessing/order-system/shared/events"
	"github.com/orderprocessing/order-system/shared/logger"
	"github.com/orderprocessing/order-system/shared/models"
)

func TestChargePayment_Execute(t *testing.T) {
	orderID := models.ID("550e8400-e29b-41d4-a716-446655440001")
	correlationID := models.ID("550e8400-e29b-41d4-a716-446655440099")
	amount := models.NewMoney(10000, "USD")

	tests := []struct {
		name          string
		reserved      bool
		setupMocks    func(*mocks.MockChargePolicy, *mocks.MockPublisher, func(...*events.Event))
		expectedError string
		wantEventType string
	}{
		{
			name:     "charge succeeds",
			reserved: true,
			setupMocks: func(policy *mocks.MockChargePolicy, publisher *mocks.MockPublisher, record func(...*events.Event)) {
				policy.EXPECT().Charge(mock.Anything, orderID).
					Return(domain.ChargeResult{Succeeded: true, Amount: amount}, nil).Once()
				publisher.EXPECT().Publish(mock.Anything, mock.Anything).
					Run(func(ctx context.Context, evts ...*events.Event) { record(evts...) }).
					Return(nil).Once()
			},
			wantEventType: events.PaymentSucceededEvent,
		},
		{
			name:     "charge declined",
			reserved: true,
			setupMocks: func(policy *mocks.MockChargePolicy, publisher *mocks.MockPublisher, record func(...*events.Event)) {
				policy.EXPECT().Charge(mock.Anything, orderID).
					Return(domain.ChargeResult{Succeeded: false, Reason: domain.DeclineReasonInsufficientFunds}, nil).Once()
				publisher.EXPECT().Publish(mock.Anything, mock.Anything).
					Run(func(ctx context.Context, evts ...*events.Event) { record(evts...) }).
					Return(nil).Once()
			},
			wantEventType: events.PaymentFailedEvent,
		},
		{
			name:     "not reserved skips charge and emits nothing",
			reserved: false,
			setupMocks: func(policy *mocks.MockChargePolicy, publisher *mocks.MockPublisher, record func(...*events.Event)) {
			},
		},
		{
			name:     "policy error",
			reserved: true,
			setupMocks: func(policy *mocks.MockChargePolicy, publisher *mocks.MockPublisher, record func(...*events.Event)) {
				policy.EXPECT().Charge(mock.Anything, orderID).
					Return(domain.ChargeResult{}, errors.New("gateway timeout")).Once()
			},
			expectedError: "charge failed",
		},
		{
			name:     "publisher error",
			reserved: true,
			setupMocks: func(policy *mocks.MockChargePolicy, publisher *mocks.MockPublisher, record func(...*events.Event)) {
				policy.EXPECT().Charge(mock.Anything, orderID).
					Return(domain.ChargeResult{Succeeded: true, Amount: amount}, nil).Once()
				publisher.EXPECT().Publish(mock.Anything, mock.Anything).
					Return(errors.New("broker unavailable")).Once()
			},
			expectedError: "failed to publish payment outcome event",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policy := mocks.NewMockChargePolicy(t)
			publisher := mocks.NewMockPublisher(t)

			var published *events.Event
			tt.setupMocks(policy, publisher, func(evts ...*events.Event) {
				published = evts[0]
			})

			useCase := NewChargePayment(policy, publisher, logger.NewNop())
			err := useCase.Execute(context.Background(), &ChargePaymentCommand{
				OrderID:       orderID,
				CorrelationID: correlationID,
				Reserved:      tt.reserved,
			})

			if tt.expectedError != "" {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError)
				return
			}

			require.NoError(t, err)

			if tt.wantEventType == "" {
				assert.Nil(t, published)
				return
			}

			require.NotNil(t, published)
			assert.Equal(t, tt.wantEventType, published.EventType)
			assert.Equal(t, orderID, published.OrderID)
			assert.Equal(t, correlationID, published.CorrelationID)

			if tt.wantEventType == events.PaymentFailedEvent {
				data, ok := published.Data.(events.PaymentFailedData)
				require.True(t, ok)
				assert.Equal(t, domain.DeclineReasonInsufficientFunds, data.Reason)
			}
		})
	}
}

func TestChargePayment_RequiresOrderID(t *testing.T) {
	policy := mocks.NewMockChargePolicy(t)
	publisher := mocks.NewMockPublisher(t)

	useCase := NewChargePayment(policy, publisher, logger.NewNop())
	err := useCase.Execute(context.Background(), &ChargePaymentCommand{Reserved: true})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "order ID is required")
}

func TestHashChargePolicy_Deterministic(t *testing.T) {
	policy := domain.HashChargePolicy(models.NewMoney(10000, "USD"))
	orderID := models.GenerateUUID()

	first, err := policy.Charge(context.Background(), orderID)
	require.NoError(t, err)

	// The verdict never changes for the same order id
	for i := 0; i < 5; i++ {
		result, err := policy.Charge(context.Background(), orderID)
		require.NoError(t, err)
		assert.Equal(t, first.Succeeded, result.Succeeded)
	}

	if !first.Succeeded {
		assert.Equal(t, domain.DeclineReasonInsufficientFunds, first.Reason)
	}
}

func TestHashChargePolicy_ProducesBothVerdicts(t *testing.T) {
	policy := domain.HashChargePolicy(models.NewMoney(10000, "USD"))

	var succeeded, declined bool
	for i := 0; i < 64 && !(succeeded && declined); i++ {
		result, err := policy.Charge(context.Background(), models.GenerateUUID())
		require.NoError(t, err)
		if result.Succeeded {
			succeeded = true
		} else {
			declined = true
		}
	}

	assert.True(t, succeeded)
	assert.True(t, declined)
}
