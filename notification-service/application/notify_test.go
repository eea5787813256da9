package application_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/orderprocessing/order-system/notification-service/application"
	"github.com/orderprocessing/order-system/notification-service/mocks"
	"github.com/orderprocessing/order-system/shared/logger"
	"github.com/orderprocessing/order-system/shared/models"
)

func TestNotifyOutcome_Execute(t *testing.T) {
	orderID := models.ID("550e8400-e29b-41d4-a716-446655440001")
	correlationID := models.ID("550e8400-e29b-41d4-a716-446655440099")
	amount := models.NewMoney(10000, "USD")

	tests := []struct {
		name          string
		cmd           *application.NotifyOutcomeCommand
		setupMocks    func(*mocks.MockSender, func(*application.Notification))
		expectedError string
		wantSubject   string
		checkBody     func(*testing.T, string)
	}{
		{
			name: "payment succeeded",
			cmd: &application.NotifyOutcomeCommand{
				OrderID:       orderID,
				CorrelationID: correlationID,
				Succeeded:     true,
				Amount:        amount,
			},
			setupMocks: func(sender *mocks.MockSender, record func(*application.Notification)) {
				sender.EXPECT().Send(mock.Anything, mock.Anything).
					Run(func(ctx context.Context, n *application.Notification) { record(n) }).
					Return(nil).Once()
			},
			wantSubject: "Order confirmed",
			checkBody: func(t *testing.T, body string) {
				assert.Contains(t, body, "confirmed")
				assert.Contains(t, body, "10000 USD")
			},
		},
		{
			name: "payment failed",
			cmd: &application.NotifyOutcomeCommand{
				OrderID:       orderID,
				CorrelationID: correlationID,
				Succeeded:     false,
				Reason:        "Insufficient funds",
			},
			setupMocks: func(sender *mocks.MockSender, record func(*application.Notification)) {
				sender.EXPECT().Send(mock.Anything, mock.Anything).
					Run(func(ctx context.Context, n *application.Notification) { record(n) }).
					Return(nil).Once()
			},
			wantSubject: "Order failed",
			checkBody: func(t *testing.T, body string) {
				assert.Contains(t, body, "Insufficient funds")
			},
		},
		{
			name: "missing order id",
			cmd: &application.NotifyOutcomeCommand{
				Succeeded: true,
				Amount:    amount,
			},
			setupMocks:    func(sender *mocks.MockSender, record func(*application.Notification)) {},
			expectedError: "order ID is required",
		},
		{
			name: "sender error",
			cmd: &application.NotifyOutcomeCommand{
				OrderID:   orderID,
				Succeeded: true,
				Amount:    amount,
			},
			setupMocks: func(sender *mocks.MockSender, record func(*application.Notification)) {
				sender.EXPECT().Send(mock.Anything, mock.Anything).
					Return(errors.New("smtp unavailable")).Once()
			},
			expectedError: "failed to send notification",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := mocks.NewMockSender(t)

			var sent *application.Notification
			tt.setupMocks(sender, func(n *application.Notification) { sent = n })

			uc := application.NewNotifyOutcome(sender, logger.NewNop())
			err := uc.Execute(context.Background(), tt.cmd)

			if tt.expectedError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, sent)
			assert.Equal(t, orderID, sent.OrderID)
			assert.Equal(t, tt.cmd.CorrelationID, sent.CorrelationID)
			assert.Equal(t, tt.wantSubject, sent.Subject)
			tt.checkBody(t, sent.Body)
		})
	}
}

func TestNewLogSender(t *testing.T) {
	sender := application.NewLogSender(logger.NewNop())

	err := sender.Send(context.Background(), &application.Notification{
		OrderID: models.GenerateUUID(),
		Subject: "Order confirmed",
		Body:    "body",
	})
	require.NoError(t, err)
}
