package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/orderprocessing/order-system/shared/saga"
)

func TestCanTransition(t *testing.T) {
	allowed := map[OrderState][]OrderState{
		OrderStatePending:    {OrderStateProcessing, OrderStateCancelled},
		OrderStateProcessing: {OrderStateConfirmed, OrderStateFailed},
	}

	// Exhaustive check over every (from, to) pair, including self loops
	for _, from := range AllStates() {
		for _, to := range AllStates() {
			want := false
			for _, next := range allowed[from] {
				if next == to {
					want = true
				}
			}

			got := CanTransition(from, to)
			assert.Equal(t, want, got, "transition %s -> %s", from, to)
		}
	}
}

func TestTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    OrderState
		to      OrderState
		wantErr bool
	}{
		{name: "pending to processing", from: OrderStatePending, to: OrderStateProcessing},
		{name: "pending to cancelled", from: OrderStatePending, to: OrderStateCancelled},
		{name: "processing to confirmed", from: OrderStateProcessing, to: OrderStateConfirmed},
		{name: "processing to failed", from: OrderStateProcessing, to: OrderStateFailed},
		{name: "pending to confirmed", from: OrderStatePending, to: OrderStateConfirmed, wantErr: true},
		{name: "pending to failed", from: OrderStatePending, to: OrderStateFailed, wantErr: true},
		{name: "processing to cancelled", from: OrderStateProcessing, to: OrderStateCancelled, wantErr: true},
		{name: "confirmed is terminal", from: OrderStateConfirmed, to: OrderStateFailed, wantErr: true},
		{name: "failed is terminal", from: OrderStateFailed, to: OrderStateConfirmed, wantErr: true},
		{name: "cancelled is terminal", from: OrderStateCancelled, to: OrderStateProcessing, wantErr: true},
		{name: "self transition rejected", from: OrderStateProcessing, to: OrderStateProcessing, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Transition(tt.from, tt.to)

			if tt.wantErr {
				assert.Error(t, err)
				assert.True(t, saga.IsInvalidTransition(err))
				// State is unchanged on a rejected transition
				assert.Equal(t, tt.from, got)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.to, got)
		})
	}
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, OrderStatePending.IsTerminal())
	assert.False(t, OrderStateProcessing.IsTerminal())
	assert.True(t, OrderStateConfirmed.IsTerminal())
	assert.True(t, OrderStateFailed.IsTerminal())
	assert.True(t, OrderStateCancelled.IsTerminal())
}
