package saga

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/orderprocessing/order-system/shared/models"
)

func TestErrorKinds(t *testing.T) {
	orderID := models.GenerateUUID()

	t.Run("invalid transition", func(t *testing.T) {
		err := NewInvalidTransition("CONFIRMED", "PROCESSING")
		assert.True(t, IsInvalidTransition(err))
		assert.False(t, IsNotFound(err))
		assert.False(t, IsDuplicate(err))
		assert.Contains(t, err.Error(), "CONFIRMED")
		assert.Contains(t, err.Error(), "PROCESSING")
	})

	t.Run("not found", func(t *testing.T) {
		err := NewNotFound(orderID)
		assert.True(t, IsNotFound(err))
		assert.False(t, IsInvalidTransition(err))
		assert.Contains(t, err.Error(), orderID.String())
	})

	t.Run("duplicate", func(t *testing.T) {
		assert.True(t, IsDuplicate(ErrDuplicateEvent))
		assert.True(t, IsDuplicate(errors.Wrap(ErrDuplicateEvent, "handling failed")))
	})

	t.Run("kinds survive wrapping", func(t *testing.T) {
		err := errors.Wrap(NewInvalidTransition("PENDING", "CONFIRMED"), "save order")
		assert.True(t, IsInvalidTransition(err))

		err = errors.Wrap(NewNotFound(orderID), "load order")
		assert.True(t, IsNotFound(err))
	})
}

func TestRetryable(t *testing.T) {
	orderID := models.GenerateUUID()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"invalid transition", NewInvalidTransition("PENDING", "CONFIRMED"), false},
		{"not found", NewNotFound(orderID), false},
		{"duplicate", ErrDuplicateEvent, false},
		{"wrapped terminal", errors.Wrap(NewNotFound(orderID), "lookup"), false},
		{"transient", errors.New("connection refused"), true},
		{"wrapped transient", errors.Wrap(errors.New("timeout"), "save"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Retryable(tt.err))
		})
	}
}
