package saga

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/orderprocessing/order-system/shared/models"
)

// Handler failures fall into a small set of kinds that decide what the
// bus does with the message: duplicates are absorbed before the handler
// runs, transient failures propagate so the bus redelivers, and
// invalid-transition or not-found failures are terminal for that message
// and go to the dead-letter topic.

// ErrDuplicateEvent marks an event whose id was already recorded by the
// consuming service. It never escapes the idempotent processor.
var ErrDuplicateEvent = errors.New("duplicate event")

// InvalidTransitionError reports a state machine contract violation.
// Retrying cannot change the outcome, so it is never retried.
type InvalidTransitionError struct {
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid state transition from %s to %s", e.From, e.To)
}

// NewInvalidTransition creates an InvalidTransitionError
func NewInvalidTransition(from, to string) error {
	return &InvalidTransitionError{From: from, To: to}
}

// NotFoundError reports that a referenced order does not exist in the
// consuming service. Terminal for the message; kept distinct from
// transient store failures so operators can tell them apart.
type NotFoundError struct {
	OrderID models.ID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("order not found: %s", e.OrderID)
}

// NewNotFound creates a NotFoundError
func NewNotFound(orderID models.ID) error {
	return &NotFoundError{OrderID: orderID}
}

// IsDuplicate reports whether err is a duplicate-event short circuit
func IsDuplicate(err error) bool {
	return errors.Is(err, ErrDuplicateEvent)
}

// IsInvalidTransition reports whether err is a state machine violation
func IsInvalidTransition(err error) bool {
	var target *InvalidTransitionError
	return errors.As(err, &target)
}

// IsNotFound reports whether err is an order lookup miss
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// Retryable reports whether redelivering the message can change the
// outcome. Everything that is not a terminal kind is treated as a
// transient failure.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	return !IsInvalidTransition(err) && !IsNotFound(err) && !IsDuplicate(err)
}
