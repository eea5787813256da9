package domain

import (
	"github.com/orderprocessing/order-system/shared/saga"
)

// OrderState represents the lifecycle state of an order
type OrderState string

const (
	OrderStatePending    OrderState = "PENDING"
	OrderStateProcessing OrderState = "PROCESSING"
	OrderStateConfirmed  OrderState = "CONFIRMED"
	OrderStateFailed     OrderState = "FAILED"
	OrderStateCancelled  OrderState = "CANCELLED"
)

// allowedTransitions is the complete transition table. Terminal states
// have no successors.
var allowedTransitions = map[OrderState][]OrderState{
	OrderStatePending:    {OrderStateProcessing, OrderStateCancelled},
	OrderStateProcessing: {OrderStateConfirmed, OrderStateFailed},
	OrderStateConfirmed:  {},
	OrderStateFailed:     {},
	OrderStateCancelled:  {},
}

// AllStates returns every order state
func AllStates() []OrderState {
	return []OrderState{
		OrderStatePending,
		OrderStateProcessing,
		OrderStateConfirmed,
		OrderStateFailed,
		OrderStateCancelled,
	}
}

// IsTerminal reports whether the state has no outgoing transitions
func (s OrderState) IsTerminal() bool {
	return len(allowedTransitions[s]) == 0
}

// CanTransition reports whether the transition from one state to another
// is permitted by the table
func CanTransition(from, to OrderState) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition validates and performs a state transition. Callers must not
// persist the target state unless Transition succeeded.
func Transition(from, to OrderState) (OrderState, error) {
	if !CanTransition(from, to) {
		return from, saga.NewInvalidTransition(string(from), string(to))
	}
	return to, nil
}
