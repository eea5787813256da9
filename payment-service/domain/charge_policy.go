package domain

import (
	"context"
	"hash/fnv"

	"github.com/orderprocessing/order-system/shared/models"
)

// DeclineReasonInsufficientFunds is the reason carried by payment.failed
// events from the deterministic policy
const DeclineReasonInsufficientFunds = "Insufficient funds"

// ChargeResult is the outcome of a charge attempt
type ChargeResult struct {
	Succeeded bool
	Amount    models.Money
	Reason    string
}

// ChargePolicy decides whether a charge goes through. The default policy
// is a deterministic stand-in for a payment gateway; real gateways plug
// in here.
type ChargePolicy interface {
	Charge(ctx context.Context, orderID models.ID) (ChargeResult, error)
}

// ChargePolicyFunc adapts a function to the ChargePolicy interface
type ChargePolicyFunc func(ctx context.Context, orderID models.ID) (ChargeResult, error)

func (f ChargePolicyFunc) Charge(ctx context.Context, orderID models.ID) (ChargeResult, error) {
	return f(ctx, orderID)
}

// HashChargePolicy approves roughly half of all orders, deterministically
// per order id, so the compensation path is exercised without a gateway.
// The charged amount is simulated.
func HashChargePolicy(amount models.Money) ChargePolicy {
	return ChargePolicyFunc(func(ctx context.Context, orderID models.ID) (ChargeResult, error) {
		h := fnv.New32a()
		h.Write([]byte(orderID.String()))

		if h.Sum32()%2 == 0 {
			return ChargeResult{Succeeded: true, Amount: amount}, nil
		}

		return ChargeResult{Succeeded: false, Reason: DeclineReasonInsufficientFunds}, nil
	})
}
