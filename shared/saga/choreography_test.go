package saga_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	invapp "github.com/orderprocessing/order-system/inventory-service/application"
	invdomain "github.com/orderprocessing/order-system/inventory-service/domain"
	invhandlers "github.com/orderprocessing/order-system/inventory-service/handlers"
	invinfra "github.com/orderprocessing/order-system/inventory-service/infrastructure"
	notifapp "github.com/orderprocessing/order-system/notification-service/application"
	notifhandlers "github.com/orderprocessing/order-system/notification-service/handlers"
	orderapp "github.com/orderprocessing/order-system/order-service/application"
	orderdomain "github.com/orderprocessing/order-system/order-service/domain"
	orderhandlers "github.com/orderprocessing/order-system/order-service/handlers"
	orderinfra "github.com/orderprocessing/order-system/order-service/infrastructure"
	payapp "github.com/orderprocessing/order-system/payment-service/application"
	paydomain "github.com/orderprocessing/order-system/payment-service/domain"
	payhandlers "github.com/orderprocessing/order-system/payment-service/handlers"
	"github.com/orderprocessing/order-system/shared/events"
	"github.com/orderprocessing/order-system/shared/infrastructure"
	"github.com/orderprocessing/order-system/shared/logger"
	"github.com/orderprocessing/order-system/shared/models"
	"github.com/orderprocessing/order-system/shared/saga"
)

// world wires all four services over an in-memory bus. Events are
// delivered by pump in publish order, one at a time, the way a real
// broker would; handlers publishing follow-ups only extend the queue.
type world struct {
	bus *infrastructure.MemoryBus

	orderRepo       *orderinfra.MemoryOrderRepository
	reservationRepo *invinfra.MemoryReservationRepository

	createOrder *orderapp.CreateOrder

	consumers     map[string][]events.EventHandler
	notifications []*notifapp.Notification

	cursor int
}

func newWorld(t *testing.T, policy paydomain.ChargePolicy, allocator invdomain.StockAllocator) *world {
	t.Helper()
	nop := logger.NewNop()

	w := &world{
		bus:             infrastructure.NewMemoryBus(),
		orderRepo:       orderinfra.NewMemoryOrderRepository(),
		reservationRepo: invinfra.NewMemoryReservationRepository(),
		consumers:       make(map[string][]events.EventHandler),
	}

	// Order service
	w.createOrder = orderapp.NewCreateOrder(w.orderRepo, w.bus, nop)
	processOutcome := orderapp.NewProcessPaymentOutcome(w.orderRepo, nop)
	orderRouter := saga.NewEventRouter(nop)
	orderEvents := orderhandlers.NewOrderEventHandlers(processOutcome)
	orderRouter.Register(events.PaymentSucceededEvent, orderEvents)
	orderRouter.Register(events.PaymentFailedEvent, orderEvents)
	orderProcessor := saga.NewIdempotentProcessor("order-service", infrastructure.NewMemoryProcessedEventStore(), orderRouter, nop)
	w.subscribe(orderProcessor, events.PaymentSucceededEvent, events.PaymentFailedEvent)

	// Inventory service
	reserveStock := invapp.NewReserveStock(w.reservationRepo, allocator, w.bus, nop)
	releaseStock := invapp.NewReleaseStock(w.reservationRepo, nop)
	invRouter := saga.NewEventRouter(nop)
	invEvents := invhandlers.NewInventoryEventHandlers(reserveStock, releaseStock)
	invRouter.Register(events.OrderCreatedEvent, invEvents)
	invRouter.Register(events.PaymentFailedEvent, invEvents)
	invProcessor := saga.NewIdempotentProcessor("inventory-service", infrastructure.NewMemoryProcessedEventStore(), invRouter, nop)
	w.subscribe(invProcessor, events.OrderCreatedEvent, events.PaymentFailedEvent)

	// Payment service
	chargePayment := payapp.NewChargePayment(policy, w.bus, nop)
	payRouter := saga.NewEventRouter(nop)
	payRouter.Register(events.InventoryReservedEvent, payhandlers.NewPaymentEventHandlers(chargePayment))
	payProcessor := saga.NewIdempotentProcessor("payment-service", infrastructure.NewMemoryProcessedEventStore(), payRouter, nop)
	w.subscribe(payProcessor, events.InventoryReservedEvent)

	// Notification service
	sender := notifapp.SenderFunc(func(ctx context.Context, n *notifapp.Notification) error {
		w.notifications = append(w.notifications, n)
		return nil
	})
	notifyOutcome := notifapp.NewNotifyOutcome(sender, nop)
	notifRouter := saga.NewEventRouter(nop)
	notifEvents := notifhandlers.NewNotificationEventHandlers(notifyOutcome)
	notifRouter.Register(events.PaymentSucceededEvent, notifEvents)
	notifRouter.Register(events.PaymentFailedEvent, notifEvents)
	notifProcessor := saga.NewIdempotentProcessor("notification-service", infrastructure.NewMemoryProcessedEventStore(), notifRouter, nop)
	w.subscribe(notifProcessor, events.PaymentSucceededEvent, events.PaymentFailedEvent)

	return w
}

func (w *world) subscribe(handler events.EventHandler, eventTypes ...string) {
	for _, eventType := range eventTypes {
		w.consumers[eventType] = append(w.consumers[eventType], handler)
	}
}

// pump drains the bus until no undelivered events remain
func (w *world) pump(t *testing.T) {
	t.Helper()
	for {
		published := w.bus.Published()
		if w.cursor >= len(published) {
			return
		}
		event := published[w.cursor]
		w.cursor++
		for _, handler := range w.consumers[event.EventType] {
			require.NoError(t, handler.Handle(context.Background(), event))
		}
	}
}

func (w *world) placeOrder(t *testing.T) *orderapp.CreateOrderResponse {
	t.Helper()
	resp, err := w.createOrder.Execute(context.Background(), &orderapp.CreateOrderCommand{
		CustomerName: "Alice",
		TotalAmount:  "50.00",
	})
	require.NoError(t, err)
	return resp
}

func approveAll() paydomain.ChargePolicy {
	return paydomain.ChargePolicyFunc(func(ctx context.Context, orderID models.ID) (paydomain.ChargeResult, error) {
		return paydomain.ChargeResult{Succeeded: true, Amount: models.NewMoney(10000, "USD")}, nil
	})
}

func declineAll() paydomain.ChargePolicy {
	return paydomain.ChargePolicyFunc(func(ctx context.Context, orderID models.ID) (paydomain.ChargeResult, error) {
		return paydomain.ChargeResult{Succeeded: false, Reason: paydomain.DeclineReasonInsufficientFunds}, nil
	})
}

func TestChoreography_PaymentSucceeds(t *testing.T) {
	w := newWorld(t, approveAll(), invdomain.AlwaysReserve())

	resp := w.placeOrder(t)
	assert.Equal(t, string(orderdomain.OrderStatePending), resp.State)

	w.pump(t)

	order, err := w.orderRepo.FindByID(context.Background(), models.ID(resp.OrderID))
	require.NoError(t, err)
	require.NotNil(t, order)
	assert.Equal(t, orderdomain.OrderStateConfirmed, order.State)

	reservation, err := w.reservationRepo.FindByOrderID(context.Background(), order.ID)
	require.NoError(t, err)
	require.NotNil(t, reservation)
	assert.Equal(t, invdomain.ReservationStatusReserved, reservation.Status)

	var types []string
	for _, event := range w.bus.Published() {
		types = append(types, event.EventType)
	}
	assert.Equal(t, []string{
		events.OrderCreatedEvent,
		events.InventoryReservedEvent,
		events.PaymentSucceededEvent,
	}, types)

	require.Len(t, w.notifications, 1)
	assert.Equal(t, "Order confirmed", w.notifications[0].Subject)

	// Every event of the order carries the correlation id minted at
	// creation.
	for _, event := range w.bus.Published() {
		assert.Equal(t, models.ID(resp.CorrelationID), event.CorrelationID)
	}
}

func TestChoreography_PaymentFailsAndInventoryCompensates(t *testing.T) {
	w := newWorld(t, declineAll(), invdomain.AlwaysReserve())

	resp := w.placeOrder(t)
	w.pump(t)

	order, err := w.orderRepo.FindByID(context.Background(), models.ID(resp.OrderID))
	require.NoError(t, err)
	require.NotNil(t, order)
	assert.Equal(t, orderdomain.OrderStateFailed, order.State)

	reservation, err := w.reservationRepo.FindByOrderID(context.Background(), order.ID)
	require.NoError(t, err)
	require.NotNil(t, reservation)
	assert.Equal(t, invdomain.ReservationStatusReleased, reservation.Status)

	failed := w.bus.PublishedOfType(events.PaymentFailedEvent)
	require.Len(t, failed, 1)

	var data events.PaymentFailedData
	require.NoError(t, failed[0].UnmarshalPayload(&data))
	assert.Equal(t, "Insufficient funds", data.Reason)

	require.Len(t, w.notifications, 1)
	assert.Equal(t, "Order failed", w.notifications[0].Subject)

	// A redelivered payment.failed is absorbed: the release already
	// happened and nothing changes.
	for _, handler := range w.consumers[events.PaymentFailedEvent] {
		require.NoError(t, handler.Handle(context.Background(), failed[0]))
	}
	order, err = w.orderRepo.FindByID(context.Background(), models.ID(resp.OrderID))
	require.NoError(t, err)
	assert.Equal(t, orderdomain.OrderStateFailed, order.State)
	require.Len(t, w.notifications, 1)
}

func TestChoreography_DuplicateOrderCreatedDelivery(t *testing.T) {
	w := newWorld(t, approveAll(), invdomain.AlwaysReserve())

	w.placeOrder(t)
	w.pump(t)

	created := w.bus.PublishedOfType(events.OrderCreatedEvent)
	require.Len(t, created, 1)

	// Second delivery of the same event id: no second reservation
	// attempt, no second inventory.reserved.
	for _, handler := range w.consumers[events.OrderCreatedEvent] {
		require.NoError(t, handler.Handle(context.Background(), created[0]))
	}
	w.pump(t)

	assert.Len(t, w.bus.PublishedOfType(events.InventoryReservedEvent), 1)
	assert.Len(t, w.bus.PublishedOfType(events.PaymentSucceededEvent), 1)
}

func TestChoreography_StockNotAvailableStallsOrder(t *testing.T) {
	never := invdomain.StockAllocatorFunc(func(ctx context.Context, orderID models.ID, amount models.Money) (bool, error) {
		return false, nil
	})
	w := newWorld(t, approveAll(), never)

	resp := w.placeOrder(t)
	w.pump(t)

	// inventory.reserved{reserved=false} reaches the payment service,
	// which skips the charge and emits nothing. The order stays in
	// PROCESSING.
	reserved := w.bus.PublishedOfType(events.InventoryReservedEvent)
	require.Len(t, reserved, 1)

	var data events.InventoryReservedData
	require.NoError(t, reserved[0].UnmarshalPayload(&data))
	assert.False(t, data.Reserved)

	assert.Empty(t, w.bus.PublishedOfType(events.PaymentSucceededEvent))
	assert.Empty(t, w.bus.PublishedOfType(events.PaymentFailedEvent))
	assert.Empty(t, w.notifications)

	order, err := w.orderRepo.FindByID(context.Background(), models.ID(resp.OrderID))
	require.NoError(t, err)
	require.NotNil(t, order)
	assert.Equal(t, orderdomain.OrderStateProcessing, order.State)
}

func TestChoreography_BackwardTransitionRejected(t *testing.T) {
	w := newWorld(t, approveAll(), invdomain.AlwaysReserve())

	resp := w.placeOrder(t)

	order, err := w.orderRepo.FindByID(context.Background(), models.ID(resp.OrderID))
	require.NoError(t, err)
	require.NotNil(t, order)
	require.Equal(t, orderdomain.OrderStateProcessing, order.State)

	next, err := orderdomain.Transition(order.State, orderdomain.OrderStatePending)
	require.Error(t, err)
	assert.True(t, saga.IsInvalidTransition(err))
	assert.Equal(t, orderdomain.OrderStateProcessing, next)
}
