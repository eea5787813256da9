package application

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/orderprocessing/order-system/order-service/domain"
	"github.com/orderprocessing/order-system/shared/events"
	"github.com/orderprocessing/order-system/shared/models"
	"github.com/orderprocessing/order-system/shared/telemetry"
)

// CreateOrderCommand represents the command to create an order. The
// amount arrives as a decimal string and is stored in cents.
type CreateOrderCommand struct {
	CustomerName string `json:"customer_name"`
	TotalAmount  string `json:"total_amount"`
	Currency     string `json:"currency"`
}

// CreateOrderResponse represents the response after creating an order.
// The caller always sees PENDING; the saga advances the order
// asynchronously.
type CreateOrderResponse struct {
	OrderID       string       `json:"order_id"`
	CustomerName  string       `json:"customer_name"`
	TotalAmount   models.Money `json:"total_amount"`
	State         string       `json:"state"`
	CorrelationID string       `json:"correlation_id"`
}

// CreateOrder use case accepts a new order, persists it in PENDING and
// starts the saga by publishing order.created.
type CreateOrder struct {
	orderRepository domain.OrderRepository
	eventPublisher  events.Publisher
	logger          *zap.SugaredLogger
}

// NewCreateOrder creates a new CreateOrder use case
func NewCreateOrder(
	orderRepository domain.OrderRepository,
	eventPublisher events.Publisher,
	logger *zap.SugaredLogger,
) *CreateOrder {
	return &CreateOrder{
		orderRepository: orderRepository,
		eventPublisher:  eventPublisher,
		logger:          logger,
	}
}

// Execute creates the order and publishes the saga's first event
func (uc *CreateOrder) Execute(ctx context.Context, cmd *CreateOrderCommand) (*CreateOrderResponse, error) {
	start := time.Now()
	ctx, span := telemetry.StartSpan(ctx, "create_order",
		trace.WithAttributes(
			attribute.String("customer_name", cmd.CustomerName),
			attribute.String("total_amount", cmd.TotalAmount),
			attribute.String("currency", cmd.Currency),
		),
	)
	defer span.End()

	var status string = "error"
	defer func() {
		duration := time.Since(start)
		telemetry.RecordCounter(ctx, "order_operations_total", "Total order operations", 1,
			attribute.String("operation", "create_order"),
			attribute.String("status", status),
		)
		telemetry.RecordHistogram(ctx, "order_operation_duration_seconds", "Order operation duration", duration.Seconds(),
			attribute.String("operation", "create_order"),
			attribute.String("status", status),
		)
	}()

	amount, err := uc.parseAmount(cmd)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	order, err := domain.CreateOrder(cmd.CustomerName, amount)
	if err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, "invalid order")
	}

	// The PENDING snapshot is what the caller learns; the saga only
	// moves the order forward after the created event is durable.
	response := &CreateOrderResponse{
		OrderID:       order.ID.String(),
		CustomerName:  order.CustomerName,
		TotalAmount:   order.TotalAmount,
		State:         string(order.State),
		CorrelationID: order.CorrelationID.String(),
	}

	if err := uc.orderRepository.Save(ctx, order); err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, "failed to save order")
	}

	uc.logger.Infow("order created",
		"order_id", order.ID,
		"correlation_id", order.CorrelationID,
		"state", order.State,
	)

	if err := uc.eventPublisher.Publish(ctx, order.Events()...); err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, "failed to publish order created event")
	}
	order.ClearEvents()

	if err := order.StartProcessing(); err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, "failed to start processing")
	}

	if err := uc.orderRepository.Save(ctx, order); err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, "failed to save order state")
	}

	uc.logger.Infow("order transitioned",
		"order_id", order.ID,
		"correlation_id", order.CorrelationID,
		"from", domain.OrderStatePending,
		"to", order.State,
	)

	status = "success"
	span.SetAttributes(
		attribute.String("order_id", order.ID.String()),
		attribute.String("correlation_id", order.CorrelationID.String()),
	)

	return response, nil
}

// parseAmount converts the decimal request amount to cents
func (uc *CreateOrder) parseAmount(cmd *CreateOrderCommand) (models.Money, error) {
	if cmd.TotalAmount == "" {
		return models.Money{}, errors.New("total amount is required")
	}

	currency := cmd.Currency
	if currency == "" {
		currency = "USD"
	}

	dec, err := decimal.NewFromString(cmd.TotalAmount)
	if err != nil {
		return models.Money{}, errors.Wrap(err, "invalid total amount")
	}

	cents := dec.Shift(2)
	if !cents.IsInteger() {
		return models.Money{}, errors.New("total amount has more than two decimal places")
	}

	return models.NewMoney(cents.IntPart(), currency), nil
}
