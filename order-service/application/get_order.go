package application

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/orderprocessing/order-system/order-service/domain"
	"github.com/orderprocessing/order-system/shared/models"
	"github.com/orderprocessing/order-system/shared/saga"
	"github.com/orderprocessing/order-system/shared/telemetry"
)

// GetOrderQuery represents the query to get an order
type GetOrderQuery struct {
	OrderID string `json:"order_id"`
}

// GetOrderResponse represents the response for getting an order
type GetOrderResponse struct {
	OrderID       string       `json:"order_id"`
	CustomerName  string       `json:"customer_name"`
	TotalAmount   models.Money `json:"total_amount"`
	State         string       `json:"state"`
	CorrelationID string       `json:"correlation_id"`
	CreatedAt     string       `json:"created_at"`
	UpdatedAt     string       `json:"updated_at"`
}

// GetOrder use case
type GetOrder struct {
	orderRepository domain.OrderRepository
}

// NewGetOrder creates a new GetOrder use case
func NewGetOrder(orderRepository domain.OrderRepository) *GetOrder {
	return &GetOrder{orderRepository: orderRepository}
}

// Execute executes the get order use case
func (uc *GetOrder) Execute(ctx context.Context, query *GetOrderQuery) (*GetOrderResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "get_order",
		trace.WithAttributes(attribute.String("order_id", query.OrderID)),
	)
	defer span.End()

	orderID, err := models.NewID(query.OrderID)
	if err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, "invalid order ID")
	}

	order, err := uc.orderRepository.FindByID(ctx, orderID)
	if err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, "failed to find order")
	}

	if order == nil {
		err := saga.NewNotFound(orderID)
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(attribute.String("order_state", string(order.State)))

	return &GetOrderResponse{
		OrderID:       order.ID.String(),
		CustomerName:  order.CustomerName,
		TotalAmount:   order.TotalAmount,
		State:         string(order.State),
		CorrelationID: order.CorrelationID.String(),
		CreatedAt:     order.Timestamps.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     order.Timestamps.UpdatedAt.Format(time.RFC3339),
	}, nil
}
