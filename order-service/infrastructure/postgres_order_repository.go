package infrastructure

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/orderprocessing/order-system/order-service/domain"
	"github.com/orderprocessing/order-system/shared/models"
)

// ErrVersionConflict is returned when an optimistic-lock update matched
// no row. Transient: the caller reloads and retries via redelivery.
var ErrVersionConflict = errors.New("order was modified concurrently")

// PostgresOrderRepository implements OrderRepository using PostgreSQL
type PostgresOrderRepository struct {
	db *sqlx.DB
}

// NewPostgresOrderRepository creates a new PostgresOrderRepository
func NewPostgresOrderRepository(db *sqlx.DB) *PostgresOrderRepository {
	return &PostgresOrderRepository{db: db}
}

// postgresOrder represents an order in the database
type postgresOrder struct {
	ID            string    `db:"id"`
	CustomerName  string    `db:"customer_name"`
	TotalAmount   int64     `db:"total_amount"`
	Currency      string    `db:"currency"`
	State         string    `db:"state"`
	CorrelationID string    `db:"correlation_id"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
	Version       int       `db:"version"`
}

// Save inserts a new order or updates an existing one. Updates carry an
// optimistic version check so concurrent saga handlers cannot clobber
// each other's transitions.
func (r *PostgresOrderRepository) Save(ctx context.Context, order *domain.Order) error {
	if order.Version.Value == 1 {
		return r.insertOrder(ctx, order)
	}
	return r.updateOrder(ctx, order)
}

func (r *PostgresOrderRepository) insertOrder(ctx context.Context, order *domain.Order) error {
	query := `
		INSERT INTO orders (
			id, customer_name, total_amount, currency, state,
			correlation_id, created_at, updated_at, version
		) VALUES (
			:id, :customer_name, :total_amount, :currency, :state,
			:correlation_id, :created_at, :updated_at, :version
		)`

	_, err := r.db.NamedExecContext(ctx, query, r.toPostgres(order))
	if err != nil {
		return errors.Wrap(err, "failed to insert order")
	}

	return nil
}

func (r *PostgresOrderRepository) updateOrder(ctx context.Context, order *domain.Order) error {
	query := `
		UPDATE orders
		SET state = :state, updated_at = :updated_at, version = :version
		WHERE id = :id AND version = :old_version`

	result, err := r.db.NamedExecContext(ctx, query, map[string]interface{}{
		"id":          order.ID.String(),
		"state":       string(order.State),
		"updated_at":  order.Timestamps.UpdatedAt,
		"version":     order.Version.Value,
		"old_version": order.Version.Value - 1,
	})
	if err != nil {
		return errors.Wrap(err, "failed to update order")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to read affected rows")
	}

	if affected == 0 {
		return ErrVersionConflict
	}

	return nil
}

// FindByID finds an order by ID
func (r *PostgresOrderRepository) FindByID(ctx context.Context, id models.ID) (*domain.Order, error) {
	query := `
		SELECT id, customer_name, total_amount, currency, state,
			   correlation_id, created_at, updated_at, version
		FROM orders
		WHERE id = $1`

	var pgOrder postgresOrder
	err := r.db.GetContext(ctx, &pgOrder, query, id.String())
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to find order")
	}

	return r.toDomain(&pgOrder)
}

func (r *PostgresOrderRepository) toPostgres(order *domain.Order) *postgresOrder {
	return &postgresOrder{
		ID:            order.ID.String(),
		CustomerName:  order.CustomerName,
		TotalAmount:   order.TotalAmount.Amount,
		Currency:      order.TotalAmount.Currency,
		State:         string(order.State),
		CorrelationID: order.CorrelationID.String(),
		CreatedAt:     order.Timestamps.CreatedAt,
		UpdatedAt:     order.Timestamps.UpdatedAt,
		Version:       order.Version.Value,
	}
}

func (r *PostgresOrderRepository) toDomain(pgOrder *postgresOrder) (*domain.Order, error) {
	id, err := models.NewID(pgOrder.ID)
	if err != nil {
		return nil, errors.Wrap(err, "invalid order ID")
	}

	correlationID, err := models.NewID(pgOrder.CorrelationID)
	if err != nil {
		return nil, errors.Wrap(err, "invalid correlation ID")
	}

	return &domain.Order{
		ID:            id,
		CustomerName:  pgOrder.CustomerName,
		TotalAmount:   models.NewMoney(pgOrder.TotalAmount, pgOrder.Currency),
		State:         domain.OrderState(pgOrder.State),
		CorrelationID: correlationID,
		Timestamps: models.Timestamps{
			CreatedAt: pgOrder.CreatedAt,
			UpdatedAt: pgOrder.UpdatedAt,
		},
		Version: models.Version{Value: pgOrder.Version},
	}, nil
}
