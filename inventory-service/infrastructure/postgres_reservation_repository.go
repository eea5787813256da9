package infrastructure

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/orderprocessing/order-system/inventory-service/domain"
	"github.com/orderprocessing/order-system/shared/models"
)

// PostgresReservationRepository implements ReservationRepository using
// PostgreSQL
type PostgresReservationRepository struct {
	db *sqlx.DB
}

// NewPostgresReservationRepository creates a new
// PostgresReservationRepository
func NewPostgresReservationRepository(db *sqlx.DB) *PostgresReservationRepository {
	return &PostgresReservationRepository{db: db}
}

// postgresReservation represents a reservation in the database
type postgresReservation struct {
	ID        string    `db:"id"`
	OrderID   string    `db:"order_id"`
	Amount    int64     `db:"amount"`
	Currency  string    `db:"currency"`
	Status    string    `db:"status"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Save upserts the reservation keyed by order id. Redelivered
// reservation attempts overwrite with the same outcome rather than
// duplicating rows.
func (r *PostgresReservationRepository) Save(ctx context.Context, reservation *domain.Reservation) error {
	query := `
		INSERT INTO reservations (
			id, order_id, amount, currency, status, created_at, updated_at
		) VALUES (
			:id, :order_id, :amount, :currency, :status, :created_at, :updated_at
		)
		ON CONFLICT (order_id) DO UPDATE
		SET status = EXCLUDED.status, updated_at = EXCLUDED.updated_at`

	_, err := r.db.NamedExecContext(ctx, query, r.toPostgres(reservation))
	if err != nil {
		return errors.Wrap(err, "failed to save reservation")
	}

	return nil
}

// FindByOrderID finds the reservation for an order
func (r *PostgresReservationRepository) FindByOrderID(ctx context.Context, orderID models.ID) (*domain.Reservation, error) {
	query := `
		SELECT id, order_id, amount, currency, status, created_at, updated_at
		FROM reservations
		WHERE order_id = $1`

	var pgReservation postgresReservation
	err := r.db.GetContext(ctx, &pgReservation, query, orderID.String())
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to find reservation")
	}

	return r.toDomain(&pgReservation)
}

func (r *PostgresReservationRepository) toPostgres(reservation *domain.Reservation) *postgresReservation {
	return &postgresReservation{
		ID:        reservation.ID.String(),
		OrderID:   reservation.OrderID.String(),
		Amount:    reservation.Amount.Amount,
		Currency:  reservation.Amount.Currency,
		Status:    string(reservation.Status),
		CreatedAt: reservation.Timestamps.CreatedAt,
		UpdatedAt: reservation.Timestamps.UpdatedAt,
	}
}

func (r *PostgresReservationRepository) toDomain(pgReservation *postgresReservation) (*domain.Reservation, error) {
	id, err := models.NewID(pgReservation.ID)
	if err != nil {
		return nil, errors.Wrap(err, "invalid reservation ID")
	}

	orderID, err := models.NewID(pgReservation.OrderID)
	if err != nil {
		return nil, errors.Wrap(err, "invalid order ID")
	}

	return &domain.Reservation{
		ID:      id,
		OrderID: orderID,
		Amount:  models.NewMoney(pgReservation.Amount, pgReservation.Currency),
		Status:  domain.ReservationStatus(pgReservation.Status),
		Timestamps: models.Timestamps{
			CreatedAt: pgReservation.CreatedAt,
			UpdatedAt: pgReservation.UpdatedAt,
		},
	}, nil
}
