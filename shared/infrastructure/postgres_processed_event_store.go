package infrastructure

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/orderprocessing/order-system/shared/models"
	"github.com/orderprocessing/order-system/shared/saga"
)

var _ saga.ProcessedEventStore = (*PostgresProcessedEventStore)(nil)

// PostgresProcessedEventStore implements saga.ProcessedEventStore using
// PostgreSQL. Records are keyed (consumer_service, event_id); each
// service passes its own consumer name so the record sets stay disjoint
// even when services share a database in development.
type PostgresProcessedEventStore struct {
	db *sqlx.DB
}

// NewPostgresProcessedEventStore creates a new PostgresProcessedEventStore
func NewPostgresProcessedEventStore(db *sqlx.DB) *PostgresProcessedEventStore {
	return &PostgresProcessedEventStore{db: db}
}

// MarkProcessedIfNew inserts the processed record, reporting false when a
// record for (consumer, eventID) already existed. ON CONFLICT DO NOTHING
// makes the insert race-safe across concurrently delivered duplicates.
func (s *PostgresProcessedEventStore) MarkProcessedIfNew(ctx context.Context, consumer string, eventID models.ID, eventType string, processedAt time.Time) (bool, error) {
	query := `
		INSERT INTO processed_events (consumer_service, event_id, event_type, processed_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (consumer_service, event_id) DO NOTHING`

	res, err := s.db.ExecContext(ctx, query, consumer, eventID.String(), eventType, processedAt)
	if err != nil {
		return false, errors.Wrap(err, "failed to insert processed event")
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "failed to read rows affected")
	}

	return affected > 0, nil
}

// Exists reports whether the consumer already handled the event id
func (s *PostgresProcessedEventStore) Exists(ctx context.Context, consumer string, eventID models.ID) (bool, error) {
	query := `
		SELECT 1 FROM processed_events
		WHERE consumer_service = $1 AND event_id = $2`

	var one int
	err := s.db.GetContext(ctx, &one, query, consumer, eventID.String())
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, errors.Wrap(err, "failed to query processed events")
	}

	return true, nil
}

// DeleteBefore prunes records older than the cutoff
func (s *PostgresProcessedEventStore) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM processed_events WHERE processed_at < $1`

	res, err := s.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, errors.Wrap(err, "failed to delete processed events")
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "failed to read rows affected")
	}

	return deleted, nil
}
