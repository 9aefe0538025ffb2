package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/allisson/fulfillment/internal/database"
	apperrors "github.com/allisson/fulfillment/internal/errors"
	"github.com/allisson/fulfillment/internal/webhook/domain"
)

// PostgreSQLProcessedEventRepository handles processed event persistence for PostgreSQL.
// The unique key on event_id makes Admit an atomic check-and-set shared across instances.
type PostgreSQLProcessedEventRepository struct {
	db *sql.DB
}

// NewPostgreSQLProcessedEventRepository creates a new PostgreSQLProcessedEventRepository.
func NewPostgreSQLProcessedEventRepository(db *sql.DB) *PostgreSQLProcessedEventRepository {
	return &PostgreSQLProcessedEventRepository{
		db: db,
	}
}

// Admit inserts the event identity, returning true iff this call created it.
func (r *PostgreSQLProcessedEventRepository) Admit(
	ctx context.Context,
	record *domain.ProcessingRecord,
) (bool, error) {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO processed_events (event_id, topic, outcome, last_error, processed_at)
			  VALUES ($1, $2, $3, $4, NOW())
			  ON CONFLICT (event_id) DO NOTHING`

	result, err := querier.ExecContext(ctx, query, record.EventID, record.Topic,
		record.Outcome, record.LastError)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected == 1, nil
}

// UpdateOutcome replaces the outcome of an admitted identity.
func (r *PostgreSQLProcessedEventRepository) UpdateOutcome(
	ctx context.Context,
	eventID string,
	outcome domain.ProcessingOutcome,
	lastError *string,
) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE processed_events SET outcome = $1, last_error = $2 WHERE event_id = $3`

	result, err := querier.ExecContext(ctx, query, outcome, lastError, eventID)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// Get returns the processing record for an identity.
func (r *PostgreSQLProcessedEventRepository) Get(
	ctx context.Context,
	eventID string,
) (*domain.ProcessingRecord, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT event_id, topic, outcome, last_error, processed_at
			  FROM processed_events
			  WHERE event_id = $1`

	var record domain.ProcessingRecord
	err := querier.QueryRowContext(ctx, query, eventID).Scan(&record.EventID, &record.Topic,
		&record.Outcome, &record.LastError, &record.ProcessedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}

	return &record, nil
}

// DeleteOlderThan removes records processed before the cutoff.
func (r *PostgreSQLProcessedEventRepository) DeleteOlderThan(
	ctx context.Context,
	before time.Time,
) (int64, error) {
	querier := database.GetTx(ctx, r.db)

	query := `DELETE FROM processed_events WHERE processed_at < $1`

	result, err := querier.ExecContext(ctx, query, before)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

// CountOlderThan counts records processed before the cutoff.
func (r *PostgreSQLProcessedEventRepository) CountOlderThan(
	ctx context.Context,
	before time.Time,
) (int64, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT COUNT(*) FROM processed_events WHERE processed_at < $1`

	var count int64
	if err := querier.QueryRowContext(ctx, query, before).Scan(&count); err != nil {
		return 0, err
	}

	return count, nil
}
