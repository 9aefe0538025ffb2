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

// MySQLProcessedEventRepository handles processed event persistence for MySQL.
type MySQLProcessedEventRepository struct {
	db *sql.DB
}

// NewMySQLProcessedEventRepository creates a new MySQLProcessedEventRepository.
func NewMySQLProcessedEventRepository(db *sql.DB) *MySQLProcessedEventRepository {
	return &MySQLProcessedEventRepository{
		db: db,
	}
}

// Admit inserts the event identity, returning true iff this call created it.
func (r *MySQLProcessedEventRepository) Admit(
	ctx context.Context,
	record *domain.ProcessingRecord,
) (bool, error) {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT IGNORE INTO processed_events (event_id, topic, outcome, last_error, processed_at)
			  VALUES (?, ?, ?, ?, NOW())`

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
func (r *MySQLProcessedEventRepository) UpdateOutcome(
	ctx context.Context,
	eventID string,
	outcome domain.ProcessingOutcome,
	lastError *string,
) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE processed_events SET outcome = ?, last_error = ? WHERE event_id = ?`

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
func (r *MySQLProcessedEventRepository) Get(
	ctx context.Context,
	eventID string,
) (*domain.ProcessingRecord, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT event_id, topic, outcome, last_error, processed_at
			  FROM processed_events
			  WHERE event_id = ?`

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
func (r *MySQLProcessedEventRepository) DeleteOlderThan(
	ctx context.Context,
	before time.Time,
) (int64, error) {
	querier := database.GetTx(ctx, r.db)

	query := `DELETE FROM processed_events WHERE processed_at < ?`

	result, err := querier.ExecContext(ctx, query, before)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

// CountOlderThan counts records processed before the cutoff.
func (r *MySQLProcessedEventRepository) CountOlderThan(
	ctx context.Context,
	before time.Time,
) (int64, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT COUNT(*) FROM processed_events WHERE processed_at < ?`

	var count int64
	if err := querier.QueryRowContext(ctx, query, before).Scan(&count); err != nil {
		return 0, err
	}

	return count, nil
}
