package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/fulfillment/internal/outbox/domain"
)

func pendingEvent(t *testing.T) *domain.OutboxEvent {
	t.Helper()

	event, err := domain.NewNotificationEvent(domain.EventTypeOrderLicenses, domain.NotificationPayload{
		WebhookEventID: "wh-1",
		From:           "noreply@example.com",
		To:             "jon@example.com",
		Subject:        "Your license keys for order #42",
		HTMLBody:       "<html>keys</html>",
	})
	require.NoError(t, err)
	return event
}

func TestPostgreSQLOutboxEventRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck

	event := pendingEvent(t)

	mock.ExpectExec("INSERT INTO outbox_events").
		WithArgs(event.ID, event.EventType, event.Payload, event.Status,
			event.Retries, event.LastError, event.ProcessedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewPostgreSQLOutboxEventRepository(db)
	err = repo.Create(context.Background(), event)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLOutboxEventRepository_GetPendingEvents(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck

	event := pendingEvent(t)
	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{
		"id", "event_type", "payload", "status", "retries",
		"last_error", "processed_at", "created_at", "updated_at",
	}).AddRow(event.ID, event.EventType, event.Payload, event.Status,
		0, nil, nil, now, now)

	mock.ExpectQuery("SELECT id, event_type, payload, status").
		WithArgs(domain.OutboxEventStatusPending, 10).
		WillReturnRows(rows)

	repo := NewPostgreSQLOutboxEventRepository(db)
	events, err := repo.GetPendingEvents(context.Background(), 10)

	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, event.ID, events[0].ID)
	assert.Equal(t, domain.EventTypeOrderLicenses, events[0].EventType)
	assert.Equal(t, domain.OutboxEventStatusPending, events[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLOutboxEventRepository_GetPendingEvents_Empty(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck

	rows := sqlmock.NewRows([]string{
		"id", "event_type", "payload", "status", "retries",
		"last_error", "processed_at", "created_at", "updated_at",
	})

	mock.ExpectQuery("SELECT id, event_type, payload, status").
		WithArgs(domain.OutboxEventStatusPending, 10).
		WillReturnRows(rows)

	repo := NewPostgreSQLOutboxEventRepository(db)
	events, err := repo.GetPendingEvents(context.Background(), 10)

	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestPostgreSQLOutboxEventRepository_Update(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck

	event := pendingEvent(t)
	now := time.Now()
	event.Status = domain.OutboxEventStatusProcessed
	event.ProcessedAt = &now

	mock.ExpectExec("UPDATE outbox_events").
		WithArgs(event.EventType, event.Payload, event.Status, event.Retries,
			event.LastError, event.ProcessedAt, event.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewPostgreSQLOutboxEventRepository(db)
	err = repo.Update(context.Background(), event)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLOutboxEventRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck

	event := pendingEvent(t)

	mock.ExpectExec("INSERT INTO outbox_events").
		WithArgs(event.ID.String(), event.EventType, event.Payload, event.Status,
			event.Retries, event.LastError, event.ProcessedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewMySQLOutboxEventRepository(db)
	err = repo.Create(context.Background(), event)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLOutboxEventRepository_GetPendingEvents(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck

	event := pendingEvent(t)
	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{
		"id", "event_type", "payload", "status", "retries",
		"last_error", "processed_at", "created_at", "updated_at",
	}).AddRow(event.ID.String(), event.EventType, event.Payload, event.Status,
		0, nil, nil, now, now)

	mock.ExpectQuery("SELECT id, event_type, payload, status").
		WithArgs(domain.OutboxEventStatusPending, 10).
		WillReturnRows(rows)

	repo := NewMySQLOutboxEventRepository(db)
	events, err := repo.GetPendingEvents(context.Background(), 10)

	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, event.ID, events[0].ID)
}

func TestMySQLOutboxEventRepository_Update(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck

	event := pendingEvent(t)
	event.Retries = 1
	lastError := "provider unavailable"
	event.LastError = &lastError

	mock.ExpectExec("UPDATE outbox_events").
		WithArgs(event.EventType, event.Payload, event.Status, event.Retries,
			event.LastError, event.ProcessedAt, event.ID.String()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewMySQLOutboxEventRepository(db)
	err = repo.Update(context.Background(), event)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
