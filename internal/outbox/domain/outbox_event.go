// Package domain defines the outbox event entities and types.
package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/allisson/fulfillment/internal/errors"
)

// OutboxEventStatus represents the status of an outbox event
type OutboxEventStatus string

const (
	OutboxEventStatusPending   OutboxEventStatus = "pending"
	OutboxEventStatusProcessed OutboxEventStatus = "processed"
	OutboxEventStatusFailed    OutboxEventStatus = "failed"
)

// Event types emitted by the webhook pipeline. Both carry a
// NotificationPayload and are drained by the notification processor.
const (
	EventTypeOrderLicenses = "notification.order_licenses"
	EventTypeProductUpdate = "notification.product_update"
)

// OutboxEvent is one deferred unit of work. Notification sends that fail
// inside the webhook handler land here so the polling worker can retry them
// without asking the platform to redeliver the whole webhook.
type OutboxEvent struct {
	ID          uuid.UUID
	EventType   string
	Payload     string
	Status      OutboxEventStatus
	Retries     int
	LastError   *string
	ProcessedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NotificationPayload is the serialized form of a rendered message, plus the
// webhook event id whose processing record is settled once the send succeeds.
type NotificationPayload struct {
	WebhookEventID string `json:"webhook_event_id"`
	From           string `json:"from"`
	To             string `json:"to"`
	Subject        string `json:"subject"`
	HTMLBody       string `json:"html_body"`
}

// NewNotificationEvent builds a pending outbox event from a rendered message.
func NewNotificationEvent(eventType string, payload NotificationPayload) (*OutboxEvent, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal notification payload")
	}

	return &OutboxEvent{
		ID:        uuid.Must(uuid.NewV7()),
		EventType: eventType,
		Payload:   string(raw),
		Status:    OutboxEventStatusPending,
	}, nil
}

// ParseNotificationPayload decodes the payload of a notification event.
func ParseNotificationPayload(event *OutboxEvent) (*NotificationPayload, error) {
	var payload NotificationPayload
	if err := json.Unmarshal([]byte(event.Payload), &payload); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal notification payload")
	}
	return &payload, nil
}
