// Package usecase implements the webhook delivery pipeline and orchestrates
// verification, admission and side effects.
package usecase

import (
	"context"
	"time"

	outboxDomain "github.com/allisson/fulfillment/internal/outbox/domain"
	"github.com/allisson/fulfillment/internal/webhook/domain"
)

// Disposition describes how an acknowledged delivery was settled.
type Disposition string

const (
	// DispositionProcessed means side effects ran and the notification went out.
	DispositionProcessed Disposition = "processed"
	// DispositionDeferred means durable side effects committed but the
	// notification send failed and was handed to the outbox worker.
	DispositionDeferred Disposition = "deferred"
	// DispositionDuplicate means the event identity was already settled.
	DispositionDuplicate Disposition = "duplicate"
	// DispositionUnhandled means the topic is not one this service reacts to.
	DispositionUnhandled Disposition = "unhandled"
)

// Result reports how a delivery was settled. Only acknowledged deliveries
// produce a Result; rejections surface as errors.
type Result struct {
	EventID     string
	Kind        domain.EventKind
	Disposition Disposition
}

// UseCase defines the interface for webhook business logic operations
type UseCase interface {
	// HandleDelivery drives one delivery through the pipeline. A nil error
	// means the delivery must be acknowledged to the sender; an error carries
	// ErrInvalidSignature, ErrMalformedPayload or an infrastructure failure.
	HandleDelivery(ctx context.Context, delivery *domain.Delivery) (*Result, error)
	// CleanProcessedEvents removes idempotency records older than the cutoff,
	// or only counts them when dryRun is set.
	CleanProcessedEvents(ctx context.Context, before time.Time, dryRun bool) (int64, error)
}

// ProcessedEventRepository interface defines idempotency guard operations
type ProcessedEventRepository interface {
	Admit(ctx context.Context, record *domain.ProcessingRecord) (bool, error)
	UpdateOutcome(ctx context.Context, eventID string, outcome domain.ProcessingOutcome, lastError *string) error
	Get(ctx context.Context, eventID string) (*domain.ProcessingRecord, error)
	DeleteOlderThan(ctx context.Context, before time.Time) (int64, error)
	CountOlderThan(ctx context.Context, before time.Time) (int64, error)
}

// OutboxEventRepository interface defines outbox event repository operations
type OutboxEventRepository interface {
	Create(ctx context.Context, event *outboxDomain.OutboxEvent) error
}
