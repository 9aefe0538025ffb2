// Package usecase implements the notification dispatcher.
package usecase

import (
	"context"

	"github.com/allisson/fulfillment/internal/notification/domain"
)

// Dispatcher sends one outbound message per call and reports the outcome.
// It never retries internally and never panics past its boundary; retry is
// the caller's policy (the orchestrator records failures for the outbox
// worker to pick up).
type Dispatcher interface {
	Send(ctx context.Context, message *domain.Message) domain.Outcome
}
