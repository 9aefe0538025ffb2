package usecase

import (
	"context"
	"time"

	"github.com/allisson/fulfillment/internal/metrics"
	"github.com/allisson/fulfillment/internal/webhook/domain"
)

// webhookUseCaseWithMetrics decorates UseCase with metrics instrumentation.
type webhookUseCaseWithMetrics struct {
	next    UseCase
	metrics metrics.BusinessMetrics
}

// NewWebhookUseCaseWithMetrics wraps a UseCase with metrics recording.
func NewWebhookUseCaseWithMetrics(useCase UseCase, m metrics.BusinessMetrics) UseCase {
	return &webhookUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// HandleDelivery records metrics for delivery handling. The status label is
// the disposition for acknowledged deliveries and "error" for rejections, so
// duplicates and deferred sends are visible as their own series.
func (w *webhookUseCaseWithMetrics) HandleDelivery(
	ctx context.Context,
	delivery *domain.Delivery,
) (*Result, error) {
	start := time.Now()
	result, err := w.next.HandleDelivery(ctx, delivery)

	status := "error"
	if err == nil {
		status = string(result.Disposition)
	}

	w.metrics.RecordOperation(ctx, "webhook", "delivery_handle", status)
	w.metrics.RecordDuration(ctx, "webhook", "delivery_handle", time.Since(start), status)

	return result, err
}

// CleanProcessedEvents records metrics for idempotency record cleanup.
func (w *webhookUseCaseWithMetrics) CleanProcessedEvents(
	ctx context.Context,
	before time.Time,
	dryRun bool,
) (int64, error) {
	start := time.Now()
	affected, err := w.next.CleanProcessedEvents(ctx, before, dryRun)

	status := "success"
	if err != nil {
		status = "error"
	}

	w.metrics.RecordOperation(ctx, "webhook", "processed_events_clean", status)
	w.metrics.RecordDuration(ctx, "webhook", "processed_events_clean", time.Since(start), status)

	return affected, err
}
