// Package usecase implements the outbox worker that retries deferred
// notifications without involving the webhook sender.
package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/allisson/fulfillment/internal/database"
	apperrors "github.com/allisson/fulfillment/internal/errors"
	notificationDomain "github.com/allisson/fulfillment/internal/notification/domain"
	notificationUsecase "github.com/allisson/fulfillment/internal/notification/usecase"
	"github.com/allisson/fulfillment/internal/outbox/domain"
	webhookDomain "github.com/allisson/fulfillment/internal/webhook/domain"
)

// Config holds outbox worker configuration
type Config struct {
	Interval   time.Duration
	BatchSize  int
	MaxRetries int
}

// OutboxEventRepository defines outbox event repository operations
type OutboxEventRepository interface {
	Create(ctx context.Context, event *domain.OutboxEvent) error
	GetPendingEvents(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	Update(ctx context.Context, event *domain.OutboxEvent) error
}

// EventProcessor defines the interface for processing different event types
type EventProcessor interface {
	Process(ctx context.Context, event *domain.OutboxEvent) error
}

// UseCase defines the interface for outbox use cases
type UseCase interface {
	Start(ctx context.Context) error
	ProcessEvents(ctx context.Context) error
}

// OutboxUseCase drains pending outbox events on an interval. Events that keep
// failing past MaxRetries land in the failed status as a dead letter.
type OutboxUseCase struct {
	config         Config
	txManager      database.TxManager
	outboxRepo     OutboxEventRepository
	eventProcessor EventProcessor
	logger         *slog.Logger
}

// NewOutboxUseCase creates a new OutboxUseCase
func NewOutboxUseCase(
	config Config,
	txManager database.TxManager,
	outboxRepo OutboxEventRepository,
	eventProcessor EventProcessor,
	logger *slog.Logger,
) *OutboxUseCase {
	return &OutboxUseCase{
		config:         config,
		txManager:      txManager,
		outboxRepo:     outboxRepo,
		eventProcessor: eventProcessor,
		logger:         logger,
	}
}

// Start starts the outbox event processing loop
func (uc *OutboxUseCase) Start(ctx context.Context) error {
	if uc.logger != nil {
		uc.logger.Info("starting outbox event processor",
			slog.Duration("interval", uc.config.Interval),
			slog.Int("batch_size", uc.config.BatchSize),
		)
	}

	ticker := time.NewTicker(uc.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if uc.logger != nil {
				uc.logger.Info("stopping outbox event processor")
			}
			return ctx.Err()
		case <-ticker.C:
			if err := uc.ProcessEvents(ctx); err != nil {
				if uc.logger != nil {
					uc.logger.Error("failed to process events", slog.Any("error", err))
				}
			}
		}
	}
}

// ProcessEvents retrieves and processes pending events from the outbox in a transaction
func (uc *OutboxUseCase) ProcessEvents(ctx context.Context) error {
	return uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		events, err := uc.outboxRepo.GetPendingEvents(ctx, uc.config.BatchSize)
		if err != nil {
			return err
		}

		if len(events) == 0 {
			return nil
		}

		if uc.logger != nil {
			uc.logger.Info("processing events", slog.Int("count", len(events)))
		}

		for _, event := range events {
			if err := uc.processEvent(ctx, event); err != nil {
				if uc.logger != nil {
					uc.logger.Error("failed to process event",
						slog.String("event_id", event.ID.String()),
						slog.String("event_type", event.EventType),
						slog.Any("error", err),
					)
				}

				event.Retries++
				errorMsg := err.Error()
				event.LastError = &errorMsg

				if event.Retries >= uc.config.MaxRetries {
					event.Status = domain.OutboxEventStatusFailed
				}

				if err := uc.outboxRepo.Update(ctx, event); err != nil {
					return err
				}
				continue
			}

			now := time.Now()
			event.Status = domain.OutboxEventStatusProcessed
			event.ProcessedAt = &now

			if err := uc.outboxRepo.Update(ctx, event); err != nil {
				return err
			}
		}

		return nil
	})
}

// processEvent handles a single outbox event using the configured event processor
func (uc *OutboxUseCase) processEvent(ctx context.Context, event *domain.OutboxEvent) error {
	if uc.logger != nil {
		uc.logger.Info("processing event",
			slog.String("event_id", event.ID.String()),
			slog.String("event_type", event.EventType),
		)
	}

	return uc.eventProcessor.Process(ctx, event)
}

// ProcessingRecordSettler marks a webhook processing record accepted once its
// deferred notification finally goes out.
type ProcessingRecordSettler interface {
	UpdateOutcome(
		ctx context.Context,
		eventID string,
		outcome webhookDomain.ProcessingOutcome,
		lastError *string,
	) error
}

// NotificationProcessor re-sends deferred notifications through the dispatcher.
type NotificationProcessor struct {
	dispatcher notificationUsecase.Dispatcher
	settler    ProcessingRecordSettler
	logger     *slog.Logger
}

// NewNotificationProcessor creates a new NotificationProcessor
func NewNotificationProcessor(
	dispatcher notificationUsecase.Dispatcher,
	settler ProcessingRecordSettler,
	logger *slog.Logger,
) *NotificationProcessor {
	return &NotificationProcessor{
		dispatcher: dispatcher,
		settler:    settler,
		logger:     logger,
	}
}

// Process re-sends one deferred notification. A failed send returns an error
// so the worker counts the retry; success settles the originating webhook
// processing record.
func (p *NotificationProcessor) Process(ctx context.Context, event *domain.OutboxEvent) error {
	switch event.EventType {
	case domain.EventTypeOrderLicenses, domain.EventTypeProductUpdate:
	default:
		if p.logger != nil {
			p.logger.Warn("unknown event type", slog.String("event_type", event.EventType))
		}
		return nil
	}

	payload, err := domain.ParseNotificationPayload(event)
	if err != nil {
		return err
	}

	outcome := p.dispatcher.Send(ctx, &notificationDomain.Message{
		From:     payload.From,
		To:       payload.To,
		Subject:  payload.Subject,
		HTMLBody: payload.HTMLBody,
	})
	if !outcome.Sent() {
		return apperrors.New(outcome.Error)
	}

	if payload.WebhookEventID != "" {
		err := p.settler.UpdateOutcome(ctx, payload.WebhookEventID, webhookDomain.OutcomeAccepted, nil)
		// A cleaned-up record is not a reason to resend the notification.
		if err != nil && !apperrors.Is(err, apperrors.ErrNotFound) {
			return err
		}
	}

	return nil
}
