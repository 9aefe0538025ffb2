package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/allisson/fulfillment/internal/database"
	apperrors "github.com/allisson/fulfillment/internal/errors"
	licenseUsecase "github.com/allisson/fulfillment/internal/license/usecase"
	notificationDomain "github.com/allisson/fulfillment/internal/notification/domain"
	notificationService "github.com/allisson/fulfillment/internal/notification/service"
	notificationUsecase "github.com/allisson/fulfillment/internal/notification/usecase"
	outboxDomain "github.com/allisson/fulfillment/internal/outbox/domain"
	"github.com/allisson/fulfillment/internal/webhook/domain"
	"github.com/allisson/fulfillment/internal/webhook/service"
)

// Config holds webhook pipeline configuration
type Config struct {
	Secret        []byte
	FromAddress   string
	MerchantEmail string
}

// WebhookUseCase handles webhook-related business logic
type WebhookUseCase struct {
	config        Config
	txManager     database.TxManager
	processedRepo ProcessedEventRepository
	outboxRepo    OutboxEventRepository
	licenses      licenseUsecase.LicenseUseCase
	dispatcher    notificationUsecase.Dispatcher
	logger        *slog.Logger
}

// NewWebhookUseCase creates a new WebhookUseCase
func NewWebhookUseCase(
	config Config,
	txManager database.TxManager,
	processedRepo ProcessedEventRepository,
	outboxRepo OutboxEventRepository,
	licenses licenseUsecase.LicenseUseCase,
	dispatcher notificationUsecase.Dispatcher,
	logger *slog.Logger,
) *WebhookUseCase {
	return &WebhookUseCase{
		config:        config,
		txManager:     txManager,
		processedRepo: processedRepo,
		outboxRepo:    outboxRepo,
		licenses:      licenses,
		dispatcher:    dispatcher,
		logger:        logger,
	}
}

// HandleDelivery drives one delivery through verification, classification,
// admission and side effects. Admission happens strictly before any
// non-idempotent side effect, so a crash mid-handler leaves at most one
// partially failed admitted attempt, never a second side-effect run.
func (uc *WebhookUseCase) HandleDelivery(
	ctx context.Context,
	delivery *domain.Delivery,
) (*Result, error) {
	// Verification happens before topic filtering: an unsigned request learns
	// nothing about which topics this service handles.
	if !service.VerifySignature(delivery.Body, delivery.Signature, uc.config.Secret) {
		return nil, apperrors.ErrInvalidSignature
	}

	kind := service.Classify(delivery.Topic)
	eventID := delivery.Identity()
	result := &Result{EventID: eventID, Kind: kind}

	if kind == domain.EventKindUnhandled {
		result.Disposition = DispositionUnhandled
		uc.logger.Info("unhandled webhook topic acknowledged",
			slog.String("topic", delivery.Topic),
			slog.String("event_id", eventID),
		)
		return result, nil
	}

	// Parse before admission so a permanently malformed payload never burns
	// an event identity; redeliveries of it keep getting the same rejection.
	var order *domain.CommerceOrder
	var product *domain.Product
	var err error
	switch kind {
	case domain.EventKindOrderCreated:
		order, err = domain.ParseOrder(delivery.Body)
	case domain.EventKindProductUpdated:
		product, err = domain.ParseProduct(delivery.Body)
	}
	if err != nil {
		return nil, err
	}

	admitted, err := uc.processedRepo.Admit(ctx, &domain.ProcessingRecord{
		EventID: eventID,
		Topic:   delivery.Topic,
		Outcome: domain.OutcomeAccepted,
	})
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to admit webhook event")
	}
	reprocessing := false
	if !admitted {
		record, err := uc.processedRepo.Get(ctx, eventID)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to load processing record")
		}

		// Only an attempt that failed before dispatch is allowed back in. A
		// deferred record already has its message queued for the outbox
		// worker, so it short-circuits like settled work does; sending here
		// too would double the email.
		if record.Outcome != domain.OutcomeFailed {
			result.Disposition = DispositionDuplicate
			uc.logger.Info("duplicate webhook delivery ignored",
				slog.String("topic", delivery.Topic),
				slog.String("event_id", eventID),
			)
			return result, nil
		}

		reprocessing = true
		uc.logger.Info("reprocessing previously failed delivery",
			slog.String("topic", delivery.Topic),
			slog.String("event_id", eventID),
		)
	}

	switch kind {
	case domain.EventKindOrderCreated:
		return uc.processOrderCreated(ctx, result, order, reprocessing)
	default:
		return uc.processProductUpdated(ctx, result, product, reprocessing)
	}
}

// CleanProcessedEvents removes idempotency records older than the cutoff.
func (uc *WebhookUseCase) CleanProcessedEvents(
	ctx context.Context,
	before time.Time,
	dryRun bool,
) (int64, error) {
	if dryRun {
		return uc.processedRepo.CountOlderThan(ctx, before)
	}
	return uc.processedRepo.DeleteOlderThan(ctx, before)
}

// processOrderCreated issues licenses for the order and emails the buyer a
// single message carrying every key.
func (uc *WebhookUseCase) processOrderCreated(
	ctx context.Context,
	result *Result,
	order *domain.CommerceOrder,
	reprocessing bool,
) (*Result, error) {
	licenses, err := uc.licenses.IssueForOrder(ctx, order)
	if err != nil {
		uc.recordFailure(ctx, result.EventID, err)
		return nil, apperrors.Wrap(err, "failed to issue licenses")
	}

	subject, body, err := notificationService.RenderOrderLicenses(order, licenses)
	if err != nil {
		uc.recordFailure(ctx, result.EventID, err)
		return nil, apperrors.Wrap(err, "failed to render order notification")
	}

	message := &notificationDomain.Message{
		From:     uc.config.FromAddress,
		To:       order.Email,
		Subject:  subject,
		HTMLBody: body,
	}
	return uc.dispatch(ctx, result, outboxDomain.EventTypeOrderLicenses, message, reprocessing)
}

// processProductUpdated notifies the merchant about the product change.
func (uc *WebhookUseCase) processProductUpdated(
	ctx context.Context,
	result *Result,
	product *domain.Product,
	reprocessing bool,
) (*Result, error) {
	subject, body, err := notificationService.RenderProductUpdate(product)
	if err != nil {
		uc.recordFailure(ctx, result.EventID, err)
		return nil, apperrors.Wrap(err, "failed to render product notification")
	}

	message := &notificationDomain.Message{
		From:     uc.config.FromAddress,
		To:       uc.config.MerchantEmail,
		Subject:  subject,
		HTMLBody: body,
	}
	return uc.dispatch(ctx, result, outboxDomain.EventTypeProductUpdate, message, reprocessing)
}

// dispatch sends the message and settles the result. A failed send is not a
// reason to make the sender redeliver: durable side effects are committed, so
// the message goes to the outbox and the delivery is still acknowledged.
func (uc *WebhookUseCase) dispatch(
	ctx context.Context,
	result *Result,
	eventType string,
	message *notificationDomain.Message,
	reprocessing bool,
) (*Result, error) {
	outcome := uc.dispatcher.Send(ctx, message)
	if outcome.Sent() {
		if reprocessing {
			// The record still carries the earlier failure. Settle it so
			// the next redelivery short-circuits instead of sending the
			// message a second time.
			if err := uc.processedRepo.UpdateOutcome(ctx, result.EventID, domain.OutcomeAccepted, nil); err != nil {
				uc.logger.Error("failed to settle reprocessed delivery",
					slog.String("event_id", result.EventID),
					slog.Any("error", err),
				)
			}
		}
		result.Disposition = DispositionProcessed
		return result, nil
	}

	if err := uc.deferNotification(ctx, result.EventID, eventType, message, outcome.Error); err != nil {
		return nil, err
	}

	result.Disposition = DispositionDeferred
	return result, nil
}

// deferNotification marks the processing record deferred and enqueues the
// rendered message for the outbox worker, in one transaction. The deferred
// outcome keeps redeliveries from racing the worker for the send.
func (uc *WebhookUseCase) deferNotification(
	ctx context.Context,
	eventID string,
	eventType string,
	message *notificationDomain.Message,
	sendError string,
) error {
	event, err := outboxDomain.NewNotificationEvent(eventType, outboxDomain.NotificationPayload{
		WebhookEventID: eventID,
		From:           message.From,
		To:             message.To,
		Subject:        message.Subject,
		HTMLBody:       message.HTMLBody,
	})
	if err != nil {
		return err
	}

	err = uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := uc.outboxRepo.Create(ctx, event); err != nil {
			return err
		}
		return uc.processedRepo.UpdateOutcome(ctx, eventID, domain.OutcomeDeferred, &sendError)
	})
	if err != nil {
		return apperrors.Wrap(err, "failed to defer notification")
	}

	uc.logger.Warn("notification deferred to outbox",
		slog.String("event_id", eventID),
		slog.String("event_type", eventType),
		slog.String("recipient", message.To),
		slog.String("send_error", sendError),
	)
	return nil
}

// recordFailure marks the admitted record failed so a redelivery is allowed
// to reprocess instead of short-circuiting as a duplicate.
func (uc *WebhookUseCase) recordFailure(ctx context.Context, eventID string, cause error) {
	message := cause.Error()
	if err := uc.processedRepo.UpdateOutcome(ctx, eventID, domain.OutcomeFailed, &message); err != nil {
		uc.logger.Error("failed to record processing failure",
			slog.String("event_id", eventID),
			slog.Any("error", err),
		)
	}
}
