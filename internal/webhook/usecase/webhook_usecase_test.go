package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/fulfillment/internal/errors"
	licenseDomain "github.com/allisson/fulfillment/internal/license/domain"
	notificationDomain "github.com/allisson/fulfillment/internal/notification/domain"
	outboxDomain "github.com/allisson/fulfillment/internal/outbox/domain"
	"github.com/allisson/fulfillment/internal/webhook/domain"
	"github.com/allisson/fulfillment/internal/webhook/service"
	"github.com/allisson/fulfillment/internal/webhook/usecase/mocks"
)

const testSecret = "hush-webhook-secret"

var orderBody = []byte(`{
	"id": 820982911946154508,
	"email": "jon@example.com",
	"line_items": [
		{"sku": "APP-PRO-1", "title": "App Pro License", "quantity": 1}
	]
}`)

var productBody = []byte(`{"id": 788032119674292922, "title": "Example T-Shirt"}`)

// passthroughTxManager runs the callback without a real transaction.
type passthroughTxManager struct{}

func (passthroughTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type useCaseMocks struct {
	processedRepo *mocks.MockProcessedEventRepository
	outboxRepo    *mocks.MockOutboxEventRepository
	licenses      *mocks.MockLicenseUseCase
	dispatcher    *mocks.MockDispatcher
}

func newTestUseCase(t *testing.T) (*WebhookUseCase, *useCaseMocks) {
	t.Helper()

	m := &useCaseMocks{
		processedRepo: &mocks.MockProcessedEventRepository{},
		outboxRepo:    &mocks.MockOutboxEventRepository{},
		licenses:      &mocks.MockLicenseUseCase{},
		dispatcher:    &mocks.MockDispatcher{},
	}

	uc := NewWebhookUseCase(
		Config{
			Secret:        []byte(testSecret),
			FromAddress:   "noreply@example.com",
			MerchantEmail: "merchant@example.com",
		},
		passthroughTxManager{},
		m.processedRepo,
		m.outboxRepo,
		m.licenses,
		m.dispatcher,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	return uc, m
}

func signedDelivery(topic string, body []byte) *domain.Delivery {
	return &domain.Delivery{
		Body:      body,
		Signature: service.Sign(body, []byte(testSecret)),
		Topic:     topic,
		WebhookID: "b54557e4-bdd9-4b37-8a5f-bf7d70bcc480",
	}
}

func orderLicenses() []*licenseDomain.LicenseRecord {
	return []*licenseDomain.LicenseRecord{
		{
			ID:      uuid.Must(uuid.NewV7()),
			OrderID: 820982911946154508,
			SKU:     "APP-PRO-1",
			Key:     "AAAA1111BBBB2222CCCC3333DDDD4444",
		},
	}
}

func TestHandleDelivery_OrderCreated(t *testing.T) {
	uc, m := newTestUseCase(t)
	delivery := signedDelivery(service.TopicOrderCreated, orderBody)

	m.processedRepo.On("Admit", mock.Anything, mock.MatchedBy(func(record *domain.ProcessingRecord) bool {
		return record.EventID == delivery.Identity() &&
			record.Topic == service.TopicOrderCreated &&
			record.Outcome == domain.OutcomeAccepted
	})).Return(true, nil).Once()

	m.licenses.On("IssueForOrder", mock.Anything, mock.MatchedBy(func(order *domain.CommerceOrder) bool {
		return order.ID == 820982911946154508 && order.Email == "jon@example.com"
	})).Return(orderLicenses(), nil).Once()

	var sentMessage *notificationDomain.Message
	m.dispatcher.On("Send", mock.Anything, mock.AnythingOfType("*domain.Message")).
		Run(func(args mock.Arguments) {
			sentMessage = args.Get(1).(*notificationDomain.Message)
		}).
		Return(notificationDomain.Outcome{Status: notificationDomain.StatusSent}).
		Once()

	result, err := uc.HandleDelivery(context.Background(), delivery)

	require.NoError(t, err)
	assert.Equal(t, DispositionProcessed, result.Disposition)
	assert.Equal(t, domain.EventKindOrderCreated, result.Kind)
	assert.Equal(t, delivery.Identity(), result.EventID)

	require.NotNil(t, sentMessage)
	assert.Equal(t, "noreply@example.com", sentMessage.From)
	assert.Equal(t, "jon@example.com", sentMessage.To)
	assert.Contains(t, sentMessage.HTMLBody, "AAAA1111BBBB2222CCCC3333DDDD4444")

	m.processedRepo.AssertExpectations(t)
	m.licenses.AssertExpectations(t)
	m.dispatcher.AssertExpectations(t)
}

func TestHandleDelivery_ProductUpdated(t *testing.T) {
	uc, m := newTestUseCase(t)
	delivery := signedDelivery(service.TopicProductUpdated, productBody)

	m.processedRepo.On("Admit", mock.Anything, mock.AnythingOfType("*domain.ProcessingRecord")).
		Return(true, nil).
		Once()

	var sentMessage *notificationDomain.Message
	m.dispatcher.On("Send", mock.Anything, mock.AnythingOfType("*domain.Message")).
		Run(func(args mock.Arguments) {
			sentMessage = args.Get(1).(*notificationDomain.Message)
		}).
		Return(notificationDomain.Outcome{Status: notificationDomain.StatusSent}).
		Once()

	result, err := uc.HandleDelivery(context.Background(), delivery)

	require.NoError(t, err)
	assert.Equal(t, DispositionProcessed, result.Disposition)
	assert.Equal(t, domain.EventKindProductUpdated, result.Kind)

	// Product notifications go to the merchant, not a buyer.
	require.NotNil(t, sentMessage)
	assert.Equal(t, "merchant@example.com", sentMessage.To)
	assert.Contains(t, sentMessage.Subject, "Example T-Shirt")

	m.licenses.AssertNotCalled(t, "IssueForOrder", mock.Anything, mock.Anything)
	m.processedRepo.AssertExpectations(t)
	m.dispatcher.AssertExpectations(t)
}

func TestHandleDelivery_InvalidSignature(t *testing.T) {
	uc, m := newTestUseCase(t)

	delivery := signedDelivery(service.TopicOrderCreated, orderBody)
	delivery.Signature = service.Sign(orderBody, []byte("wrong-secret"))

	result, err := uc.HandleDelivery(context.Background(), delivery)

	require.Error(t, err)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, apperrors.ErrInvalidSignature)

	// Rejection happens before any state is touched.
	m.processedRepo.AssertNotCalled(t, "Admit", mock.Anything, mock.Anything)
	m.licenses.AssertNotCalled(t, "IssueForOrder", mock.Anything, mock.Anything)
	m.dispatcher.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestHandleDelivery_UnhandledTopic(t *testing.T) {
	uc, m := newTestUseCase(t)
	delivery := signedDelivery("checkouts/create", []byte(`{"id": 1}`))

	result, err := uc.HandleDelivery(context.Background(), delivery)

	require.NoError(t, err)
	assert.Equal(t, DispositionUnhandled, result.Disposition)
	assert.Equal(t, domain.EventKindUnhandled, result.Kind)

	// Unhandled topics are acknowledged without consuming an identity.
	m.processedRepo.AssertNotCalled(t, "Admit", mock.Anything, mock.Anything)
	m.dispatcher.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestHandleDelivery_MalformedPayload(t *testing.T) {
	tests := []struct {
		name string
		body []byte
	}{
		{"not json", []byte(`{"id": broken`)},
		{"missing email", []byte(`{"id": 1, "line_items": [{"sku": "A", "title": "A", "quantity": 1}]}`)},
		{"no line items", []byte(`{"id": 1, "email": "jon@example.com", "line_items": []}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, m := newTestUseCase(t)
			delivery := signedDelivery(service.TopicOrderCreated, tt.body)

			result, err := uc.HandleDelivery(context.Background(), delivery)

			require.Error(t, err)
			assert.Nil(t, result)
			assert.ErrorIs(t, err, apperrors.ErrMalformedPayload)

			// A permanently broken payload never burns its event identity.
			m.processedRepo.AssertNotCalled(t, "Admit", mock.Anything, mock.Anything)
		})
	}
}

func TestHandleDelivery_Duplicate(t *testing.T) {
	uc, m := newTestUseCase(t)
	delivery := signedDelivery(service.TopicOrderCreated, orderBody)

	m.processedRepo.On("Admit", mock.Anything, mock.AnythingOfType("*domain.ProcessingRecord")).
		Return(false, nil).
		Once()
	m.processedRepo.On("Get", mock.Anything, delivery.Identity()).
		Return(&domain.ProcessingRecord{
			EventID: delivery.Identity(),
			Topic:   service.TopicOrderCreated,
			Outcome: domain.OutcomeAccepted,
		}, nil).
		Once()

	result, err := uc.HandleDelivery(context.Background(), delivery)

	require.NoError(t, err)
	assert.Equal(t, DispositionDuplicate, result.Disposition)

	// No side effect may run twice.
	m.licenses.AssertNotCalled(t, "IssueForOrder", mock.Anything, mock.Anything)
	m.dispatcher.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	m.processedRepo.AssertExpectations(t)
}

func TestHandleDelivery_RedeliveryOfFailedAttemptReprocesses(t *testing.T) {
	uc, m := newTestUseCase(t)
	delivery := signedDelivery(service.TopicOrderCreated, orderBody)

	lastError := "license issuance failed"
	m.processedRepo.On("Admit", mock.Anything, mock.AnythingOfType("*domain.ProcessingRecord")).
		Return(false, nil).
		Once()
	m.processedRepo.On("Get", mock.Anything, delivery.Identity()).
		Return(&domain.ProcessingRecord{
			EventID:   delivery.Identity(),
			Topic:     service.TopicOrderCreated,
			Outcome:   domain.OutcomeFailed,
			LastError: &lastError,
		}, nil).
		Once()
	m.licenses.On("IssueForOrder", mock.Anything, mock.AnythingOfType("*domain.CommerceOrder")).
		Return(orderLicenses(), nil).
		Once()
	m.dispatcher.On("Send", mock.Anything, mock.AnythingOfType("*domain.Message")).
		Return(notificationDomain.Outcome{Status: notificationDomain.StatusSent}).
		Once()
	m.processedRepo.On("UpdateOutcome", mock.Anything, delivery.Identity(), domain.OutcomeAccepted, (*string)(nil)).
		Return(nil).
		Once()

	result, err := uc.HandleDelivery(context.Background(), delivery)

	require.NoError(t, err)
	assert.Equal(t, DispositionProcessed, result.Disposition)

	// The settled record keeps a further redelivery from sending again.
	m.processedRepo.AssertExpectations(t)
	m.licenses.AssertExpectations(t)
	m.dispatcher.AssertExpectations(t)
}

func TestHandleDelivery_RedeliveryOfDeferredAttemptIsDuplicate(t *testing.T) {
	uc, m := newTestUseCase(t)
	delivery := signedDelivery(service.TopicOrderCreated, orderBody)

	lastError := "provider unavailable"
	m.processedRepo.On("Admit", mock.Anything, mock.AnythingOfType("*domain.ProcessingRecord")).
		Return(false, nil).
		Once()
	m.processedRepo.On("Get", mock.Anything, delivery.Identity()).
		Return(&domain.ProcessingRecord{
			EventID:   delivery.Identity(),
			Topic:     service.TopicOrderCreated,
			Outcome:   domain.OutcomeDeferred,
			LastError: &lastError,
		}, nil).
		Once()

	result, err := uc.HandleDelivery(context.Background(), delivery)

	require.NoError(t, err)
	assert.Equal(t, DispositionDuplicate, result.Disposition)

	// The outbox worker owns the deferred message. The buyer gets the order
	// email at most once, so the redelivery must not send or enqueue again.
	m.licenses.AssertNotCalled(t, "IssueForOrder", mock.Anything, mock.Anything)
	m.dispatcher.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	m.outboxRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	m.processedRepo.AssertExpectations(t)
}

func TestHandleDelivery_AdmissionFailure(t *testing.T) {
	uc, m := newTestUseCase(t)
	delivery := signedDelivery(service.TopicOrderCreated, orderBody)

	m.processedRepo.On("Admit", mock.Anything, mock.AnythingOfType("*domain.ProcessingRecord")).
		Return(false, errors.New("connection refused")).
		Once()

	result, err := uc.HandleDelivery(context.Background(), delivery)

	require.Error(t, err)
	assert.Nil(t, result)

	// Nothing was admitted, so redelivery is safe and desired.
	m.licenses.AssertNotCalled(t, "IssueForOrder", mock.Anything, mock.Anything)
	m.dispatcher.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestHandleDelivery_LicenseIssuanceFailure(t *testing.T) {
	uc, m := newTestUseCase(t)
	delivery := signedDelivery(service.TopicOrderCreated, orderBody)

	m.processedRepo.On("Admit", mock.Anything, mock.AnythingOfType("*domain.ProcessingRecord")).
		Return(true, nil).
		Once()
	m.licenses.On("IssueForOrder", mock.Anything, mock.AnythingOfType("*domain.CommerceOrder")).
		Return(nil, errors.New("connection refused")).
		Once()
	m.processedRepo.On("UpdateOutcome", mock.Anything, delivery.Identity(), domain.OutcomeFailed, mock.AnythingOfType("*string")).
		Return(nil).
		Once()

	result, err := uc.HandleDelivery(context.Background(), delivery)

	require.Error(t, err)
	assert.Nil(t, result)

	// The failed outcome reopens admission so the sender's redelivery can retry.
	m.dispatcher.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	m.processedRepo.AssertExpectations(t)
}

func TestHandleDelivery_NotificationFailureIsDeferred(t *testing.T) {
	uc, m := newTestUseCase(t)
	delivery := signedDelivery(service.TopicOrderCreated, orderBody)

	m.processedRepo.On("Admit", mock.Anything, mock.AnythingOfType("*domain.ProcessingRecord")).
		Return(true, nil).
		Once()
	m.licenses.On("IssueForOrder", mock.Anything, mock.AnythingOfType("*domain.CommerceOrder")).
		Return(orderLicenses(), nil).
		Once()
	m.dispatcher.On("Send", mock.Anything, mock.AnythingOfType("*domain.Message")).
		Return(notificationDomain.Outcome{
			Recipient: "jon@example.com",
			Status:    notificationDomain.StatusFailed,
			Error:     "provider unavailable",
		}).
		Once()

	var enqueued *outboxDomain.OutboxEvent
	m.outboxRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.OutboxEvent")).
		Run(func(args mock.Arguments) {
			enqueued = args.Get(1).(*outboxDomain.OutboxEvent)
		}).
		Return(nil).
		Once()
	m.processedRepo.On("UpdateOutcome", mock.Anything, delivery.Identity(), domain.OutcomeDeferred, mock.AnythingOfType("*string")).
		Return(nil).
		Once()

	result, err := uc.HandleDelivery(context.Background(), delivery)

	// Licenses are committed, so the sender must not redeliver.
	require.NoError(t, err)
	assert.Equal(t, DispositionDeferred, result.Disposition)

	require.NotNil(t, enqueued)
	assert.Equal(t, outboxDomain.EventTypeOrderLicenses, enqueued.EventType)
	assert.Equal(t, outboxDomain.OutboxEventStatusPending, enqueued.Status)

	payload, err := outboxDomain.ParseNotificationPayload(enqueued)
	require.NoError(t, err)
	assert.Equal(t, delivery.Identity(), payload.WebhookEventID)
	assert.Equal(t, "jon@example.com", payload.To)
	assert.Contains(t, payload.HTMLBody, "AAAA1111BBBB2222CCCC3333DDDD4444")

	m.processedRepo.AssertExpectations(t)
	m.outboxRepo.AssertExpectations(t)
}

func TestHandleDelivery_FallbackIdentityWithoutWebhookID(t *testing.T) {
	uc, m := newTestUseCase(t)

	delivery := signedDelivery(service.TopicOrderCreated, orderBody)
	delivery.WebhookID = ""

	m.processedRepo.On("Admit", mock.Anything, mock.MatchedBy(func(record *domain.ProcessingRecord) bool {
		// Without a webhook id the identity is derived from topic and body.
		return record.EventID == delivery.Identity() && record.EventID != ""
	})).Return(true, nil).Once()
	m.licenses.On("IssueForOrder", mock.Anything, mock.AnythingOfType("*domain.CommerceOrder")).
		Return(orderLicenses(), nil).
		Once()
	m.dispatcher.On("Send", mock.Anything, mock.AnythingOfType("*domain.Message")).
		Return(notificationDomain.Outcome{Status: notificationDomain.StatusSent}).
		Once()

	result, err := uc.HandleDelivery(context.Background(), delivery)

	require.NoError(t, err)
	assert.Equal(t, DispositionProcessed, result.Disposition)
	m.processedRepo.AssertExpectations(t)
}

func TestCleanProcessedEvents(t *testing.T) {
	before := time.Now().Add(-72 * time.Hour)

	t.Run("dry run counts without deleting", func(t *testing.T) {
		uc, m := newTestUseCase(t)

		m.processedRepo.On("CountOlderThan", mock.Anything, before).
			Return(int64(7), nil).
			Once()

		affected, err := uc.CleanProcessedEvents(context.Background(), before, true)

		require.NoError(t, err)
		assert.Equal(t, int64(7), affected)
		m.processedRepo.AssertNotCalled(t, "DeleteOlderThan", mock.Anything, mock.Anything)
	})

	t.Run("deletes old records", func(t *testing.T) {
		uc, m := newTestUseCase(t)

		m.processedRepo.On("DeleteOlderThan", mock.Anything, before).
			Return(int64(7), nil).
			Once()

		affected, err := uc.CleanProcessedEvents(context.Background(), before, false)

		require.NoError(t, err)
		assert.Equal(t, int64(7), affected)
		m.processedRepo.AssertExpectations(t)
	})
}
