// Package mocks provides mock implementations for testing HTTP handlers.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/allisson/fulfillment/internal/webhook/domain"
	"github.com/allisson/fulfillment/internal/webhook/usecase"
)

// MockWebhookUseCase is a mock implementation of the webhook UseCase for testing.
type MockWebhookUseCase struct {
	mock.Mock
}

// HandleDelivery mocks the HandleDelivery method of UseCase.
func (m *MockWebhookUseCase) HandleDelivery(
	ctx context.Context,
	delivery *domain.Delivery,
) (*usecase.Result, error) {
	args := m.Called(ctx, delivery)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.Result), args.Error(1)
}

// CleanProcessedEvents mocks the CleanProcessedEvents method of UseCase.
func (m *MockWebhookUseCase) CleanProcessedEvents(
	ctx context.Context,
	before time.Time,
	dryRun bool,
) (int64, error) {
	args := m.Called(ctx, before, dryRun)
	return args.Get(0).(int64), args.Error(1)
}
