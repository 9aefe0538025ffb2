package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	outboxDomain "github.com/allisson/fulfillment/internal/outbox/domain"
)

// MockOutboxEventRepository is a mock implementation of OutboxEventRepository for testing.
type MockOutboxEventRepository struct {
	mock.Mock
}

// Create mocks the Create method of OutboxEventRepository.
func (m *MockOutboxEventRepository) Create(ctx context.Context, event *outboxDomain.OutboxEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
