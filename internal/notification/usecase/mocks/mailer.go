// Package mocks provides mock implementations for testing notification components.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/allisson/fulfillment/internal/notification/domain"
)

// MockMailer is a mock implementation of the Mailer capability for testing.
type MockMailer struct {
	mock.Mock
}

// Send mocks the Send method of Mailer.
func (m *MockMailer) Send(ctx context.Context, message *domain.Message) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}
