package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	notificationDomain "github.com/allisson/fulfillment/internal/notification/domain"
)

// MockDispatcher is a mock implementation of the notification Dispatcher for testing.
type MockDispatcher struct {
	mock.Mock
}

// Send mocks the Send method of Dispatcher.
func (m *MockDispatcher) Send(
	ctx context.Context,
	message *notificationDomain.Message,
) notificationDomain.Outcome {
	args := m.Called(ctx, message)
	return args.Get(0).(notificationDomain.Outcome)
}
