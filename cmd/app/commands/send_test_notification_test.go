package commands

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	notificationDomain "github.com/allisson/fulfillment/internal/notification/domain"
)

// mockDispatcher is a mock implementation of the notification Dispatcher.
type mockDispatcher struct {
	mock.Mock
}

func (m *mockDispatcher) Send(
	ctx context.Context,
	message *notificationDomain.Message,
) notificationDomain.Outcome {
	args := m.Called(ctx, message)
	return args.Get(0).(notificationDomain.Outcome)
}

func TestSendTestNotification(t *testing.T) {
	ctx := context.Background()
	logger := discardLogger()

	t.Run("success", func(t *testing.T) {
		dispatcher := &mockDispatcher{}
		dispatcher.On("Send", ctx, mock.MatchedBy(func(message *notificationDomain.Message) bool {
			return message.To == "ops@example.com" && message.From == "noreply@example.com"
		})).Return(notificationDomain.Outcome{Status: notificationDomain.StatusSent})

		var out bytes.Buffer
		err := sendTestNotification(ctx, dispatcher, logger, &out, "noreply@example.com", "ops@example.com")

		require.NoError(t, err)
		require.Contains(t, out.String(), "Test notification sent to ops@example.com")
		dispatcher.AssertExpectations(t)
	})

	t.Run("send-failure", func(t *testing.T) {
		dispatcher := &mockDispatcher{}
		dispatcher.On("Send", ctx, mock.AnythingOfType("*domain.Message")).
			Return(notificationDomain.Outcome{
				Status: notificationDomain.StatusFailed,
				Error:  "provider rejected send",
			})

		err := sendTestNotification(ctx, dispatcher, logger, &bytes.Buffer{}, "noreply@example.com", "ops@example.com")

		require.Error(t, err)
		require.Contains(t, err.Error(), "provider rejected send")
	})

	t.Run("missing-recipient", func(t *testing.T) {
		dispatcher := &mockDispatcher{}
		err := sendTestNotification(ctx, dispatcher, logger, &bytes.Buffer{}, "noreply@example.com", "")

		require.Error(t, err)
		require.Contains(t, err.Error(), "recipient address is required")
	})
}
