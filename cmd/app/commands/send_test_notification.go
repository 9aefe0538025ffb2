package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/allisson/fulfillment/internal/app"
	"github.com/allisson/fulfillment/internal/config"
	notificationDomain "github.com/allisson/fulfillment/internal/notification/domain"
	notificationUsecase "github.com/allisson/fulfillment/internal/notification/usecase"
)

// RunSendTestNotification sends a test email through the configured provider.
// Useful to verify the provider credential and sender address before pointing
// real webhook traffic at the service.
func RunSendTestNotification(ctx context.Context, to string) error {
	// Load configuration
	cfg := config.Load()

	// Create DI container
	container := app.NewContainer(cfg)

	// Get logger from container
	logger := container.Logger()

	// Ensure cleanup on exit
	defer closeContainer(container, logger)

	dispatcher, err := container.Dispatcher()
	if err != nil {
		return fmt.Errorf("failed to initialize dispatcher: %w", err)
	}

	return sendTestNotification(ctx, dispatcher, logger, os.Stdout, cfg.EmailFrom, to)
}

// sendTestNotification sends one test message through the given dispatcher.
func sendTestNotification(
	ctx context.Context,
	dispatcher notificationUsecase.Dispatcher,
	logger *slog.Logger,
	out io.Writer,
	from string,
	to string,
) error {
	if to == "" {
		return fmt.Errorf("recipient address is required")
	}

	logger.Info("sending test notification", slog.String("to", to))

	outcome := dispatcher.Send(ctx, &notificationDomain.Message{
		From:     from,
		To:       to,
		Subject:  "Test notification",
		HTMLBody: "<p>The email provider configuration works.</p>",
	})
	if !outcome.Sent() {
		return fmt.Errorf("test notification failed: %s", outcome.Error)
	}

	fmt.Fprintf(out, "Test notification sent to %s\n", to)
	return nil
}
