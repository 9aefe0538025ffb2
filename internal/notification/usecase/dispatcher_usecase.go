package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/allisson/fulfillment/internal/notification/domain"
	"github.com/allisson/fulfillment/internal/notification/service"
)

// dispatcher implements the Dispatcher interface on top of a Mailer.
type dispatcher struct {
	mailer      service.Mailer
	sendTimeout time.Duration
	logger      *slog.Logger
}

// NewDispatcher creates a dispatcher that bounds every provider call with
// sendTimeout. The timeout must stay below the platform's redelivery timeout
// so a slow provider cannot trigger duplicate webhook deliveries.
func NewDispatcher(mailer service.Mailer, sendTimeout time.Duration, logger *slog.Logger) Dispatcher {
	return &dispatcher{
		mailer:      mailer,
		sendTimeout: sendTimeout,
		logger:      logger,
	}
}

// Send performs exactly one provider call and returns its outcome.
func (d *dispatcher) Send(ctx context.Context, message *domain.Message) domain.Outcome {
	sendCtx, cancel := context.WithTimeout(ctx, d.sendTimeout)
	defer cancel()

	outcome := domain.Outcome{
		Recipient: message.To,
		Subject:   message.Subject,
		Status:    domain.StatusSent,
	}

	if err := d.mailer.Send(sendCtx, message); err != nil {
		outcome.Status = domain.StatusFailed
		outcome.Error = err.Error()

		d.logger.Error("notification send failed",
			slog.String("recipient", message.To),
			slog.String("subject", message.Subject),
			slog.Any("error", err),
		)
		return outcome
	}

	d.logger.Info("notification sent",
		slog.String("recipient", message.To),
		slog.String("subject", message.Subject),
	)
	return outcome
}
