package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/allisson/fulfillment/internal/app"
	"github.com/allisson/fulfillment/internal/config"
	webhookUsecase "github.com/allisson/fulfillment/internal/webhook/usecase"
)

// RunCleanProcessedEvents deletes processed event records older than the
// specified number of days. Supports dry-run mode to preview the deletion
// count and both text/JSON output formats.
//
// Records must only be deleted once they fall outside the platform's
// redelivery window, otherwise a late redelivery would be processed again.
func RunCleanProcessedEvents(ctx context.Context, days int, dryRun bool, format string) error {
	// Load configuration
	cfg := config.Load()

	// Create DI container
	container := app.NewContainer(cfg)

	// Get logger from container
	logger := container.Logger()

	// Ensure cleanup on exit
	defer closeContainer(container, logger)

	// Get webhook use case from container
	webhookUseCase, err := container.WebhookUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize webhook use case: %w", err)
	}

	return cleanProcessedEvents(ctx, webhookUseCase, logger, os.Stdout, days, dryRun, format)
}

// cleanProcessedEvents executes the cleanup against the given use case.
func cleanProcessedEvents(
	ctx context.Context,
	useCase webhookUsecase.UseCase,
	logger *slog.Logger,
	out io.Writer,
	days int,
	dryRun bool,
	format string,
) error {
	// Validate days parameter
	if days < 0 {
		return fmt.Errorf("days must be a positive number, got: %d", days)
	}

	logger.Info("cleaning processed events",
		slog.Int("days", days),
		slog.Bool("dry_run", dryRun),
	)

	before := time.Now().Add(-time.Duration(days) * 24 * time.Hour)

	count, err := useCase.CleanProcessedEvents(ctx, before, dryRun)
	if err != nil {
		return fmt.Errorf("failed to clean processed events: %w", err)
	}

	// Output result based on format
	if format == "json" {
		outputCleanJSON(out, count, days, dryRun)
	} else {
		outputCleanText(out, count, days, dryRun)
	}

	logger.Info("cleanup completed",
		slog.Int64("count", count),
		slog.Int("days", days),
		slog.Bool("dry_run", dryRun),
	)

	return nil
}

// outputCleanText outputs the result in human-readable text format.
func outputCleanText(out io.Writer, count int64, days int, dryRun bool) {
	if dryRun {
		fmt.Fprintf(out, "Dry-run mode: Would delete %d processed event record(s) older than %d day(s)\n", count, days)
	} else {
		fmt.Fprintf(out, "Successfully deleted %d processed event record(s) older than %d day(s)\n", count, days)
	}
}

// outputCleanJSON outputs the result in JSON format for machine consumption.
func outputCleanJSON(out io.Writer, count int64, days int, dryRun bool) {
	result := map[string]interface{}{
		"count":   count,
		"days":    days,
		"dry_run": dryRun,
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to marshal JSON: %v\n", err)
		return
	}

	fmt.Fprintln(out, string(jsonBytes))
}
