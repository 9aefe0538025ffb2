package app

import (
	"context"
	"testing"
	"time"

	"github.com/allisson/fulfillment/internal/config"
)

func memoryConfig() *config.Config {
	return &config.Config{
		LogLevel:                "info",
		ServerHost:              "localhost",
		ServerPort:              8080,
		WebhookSecret:           "shhh",
		DedupeRetention:         72 * time.Hour,
		EmailAPIURL:             "https://api.resend.com/emails",
		EmailAPIKey:             "test-key",
		EmailFrom:               "noreply@example.com",
		MerchantEmail:           "merchant@example.com",
		NotificationSendTimeout: 5 * time.Second,
		WorkerInterval:          time.Second,
		WorkerBatchSize:         10,
		WorkerMaxRetries:        3,
	}
}

// TestNewContainer verifies that a new container can be created with a valid configuration.
func TestNewContainer(t *testing.T) {
	cfg := memoryConfig()

	container := NewContainer(cfg)

	if container == nil {
		t.Fatal("expected non-nil container")
	}

	if container.Config() != cfg {
		t.Error("container config does not match provided config")
	}
}

// TestContainerLogger verifies that the logger can be retrieved from the container.
func TestContainerLogger(t *testing.T) {
	cfg := &config.Config{
		LogLevel: "debug",
	}

	container := NewContainer(cfg)
	logger := container.Logger()

	if logger == nil {
		t.Fatal("expected non-nil logger")
	}

	// Calling Logger() again should return the same instance (singleton)
	logger2 := container.Logger()
	if logger != logger2 {
		t.Error("expected same logger instance on multiple calls")
	}
}

// TestContainerMemoryMode verifies that an empty driver wires the in-memory
// stores and the full pipeline assembles without a database.
func TestContainerMemoryMode(t *testing.T) {
	container := NewContainer(memoryConfig())

	if !container.MemoryMode() {
		t.Fatal("expected memory mode with empty database driver")
	}

	db, err := container.DB()
	if err != nil {
		t.Fatalf("unexpected error from DB in memory mode: %v", err)
	}
	if db != nil {
		t.Error("expected nil database connection in memory mode")
	}

	useCase, err := container.WebhookUseCase()
	if err != nil {
		t.Fatalf("unexpected error building webhook use case: %v", err)
	}
	if useCase == nil {
		t.Error("expected non-nil webhook use case")
	}

	outboxUseCase, err := container.OutboxUseCase()
	if err != nil {
		t.Fatalf("unexpected error building outbox use case: %v", err)
	}
	if outboxUseCase == nil {
		t.Error("expected non-nil outbox use case")
	}

	server, err := container.HTTPServer()
	if err != nil {
		t.Fatalf("unexpected error building http server: %v", err)
	}
	if server == nil {
		t.Error("expected non-nil http server")
	}
}

// TestContainerMissingWebhookSecret verifies that the webhook use case refuses
// to assemble without a signing secret.
func TestContainerMissingWebhookSecret(t *testing.T) {
	cfg := memoryConfig()
	cfg.WebhookSecret = ""

	container := NewContainer(cfg)

	_, err := container.WebhookUseCase()
	if err == nil {
		t.Error("expected error when webhook secret is not configured")
	}

	// The error is sticky across calls
	_, err2 := container.WebhookUseCase()
	if err2 == nil {
		t.Error("expected error on second call to WebhookUseCase()")
	}
}

// TestContainerMissingMerchantEmail verifies that the webhook use case refuses
// to assemble without a merchant recipient for product notifications.
func TestContainerMissingMerchantEmail(t *testing.T) {
	cfg := memoryConfig()
	cfg.MerchantEmail = ""

	container := NewContainer(cfg)

	_, err := container.WebhookUseCase()
	if err == nil {
		t.Error("expected error when merchant email is not configured")
	}

	// The error is sticky across calls
	_, err2 := container.WebhookUseCase()
	if err2 == nil {
		t.Error("expected error on second call to WebhookUseCase()")
	}
}

// TestContainerInitializationErrors verifies that initialization errors are properly handled.
func TestContainerInitializationErrors(t *testing.T) {
	// Create a container with invalid database configuration
	cfg := &config.Config{
		DBDriver:           "invalid_driver",
		DBConnectionString: "",
	}

	container := NewContainer(cfg)

	// Attempting to get DB should return an error
	_, err := container.DB()
	if err == nil {
		t.Error("expected error when connecting with invalid config")
	}

	// Attempting to get DB again should return the same error
	_, err2 := container.DB()
	if err2 == nil {
		t.Error("expected error on second call to DB()")
	}
}

// TestContainerLazyInitialization verifies that components are only initialized when accessed.
func TestContainerLazyInitialization(t *testing.T) {
	cfg := &config.Config{
		LogLevel: "info",
	}

	container := NewContainer(cfg)

	// At this point, no components should be initialized
	if container.logger != nil {
		t.Error("expected logger to be nil before first access")
	}

	// Access logger
	logger := container.Logger()
	if logger == nil {
		t.Fatal("expected non-nil logger")
	}

	// Now logger should be initialized
	if container.logger == nil {
		t.Error("expected logger to be initialized after access")
	}
}

// TestContainerShutdown verifies that the shutdown method can be called safely.
func TestContainerShutdown(t *testing.T) {
	cfg := &config.Config{
		LogLevel: "info",
	}

	container := NewContainer(cfg)

	// Shutdown should not fail even if no components are initialized
	if err := container.Shutdown(context.TODO()); err != nil {
		t.Errorf("unexpected error during shutdown: %v", err)
	}
}
