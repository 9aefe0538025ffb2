package app

import (
	"fmt"

	apperrors "github.com/allisson/fulfillment/internal/errors"
	webhookHTTP "github.com/allisson/fulfillment/internal/webhook/http"
	webhookRepository "github.com/allisson/fulfillment/internal/webhook/repository"
	webhookUsecase "github.com/allisson/fulfillment/internal/webhook/usecase"
)

// ProcessedEventRepository returns the processed event repository based on
// the database driver.
func (c *Container) ProcessedEventRepository() (webhookUsecase.ProcessedEventRepository, error) {
	var err error
	c.processedEventRepoInit.Do(func() {
		c.processedEventRepo, err = c.initProcessedEventRepository()
		if err != nil {
			c.initErrors["processedEventRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["processedEventRepo"]; exists {
		return nil, storedErr
	}
	return c.processedEventRepo, nil
}

// WebhookUseCase returns the webhook use case instance.
func (c *Container) WebhookUseCase() (webhookUsecase.UseCase, error) {
	var err error
	c.webhookUseCaseInit.Do(func() {
		c.webhookUseCase, err = c.initWebhookUseCase()
		if err != nil {
			c.initErrors["webhookUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["webhookUseCase"]; exists {
		return nil, storedErr
	}
	return c.webhookUseCase, nil
}

// WebhookHandler returns the HTTP handler for webhook intake.
func (c *Container) WebhookHandler() (*webhookHTTP.WebhookHandler, error) {
	var err error
	c.webhookHandlerInit.Do(func() {
		c.webhookHandler, err = c.initWebhookHandler()
		if err != nil {
			c.initErrors["webhookHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["webhookHandler"]; exists {
		return nil, storedErr
	}
	return c.webhookHandler, nil
}

// initProcessedEventRepository creates the processed event repository based on
// the database driver.
func (c *Container) initProcessedEventRepository() (webhookUsecase.ProcessedEventRepository, error) {
	switch c.config.DBDriver {
	case "":
		return webhookRepository.NewMemoryProcessedEventRepository(c.config.DedupeRetention), nil
	case "mysql", "postgres":
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}

	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for processed event repository: %w", err)
	}

	if c.config.DBDriver == "mysql" {
		return webhookRepository.NewMySQLProcessedEventRepository(db), nil
	}
	return webhookRepository.NewPostgreSQLProcessedEventRepository(db), nil
}

// initWebhookUseCase creates the webhook use case with all its dependencies.
func (c *Container) initWebhookUseCase() (webhookUsecase.UseCase, error) {
	if c.config.WebhookSecret == "" {
		return nil, apperrors.New("webhook secret is not configured")
	}

	// Product notifications go to the merchant. Fail at startup instead of
	// on the first products/update delivery.
	if c.config.MerchantEmail == "" {
		return nil, apperrors.New("merchant email is not configured")
	}

	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for webhook use case: %w", err)
	}

	processedRepo, err := c.ProcessedEventRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get processed event repository for webhook use case: %w", err)
	}

	outboxRepo, err := c.OutboxRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get outbox repository for webhook use case: %w", err)
	}

	licenseUseCase, err := c.LicenseUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get license use case for webhook use case: %w", err)
	}

	dispatcher, err := c.Dispatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to get dispatcher for webhook use case: %w", err)
	}

	useCaseConfig := webhookUsecase.Config{
		Secret:        []byte(c.config.WebhookSecret),
		FromAddress:   c.config.EmailFrom,
		MerchantEmail: c.config.MerchantEmail,
	}

	baseUseCase := webhookUsecase.NewWebhookUseCase(
		useCaseConfig,
		txManager,
		processedRepo,
		outboxRepo,
		licenseUseCase,
		dispatcher,
		c.Logger(),
	)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for webhook use case: %w", err)
		}
		return webhookUsecase.NewWebhookUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initWebhookHandler creates the webhook HTTP handler with all its dependencies.
func (c *Container) initWebhookHandler() (*webhookHTTP.WebhookHandler, error) {
	webhookUseCase, err := c.WebhookUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get webhook use case for webhook handler: %w", err)
	}

	return webhookHTTP.NewWebhookHandler(webhookUseCase, c.Logger()), nil
}
