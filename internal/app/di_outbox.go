package app

import (
	"fmt"

	outboxRepository "github.com/allisson/fulfillment/internal/outbox/repository"
	outboxUsecase "github.com/allisson/fulfillment/internal/outbox/usecase"
)

// OutboxRepository returns the outbox event repository based on the database driver.
func (c *Container) OutboxRepository() (outboxUsecase.OutboxEventRepository, error) {
	var err error
	c.outboxRepoInit.Do(func() {
		c.outboxRepo, err = c.initOutboxRepository()
		if err != nil {
			c.initErrors["outboxRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["outboxRepo"]; exists {
		return nil, storedErr
	}
	return c.outboxRepo, nil
}

// OutboxUseCase returns the outbox use case instance.
func (c *Container) OutboxUseCase() (outboxUsecase.UseCase, error) {
	var err error
	c.outboxUseCaseInit.Do(func() {
		c.outboxUseCase, err = c.initOutboxUseCase()
		if err != nil {
			c.initErrors["outboxUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["outboxUseCase"]; exists {
		return nil, storedErr
	}
	return c.outboxUseCase, nil
}

// initOutboxRepository creates the outbox event repository based on the database driver.
func (c *Container) initOutboxRepository() (outboxUsecase.OutboxEventRepository, error) {
	switch c.config.DBDriver {
	case "":
		return outboxRepository.NewMemoryOutboxEventRepository(), nil
	case "mysql", "postgres":
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}

	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for outbox repository: %w", err)
	}

	if c.config.DBDriver == "mysql" {
		return outboxRepository.NewMySQLOutboxEventRepository(db), nil
	}
	return outboxRepository.NewPostgreSQLOutboxEventRepository(db), nil
}

// initOutboxUseCase creates the outbox use case with all its dependencies.
// The worker re-sends notifications that the webhook pipeline deferred and
// settles their originating processing records on success.
func (c *Container) initOutboxUseCase() (outboxUsecase.UseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for outbox use case: %w", err)
	}

	outboxRepo, err := c.OutboxRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get outbox repository for outbox use case: %w", err)
	}

	dispatcher, err := c.Dispatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to get dispatcher for outbox use case: %w", err)
	}

	processedRepo, err := c.ProcessedEventRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get processed event repository for outbox use case: %w", err)
	}

	useCaseConfig := outboxUsecase.Config{
		Interval:   c.config.WorkerInterval,
		BatchSize:  c.config.WorkerBatchSize,
		MaxRetries: c.config.WorkerMaxRetries,
	}

	eventProcessor := outboxUsecase.NewNotificationProcessor(dispatcher, processedRepo, c.Logger())
	useCase := outboxUsecase.NewOutboxUseCase(useCaseConfig, txManager, outboxRepo, eventProcessor, c.Logger())

	return useCase, nil
}
