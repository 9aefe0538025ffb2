package app

import (
	"fmt"

	licenseRepository "github.com/allisson/fulfillment/internal/license/repository"
	licenseUsecase "github.com/allisson/fulfillment/internal/license/usecase"
)

// LicenseRepository returns the license repository based on the database driver.
func (c *Container) LicenseRepository() (licenseUsecase.LicenseRepository, error) {
	var err error
	c.licenseRepoInit.Do(func() {
		c.licenseRepo, err = c.initLicenseRepository()
		if err != nil {
			c.initErrors["licenseRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["licenseRepo"]; exists {
		return nil, storedErr
	}
	return c.licenseRepo, nil
}

// LicenseUseCase returns the license use case instance.
func (c *Container) LicenseUseCase() (licenseUsecase.LicenseUseCase, error) {
	var err error
	c.licenseUseCaseInit.Do(func() {
		c.licenseUseCase, err = c.initLicenseUseCase()
		if err != nil {
			c.initErrors["licenseUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["licenseUseCase"]; exists {
		return nil, storedErr
	}
	return c.licenseUseCase, nil
}

// initLicenseRepository creates the license repository based on the database driver.
func (c *Container) initLicenseRepository() (licenseUsecase.LicenseRepository, error) {
	switch c.config.DBDriver {
	case "":
		return licenseRepository.NewMemoryLicenseRepository(), nil
	case "mysql", "postgres":
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}

	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for license repository: %w", err)
	}

	if c.config.DBDriver == "mysql" {
		return licenseRepository.NewMySQLLicenseRepository(db), nil
	}
	return licenseRepository.NewPostgreSQLLicenseRepository(db), nil
}

// initLicenseUseCase creates the license use case with all its dependencies.
func (c *Container) initLicenseUseCase() (licenseUsecase.LicenseUseCase, error) {
	licenseRepo, err := c.LicenseRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get license repository for license use case: %w", err)
	}

	return licenseUsecase.NewLicenseUseCase(licenseRepo, c.Logger()), nil
}
