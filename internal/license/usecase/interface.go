// Package usecase implements business logic for license issuance.
package usecase

import (
	"context"

	"github.com/allisson/fulfillment/internal/license/domain"
	webhookDomain "github.com/allisson/fulfillment/internal/webhook/domain"
)

// LicenseRepository defines the interface for license record persistence operations.
// Create must fail with ErrConflict when the (order, sku) pair already holds a key;
// that constraint, not the generator, enforces the at-most-one-key invariant.
type LicenseRepository interface {
	Create(ctx context.Context, license *domain.LicenseRecord) error
	GetByOrderAndSKU(ctx context.Context, orderID int64, sku string) (*domain.LicenseRecord, error)
	ListByOrder(ctx context.Context, orderID int64) ([]*domain.LicenseRecord, error)
}

// LicenseUseCase defines the interface for license issuance business logic.
type LicenseUseCase interface {
	// IssueForOrder issues one license per line item of the order. Pairs that
	// already hold a key keep their existing record; partial failure never
	// rolls back licenses that were already committed.
	IssueForOrder(ctx context.Context, order *webhookDomain.CommerceOrder) ([]*domain.LicenseRecord, error)
}
