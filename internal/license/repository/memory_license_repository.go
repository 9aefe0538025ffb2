// Package repository provides data persistence implementations for license records.
package repository

import (
	"context"
	"fmt"
	"sync"

	apperrors "github.com/allisson/fulfillment/internal/errors"
	"github.com/allisson/fulfillment/internal/license/domain"
)

// MemoryLicenseRepository is an in-process license store for single-instance
// deployments and tests.
type MemoryLicenseRepository struct {
	mu       sync.Mutex
	licenses map[string]*domain.LicenseRecord
}

// NewMemoryLicenseRepository creates a new MemoryLicenseRepository.
func NewMemoryLicenseRepository() *MemoryLicenseRepository {
	return &MemoryLicenseRepository{
		licenses: make(map[string]*domain.LicenseRecord),
	}
}

func licenseKey(orderID int64, sku string) string {
	return fmt.Sprintf("%d/%s", orderID, sku)
}

// Create stores a license record; returns ErrConflict if the (order, sku)
// pair already holds a key.
func (r *MemoryLicenseRepository) Create(ctx context.Context, license *domain.LicenseRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := licenseKey(license.OrderID, license.SKU)
	if _, exists := r.licenses[key]; exists {
		return apperrors.ErrConflict
	}

	stored := *license
	r.licenses[key] = &stored
	return nil
}

// GetByOrderAndSKU returns the license issued for a (order, sku) pair.
func (r *MemoryLicenseRepository) GetByOrderAndSKU(
	ctx context.Context,
	orderID int64,
	sku string,
) (*domain.LicenseRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	license, exists := r.licenses[licenseKey(orderID, sku)]
	if !exists {
		return nil, apperrors.ErrNotFound
	}

	found := *license
	return &found, nil
}

// ListByOrder returns every license issued for an order.
func (r *MemoryLicenseRepository) ListByOrder(
	ctx context.Context,
	orderID int64,
) ([]*domain.LicenseRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var licenses []*domain.LicenseRecord
	for _, license := range r.licenses {
		if license.OrderID == orderID {
			found := *license
			licenses = append(licenses, &found)
		}
	}
	return licenses, nil
}
