package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/allisson/fulfillment/internal/errors"
	"github.com/allisson/fulfillment/internal/license/domain"
	"github.com/allisson/fulfillment/internal/license/service"
	webhookDomain "github.com/allisson/fulfillment/internal/webhook/domain"
)

// licenseUseCase implements the LicenseUseCase interface.
type licenseUseCase struct {
	licenseRepo LicenseRepository
	logger      *slog.Logger
}

// NewLicenseUseCase creates a new license use case.
func NewLicenseUseCase(licenseRepo LicenseRepository, logger *slog.Logger) LicenseUseCase {
	return &licenseUseCase{
		licenseRepo: licenseRepo,
		logger:      logger,
	}
}

// IssueForOrder issues one license per line item, sequentially. Line items
// whose (order, sku) pair already holds a key resolve to the existing record,
// so a redelivered order can never mint a second key for the same pair.
func (u *licenseUseCase) IssueForOrder(
	ctx context.Context,
	order *webhookDomain.CommerceOrder,
) ([]*domain.LicenseRecord, error) {
	licenses := make([]*domain.LicenseRecord, 0, len(order.LineItems))

	for _, item := range order.LineItems {
		license, err := u.issueLine(ctx, order.ID, item.SKU)
		if err != nil {
			// Already-issued licenses stay committed; the caller decides
			// whether the partial result is usable.
			return licenses, apperrors.Wrapf(err, "failed to issue license for sku %s", item.SKU)
		}
		licenses = append(licenses, license)
	}

	return licenses, nil
}

// issueLine creates one license, falling back to the stored record on conflict.
func (u *licenseUseCase) issueLine(
	ctx context.Context,
	orderID int64,
	sku string,
) (*domain.LicenseRecord, error) {
	key, err := service.GenerateKey()
	if err != nil {
		return nil, err
	}

	license := &domain.LicenseRecord{
		ID:       uuid.Must(uuid.NewV7()),
		OrderID:  orderID,
		SKU:      sku,
		Key:      key,
		IssuedAt: time.Now().UTC(),
	}

	err = u.licenseRepo.Create(ctx, license)
	if err == nil {
		u.logger.Info("license issued",
			slog.Int64("order_id", orderID),
			slog.String("sku", sku),
		)
		return license, nil
	}

	if apperrors.Is(err, apperrors.ErrConflict) {
		// Duplicate delivery raced us or replayed: keep the original key.
		return u.licenseRepo.GetByOrderAndSKU(ctx, orderID, sku)
	}

	return nil, err
}
