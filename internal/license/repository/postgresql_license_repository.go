package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/allisson/fulfillment/internal/database"
	apperrors "github.com/allisson/fulfillment/internal/errors"
	"github.com/allisson/fulfillment/internal/license/domain"
)

// pgUniqueViolation is the PostgreSQL error code for unique constraint violations.
const pgUniqueViolation = "23505"

// PostgreSQLLicenseRepository handles license record persistence for PostgreSQL.
// The unique constraint on (order_id, sku) enforces the at-most-one-key invariant.
type PostgreSQLLicenseRepository struct {
	db *sql.DB
}

// NewPostgreSQLLicenseRepository creates a new PostgreSQLLicenseRepository.
func NewPostgreSQLLicenseRepository(db *sql.DB) *PostgreSQLLicenseRepository {
	return &PostgreSQLLicenseRepository{
		db: db,
	}
}

// Create inserts a license record; returns ErrConflict if the (order, sku)
// pair already holds a key.
func (r *PostgreSQLLicenseRepository) Create(ctx context.Context, license *domain.LicenseRecord) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO licenses (id, order_id, sku, license_key, issued_at)
			  VALUES ($1, $2, $3, $4, $5)`

	_, err := querier.ExecContext(ctx, query, license.ID, license.OrderID, license.SKU,
		license.Key, license.IssuedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pgUniqueViolation {
			return apperrors.ErrConflict
		}
		return err
	}

	return nil
}

// GetByOrderAndSKU returns the license issued for a (order, sku) pair.
func (r *PostgreSQLLicenseRepository) GetByOrderAndSKU(
	ctx context.Context,
	orderID int64,
	sku string,
) (*domain.LicenseRecord, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, order_id, sku, license_key, issued_at
			  FROM licenses
			  WHERE order_id = $1 AND sku = $2`

	var license domain.LicenseRecord
	err := querier.QueryRowContext(ctx, query, orderID, sku).Scan(&license.ID, &license.OrderID,
		&license.SKU, &license.Key, &license.IssuedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}

	return &license, nil
}

// ListByOrder returns every license issued for an order.
func (r *PostgreSQLLicenseRepository) ListByOrder(
	ctx context.Context,
	orderID int64,
) ([]*domain.LicenseRecord, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, order_id, sku, license_key, issued_at
			  FROM licenses
			  WHERE order_id = $1
			  ORDER BY issued_at ASC`

	rows, err := querier.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	var licenses []*domain.LicenseRecord
	for rows.Next() {
		var license domain.LicenseRecord
		err := rows.Scan(&license.ID, &license.OrderID, &license.SKU, &license.Key, &license.IssuedAt)
		if err != nil {
			return nil, err
		}
		licenses = append(licenses, &license)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return licenses, nil
}
