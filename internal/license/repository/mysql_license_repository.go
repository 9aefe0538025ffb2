package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	"github.com/allisson/fulfillment/internal/database"
	apperrors "github.com/allisson/fulfillment/internal/errors"
	"github.com/allisson/fulfillment/internal/license/domain"
)

// mysqlDuplicateEntry is the MySQL error number for unique key violations.
const mysqlDuplicateEntry = 1062

// parseLicenseID converts the stored char(36) id back to a uuid.
func parseLicenseID(id string) (uuid.UUID, error) {
	return uuid.Parse(id)
}

// MySQLLicenseRepository handles license record persistence for MySQL.
type MySQLLicenseRepository struct {
	db *sql.DB
}

// NewMySQLLicenseRepository creates a new MySQLLicenseRepository.
func NewMySQLLicenseRepository(db *sql.DB) *MySQLLicenseRepository {
	return &MySQLLicenseRepository{
		db: db,
	}
}

// Create inserts a license record; returns ErrConflict if the (order, sku)
// pair already holds a key.
func (r *MySQLLicenseRepository) Create(ctx context.Context, license *domain.LicenseRecord) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO licenses (id, order_id, sku, license_key, issued_at)
			  VALUES (?, ?, ?, ?, ?)`

	_, err := querier.ExecContext(ctx, query, license.ID.String(), license.OrderID, license.SKU,
		license.Key, license.IssuedAt)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
			return apperrors.ErrConflict
		}
		return err
	}

	return nil
}

// GetByOrderAndSKU returns the license issued for a (order, sku) pair.
func (r *MySQLLicenseRepository) GetByOrderAndSKU(
	ctx context.Context,
	orderID int64,
	sku string,
) (*domain.LicenseRecord, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, order_id, sku, license_key, issued_at
			  FROM licenses
			  WHERE order_id = ? AND sku = ?`

	var license domain.LicenseRecord
	var id string
	err := querier.QueryRowContext(ctx, query, orderID, sku).Scan(&id, &license.OrderID,
		&license.SKU, &license.Key, &license.IssuedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}

	parsed, err := parseLicenseID(id)
	if err != nil {
		return nil, err
	}
	license.ID = parsed

	return &license, nil
}

// ListByOrder returns every license issued for an order.
func (r *MySQLLicenseRepository) ListByOrder(
	ctx context.Context,
	orderID int64,
) ([]*domain.LicenseRecord, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, order_id, sku, license_key, issued_at
			  FROM licenses
			  WHERE order_id = ?
			  ORDER BY issued_at ASC`

	rows, err := querier.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	var licenses []*domain.LicenseRecord
	for rows.Next() {
		var license domain.LicenseRecord
		var id string
		err := rows.Scan(&id, &license.OrderID, &license.SKU, &license.Key, &license.IssuedAt)
		if err != nil {
			return nil, err
		}

		parsed, err := parseLicenseID(id)
		if err != nil {
			return nil, err
		}
		license.ID = parsed

		licenses = append(licenses, &license)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return licenses, nil
}
