// Package domain defines the core license domain entities and types.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// LicenseRecord is one activation code issued for a purchased line item.
// At most one record ever exists per (OrderID, SKU) pair; once issued, the
// key is never regenerated for that pair.
type LicenseRecord struct {
	ID       uuid.UUID
	OrderID  int64
	SKU      string
	Key      string
	IssuedAt time.Time
}
