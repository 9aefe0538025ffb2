// Package repository provides idempotency guard stores for processed webhook events.
package repository

import (
	"context"
	"sync"
	"time"

	apperrors "github.com/allisson/fulfillment/internal/errors"
	"github.com/allisson/fulfillment/internal/webhook/domain"
)

// MemoryProcessedEventRepository is an in-process idempotency guard. Suitable
// for a single instance; multi-instance deployments need one of the SQL-backed
// stores so admission is shared.
type MemoryProcessedEventRepository struct {
	mu        sync.Mutex
	records   map[string]*domain.ProcessingRecord
	retention time.Duration
	nowFunc   func() time.Time
}

// NewMemoryProcessedEventRepository creates a memory store that retains
// admitted identities for the given window.
func NewMemoryProcessedEventRepository(retention time.Duration) *MemoryProcessedEventRepository {
	return &MemoryProcessedEventRepository{
		records:   make(map[string]*domain.ProcessingRecord),
		retention: retention,
		nowFunc:   time.Now,
	}
}

// Admit records the event identity if unseen. Returns true exactly once per
// identity within the retention window, even under concurrent calls; this is
// the synchronization point that makes downstream side effects idempotent.
func (r *MemoryProcessedEventRepository) Admit(
	ctx context.Context,
	record *domain.ProcessingRecord,
) (bool, error) {
	now := r.nowFunc()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.evictExpired(now)

	if _, exists := r.records[record.EventID]; exists {
		return false, nil
	}

	stored := *record
	stored.ProcessedAt = now
	r.records[record.EventID] = &stored
	return true, nil
}

// UpdateOutcome replaces the outcome of an admitted identity.
func (r *MemoryProcessedEventRepository) UpdateOutcome(
	ctx context.Context,
	eventID string,
	outcome domain.ProcessingOutcome,
	lastError *string,
) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, exists := r.records[eventID]
	if !exists {
		return apperrors.ErrNotFound
	}

	record.Outcome = outcome
	record.LastError = lastError
	return nil
}

// Get returns the processing record for an identity.
func (r *MemoryProcessedEventRepository) Get(
	ctx context.Context,
	eventID string,
) (*domain.ProcessingRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, exists := r.records[eventID]
	if !exists {
		return nil, apperrors.ErrNotFound
	}

	found := *record
	return &found, nil
}

// DeleteOlderThan removes records processed before the cutoff.
func (r *MemoryProcessedEventRepository) DeleteOlderThan(
	ctx context.Context,
	before time.Time,
) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var deleted int64
	for id, record := range r.records {
		if record.ProcessedAt.Before(before) {
			delete(r.records, id)
			deleted++
		}
	}
	return deleted, nil
}

// CountOlderThan counts records processed before the cutoff.
func (r *MemoryProcessedEventRepository) CountOlderThan(
	ctx context.Context,
	before time.Time,
) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var count int64
	for _, record := range r.records {
		if record.ProcessedAt.Before(before) {
			count++
		}
	}
	return count, nil
}

// evictExpired drops identities past the retention window. Caller holds the lock.
func (r *MemoryProcessedEventRepository) evictExpired(now time.Time) {
	if r.retention <= 0 {
		return
	}
	cutoff := now.Add(-r.retention)
	for id, record := range r.records {
		if record.ProcessedAt.Before(cutoff) {
			delete(r.records, id)
		}
	}
}
