package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/allisson/fulfillment/internal/errors"
	"github.com/allisson/fulfillment/internal/outbox/domain"
)

// MemoryOutboxEventRepository is an in-process outbox store for single
// instance deployments running without a database. Deferred notifications do
// not survive a restart in this mode.
type MemoryOutboxEventRepository struct {
	mu     sync.Mutex
	events map[uuid.UUID]*domain.OutboxEvent
}

// NewMemoryOutboxEventRepository creates a new MemoryOutboxEventRepository
func NewMemoryOutboxEventRepository() *MemoryOutboxEventRepository {
	return &MemoryOutboxEventRepository{
		events: make(map[uuid.UUID]*domain.OutboxEvent),
	}
}

// Create inserts a new outbox event
func (r *MemoryOutboxEventRepository) Create(ctx context.Context, event *domain.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.events[event.ID]; exists {
		return apperrors.ErrConflict
	}

	stored := *event
	now := time.Now()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	r.events[event.ID] = &stored
	return nil
}

// GetPendingEvents retrieves pending events in creation order, up to limit.
func (r *MemoryOutboxEventRepository) GetPendingEvents(
	ctx context.Context,
	limit int,
) ([]*domain.OutboxEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var pending []*domain.OutboxEvent
	for _, event := range r.events {
		if event.Status == domain.OutboxEventStatusPending {
			found := *event
			pending = append(pending, &found)
		}
	}

	sort.Slice(pending, func(i, j int) bool {
		return pending[i].CreatedAt.Before(pending[j].CreatedAt)
	})

	if limit > 0 && len(pending) > limit {
		pending = pending[:limit]
	}
	return pending, nil
}

// Update updates an outbox event
func (r *MemoryOutboxEventRepository) Update(ctx context.Context, event *domain.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, exists := r.events[event.ID]
	if !exists {
		return apperrors.ErrNotFound
	}

	updated := *event
	updated.CreatedAt = stored.CreatedAt
	updated.UpdatedAt = time.Now()
	r.events[event.ID] = &updated
	return nil
}
