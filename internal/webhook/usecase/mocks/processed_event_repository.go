// Package mocks provides mock implementations for testing webhook components.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/allisson/fulfillment/internal/webhook/domain"
)

// MockProcessedEventRepository is a mock implementation of ProcessedEventRepository for testing.
type MockProcessedEventRepository struct {
	mock.Mock
}

// Admit mocks the Admit method of ProcessedEventRepository.
func (m *MockProcessedEventRepository) Admit(
	ctx context.Context,
	record *domain.ProcessingRecord,
) (bool, error) {
	args := m.Called(ctx, record)
	return args.Bool(0), args.Error(1)
}

// UpdateOutcome mocks the UpdateOutcome method of ProcessedEventRepository.
func (m *MockProcessedEventRepository) UpdateOutcome(
	ctx context.Context,
	eventID string,
	outcome domain.ProcessingOutcome,
	lastError *string,
) error {
	args := m.Called(ctx, eventID, outcome, lastError)
	return args.Error(0)
}

// Get mocks the Get method of ProcessedEventRepository.
func (m *MockProcessedEventRepository) Get(
	ctx context.Context,
	eventID string,
) (*domain.ProcessingRecord, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProcessingRecord), args.Error(1)
}

// DeleteOlderThan mocks the DeleteOlderThan method of ProcessedEventRepository.
func (m *MockProcessedEventRepository) DeleteOlderThan(
	ctx context.Context,
	before time.Time,
) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

// CountOlderThan mocks the CountOlderThan method of ProcessedEventRepository.
func (m *MockProcessedEventRepository) CountOlderThan(
	ctx context.Context,
	before time.Time,
) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}
