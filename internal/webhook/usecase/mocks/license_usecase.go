package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	licenseDomain "github.com/allisson/fulfillment/internal/license/domain"
	"github.com/allisson/fulfillment/internal/webhook/domain"
)

// MockLicenseUseCase is a mock implementation of LicenseUseCase for testing.
type MockLicenseUseCase struct {
	mock.Mock
}

// IssueForOrder mocks the IssueForOrder method of LicenseUseCase.
func (m *MockLicenseUseCase) IssueForOrder(
	ctx context.Context,
	order *domain.CommerceOrder,
) ([]*licenseDomain.LicenseRecord, error) {
	args := m.Called(ctx, order)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*licenseDomain.LicenseRecord), args.Error(1)
}
