package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"ims/internal/domain"
)

// MockDashboardRepo is a mock implementation of port.DashboardRepository.
type MockDashboardRepo struct {
	mock.Mock
}

func (m *MockDashboardRepo) GetDashboard(ctx context.Context) (*domain.DashboardData, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DashboardData), args.Error(1)
}
