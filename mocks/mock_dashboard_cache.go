package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"ims/internal/domain"
)

// MockDashboardCache is a mock implementation of port.DashboardCache.
type MockDashboardCache struct {
	mock.Mock
}

func (m *MockDashboardCache) GetDashboard(ctx context.Context) (*domain.DashboardData, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DashboardData), args.Error(1)
}

func (m *MockDashboardCache) SetDashboard(ctx context.Context, data *domain.DashboardData, ttl time.Duration) error {
	args := m.Called(ctx, data, ttl)
	return args.Error(0)
}

func (m *MockDashboardCache) InvalidateDashboard(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
