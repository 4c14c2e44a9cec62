package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ims/internal/domain"
	"ims/internal/service"
	"ims/mocks"
)

func TestGetDashboard_CacheHit(t *testing.T) {
	repo := new(mocks.MockDashboardRepo)
	cache := new(mocks.MockDashboardCache)
	svc := service.NewDashboardService(repo, cache, 5*time.Minute)

	cached := &domain.DashboardData{TotalInvoices: 42}
	cache.On("GetDashboard", mock.Anything).Return(cached, nil)

	data, err := svc.GetDashboard(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 42, data.TotalInvoices)
	repo.AssertNotCalled(t, "GetDashboard", mock.Anything)
}

func TestGetDashboard_CacheMissFillsCache(t *testing.T) {
	repo := new(mocks.MockDashboardRepo)
	cache := new(mocks.MockDashboardCache)
	svc := service.NewDashboardService(repo, cache, 5*time.Minute)

	fresh := &domain.DashboardData{TotalInvoices: 7, TotalBalance: 1234.56}
	cache.On("GetDashboard", mock.Anything).Return(nil, domain.ErrCacheMiss)
	repo.On("GetDashboard", mock.Anything).Return(fresh, nil)
	cache.On("SetDashboard", mock.Anything, fresh, 5*time.Minute).Return(nil)

	data, err := svc.GetDashboard(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 7, data.TotalInvoices)
	cache.AssertExpectations(t)
	repo.AssertExpectations(t)
}

func TestGetDashboard_NoCacheConfigured(t *testing.T) {
	repo := new(mocks.MockDashboardRepo)
	svc := service.NewDashboardService(repo, nil, 0)

	fresh := &domain.DashboardData{TotalInvoices: 3}
	repo.On("GetDashboard", mock.Anything).Return(fresh, nil)

	data, err := svc.GetDashboard(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, data.TotalInvoices)
}
