package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"ims/internal/domain"
	"ims/internal/port"
)

// DashboardService serves the chart aggregates, cache-aside when a cache
// is configured.
type DashboardService interface {
	GetDashboard(ctx context.Context) (*domain.DashboardData, error)
}

type dashboardService struct {
	repo  port.DashboardRepository
	cache port.DashboardCache
	ttl   time.Duration
}

// NewDashboardService creates a new DashboardService. cache may be nil.
func NewDashboardService(repo port.DashboardRepository, cache port.DashboardCache, ttl time.Duration) DashboardService {
	return &dashboardService{repo: repo, cache: cache, ttl: ttl}
}

func (s *dashboardService) GetDashboard(ctx context.Context) (*domain.DashboardData, error) {
	if s.cache != nil {
		data, err := s.cache.GetDashboard(ctx)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, domain.ErrCacheMiss) {
			log.Warn().Err(err).Msg("dashboard cache read failed")
		}
	}

	data, err := s.repo.GetDashboard(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetDashboard(ctx, data, s.ttl); err != nil {
			log.Warn().Err(err).Msg("dashboard cache write failed")
		}
	}
	return data, nil
}
