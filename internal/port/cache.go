package port

import (
	"context"
	"time"

	"ims/internal/domain"
)

// DashboardCache caches the computed dashboard aggregates. Lookups that
// find nothing return domain.ErrCacheMiss.
type DashboardCache interface {
	GetDashboard(ctx context.Context) (*domain.DashboardData, error)
	SetDashboard(ctx context.Context, data *domain.DashboardData, ttl time.Duration) error
	InvalidateDashboard(ctx context.Context) error
}
