package caching

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"ims/internal/domain"
	"ims/internal/port"
)

const dashboardKey = "ims:dashboard"

type redisCache struct {
	client *redis.Client
}

// NewRedisCache creates a Redis-backed DashboardCache.
func NewRedisCache(addr, password string, db int) (port.DashboardCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &redisCache{client: client}, nil
}

func (c *redisCache) GetDashboard(ctx context.Context) (*domain.DashboardData, error) {
	data, err := c.client.Get(ctx, dashboardKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrCacheMiss
		}
		return nil, fmt.Errorf("redisCache.GetDashboard: %w", err)
	}

	var dashboard domain.DashboardData
	if err := json.Unmarshal(data, &dashboard); err != nil {
		return nil, fmt.Errorf("redisCache.GetDashboard unmarshal: %w", err)
	}
	return &dashboard, nil
}

func (c *redisCache) SetDashboard(ctx context.Context, data *domain.DashboardData, ttl time.Duration) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("redisCache.SetDashboard marshal: %w", err)
	}
	if err := c.client.Set(ctx, dashboardKey, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redisCache.SetDashboard: %w", err)
	}
	return nil
}

func (c *redisCache) InvalidateDashboard(ctx context.Context) error {
	if err := c.client.Del(ctx, dashboardKey).Err(); err != nil {
		return fmt.Errorf("redisCache.InvalidateDashboard: %w", err)
	}
	return nil
}
