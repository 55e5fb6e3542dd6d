// Package cache stores computed dashboard metrics in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"marketplace-admin-backend/internal/domain"
	"marketplace-admin-backend/internal/logger"
)

const dashboardKey = "marketplace-admin:dashboard:metrics"

type DashboardCache interface {
	// Get reports a miss with ok == false and a nil error.
	Get(ctx context.Context) (m *domain.DashboardMetrics, ok bool, err error)
	Set(ctx context.Context, m *domain.DashboardMetrics, ttl time.Duration) error
	Invalidate(ctx context.Context) error
}

type RedisDashboardCache struct {
	client *redis.Client
}

func NewRedisDashboardCache(client *redis.Client) *RedisDashboardCache {
	return &RedisDashboardCache{client: client}
}

// NewRedisClient connects and pings Redis.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

func (c *RedisDashboardCache) Get(ctx context.Context) (*domain.DashboardMetrics, bool, error) {
	logger.ExternalServiceCall("redis", "get", "key", dashboardKey)
	raw, err := c.client.Get(ctx, dashboardKey).Result()
	if errors.Is(err, redis.Nil) {
		logger.ExternalServiceResult("redis", "get", nil, "hit", false)
		return nil, false, nil
	}
	logger.ExternalServiceResult("redis", "get", err, "hit", err == nil)
	if err != nil {
		return nil, false, err
	}

	var m domain.DashboardMetrics
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, false, fmt.Errorf("decoding cached dashboard metrics: %w", err)
	}
	return &m, true, nil
}

func (c *RedisDashboardCache) Set(ctx context.Context, m *domain.DashboardMetrics, ttl time.Duration) error {
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	logger.ExternalServiceCall("redis", "set", "key", dashboardKey, "ttl", ttl)
	err = c.client.Set(ctx, dashboardKey, string(data), ttl).Err()
	logger.ExternalServiceResult("redis", "set", err)
	return err
}

func (c *RedisDashboardCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, dashboardKey).Err()
}

// NoopDashboardCache always misses.
type NoopDashboardCache struct{}

func (NoopDashboardCache) Get(context.Context) (*domain.DashboardMetrics, bool, error) {
	return nil, false, nil
}

func (NoopDashboardCache) Set(context.Context, *domain.DashboardMetrics, time.Duration) error {
	return nil
}

func (NoopDashboardCache) Invalidate(context.Context) error { return nil }
