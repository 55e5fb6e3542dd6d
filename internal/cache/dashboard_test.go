package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-admin-backend/internal/domain"
)

func sampleMetrics() *domain.DashboardMetrics {
	return &domain.DashboardMetrics{
		GeneratedAt:       time.Date(2026, 1, 12, 9, 0, 0, 0, time.UTC),
		DisputesByStatus:  map[domain.DisputeStatus]int{domain.DisputeStatusOpen: 2, domain.DisputeStatusReviewing: 1},
		OpenDisputesByAge: map[domain.AgeBucket]int{domain.AgeBucketUnder3Days: 1},
		UsersByStatus:     map[domain.UserStatus]int{domain.UserStatusActive: 4},
		ListingsByStatus:  map[domain.ListingStatus]int{domain.ListingStatusPending: 1},
	}
}

func TestRedisDashboardCache_Miss(t *testing.T) {
	client, mock := redismock.NewClientMock()
	c := NewRedisDashboardCache(client)

	mock.ExpectGet(dashboardKey).RedisNil()

	m, ok, err := c.Get(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, m)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisDashboardCache_SetThenGet(t *testing.T) {
	client, mock := redismock.NewClientMock()
	c := NewRedisDashboardCache(client)
	metrics := sampleMetrics()
	data, err := json.Marshal(metrics)
	require.NoError(t, err)

	mock.ExpectSet(dashboardKey, string(data), 5*time.Minute).SetVal("OK")
	mock.ExpectGet(dashboardKey).SetVal(string(data))

	require.NoError(t, c.Set(context.Background(), metrics, 5*time.Minute))
	got, ok, err := c.Get(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2, got.DisputesByStatus[domain.DisputeStatusOpen])
	assert.Equal(t, metrics.GeneratedAt, got.GeneratedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisDashboardCache_Errors(t *testing.T) {
	client, mock := redismock.NewClientMock()
	c := NewRedisDashboardCache(client)

	mock.ExpectGet(dashboardKey).SetErr(errors.New("connection refused"))
	_, ok, err := c.Get(context.Background())
	assert.Error(t, err)
	assert.False(t, ok)

	mock.ExpectGet(dashboardKey).SetVal("{not json")
	_, _, err = c.Get(context.Background())
	assert.Error(t, err)

	mock.ExpectDel(dashboardKey).SetVal(1)
	assert.NoError(t, c.Invalidate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNoopDashboardCache(t *testing.T) {
	var c DashboardCache = NoopDashboardCache{}
	_, ok, err := c.Get(context.Background())
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, c.Set(context.Background(), sampleMetrics(), time.Minute))
}
