package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"marketplace-admin-backend/internal/domain"
	"marketplace-admin-backend/internal/events"
	"marketplace-admin-backend/internal/metrics"
	"marketplace-admin-backend/internal/repository/memory"
	"marketplace-admin-backend/internal/service"
)

func newSeededStore(t *testing.T, clock *testClock) *memory.Store {
	t.Helper()
	store := memory.NewStore()
	require.NoError(t, memory.Seed(context.Background(), store, clock.Now()))
	return store
}

func TestDashboardService_Refresh(t *testing.T) {
	ctx := context.Background()
	clock := newTestClock()
	store := newSeededStore(t, clock)
	mockCache := new(MockDashboardCache)
	svc := service.NewDashboardService(store.DisputeRepository, store.UserRepository, store.ListingRepository, store.LedgerRepository, mockCache, 5*time.Minute, clock.Now)

	mockCache.On("Set", ctx, mock.AnythingOfType("*domain.DashboardMetrics"), 5*time.Minute).Return(nil).Once()

	m, err := svc.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, clock.Now(), m.GeneratedAt)
	assert.Equal(t, 2, m.DisputesByStatus[domain.DisputeStatusOpen])
	assert.Equal(t, 1, m.DisputesByStatus[domain.DisputeStatusReviewing])
	assert.Equal(t, 1, m.OpenDisputesByAge[domain.AgeBucketUnder3Days])
	assert.Equal(t, 2, m.OpenDisputesByAge[domain.AgeBucketUnder7Days])
	assert.Equal(t, 1, m.OpenDisputesByAge[domain.AgeBucketAtLeast7Days])
	assert.Equal(t, 4, m.UsersByStatus[domain.UserStatusActive])
	assert.Equal(t, 1, m.UsersByStatus[domain.UserStatusSuspended])
	assert.Equal(t, 1, m.ListingsByStatus[domain.ListingStatusPending])
	require.Len(t, m.LedgerLast30Days, 3)
	for _, total := range m.LedgerLast30Days {
		assert.Equal(t, domain.LedgerEntryPayment, total.Type)
		assert.Equal(t, 1, total.Count)
	}
	mockCache.AssertExpectations(t)
}

func TestDashboardService_MetricsUsesCache(t *testing.T) {
	ctx := context.Background()
	clock := newTestClock()
	store := newSeededStore(t, clock)
	mockCache := new(MockDashboardCache)
	svc := service.NewDashboardService(store.DisputeRepository, store.UserRepository, store.ListingRepository, store.LedgerRepository, mockCache, time.Minute, clock.Now)

	t.Run("Hit", func(t *testing.T) {
		cached := &domain.DashboardMetrics{GeneratedAt: clock.Now().Add(-time.Minute)}
		mockCache.On("Get", ctx).Return(cached, true, nil).Once()

		m, err := svc.Metrics(ctx)
		require.NoError(t, err)
		assert.Same(t, cached, m)
	})

	t.Run("Broken cache recomputes", func(t *testing.T) {
		mockCache.On("Get", ctx).Return(nil, false, errors.New("connection refused")).Once()
		mockCache.On("Set", ctx, mock.Anything, time.Minute).Return(errors.New("connection refused")).Once()

		m, err := svc.Metrics(ctx)
		require.NoError(t, err)
		assert.Equal(t, clock.Now(), m.GeneratedAt)
	})

	mockCache.AssertExpectations(t)
}

func TestDashboardService_Report(t *testing.T) {
	ctx := context.Background()
	clock := newTestClock()
	store := newSeededStore(t, clock)
	writer := service.NewLedgerWriter(store.LedgerRepository, clock.Now)
	disputes, err := service.NewDisputeService(store.DisputeRepository, store.Transactor, writer, events.NewLogPublisher(), service.NewLogEmailService(), metrics.New(), clock.Now)
	require.NoError(t, err)
	svc := service.NewDashboardService(store.DisputeRepository, store.UserRepository, store.ListingRepository, store.LedgerRepository, nil, time.Minute, clock.Now)

	// DSP-1002 was opened five days ago.
	_, _, err = disputes.Resolve(ctx, "DSP-1002", domain.ResolveInput{Outcome: domain.OutcomeRefund})
	require.NoError(t, err)
	clock.Advance(time.Hour)

	r, err := svc.Report(ctx, clock.Now().AddDate(0, 0, -7), clock.Now())
	require.NoError(t, err)
	assert.Equal(t, 2, r.DisputesOpened)
	assert.Equal(t, 1, r.DisputesResolved)
	assert.Equal(t, 1, r.RefundOutcomes)
	assert.Equal(t, 0, r.ReleaseOutcomes)
	assert.InDelta(t, 120.0, r.MeanResolutionHours, 0.001)
	assert.Equal(t, 1, r.DisputesByCategory[domain.DisputeCategoryQuality])
	assert.Equal(t, 1, r.DisputesByCategory[domain.DisputeCategoryDeliveryLate])
	require.Len(t, r.LedgerTotals, 2)

	_, err = svc.Report(ctx, clock.Now(), clock.Now())
	assert.True(t, errors.Is(err, domain.ErrInvalidArgument))
}
