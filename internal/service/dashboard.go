package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"marketplace-admin-backend/internal/cache"
	"marketplace-admin-backend/internal/domain"
	"marketplace-admin-backend/internal/logger"
	"marketplace-admin-backend/internal/repository"
)

const ledgerWindow = 30 * 24 * time.Hour

type dashboardService struct {
	disputeRepo repository.DisputeRepository
	userRepo    repository.UserRepository
	listingRepo repository.ListingRepository
	ledgerRepo  repository.LedgerRepository
	cache       cache.DashboardCache
	cacheTTL    time.Duration
	now         Clock
	log         *slog.Logger
}

func NewDashboardService(
	disputeRepo repository.DisputeRepository,
	userRepo repository.UserRepository,
	listingRepo repository.ListingRepository,
	ledgerRepo repository.LedgerRepository,
	dashboardCache cache.DashboardCache,
	cacheTTL time.Duration,
	now Clock,
) DashboardService {
	if dashboardCache == nil {
		dashboardCache = cache.NoopDashboardCache{}
	}
	if now == nil {
		now = systemClock
	}
	return &dashboardService{
		disputeRepo: disputeRepo,
		userRepo:    userRepo,
		listingRepo: listingRepo,
		ledgerRepo:  ledgerRepo,
		cache:       dashboardCache,
		cacheTTL:    cacheTTL,
		now:         now,
		log:         logger.WithComponent("dashboard_service"),
	}
}

func (s *dashboardService) Metrics(ctx context.Context) (*domain.DashboardMetrics, error) {
	m, ok, err := s.cache.Get(ctx)
	if err != nil {
		// A broken cache only costs a recomputation.
		s.log.Warn("Dashboard cache read failed", "error", err)
	}
	if ok {
		return m, nil
	}
	return s.Refresh(ctx)
}

func (s *dashboardService) Refresh(ctx context.Context) (*domain.DashboardMetrics, error) {
	logger.EnterMethod("dashboardService.Refresh")
	now := s.now()

	var (
		disputes []domain.Dispute
		users    []domain.User
		listings []domain.ServiceListing
		ledger   []domain.LedgerEntry
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		disputes, err = s.disputeRepo.List(gctx)
		return err
	})
	g.Go(func() (err error) {
		users, err = s.userRepo.List(gctx, domain.UserFilter{})
		return err
	})
	g.Go(func() (err error) {
		listings, err = s.listingRepo.List(gctx, domain.None[domain.ListingStatus]())
		return err
	})
	g.Go(func() (err error) {
		ledger, err = s.ledgerRepo.ListBetween(gctx, now.Add(-ledgerWindow), now)
		return err
	})
	if err := g.Wait(); err != nil {
		logger.ExitMethodWithError("dashboardService.Refresh", err)
		return nil, fmt.Errorf("failed to load dashboard data: %w", err)
	}

	m := &domain.DashboardMetrics{
		GeneratedAt:       now,
		DisputesByStatus:  make(map[domain.DisputeStatus]int),
		OpenDisputesByAge: make(map[domain.AgeBucket]int),
		UsersByStatus:     make(map[domain.UserStatus]int),
		ListingsByStatus:  make(map[domain.ListingStatus]int),
		LedgerLast30Days:  domain.SumLedger(ledger),
	}
	buckets := []domain.AgeBucket{domain.AgeBucketUnder3Days, domain.AgeBucketUnder7Days, domain.AgeBucketAtLeast7Days}
	for i := range disputes {
		d := &disputes[i]
		m.DisputesByStatus[d.Status]++
		if d.Status.IsTerminal() {
			continue
		}
		for _, b := range buckets {
			if b.Contains(d.Age(now)) {
				m.OpenDisputesByAge[b]++
			}
		}
	}
	for i := range users {
		m.UsersByStatus[users[i].Status]++
	}
	for i := range listings {
		m.ListingsByStatus[listings[i].Status]++
	}

	if err := s.cache.Set(ctx, m, s.cacheTTL); err != nil {
		s.log.Warn("Dashboard cache write failed", "error", err)
	}
	logger.ExitMethod("dashboardService.Refresh", "disputes", len(disputes))
	return m, nil
}

func (s *dashboardService) Report(ctx context.Context, from, to time.Time) (*domain.AnalyticsReport, error) {
	if !from.Before(to) {
		return nil, fmt.Errorf("%w: from must be before to", domain.ErrInvalidArgument)
	}

	var (
		disputes []domain.Dispute
		ledger   []domain.LedgerEntry
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		disputes, err = s.disputeRepo.List(gctx)
		return err
	})
	g.Go(func() (err error) {
		ledger, err = s.ledgerRepo.ListBetween(gctx, from, to)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load report data: %w", err)
	}

	r := &domain.AnalyticsReport{
		From:               from,
		To:                 to,
		DisputesByCategory: make(map[domain.DisputeCategory]int),
		LedgerTotals:       domain.SumLedger(ledger),
	}
	inRange := func(t time.Time) bool { return !t.Before(from) && t.Before(to) }
	var resolutionHours float64
	for i := range disputes {
		d := &disputes[i]
		if inRange(d.OpenedAt) {
			r.DisputesOpened++
			r.DisputesByCategory[d.Category]++
		}
		res, ok := d.Resolution.Get()
		if !ok || !inRange(res.ResolvedAt) {
			continue
		}
		r.DisputesResolved++
		resolutionHours += res.ResolvedAt.Sub(d.OpenedAt).Hours()
		switch res.Outcome {
		case domain.OutcomeRefund:
			r.RefundOutcomes++
		case domain.OutcomeRelease:
			r.ReleaseOutcomes++
		}
	}
	if r.DisputesResolved > 0 {
		r.MeanResolutionHours = resolutionHours / float64(r.DisputesResolved)
	}
	return r, nil
}
