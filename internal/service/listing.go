package service

import (
	"context"
	"fmt"

	"marketplace-admin-backend/internal/domain"
	"marketplace-admin-backend/internal/events"
	"marketplace-admin-backend/internal/logger"
	"marketplace-admin-backend/internal/metrics"
	"marketplace-admin-backend/internal/repository"
)

type listingService struct {
	listingRepo repository.ListingRepository
	publisher   events.Publisher
	metrics     *metrics.Metrics
	now         Clock
	locks       *keyedMutex
}

func NewListingService(listingRepo repository.ListingRepository, publisher events.Publisher, m *metrics.Metrics, now Clock) ListingService {
	if now == nil {
		now = systemClock
	}
	return &listingService{listingRepo: listingRepo, publisher: publisher, metrics: m, now: now, locks: newKeyedMutex()}
}

func (s *listingService) GetListing(ctx context.Context, listingID string) (*domain.ServiceListing, error) {
	return s.listingRepo.Get(ctx, listingID)
}

func (s *listingService) ListListings(ctx context.Context, status domain.Optional[domain.ListingStatus]) ([]domain.ServiceListing, error) {
	listings, err := s.listingRepo.List(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list listings: %w", err)
	}
	if listings == nil {
		listings = []domain.ServiceListing{}
	}
	return listings, nil
}

func (s *listingService) ApproveListing(ctx context.Context, actorID, listingID string) (*domain.ServiceListing, error) {
	return s.moderate(ctx, actorID, listingID, "approve_listing", events.ListingApproved, func(l *domain.ServiceListing) error {
		return l.Approve(s.now())
	})
}

func (s *listingService) UnlistListing(ctx context.Context, actorID, listingID string) (*domain.ServiceListing, error) {
	return s.moderate(ctx, actorID, listingID, "unlist_listing", events.ListingUnlisted, func(l *domain.ServiceListing) error {
		return l.Unlist(s.now())
	})
}

func (s *listingService) ReportListing(ctx context.Context, actorID, listingID, reason string) (*domain.ServiceListing, error) {
	return s.moderate(ctx, actorID, listingID, "report_listing", events.ListingReported, func(l *domain.ServiceListing) error {
		return l.Report(reason, s.now())
	})
}

func (s *listingService) moderate(ctx context.Context, actorID, listingID, action string, eventType events.Type, apply func(*domain.ServiceListing) error) (*domain.ServiceListing, error) {
	method := "listingService." + action
	logger.EnterMethod(method, "listingID", listingID, "actor", actorID)

	l, err := s.update(ctx, listingID, apply)
	if err != nil {
		logger.ExitMethodWithError(method, err, "listingID", listingID)
		return nil, err
	}

	s.metrics.ModerationActionsTotal.WithLabelValues(action).Inc()
	publish(ctx, s.publisher, events.Event{
		Type:       eventType,
		EntityID:   l.ID,
		Actor:      actorID,
		Status:     string(l.Status),
		Attributes: map[string]string{"seller_id": l.SellerID, "reason": l.ReportReason.OrElse("")},
		OccurredAt: l.UpdatedAt,
	})
	logger.ExitMethod(method, "listingID", listingID, "status", l.Status)
	return l, nil
}

func (s *listingService) update(ctx context.Context, listingID string, apply func(*domain.ServiceListing) error) (*domain.ServiceListing, error) {
	unlock := s.locks.Lock(listingID)
	defer unlock()

	l, err := s.listingRepo.Get(ctx, listingID)
	if err != nil {
		return nil, err
	}
	from := l.Status
	if err := apply(l); err != nil {
		return nil, err
	}
	if err := s.listingRepo.Update(ctx, l, from); err != nil {
		return nil, fmt.Errorf("failed to update listing: %w", err)
	}
	return l, nil
}
