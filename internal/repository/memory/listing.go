package memory

import (
	"context"
	"fmt"
	"sync"

	"marketplace-admin-backend/internal/domain"
	"marketplace-admin-backend/internal/repository"
)

type listingRepository struct {
	mu       sync.RWMutex
	listings map[string]domain.ServiceListing
	order    []string
}

func NewListingRepository() repository.ListingRepository {
	return &listingRepository{listings: make(map[string]domain.ServiceListing)}
}

func (r *listingRepository) Create(ctx context.Context, l *domain.ServiceListing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.listings[l.ID]; exists {
		return fmt.Errorf("%w: listing %s already exists", domain.ErrConflict, l.ID)
	}
	r.listings[l.ID] = *l
	r.order = append(r.order, l.ID)
	return nil
}

func (r *listingRepository) Get(ctx context.Context, id string) (*domain.ServiceListing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.listings[id]
	if !ok {
		return nil, fmt.Errorf("%w: listing %s", domain.ErrNotFound, id)
	}
	return &l, nil
}

func (r *listingRepository) Update(ctx context.Context, l *domain.ServiceListing, from domain.ListingStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.listings[l.ID]
	if !ok {
		return fmt.Errorf("%w: listing %s", domain.ErrNotFound, l.ID)
	}
	if stored.Status != from {
		return fmt.Errorf("%w: listing %s is already %s", domain.ErrInvalidState, l.ID, stored.Status)
	}
	r.listings[l.ID] = *l
	return nil
}

func (r *listingRepository) List(ctx context.Context, status domain.Optional[domain.ListingStatus]) ([]domain.ServiceListing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.ServiceListing, 0, len(r.order))
	for _, id := range r.order {
		l := r.listings[id]
		if s, ok := status.Get(); ok && l.Status != s {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}
