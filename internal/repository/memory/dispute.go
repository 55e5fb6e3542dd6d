package memory

import (
	"context"
	"fmt"
	"sync"

	"marketplace-admin-backend/internal/domain"
	"marketplace-admin-backend/internal/repository"
)

type disputeRepository struct {
	mu       sync.RWMutex
	disputes map[string]*domain.Dispute
	order    []string
}

func NewDisputeRepository() repository.DisputeRepository {
	return &disputeRepository{disputes: make(map[string]*domain.Dispute)}
}

func (r *disputeRepository) Create(ctx context.Context, d *domain.Dispute) error {
	if err := d.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.disputes[d.ID]; exists {
		return fmt.Errorf("%w: dispute %s already exists", domain.ErrConflict, d.ID)
	}
	d.Version = 1
	r.disputes[d.ID] = d.Clone()
	r.order = append(r.order, d.ID)
	return nil
}

func (r *disputeRepository) Get(ctx context.Context, id string) (*domain.Dispute, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.disputes[id]
	if !ok {
		return nil, fmt.Errorf("%w: dispute %s", domain.ErrNotFound, id)
	}
	return d.Clone(), nil
}

func (r *disputeRepository) Save(ctx context.Context, d *domain.Dispute) error {
	if err := d.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.disputes[d.ID]
	if !ok {
		return fmt.Errorf("%w: dispute %s", domain.ErrNotFound, d.ID)
	}
	if current.Version != d.Version {
		return fmt.Errorf("%w: dispute %s was modified concurrently", domain.ErrConflict, d.ID)
	}
	d.Version++
	r.disputes[d.ID] = d.Clone()

	onRollback(ctx, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.disputes[current.ID] = current
	})
	return nil
}

func (r *disputeRepository) List(ctx context.Context) ([]domain.Dispute, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Dispute, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.disputes[id].Clone())
	}
	return out, nil
}
