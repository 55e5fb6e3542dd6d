package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"marketplace-admin-backend/internal/domain"
	"marketplace-admin-backend/internal/repository"
)

// ledgerRepository keeps entries in append order; reads reverse it.
type ledgerRepository struct {
	mu      sync.RWMutex
	entries []domain.LedgerEntry
}

func NewLedgerRepository() repository.LedgerRepository {
	return &ledgerRepository{}
}

func (r *ledgerRepository) Append(ctx context.Context, entry *domain.LedgerEntry) error {
	if entry.ID == "" {
		return fmt.Errorf("%w: ledger entry id is required", domain.ErrInvalidArgument)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.entries {
		if r.entries[i].ID == entry.ID {
			return fmt.Errorf("%w: ledger entry %s already exists", domain.ErrConflict, entry.ID)
		}
	}
	r.entries = append(r.entries, *entry)

	id := entry.ID
	onRollback(ctx, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		for i := range r.entries {
			if r.entries[i].ID == id {
				r.entries = append(r.entries[:i], r.entries[i+1:]...)
				return
			}
		}
	})
	return nil
}

func (r *ledgerRepository) List(ctx context.Context, limit, offset int) ([]domain.LedgerEntry, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	total := len(r.entries)
	out := make([]domain.LedgerEntry, 0, limit)
	for i := total - 1 - offset; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.entries[i])
	}
	return out, total, nil
}

func (r *ledgerRepository) ListByOrder(ctx context.Context, orderID string) ([]domain.LedgerEntry, error) {
	return r.collect(func(e *domain.LedgerEntry) bool {
		id, ok := e.OrderID.Get()
		return ok && id == orderID
	}), nil
}

func (r *ledgerRepository) ListBetween(ctx context.Context, from, to time.Time) ([]domain.LedgerEntry, error) {
	return r.collect(func(e *domain.LedgerEntry) bool {
		return !e.CreatedAt.Before(from) && e.CreatedAt.Before(to)
	}), nil
}

func (r *ledgerRepository) collect(keep func(*domain.LedgerEntry) bool) []domain.LedgerEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.LedgerEntry
	for i := len(r.entries) - 1; i >= 0; i-- {
		if keep(&r.entries[i]) {
			out = append(out, r.entries[i])
		}
	}
	return out
}
