package repository

import (
	"context"
	"time"

	"marketplace-admin-backend/internal/domain"
)

// DisputeRepository persists disputes. Implementations return copies; callers
// never share a Dispute's thread or evidence with the store.
type DisputeRepository interface {
	Create(ctx context.Context, d *domain.Dispute) error
	Get(ctx context.Context, id string) (*domain.Dispute, error)
	// Save persists d if its Version matches the stored one and bumps Version.
	// A stale version returns domain.ErrConflict.
	Save(ctx context.Context, d *domain.Dispute) error
	// List returns every dispute in insertion order.
	List(ctx context.Context) ([]domain.Dispute, error)
}

// LedgerRepository is append-only. There is no update or delete.
type LedgerRepository interface {
	Append(ctx context.Context, entry *domain.LedgerEntry) error
	// List returns entries most recent first, with the total entry count.
	List(ctx context.Context, limit, offset int) ([]domain.LedgerEntry, int, error)
	ListByOrder(ctx context.Context, orderID string) ([]domain.LedgerEntry, error)
	// ListBetween returns entries created in [from, to), most recent first.
	ListBetween(ctx context.Context, from, to time.Time) ([]domain.LedgerEntry, error)
}

type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, id string) (*domain.User, error)
	// Update stores u only while the stored status still equals from. A user
	// moved on by someone else returns domain.ErrInvalidState.
	Update(ctx context.Context, u *domain.User, from domain.UserStatus) error
	List(ctx context.Context, filter domain.UserFilter) ([]domain.User, error)
}

type ListingRepository interface {
	Create(ctx context.Context, l *domain.ServiceListing) error
	Get(ctx context.Context, id string) (*domain.ServiceListing, error)
	// Update stores l only while the stored status still equals from.
	Update(ctx context.Context, l *domain.ServiceListing, from domain.ListingStatus) error
	List(ctx context.Context, status domain.Optional[domain.ListingStatus]) ([]domain.ServiceListing, error)
}

// Transactor runs fn so that every repository write made with the ctx it
// receives commits or rolls back together.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}
