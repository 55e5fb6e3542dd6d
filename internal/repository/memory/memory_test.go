package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-admin-backend/internal/domain"
)

func newDispute(id string) *domain.Dispute {
	return &domain.Dispute{
		ID:       id,
		OrderID:  "ORD-" + id,
		BuyerID:  "buyer",
		SellerID: "seller",
		Amount:   decimal.NewFromInt(100),
		Currency: domain.CurrencyUSD,
		Category: domain.DisputeCategoryOther,
		Status:   domain.DisputeStatusOpen,
		OpenedAt: time.Now(),
	}
}

func TestDisputeRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewDisputeRepository()

	require.NoError(t, repo.Create(ctx, newDispute("b")))
	require.NoError(t, repo.Create(ctx, newDispute("a")))
	assert.True(t, errors.Is(repo.Create(ctx, newDispute("a")), domain.ErrConflict))

	t.Run("List keeps insertion order", func(t *testing.T) {
		all, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "b", all[0].ID)
		assert.Equal(t, "a", all[1].ID)
	})

	t.Run("Get returns a copy", func(t *testing.T) {
		d, err := repo.Get(ctx, "a")
		require.NoError(t, err)
		require.NoError(t, d.AddMessage(domain.PartyRoleBuyer, "not saved", time.Now()))

		again, err := repo.Get(ctx, "a")
		require.NoError(t, err)
		assert.Empty(t, again.Messages)
	})

	t.Run("Save bumps version and rejects stale writes", func(t *testing.T) {
		first, err := repo.Get(ctx, "a")
		require.NoError(t, err)
		stale, err := repo.Get(ctx, "a")
		require.NoError(t, err)

		_, err = first.Assign("mod")
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, first))
		assert.Equal(t, int64(2), first.Version)

		_, err = stale.Assign("other")
		require.NoError(t, err)
		assert.True(t, errors.Is(repo.Save(ctx, stale), domain.ErrConflict))

		got, err := repo.Get(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, "mod", got.AssignedTo.OrElse(""))
	})

	t.Run("Missing", func(t *testing.T) {
		_, err := repo.Get(ctx, "zzz")
		assert.True(t, errors.Is(err, domain.ErrNotFound))
		assert.True(t, errors.Is(repo.Save(ctx, newDispute("zzz")), domain.ErrNotFound))
	})
}

func TestLedgerRepository_MostRecentFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewLedgerRepository()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"e1", "e2", "e3"} {
		entry := domain.LedgerEntry{ID: id, Type: domain.LedgerEntryFee, Amount: decimal.NewFromInt(1), Currency: domain.CurrencyUSD,
			CreatedAt: base.Add(time.Duration(i) * time.Hour), OrderID: domain.Some("ORD-1")}
		require.NoError(t, repo.Append(ctx, &entry))
	}

	entries, total, err := repo.List(ctx, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, entries, 2)
	assert.Equal(t, "e3", entries[0].ID)
	assert.Equal(t, "e2", entries[1].ID)

	entries, _, err = repo.List(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "e1", entries[0].ID)

	byOrder, err := repo.ListByOrder(ctx, "ORD-1")
	require.NoError(t, err)
	assert.Len(t, byOrder, 3)

	between, err := repo.ListBetween(ctx, base, base.Add(2*time.Hour))
	require.NoError(t, err)
	require.Len(t, between, 2)
	assert.Equal(t, "e2", between[0].ID)

	dup := domain.LedgerEntry{ID: "e1"}
	assert.True(t, errors.Is(repo.Append(ctx, &dup), domain.ErrConflict))
}

func TestTransactor_RollsBackBothWrites(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	require.NoError(t, store.DisputeRepository.Create(ctx, newDispute("d1")))

	boom := errors.New("boom")
	err := store.WithinTx(ctx, func(ctx context.Context) error {
		d, err := store.DisputeRepository.Get(ctx, "d1")
		require.NoError(t, err)
		entry, err := d.Resolve(domain.ResolveInput{Outcome: domain.OutcomeRefund}, time.Now())
		require.NoError(t, err)
		require.NoError(t, store.DisputeRepository.Save(ctx, d))
		entry.ID = "refund-1"
		require.NoError(t, store.LedgerRepository.Append(ctx, &entry))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	d, err := store.DisputeRepository.Get(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, domain.DisputeStatusOpen, d.Status)
	assert.Equal(t, int64(1), d.Version)

	_, total, err := store.LedgerRepository.List(ctx, 10, 0)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestUserAndListingRepositories(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	require.NoError(t, Seed(ctx, store, time.Now()))

	suspended, err := store.UserRepository.List(ctx, domain.UserFilter{Status: domain.Some(domain.UserStatusSuspended)})
	require.NoError(t, err)
	require.Len(t, suspended, 1)
	assert.Equal(t, "usr_seller_raj", suspended[0].ID)

	u, err := store.UserRepository.Get(ctx, "usr_buyer_ana")
	require.NoError(t, err)
	require.NoError(t, u.Suspend("spam", time.Now()))
	require.NoError(t, store.UserRepository.Update(ctx, u, domain.UserStatusActive))
	u, err = store.UserRepository.Get(ctx, "usr_buyer_ana")
	require.NoError(t, err)
	assert.Equal(t, domain.UserStatusSuspended, u.Status)

	// A change based on the old status is refused.
	err = store.UserRepository.Update(ctx, u, domain.UserStatusActive)
	assert.True(t, errors.Is(err, domain.ErrInvalidState))

	reported, err := store.ListingRepository.List(ctx, domain.Some(domain.ListingStatusReported))
	require.NoError(t, err)
	require.Len(t, reported, 1)
	assert.Equal(t, "svc_seo", reported[0].ID)

	l, err := store.ListingRepository.Get(ctx, "svc_seo")
	require.NoError(t, err)
	require.NoError(t, l.Unlist(time.Now()))
	assert.True(t, errors.Is(store.ListingRepository.Update(ctx, l, domain.ListingStatusApproved), domain.ErrInvalidState))
	require.NoError(t, store.ListingRepository.Update(ctx, l, domain.ListingStatusReported))

	all, err := store.ListingRepository.List(ctx, domain.None[domain.ListingStatus]())
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = store.ListingRepository.Get(ctx, "missing")
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	disputes, err := store.DisputeRepository.List(ctx)
	require.NoError(t, err)
	assert.Len(t, disputes, 3)
}
