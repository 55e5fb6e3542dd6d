package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"marketplace-admin-backend/internal/domain"
)

type OpenDisputeInput struct {
	OrderID      string
	BuyerID      string
	SellerID     string
	ServiceTitle string
	Amount       decimal.Decimal
	Currency     domain.Currency
	Category     domain.DisputeCategory
	// Description becomes the first thread message, authored by the buyer.
	Description string
}

type DisputePage struct {
	Items    []domain.Dispute `json:"items"`
	Total    int              `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
}

type DisputeService interface {
	OpenDispute(ctx context.Context, in OpenDisputeInput) (*domain.Dispute, error)
	GetDispute(ctx context.Context, id string) (*domain.Dispute, error)
	ListDisputes(ctx context.Context, filter domain.DisputeFilter, page, pageSize int) (*DisputePage, error)
	Assign(ctx context.Context, disputeID, moderatorID string) (*domain.Dispute, error)
	// Resolve returns the resolved dispute and the ledger entry it produced.
	Resolve(ctx context.Context, disputeID string, in domain.ResolveInput) (*domain.Dispute, *domain.LedgerEntry, error)
	AddMessage(ctx context.Context, disputeID string, author domain.PartyRole, body string) (*domain.Dispute, error)
	AddEvidence(ctx context.Context, disputeID string, by domain.PartyRole, note string, url domain.Optional[string]) (*domain.Dispute, error)
	// StaleDisputes returns unresolved disputes opened at least minAge ago.
	StaleDisputes(ctx context.Context, minAge time.Duration) ([]domain.Dispute, error)
}

type LedgerPage struct {
	Items    []domain.LedgerEntry `json:"items"`
	Total    int                  `json:"total"`
	Page     int                  `json:"page"`
	PageSize int                  `json:"page_size"`
}

type LedgerService interface {
	// Record assigns the entry's id and timestamp when unset and appends it.
	Record(ctx context.Context, entry domain.LedgerEntry) (*domain.LedgerEntry, error)
	ListEntries(ctx context.Context, page, pageSize int) (*LedgerPage, error)
	ListByOrder(ctx context.Context, orderID string) ([]domain.LedgerEntry, error)
	Totals(ctx context.Context, from, to time.Time) ([]domain.LedgerTotal, error)
}

type UserService interface {
	SuspendUser(ctx context.Context, actorID, userID, reason string) (*domain.User, error)
	ReactivateUser(ctx context.Context, actorID, userID string) (*domain.User, error)
	GetUser(ctx context.Context, userID string) (*domain.User, error)
	ListUsers(ctx context.Context, filter domain.UserFilter) ([]domain.User, error)
}

type ListingService interface {
	ApproveListing(ctx context.Context, actorID, listingID string) (*domain.ServiceListing, error)
	UnlistListing(ctx context.Context, actorID, listingID string) (*domain.ServiceListing, error)
	ReportListing(ctx context.Context, actorID, listingID, reason string) (*domain.ServiceListing, error)
	GetListing(ctx context.Context, listingID string) (*domain.ServiceListing, error)
	ListListings(ctx context.Context, status domain.Optional[domain.ListingStatus]) ([]domain.ServiceListing, error)
}

type DashboardService interface {
	// Metrics serves from cache when fresh.
	Metrics(ctx context.Context) (*domain.DashboardMetrics, error)
	// Refresh recomputes the metrics and replaces the cached copy.
	Refresh(ctx context.Context) (*domain.DashboardMetrics, error)
	Report(ctx context.Context, from, to time.Time) (*domain.AnalyticsReport, error)
}

type EmailService interface {
	SendDisputeResolvedNotification(ctx context.Context, d *domain.Dispute) error
	SendAccountStatusNotification(ctx context.Context, u *domain.User) error
	SendAdminNotification(ctx context.Context, subject, message string) error
}

// Clock returns the current time. Services take one so tests can pin "now".
type Clock func() time.Time

func systemClock() time.Time {
	return time.Now().UTC()
}
