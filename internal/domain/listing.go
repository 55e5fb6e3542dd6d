package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type ListingStatus string

const (
	ListingStatusPending  ListingStatus = "pending"
	ListingStatusReported ListingStatus = "reported"
	ListingStatusApproved ListingStatus = "approved"
	ListingStatusUnlisted ListingStatus = "unlisted"
)

var listingStatuses = []ListingStatus{
	ListingStatusPending,
	ListingStatusReported,
	ListingStatusApproved,
	ListingStatusUnlisted,
}

func ParseListingStatus(raw string) (ListingStatus, error) {
	return parseEnum("listing status", strings.TrimSpace(raw), listingStatuses)
}

func (s *ListingStatus) UnmarshalText(text []byte) error {
	v, err := ParseListingStatus(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ServiceListing is a service offered by a seller on the marketplace.
type ServiceListing struct {
	ID           string           `json:"id"`
	SellerID     string           `json:"seller_id"`
	Title        string           `json:"title"`
	Category     string           `json:"category"`
	Price        decimal.Decimal  `json:"price"`
	Currency     Currency         `json:"currency"`
	Status       ListingStatus    `json:"status"`
	ReportReason Optional[string] `json:"report_reason"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

func (l *ServiceListing) transition(to ListingStatus, at time.Time, from ...ListingStatus) error {
	for _, s := range from {
		if l.Status == s {
			l.Status = to
			l.UpdatedAt = at
			return nil
		}
	}
	return fmt.Errorf("%w: listing %s is %s, cannot become %s", ErrInvalidState, l.ID, l.Status, to)
}

func (l *ServiceListing) Approve(at time.Time) error {
	if err := l.transition(ListingStatusApproved, at, ListingStatusPending, ListingStatusReported, ListingStatusUnlisted); err != nil {
		return err
	}
	l.ReportReason = None[string]()
	return nil
}

func (l *ServiceListing) Unlist(at time.Time) error {
	return l.transition(ListingStatusUnlisted, at, ListingStatusApproved, ListingStatusReported)
}

func (l *ServiceListing) Report(reason string, at time.Time) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return fmt.Errorf("%w: report reason is required", ErrInvalidArgument)
	}
	if err := l.transition(ListingStatusReported, at, ListingStatusApproved); err != nil {
		return err
	}
	l.ReportReason = Some(reason)
	return nil
}
