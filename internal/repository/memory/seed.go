package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"marketplace-admin-backend/internal/domain"
)

// Seed fills the store with a small demo marketplace, timed relative to now.
func Seed(ctx context.Context, s *Store, now time.Time) error {
	days := func(n int) time.Time { return now.Add(-time.Duration(n) * 24 * time.Hour) }

	users := []domain.User{
		{ID: "usr_buyer_ana", Name: "Ana Pereira", Email: "ana@example.com", Role: domain.UserRoleBuyer, Status: domain.UserStatusActive, JoinedAt: days(120)},
		{ID: "usr_buyer_tom", Name: "Tom Becker", Email: "tom@example.com", Role: domain.UserRoleBuyer, Status: domain.UserStatusActive, JoinedAt: days(60)},
		{ID: "usr_seller_kim", Name: "Kim Lee", Email: "kim@example.com", Role: domain.UserRoleSeller, Status: domain.UserStatusActive, JoinedAt: days(300)},
		{ID: "usr_seller_raj", Name: "Raj Patel", Email: "raj@example.com", Role: domain.UserRoleSeller, Status: domain.UserStatusSuspended, JoinedAt: days(200),
			SuspendedReason: domain.Some("chargeback pattern"), SuspendedAt: domain.Some(days(3))},
		{ID: "usr_admin_jo", Name: "Jo Martin", Email: "jo@example.com", Role: domain.UserRoleAdmin, Status: domain.UserStatusActive, JoinedAt: days(400)},
	}
	for i := range users {
		if err := s.UserRepository.Create(ctx, &users[i]); err != nil {
			return fmt.Errorf("seed user %s: %w", users[i].ID, err)
		}
	}

	listings := []domain.ServiceListing{
		{ID: "svc_logo", SellerID: "usr_seller_kim", Title: "Minimal logo design", Category: "design", Price: decimal.NewFromInt(299), Currency: domain.CurrencyUSD, Status: domain.ListingStatusApproved, UpdatedAt: days(30)},
		{ID: "svc_seo", SellerID: "usr_seller_raj", Title: "SEO audit", Category: "marketing", Price: decimal.NewFromInt(150), Currency: domain.CurrencyEUR, Status: domain.ListingStatusReported, ReportReason: domain.Some("copied portfolio"), UpdatedAt: days(2)},
		{ID: "svc_api", SellerID: "usr_seller_kim", Title: "REST API integration", Category: "development", Price: decimal.NewFromInt(850), Currency: domain.CurrencyGBP, Status: domain.ListingStatusPending, UpdatedAt: days(1)},
	}
	for i := range listings {
		if err := s.ListingRepository.Create(ctx, &listings[i]); err != nil {
			return fmt.Errorf("seed listing %s: %w", listings[i].ID, err)
		}
	}

	disputes := []domain.Dispute{
		{ID: "DSP-1001", OrderID: "ORD-5001", BuyerID: "usr_buyer_ana", SellerID: "usr_seller_kim", ServiceTitle: "Minimal logo design",
			Amount: decimal.NewFromInt(299), Currency: domain.CurrencyUSD, Category: domain.DisputeCategoryQuality, Status: domain.DisputeStatusOpen, OpenedAt: days(1),
			Messages: []domain.Message{{Author: domain.PartyRoleBuyer, Body: "The delivered files are low resolution.", SentAt: days(1)}}},
		{ID: "DSP-1002", OrderID: "ORD-5002", BuyerID: "usr_buyer_tom", SellerID: "usr_seller_raj", ServiceTitle: "SEO audit",
			Amount: decimal.NewFromInt(150), Currency: domain.CurrencyEUR, Category: domain.DisputeCategoryDeliveryLate, Status: domain.DisputeStatusReviewing,
			AssignedTo: domain.Some("usr_admin_jo"), OpenedAt: days(5),
			Evidence: []domain.Evidence{{SubmittedBy: domain.PartyRoleBuyer, Note: "Order deadline screenshot", URL: domain.Some("https://files.example.com/deadline.png"), SubmittedAt: days(5)}}},
		{ID: "DSP-1003", OrderID: "ORD-5003", BuyerID: "usr_buyer_ana", SellerID: "usr_seller_kim", ServiceTitle: "REST API integration",
			Amount: decimal.NewFromInt(850), Currency: domain.CurrencyGBP, Category: domain.DisputeCategoryCommunication, Status: domain.DisputeStatusOpen, OpenedAt: days(9)},
	}
	for i := range disputes {
		if err := s.DisputeRepository.Create(ctx, &disputes[i]); err != nil {
			return fmt.Errorf("seed dispute %s: %w", disputes[i].ID, err)
		}
	}

	payments := []struct {
		order, user string
		amount      int64
		currency    domain.Currency
		at          time.Time
	}{
		{"ORD-5003", "usr_buyer_ana", 850, domain.CurrencyGBP, days(12)},
		{"ORD-5002", "usr_buyer_tom", 150, domain.CurrencyEUR, days(8)},
		{"ORD-5001", "usr_buyer_ana", 299, domain.CurrencyUSD, days(4)},
	}
	for _, p := range payments {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		entry := domain.LedgerEntry{
			ID:        id.String(),
			Type:      domain.LedgerEntryPayment,
			Amount:    decimal.NewFromInt(p.amount),
			Currency:  p.currency,
			CreatedAt: p.at,
			OrderID:   domain.Some(p.order),
			UserID:    domain.Some(p.user),
		}
		if err := s.LedgerRepository.Append(ctx, &entry); err != nil {
			return fmt.Errorf("seed ledger: %w", err)
		}
	}
	return nil
}
