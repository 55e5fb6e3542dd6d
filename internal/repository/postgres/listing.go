package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"marketplace-admin-backend/internal/domain"
	"marketplace-admin-backend/internal/logger"
	"marketplace-admin-backend/internal/repository"
)

const listingColumns = `id, seller_id, title, category, price, currency, status, report_reason, updated_at`

type listingRepository struct {
	db *sql.DB
}

func NewListingRepository(db *sql.DB) repository.ListingRepository {
	return &listingRepository{db: db}
}

func (r *listingRepository) Create(ctx context.Context, l *domain.ServiceListing) error {
	query := `INSERT INTO service_listings (id, seller_id, title, category, price, currency, status, report_reason, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := conn(ctx, r.db).ExecContext(ctx, query, l.ID, l.SellerID, l.Title, l.Category, l.Price, l.Currency,
		l.Status, nullString(l.ReportReason), l.UpdatedAt)
	return err
}

func (r *listingRepository) Get(ctx context.Context, id string) (*domain.ServiceListing, error) {
	query := `SELECT ` + listingColumns + ` FROM service_listings WHERE id = $1`
	l, err := scanListing(conn(ctx, r.db).QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: listing %s", domain.ErrNotFound, id)
	}
	return l, err
}

func (r *listingRepository) Update(ctx context.Context, l *domain.ServiceListing, from domain.ListingStatus) error {
	query := `UPDATE service_listings SET title = $1, category = $2, price = $3, status = $4, report_reason = $5, updated_at = $6
	          WHERE id = $7 AND status = $8`
	logger.DatabaseCall("update_listing", query, "listingID", l.ID, "from", from)
	result, err := conn(ctx, r.db).ExecContext(ctx, query, l.Title, l.Category, l.Price, l.Status,
		nullString(l.ReportReason), l.UpdatedAt, l.ID, from)
	if err != nil {
		logger.DatabaseResult("update_listing", 0, err)
		return err
	}
	rows, err := result.RowsAffected()
	logger.DatabaseResult("update_listing", rows, err)
	if err != nil {
		return err
	}
	if rows == 0 {
		return missingOrMoved(ctx, r.db, "service_listings", "listing", l.ID)
	}
	return nil
}

func (r *listingRepository) List(ctx context.Context, status domain.Optional[domain.ListingStatus]) ([]domain.ServiceListing, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if s, ok := status.Get(); ok {
		rows, err = conn(ctx, r.db).QueryContext(ctx, `SELECT `+listingColumns+` FROM service_listings WHERE status = $1 ORDER BY seq`, s)
	} else {
		rows, err = conn(ctx, r.db).QueryContext(ctx, `SELECT `+listingColumns+` FROM service_listings ORDER BY seq`)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var listings []domain.ServiceListing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, *l)
	}
	return listings, rows.Err()
}

func scanListing(row rowScanner) (*domain.ServiceListing, error) {
	var (
		l      domain.ServiceListing
		reason sql.NullString
	)
	if err := row.Scan(&l.ID, &l.SellerID, &l.Title, &l.Category, &l.Price, &l.Currency, &l.Status, &reason, &l.UpdatedAt); err != nil {
		return nil, err
	}
	l.Currency = domain.Currency(strings.TrimSpace(string(l.Currency)))
	l.UpdatedAt = l.UpdatedAt.UTC()
	l.ReportReason = optionalString(reason)
	return &l, nil
}
