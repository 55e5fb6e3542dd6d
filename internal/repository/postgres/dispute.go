package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"marketplace-admin-backend/internal/domain"
	"marketplace-admin-backend/internal/logger"
	"marketplace-admin-backend/internal/repository"
)

const disputeColumns = `id, order_id, buyer_id, seller_id, service_title, amount, currency, category, status,
	assigned_to, resolution, opened_at, messages, evidence, version`

type disputeRepository struct {
	db *sql.DB
}

func NewDisputeRepository(db *sql.DB) repository.DisputeRepository {
	return &disputeRepository{db: db}
}

func (r *disputeRepository) Create(ctx context.Context, d *domain.Dispute) error {
	logger.EnterMethod("disputeRepository.Create", "disputeID", d.ID)
	if err := d.Validate(); err != nil {
		logger.ExitMethodWithError("disputeRepository.Create", err, "disputeID", d.ID)
		return err
	}
	resolution, messages, evidence, err := encodeDisputeDocs(d)
	if err != nil {
		return err
	}

	query := `INSERT INTO disputes (id, order_id, buyer_id, seller_id, service_title, amount, currency, category, status,
	          assigned_to, resolution, opened_at, messages, evidence, version)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, 1)`
	_, err = conn(ctx, r.db).ExecContext(ctx, query, d.ID, d.OrderID, d.BuyerID, d.SellerID, d.ServiceTitle, d.Amount,
		d.Currency, d.Category, d.Status, nullString(d.AssignedTo), nullableJSON(resolution), d.OpenedAt, messages, evidence)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			err = fmt.Errorf("%w: dispute %s already exists", domain.ErrConflict, d.ID)
		}
		logger.ExitMethodWithError("disputeRepository.Create", err, "disputeID", d.ID)
		return err
	}
	d.Version = 1
	logger.ExitMethod("disputeRepository.Create", "disputeID", d.ID)
	return nil
}

// Get locks the row when called inside a transaction, so a concurrent
// resolver waits and then sees the committed status.
func (r *disputeRepository) Get(ctx context.Context, id string) (*domain.Dispute, error) {
	query := `SELECT ` + disputeColumns + ` FROM disputes WHERE id = $1`
	if inTx(ctx) {
		query += ` FOR UPDATE`
	}
	d, err := scanDispute(conn(ctx, r.db).QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: dispute %s", domain.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (r *disputeRepository) Save(ctx context.Context, d *domain.Dispute) error {
	logger.EnterMethod("disputeRepository.Save", "disputeID", d.ID, "version", d.Version)
	if err := d.Validate(); err != nil {
		return err
	}
	resolution, messages, evidence, err := encodeDisputeDocs(d)
	if err != nil {
		return err
	}

	q := conn(ctx, r.db)
	query := `UPDATE disputes SET status = $1, assigned_to = $2, resolution = $3, messages = $4, evidence = $5,
	          version = version + 1
	          WHERE id = $6 AND version = $7`
	logger.DatabaseCall("save_dispute", query, "disputeID", d.ID)
	result, err := q.ExecContext(ctx, query, d.Status, nullString(d.AssignedTo), nullableJSON(resolution), messages, evidence, d.ID, d.Version)
	if err != nil {
		logger.DatabaseResult("save_dispute", 0, err)
		return err
	}
	rows, err := result.RowsAffected()
	logger.DatabaseResult("save_dispute", rows, err)
	if err != nil {
		return err
	}
	if rows == 0 {
		var exists bool
		if err := q.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM disputes WHERE id = $1)`, d.ID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%w: dispute %s", domain.ErrNotFound, d.ID)
		}
		return fmt.Errorf("%w: dispute %s was modified concurrently", domain.ErrConflict, d.ID)
	}
	d.Version++
	logger.ExitMethod("disputeRepository.Save", "disputeID", d.ID, "version", d.Version)
	return nil
}

func (r *disputeRepository) List(ctx context.Context) ([]domain.Dispute, error) {
	query := `SELECT ` + disputeColumns + ` FROM disputes ORDER BY seq`
	rows, err := conn(ctx, r.db).QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Dispute
	for rows.Next() {
		d, err := scanDispute(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDispute(row rowScanner) (*domain.Dispute, error) {
	var (
		d                  domain.Dispute
		assignedTo         sql.NullString
		resolution         []byte
		messages, evidence []byte
	)
	err := row.Scan(&d.ID, &d.OrderID, &d.BuyerID, &d.SellerID, &d.ServiceTitle, &d.Amount, &d.Currency, &d.Category,
		&d.Status, &assignedTo, &resolution, &d.OpenedAt, &messages, &evidence, &d.Version)
	if err != nil {
		return nil, err
	}
	d.Currency = domain.Currency(strings.TrimSpace(string(d.Currency)))
	d.AssignedTo = optionalString(assignedTo)
	d.OpenedAt = d.OpenedAt.UTC()

	if len(resolution) > 0 {
		var res domain.Resolution
		if err := json.Unmarshal(resolution, &res); err != nil {
			return nil, fmt.Errorf("decoding resolution of dispute %s: %w", d.ID, err)
		}
		d.Resolution = domain.Some(res)
	}
	if err := json.Unmarshal(messages, &d.Messages); err != nil {
		return nil, fmt.Errorf("decoding messages of dispute %s: %w", d.ID, err)
	}
	if err := json.Unmarshal(evidence, &d.Evidence); err != nil {
		return nil, fmt.Errorf("decoding evidence of dispute %s: %w", d.ID, err)
	}
	return &d, nil
}

func encodeDisputeDocs(d *domain.Dispute) (resolution, messages, evidence []byte, err error) {
	if res, ok := d.Resolution.Get(); ok {
		if resolution, err = json.Marshal(res); err != nil {
			return nil, nil, nil, err
		}
	}
	if messages, err = jsonArray(d.Messages); err != nil {
		return nil, nil, nil, err
	}
	if evidence, err = jsonArray(d.Evidence); err != nil {
		return nil, nil, nil, err
	}
	return resolution, messages, evidence, nil
}

// nullableJSON maps an absent document to SQL NULL.
func nullableJSON(doc []byte) any {
	if doc == nil {
		return nil
	}
	return doc
}
