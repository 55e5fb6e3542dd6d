package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"marketplace-admin-backend/internal/domain"
	"marketplace-admin-backend/internal/logger"
	"marketplace-admin-backend/internal/repository"
)

const ledgerColumns = `id, type, amount, currency, created_at, order_id, user_id, note`

type ledgerRepository struct {
	db *sql.DB
}

func NewLedgerRepository(db *sql.DB) repository.LedgerRepository {
	return &ledgerRepository{db: db}
}

func (r *ledgerRepository) Append(ctx context.Context, e *domain.LedgerEntry) error {
	query := `INSERT INTO ledger_entries (id, type, amount, currency, created_at, order_id, user_id, note)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	logger.DatabaseCall("append_ledger_entry", query, "entryID", e.ID, "type", e.Type)
	result, err := conn(ctx, r.db).ExecContext(ctx, query, e.ID, e.Type, e.Amount, e.Currency, e.CreatedAt,
		nullString(e.OrderID), nullString(e.UserID), nullString(e.Note))
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			err = fmt.Errorf("%w: ledger entry %s already exists", domain.ErrConflict, e.ID)
		}
		logger.DatabaseResult("append_ledger_entry", 0, err)
		return err
	}
	rows, _ := result.RowsAffected()
	logger.DatabaseResult("append_ledger_entry", rows, nil)
	return nil
}

func (r *ledgerRepository) List(ctx context.Context, limit, offset int) ([]domain.LedgerEntry, int, error) {
	q := conn(ctx, r.db)

	var total int
	if err := q.QueryRowContext(ctx, `SELECT count(*) FROM ledger_entries`).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + ledgerColumns + ` FROM ledger_entries ORDER BY created_at DESC, seq DESC LIMIT $1 OFFSET $2`
	entries, err := r.query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

func (r *ledgerRepository) ListByOrder(ctx context.Context, orderID string) ([]domain.LedgerEntry, error) {
	query := `SELECT ` + ledgerColumns + ` FROM ledger_entries WHERE order_id = $1 ORDER BY created_at DESC, seq DESC`
	return r.query(ctx, query, orderID)
}

func (r *ledgerRepository) ListBetween(ctx context.Context, from, to time.Time) ([]domain.LedgerEntry, error) {
	query := `SELECT ` + ledgerColumns + ` FROM ledger_entries WHERE created_at >= $1 AND created_at < $2 ORDER BY created_at DESC, seq DESC`
	return r.query(ctx, query, from, to)
}

func (r *ledgerRepository) query(ctx context.Context, query string, args ...any) ([]domain.LedgerEntry, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.LedgerEntry
	for rows.Next() {
		var (
			e                     domain.LedgerEntry
			orderID, userID, note sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.Type, &e.Amount, &e.Currency, &e.CreatedAt, &orderID, &userID, &note); err != nil {
			return nil, err
		}
		e.Currency = domain.Currency(strings.TrimSpace(string(e.Currency)))
		e.CreatedAt = e.CreatedAt.UTC()
		e.OrderID = optionalString(orderID)
		e.UserID = optionalString(userID)
		e.Note = optionalString(note)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
