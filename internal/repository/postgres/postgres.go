package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"marketplace-admin-backend/internal/domain"
	"marketplace-admin-backend/internal/repository"
)

type Store struct {
	db *sql.DB
	repository.DisputeRepository
	repository.LedgerRepository
	repository.UserRepository
	repository.ListingRepository
	repository.Transactor
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                db,
		DisputeRepository: NewDisputeRepository(db),
		LedgerRepository:  NewLedgerRepository(db),
		UserRepository:    NewUserRepository(db),
		ListingRepository: NewListingRepository(db),
		Transactor:        NewTransactor(db),
	}
}

// Open connects to Postgres and verifies the connection.
func Open(ctx context.Context, dsn string, maxOpenConns int) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxOpenConns / 2)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type txKey struct{}

// conn returns the transaction carried by ctx, or db outside a transaction.
func conn(ctx context.Context, db *sql.DB) querier {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return db
}

type transactor struct {
	db *sql.DB
}

func NewTransactor(db *sql.DB) repository.Transactor {
	return &transactor{db: db}
}

// missingOrMoved explains a guarded UPDATE that matched no row: either the
// record does not exist or its status changed since it was read.
func missingOrMoved(ctx context.Context, db *sql.DB, table, kind, id string) error {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM ` + table + ` WHERE id = $1)`
	if err := conn(ctx, db).QueryRowContext(ctx, query, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s %s", domain.ErrNotFound, kind, id)
	}
	return fmt.Errorf("%w: %s %s was moderated concurrently", domain.ErrInvalidState, kind, id)
}

func inTx(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{}).(*sql.Tx)
	return ok
}

func (t *transactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if inTx(ctx) {
		return fn(ctx)
	}
	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}
	return tx.Commit()
}

func nullString(o domain.Optional[string]) sql.NullString {
	v, ok := o.Get()
	return sql.NullString{String: v, Valid: ok}
}

func optionalString(n sql.NullString) domain.Optional[string] {
	if !n.Valid {
		return domain.None[string]()
	}
	return domain.Some(n.String)
}

func nullTime(o domain.Optional[time.Time]) sql.NullTime {
	v, ok := o.Get()
	return sql.NullTime{Time: v, Valid: ok}
}

func optionalTime(n sql.NullTime) domain.Optional[time.Time] {
	if !n.Valid {
		return domain.None[time.Time]()
	}
	return domain.Some(n.Time.UTC())
}

// jsonArray encodes a slice as a JSON array, never null.
func jsonArray[T any](items []T) ([]byte, error) {
	if items == nil {
		items = []T{}
	}
	return json.Marshal(items)
}
