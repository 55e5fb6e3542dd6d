// Package memory keeps all marketplace data in process. It is the default
// store for local runs and tests.
package memory

import (
	"context"
	"sync"

	"marketplace-admin-backend/internal/repository"
)

type Store struct {
	repository.DisputeRepository
	repository.LedgerRepository
	repository.UserRepository
	repository.ListingRepository
	repository.Transactor
}

func NewStore() *Store {
	return &Store{
		DisputeRepository: NewDisputeRepository(),
		LedgerRepository:  NewLedgerRepository(),
		UserRepository:    NewUserRepository(),
		ListingRepository: NewListingRepository(),
		Transactor:        NewTransactor(),
	}
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

type txKey struct{}

// undoLog collects compensations for writes made inside WithinTx.
type undoLog struct {
	mu    sync.Mutex
	steps []func()
}

func (u *undoLog) add(step func()) {
	u.mu.Lock()
	u.steps = append(u.steps, step)
	u.mu.Unlock()
}

func (u *undoLog) rollback() {
	u.mu.Lock()
	defer u.mu.Unlock()
	for i := len(u.steps) - 1; i >= 0; i-- {
		u.steps[i]()
	}
	u.steps = nil
}

// onRollback registers step to run if the surrounding transaction fails.
// Outside a transaction it does nothing.
func onRollback(ctx context.Context, step func()) {
	if log, ok := ctx.Value(txKey{}).(*undoLog); ok {
		log.add(step)
	}
}

type transactor struct{}

func NewTransactor() repository.Transactor {
	return transactor{}
}

func (transactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, nested := ctx.Value(txKey{}).(*undoLog); nested {
		return fn(ctx)
	}
	log := &undoLog{}
	if err := fn(context.WithValue(ctx, txKey{}, log)); err != nil {
		log.rollback()
		return err
	}
	return nil
}
