package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"marketplace-admin-backend/internal/domain"
	"marketplace-admin-backend/internal/events"
	"marketplace-admin-backend/internal/logger"
	"marketplace-admin-backend/internal/metrics"
	"marketplace-admin-backend/internal/repository"
	"marketplace-admin-backend/internal/utils"
)

// LedgerWriter appends ledger entries with non-decreasing timestamps. Every
// service that records entries must share one writer.
type LedgerWriter struct {
	repo repository.LedgerRepository
	now  Clock

	mu   sync.Mutex
	last time.Time
}

func NewLedgerWriter(repo repository.LedgerRepository, now Clock) *LedgerWriter {
	if now == nil {
		now = systemClock
	}
	return &LedgerWriter{repo: repo, now: now}
}

// Append fills in the id and timestamp when unset and appends the entry.
// The lock is held across the repository call so a later entry can never be
// stored with an earlier timestamp.
func (w *LedgerWriter) Append(ctx context.Context, entry domain.LedgerEntry) (domain.LedgerEntry, error) {
	if _, err := domain.ParseLedgerEntryType(string(entry.Type)); err != nil {
		return domain.LedgerEntry{}, err
	}
	if _, err := domain.ParseCurrency(string(entry.Currency)); err != nil {
		return domain.LedgerEntry{}, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if entry.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return domain.LedgerEntry{}, fmt.Errorf("failed to generate ledger entry id: %w", err)
		}
		entry.ID = id.String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = w.now()
	}
	if entry.CreatedAt.Before(w.last) {
		entry.CreatedAt = w.last
	}
	if err := w.repo.Append(ctx, &entry); err != nil {
		return domain.LedgerEntry{}, err
	}
	w.last = entry.CreatedAt
	return entry, nil
}

type ledgerService struct {
	writer     *LedgerWriter
	ledgerRepo repository.LedgerRepository
	publisher  events.Publisher
	metrics    *metrics.Metrics
}

func NewLedgerService(writer *LedgerWriter, ledgerRepo repository.LedgerRepository, publisher events.Publisher, m *metrics.Metrics) LedgerService {
	return &ledgerService{writer: writer, ledgerRepo: ledgerRepo, publisher: publisher, metrics: m}
}

func (s *ledgerService) Record(ctx context.Context, entry domain.LedgerEntry) (*domain.LedgerEntry, error) {
	logger.EnterMethod("ledgerService.Record", "type", entry.Type, "orderID", entry.OrderID.OrElse(""))

	recorded, err := s.writer.Append(ctx, entry)
	if err != nil {
		logger.ExitMethodWithError("ledgerService.Record", err)
		return nil, fmt.Errorf("failed to record ledger entry: %w", err)
	}

	announceLedgerEntry(ctx, s.publisher, s.metrics, recorded)
	logger.ExitMethod("ledgerService.Record", "entryID", recorded.ID)
	return &recorded, nil
}

func (s *ledgerService) ListEntries(ctx context.Context, page, pageSize int) (*LedgerPage, error) {
	page, pageSize = utils.NormalizePage(page, pageSize)
	items, total, err := s.ledgerRepo.List(ctx, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	if items == nil {
		items = []domain.LedgerEntry{}
	}
	return &LedgerPage{Items: items, Total: total, Page: page, PageSize: pageSize}, nil
}

func (s *ledgerService) ListByOrder(ctx context.Context, orderID string) ([]domain.LedgerEntry, error) {
	if orderID == "" {
		return nil, fmt.Errorf("%w: order id is required", domain.ErrInvalidArgument)
	}
	entries, err := s.ledgerRepo.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []domain.LedgerEntry{}
	}
	return entries, nil
}

func (s *ledgerService) Totals(ctx context.Context, from, to time.Time) ([]domain.LedgerTotal, error) {
	if !from.Before(to) {
		return nil, fmt.Errorf("%w: from must be before to", domain.ErrInvalidArgument)
	}
	entries, err := s.ledgerRepo.ListBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return domain.SumLedger(entries), nil
}

// announceLedgerEntry runs after the entry is committed.
func announceLedgerEntry(ctx context.Context, p events.Publisher, m *metrics.Metrics, entry domain.LedgerEntry) {
	m.LedgerEntriesTotal.WithLabelValues(string(entry.Type), string(entry.Currency)).Inc()
	publish(ctx, p, events.Event{
		Type:     events.LedgerEntryRecorded,
		EntityID: entry.ID,
		Attributes: map[string]string{
			"type":     string(entry.Type),
			"amount":   entry.Amount.String(),
			"currency": string(entry.Currency),
			"order_id": entry.OrderID.OrElse(""),
			"user_id":  entry.UserID.OrElse(""),
		},
		OccurredAt: entry.CreatedAt,
	})
}

// publish delivers an event after the state change is committed. A failed
// publish is logged; it never undoes the change.
func publish(ctx context.Context, p events.Publisher, e events.Event) {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}
	if err := p.Publish(ctx, e); err != nil {
		logger.Error("Failed to publish event", "type", e.Type, "entity_id", e.EntityID, "error", err)
	}
}
