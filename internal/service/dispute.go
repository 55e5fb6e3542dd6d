package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"marketplace-admin-backend/internal/domain"
	"marketplace-admin-backend/internal/events"
	"marketplace-admin-backend/internal/logger"
	"marketplace-admin-backend/internal/metrics"
	"marketplace-admin-backend/internal/repository"
	"marketplace-admin-backend/internal/utils"
)

type disputeService struct {
	disputeRepo repository.DisputeRepository
	tx          repository.Transactor
	ledger      *LedgerWriter
	publisher   events.Publisher
	emailSvc    EmailService
	metrics     *metrics.Metrics
	ids         *utils.IDGenerator
	now         Clock
	locks       *keyedMutex
	log         *slog.Logger
}

func NewDisputeService(
	disputeRepo repository.DisputeRepository,
	tx repository.Transactor,
	ledger *LedgerWriter,
	publisher events.Publisher,
	emailSvc EmailService,
	m *metrics.Metrics,
	now Clock,
) (DisputeService, error) {
	ids, err := utils.NewIDGenerator("DSP")
	if err != nil {
		return nil, err
	}
	if now == nil {
		now = systemClock
	}
	return &disputeService{
		disputeRepo: disputeRepo,
		tx:          tx,
		ledger:      ledger,
		publisher:   publisher,
		emailSvc:    emailSvc,
		metrics:     m,
		ids:         ids,
		now:         now,
		locks:       newKeyedMutex(),
		log:         logger.WithComponent("dispute_service"),
	}, nil
}

func (s *disputeService) OpenDispute(ctx context.Context, in OpenDisputeInput) (*domain.Dispute, error) {
	logger.EnterMethod("disputeService.OpenDispute", "orderID", in.OrderID)

	at := s.now()
	d := &domain.Dispute{
		ID:           s.ids.New(),
		OrderID:      strings.TrimSpace(in.OrderID),
		BuyerID:      strings.TrimSpace(in.BuyerID),
		SellerID:     strings.TrimSpace(in.SellerID),
		ServiceTitle: strings.TrimSpace(in.ServiceTitle),
		Amount:       in.Amount,
		Currency:     in.Currency,
		Category:     in.Category,
		Status:       domain.DisputeStatusOpen,
		OpenedAt:     at,
		Messages:     []domain.Message{},
		Evidence:     []domain.Evidence{},
	}
	if d.BuyerID == d.SellerID && d.BuyerID != "" {
		return nil, fmt.Errorf("%w: buyer and seller must differ", domain.ErrInvalidArgument)
	}
	if strings.TrimSpace(in.Description) != "" {
		if err := d.AddMessage(domain.PartyRoleBuyer, in.Description, at); err != nil {
			return nil, err
		}
	}
	if err := d.Validate(); err != nil {
		logger.ExitMethodWithError("disputeService.OpenDispute", err)
		return nil, err
	}
	if err := s.disputeRepo.Create(ctx, d); err != nil {
		logger.ExitMethodWithError("disputeService.OpenDispute", err)
		return nil, fmt.Errorf("failed to create dispute: %w", err)
	}

	s.metrics.DisputesOpenedTotal.WithLabelValues(string(d.Category)).Inc()
	publish(ctx, s.publisher, events.Event{
		Type:     events.DisputeOpened,
		EntityID: d.ID,
		Status:   string(d.Status),
		Attributes: map[string]string{
			"order_id": d.OrderID,
			"category": string(d.Category),
			"amount":   d.Amount.String(),
			"currency": string(d.Currency),
		},
		OccurredAt: at,
	})
	logger.ExitMethod("disputeService.OpenDispute", "disputeID", d.ID)
	return d, nil
}

func (s *disputeService) GetDispute(ctx context.Context, id string) (*domain.Dispute, error) {
	return s.disputeRepo.Get(ctx, id)
}

func (s *disputeService) ListDisputes(ctx context.Context, filter domain.DisputeFilter, page, pageSize int) (*DisputePage, error) {
	all, err := s.disputeRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load disputes: %w", err)
	}
	matched := domain.FilterDisputes(all, filter, s.now())
	page, pageSize = utils.NormalizePage(page, pageSize)
	return &DisputePage{
		Items:    utils.Paginate(matched, page, pageSize),
		Total:    len(matched),
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// mutate loads a dispute under its lock, applies fn and saves the result.
// fn reports whether the dispute changed; unchanged disputes are not saved.
func (s *disputeService) mutate(ctx context.Context, id string, fn func(d *domain.Dispute) (bool, error)) (*domain.Dispute, bool, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	d, err := s.disputeRepo.Get(ctx, id)
	if err != nil {
		return nil, false, err
	}
	changed, err := fn(d)
	if err != nil || !changed {
		return d, false, err
	}
	if err := s.disputeRepo.Save(ctx, d); err != nil {
		s.countConflict(err)
		return nil, false, err
	}
	return d, true, nil
}

func (s *disputeService) countConflict(err error) {
	if errors.Is(err, domain.ErrConflict) {
		s.metrics.ConflictsTotal.Inc()
	}
}

func (s *disputeService) Assign(ctx context.Context, disputeID, moderatorID string) (*domain.Dispute, error) {
	logger.EnterMethod("disputeService.Assign", "disputeID", disputeID, "moderatorID", moderatorID)

	d, changed, err := s.mutate(ctx, disputeID, func(d *domain.Dispute) (bool, error) {
		return d.Assign(moderatorID)
	})
	if err != nil {
		logger.ExitMethodWithError("disputeService.Assign", err, "disputeID", disputeID)
		return nil, err
	}
	if changed {
		s.metrics.DisputesAssignedTotal.Inc()
		publish(ctx, s.publisher, events.Event{
			Type:       events.DisputeAssigned,
			EntityID:   d.ID,
			Actor:      d.AssignedTo.OrElse(""),
			Status:     string(d.Status),
			OccurredAt: s.now(),
		})
	}
	logger.ExitMethod("disputeService.Assign", "disputeID", disputeID, "changed", changed)
	return d, nil
}

func (s *disputeService) Resolve(ctx context.Context, disputeID string, in domain.ResolveInput) (*domain.Dispute, *domain.LedgerEntry, error) {
	logger.EnterMethod("disputeService.Resolve", "disputeID", disputeID, "outcome", in.Outcome)

	resolved, entry, err := s.commitResolution(ctx, disputeID, in)
	if err != nil {
		s.countConflict(err)
		logger.ExitMethodWithError("disputeService.Resolve", err, "disputeID", disputeID)
		return nil, nil, err
	}

	s.afterResolve(ctx, resolved, entry)
	logger.ExitMethod("disputeService.Resolve", "disputeID", disputeID, "status", resolved.Status, "entryID", entry.ID)
	return resolved, &entry, nil
}

// commitResolution saves the resolved dispute and its ledger entry in one
// transaction while holding the dispute lock.
func (s *disputeService) commitResolution(ctx context.Context, disputeID string, in domain.ResolveInput) (*domain.Dispute, domain.LedgerEntry, error) {
	unlock := s.locks.Lock(disputeID)
	defer unlock()

	var (
		resolved *domain.Dispute
		entry    domain.LedgerEntry
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		d, err := s.disputeRepo.Get(ctx, disputeID)
		if err != nil {
			return err
		}
		at := s.now()
		pending, err := d.Resolve(in, at)
		if err != nil {
			return err
		}
		if err := s.disputeRepo.Save(ctx, d); err != nil {
			return err
		}
		pending.CreatedAt = at
		recorded, err := s.ledger.Append(ctx, pending)
		if err != nil {
			return fmt.Errorf("failed to record resolution ledger entry: %w", err)
		}
		resolved, entry = d, recorded
		return nil
	})
	return resolved, entry, err
}

// afterResolve runs the side effects of a committed resolution outside the
// dispute lock. None of them can fail the call.
func (s *disputeService) afterResolve(ctx context.Context, d *domain.Dispute, entry domain.LedgerEntry) {
	res, _ := d.Resolution.Get()
	currency := string(d.Currency)

	s.metrics.DisputesResolvedTotal.WithLabelValues(string(res.Outcome), currency).Inc()
	s.metrics.ResolutionHours.WithLabelValues(string(res.Outcome)).Observe(res.ResolvedAt.Sub(d.OpenedAt).Hours())
	if res.Outcome == domain.OutcomeRefund {
		s.metrics.RefundedAmountTotal.WithLabelValues(currency).Add(res.RefundAmount.InexactFloat64())
	}

	announceLedgerEntry(ctx, s.publisher, s.metrics, entry)
	publish(ctx, s.publisher, events.Event{
		Type:     events.DisputeResolved,
		EntityID: d.ID,
		Actor:    res.ResolvedBy.OrElse(""),
		Status:   string(d.Status),
		Attributes: map[string]string{
			"order_id":        d.OrderID,
			"outcome":         string(res.Outcome),
			"refund_amount":   res.RefundAmount.String(),
			"currency":        currency,
			"ledger_entry_id": entry.ID,
		},
		OccurredAt: res.ResolvedAt,
	})

	if err := s.emailSvc.SendDisputeResolvedNotification(ctx, d); err != nil {
		s.log.Error("Failed to send dispute resolved notification", "disputeID", d.ID, "error", err)
	}
}

func (s *disputeService) AddMessage(ctx context.Context, disputeID string, author domain.PartyRole, body string) (*domain.Dispute, error) {
	logger.EnterMethod("disputeService.AddMessage", "disputeID", disputeID, "author", author)

	at := s.now()
	d, _, err := s.mutate(ctx, disputeID, func(d *domain.Dispute) (bool, error) {
		return true, d.AddMessage(author, body, at)
	})
	if err != nil {
		logger.ExitMethodWithError("disputeService.AddMessage", err, "disputeID", disputeID)
		return nil, err
	}
	publish(ctx, s.publisher, events.Event{
		Type:       events.DisputeMessageAdded,
		EntityID:   d.ID,
		Actor:      string(author),
		Status:     string(d.Status),
		OccurredAt: at,
	})
	logger.ExitMethod("disputeService.AddMessage", "disputeID", disputeID, "messages", len(d.Messages))
	return d, nil
}

func (s *disputeService) AddEvidence(ctx context.Context, disputeID string, by domain.PartyRole, note string, url domain.Optional[string]) (*domain.Dispute, error) {
	logger.EnterMethod("disputeService.AddEvidence", "disputeID", disputeID, "submittedBy", by)

	at := s.now()
	d, _, err := s.mutate(ctx, disputeID, func(d *domain.Dispute) (bool, error) {
		return true, d.AddEvidence(by, note, url, at)
	})
	if err != nil {
		logger.ExitMethodWithError("disputeService.AddEvidence", err, "disputeID", disputeID)
		return nil, err
	}
	publish(ctx, s.publisher, events.Event{
		Type:       events.DisputeEvidenceAdded,
		EntityID:   d.ID,
		Actor:      string(by),
		Status:     string(d.Status),
		OccurredAt: at,
	})
	logger.ExitMethod("disputeService.AddEvidence", "disputeID", disputeID, "evidence", len(d.Evidence))
	return d, nil
}

func (s *disputeService) StaleDisputes(ctx context.Context, minAge time.Duration) ([]domain.Dispute, error) {
	all, err := s.disputeRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load disputes: %w", err)
	}
	now := s.now()
	stale := make([]domain.Dispute, 0)
	for i := range all {
		if !all[i].Status.IsTerminal() && all[i].Age(now) >= minAge {
			stale = append(stale, all[i])
		}
	}
	return stale, nil
}
