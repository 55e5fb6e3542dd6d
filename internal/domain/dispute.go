package domain

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type DisputeStatus string

const (
	DisputeStatusOpen            DisputeStatus = "open"
	DisputeStatusReviewing       DisputeStatus = "reviewing"
	DisputeStatusResolvedRefund  DisputeStatus = "resolved_refund"
	DisputeStatusResolvedRelease DisputeStatus = "resolved_release"
)

var disputeStatuses = []DisputeStatus{
	DisputeStatusOpen,
	DisputeStatusReviewing,
	DisputeStatusResolvedRefund,
	DisputeStatusResolvedRelease,
}

func ParseDisputeStatus(raw string) (DisputeStatus, error) {
	return parseEnum("dispute status", strings.TrimSpace(raw), disputeStatuses)
}

func (s *DisputeStatus) UnmarshalText(text []byte) error {
	v, err := ParseDisputeStatus(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// IsTerminal reports whether no further transition is permitted.
func (s DisputeStatus) IsTerminal() bool {
	return s == DisputeStatusResolvedRefund || s == DisputeStatusResolvedRelease
}

type DisputeCategory string

const (
	DisputeCategoryQuality       DisputeCategory = "quality"
	DisputeCategoryDeliveryLate  DisputeCategory = "delivery_late"
	DisputeCategoryCommunication DisputeCategory = "communication"
	DisputeCategoryOther         DisputeCategory = "other"
)

var disputeCategories = []DisputeCategory{
	DisputeCategoryQuality,
	DisputeCategoryDeliveryLate,
	DisputeCategoryCommunication,
	DisputeCategoryOther,
}

func ParseDisputeCategory(raw string) (DisputeCategory, error) {
	return parseEnum("dispute category", strings.TrimSpace(raw), disputeCategories)
}

func (c *DisputeCategory) UnmarshalText(text []byte) error {
	v, err := ParseDisputeCategory(string(text))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

type Outcome string

const (
	OutcomeRefund  Outcome = "refund"
	OutcomeRelease Outcome = "release"
)

func ParseOutcome(raw string) (Outcome, error) {
	return parseEnum("outcome", strings.TrimSpace(raw), []Outcome{OutcomeRefund, OutcomeRelease})
}

func (o *Outcome) UnmarshalText(text []byte) error {
	v, err := ParseOutcome(string(text))
	if err != nil {
		return err
	}
	*o = v
	return nil
}

// PartyRole identifies who wrote a thread message or submitted evidence.
type PartyRole string

const (
	PartyRoleBuyer  PartyRole = "buyer"
	PartyRoleSeller PartyRole = "seller"
	PartyRoleAdmin  PartyRole = "admin"
)

func ParsePartyRole(raw string) (PartyRole, error) {
	return parseEnum("role", strings.TrimSpace(raw), []PartyRole{PartyRoleBuyer, PartyRoleSeller, PartyRoleAdmin})
}

func (r *PartyRole) UnmarshalText(text []byte) error {
	v, err := ParsePartyRole(string(text))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

type Message struct {
	Author PartyRole `json:"author"`
	Body   string    `json:"body"`
	SentAt time.Time `json:"sent_at"`
}

type Evidence struct {
	SubmittedBy PartyRole        `json:"submitted_by"`
	Note        string           `json:"note"`
	URL         Optional[string] `json:"url"`
	SubmittedAt time.Time        `json:"submitted_at"`
}

// Resolution is the outcome recorded when a dispute reaches a terminal status.
type Resolution struct {
	Outcome      Outcome          `json:"outcome"`
	Note         string           `json:"note"`
	RefundAmount decimal.Decimal  `json:"refund_amount"`
	ResolvedBy   Optional[string] `json:"resolved_by"`
	ResolvedAt   time.Time        `json:"resolved_at"`
}

type Dispute struct {
	ID           string               `json:"id"`
	OrderID      string               `json:"order_id"`
	BuyerID      string               `json:"buyer_id"`
	SellerID     string               `json:"seller_id"`
	ServiceTitle string               `json:"service_title"`
	Amount       decimal.Decimal      `json:"amount"`
	Currency     Currency             `json:"currency"`
	Category     DisputeCategory      `json:"category"`
	Status       DisputeStatus        `json:"status"`
	AssignedTo   Optional[string]     `json:"assigned_to"`
	Resolution   Optional[Resolution] `json:"resolution"`
	OpenedAt     time.Time            `json:"opened_at"`
	Messages     []Message            `json:"messages"`
	Evidence     []Evidence           `json:"evidence"`
	Version      int64                `json:"version"`
}

// Age is measured from OpenedAt; it is never stored.
func (d *Dispute) Age(now time.Time) time.Duration {
	if now.Before(d.OpenedAt) {
		return 0
	}
	return now.Sub(d.OpenedAt)
}

// AgeDays returns the number of whole days since the dispute was opened.
func (d *Dispute) AgeDays(now time.Time) int {
	return int(d.Age(now) / (24 * time.Hour))
}

// Clone returns a deep copy; the dispute's thread and evidence are never shared.
func (d *Dispute) Clone() *Dispute {
	c := *d
	if d.Messages != nil {
		c.Messages = append(make([]Message, 0, len(d.Messages)), d.Messages...)
	}
	if d.Evidence != nil {
		c.Evidence = append(make([]Evidence, 0, len(d.Evidence)), d.Evidence...)
	}
	return &c
}

// Validate checks the invariants a stored dispute must satisfy.
func (d *Dispute) Validate() error {
	if strings.TrimSpace(d.ID) == "" || strings.TrimSpace(d.OrderID) == "" {
		return fmt.Errorf("%w: dispute id and order id are required", ErrInvalidArgument)
	}
	if strings.TrimSpace(d.BuyerID) == "" || strings.TrimSpace(d.SellerID) == "" {
		return fmt.Errorf("%w: buyer and seller are required", ErrInvalidArgument)
	}
	if d.Amount.IsNegative() {
		return fmt.Errorf("%w: amount must not be negative", ErrInvalidArgument)
	}
	if _, err := ParseCurrency(string(d.Currency)); err != nil {
		return err
	}
	if _, err := ParseDisputeCategory(string(d.Category)); err != nil {
		return err
	}
	if _, err := ParseDisputeStatus(string(d.Status)); err != nil {
		return err
	}
	if d.Status.IsTerminal() != d.Resolution.IsSet() {
		return fmt.Errorf("%w: resolution must be present exactly when resolved", ErrInvalidState)
	}
	return nil
}

// Assign makes moderatorID responsible for the dispute and moves an open
// dispute into review. It reports whether anything changed.
func (d *Dispute) Assign(moderatorID string) (bool, error) {
	moderatorID = strings.TrimSpace(moderatorID)
	if moderatorID == "" {
		return false, fmt.Errorf("%w: moderator id is required", ErrInvalidArgument)
	}
	if d.Status.IsTerminal() {
		return false, fmt.Errorf("%w: dispute %s is %s", ErrInvalidState, d.ID, d.Status)
	}
	changed := false
	if current, ok := d.AssignedTo.Get(); !ok || current != moderatorID {
		d.AssignedTo = Some(moderatorID)
		changed = true
	}
	if d.Status == DisputeStatusOpen {
		d.Status = DisputeStatusReviewing
		changed = true
	}
	return changed, nil
}

type ResolveInput struct {
	Outcome      Outcome
	Note         string
	RefundAmount Optional[decimal.Decimal]
	ResolvedBy   Optional[string]
}

// Resolve moves the dispute to its terminal status and returns the ledger
// entry the resolution must produce. The dispute is left untouched on error.
func (d *Dispute) Resolve(in ResolveInput, at time.Time) (LedgerEntry, error) {
	if d.Status.IsTerminal() {
		return LedgerEntry{}, fmt.Errorf("%w: dispute %s is already %s", ErrInvalidState, d.ID, d.Status)
	}

	note := strings.TrimSpace(in.Note)
	var (
		status DisputeStatus
		refund = decimal.Zero
		entry  LedgerEntry
	)
	switch in.Outcome {
	case OutcomeRefund:
		refund = d.Amount
		if amount, ok := in.RefundAmount.Get(); ok {
			if amount.IsNegative() {
				return LedgerEntry{}, fmt.Errorf("%w: refund amount must not be negative", ErrInvalidArgument)
			}
			if amount.GreaterThan(d.Amount) {
				return LedgerEntry{}, fmt.Errorf("%w: refund amount %s exceeds dispute amount %s", ErrInvalidArgument, amount, d.Amount)
			}
			refund = amount
		}
		if note == "" {
			note = fmt.Sprintf("Refunded %s %s to buyer", refund.String(), d.Currency)
		}
		status = DisputeStatusResolvedRefund
		entry = LedgerEntry{Type: LedgerEntryRefund, Amount: refund.Neg(), UserID: Some(d.BuyerID)}
	case OutcomeRelease:
		if note == "" {
			note = "payment released"
		}
		status = DisputeStatusResolvedRelease
		entry = LedgerEntry{Type: LedgerEntryAdjustment, Amount: decimal.Zero, UserID: Some(d.SellerID)}
	default:
		return LedgerEntry{}, fmt.Errorf("%w: unknown outcome %q", ErrInvalidArgument, in.Outcome)
	}

	d.Status = status
	d.Resolution = Some(Resolution{
		Outcome:      in.Outcome,
		Note:         note,
		RefundAmount: refund,
		ResolvedBy:   in.ResolvedBy,
		ResolvedAt:   at,
	})

	entry.Currency = d.Currency
	entry.OrderID = Some(d.OrderID)
	entry.Note = Some(note)
	return entry, nil
}

// AddMessage appends to the dispute thread. Resolved disputes are closed to new messages.
func (d *Dispute) AddMessage(author PartyRole, body string, at time.Time) error {
	if _, err := ParsePartyRole(string(author)); err != nil {
		return err
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return fmt.Errorf("%w: message body is required", ErrInvalidArgument)
	}
	if d.Status.IsTerminal() {
		return fmt.Errorf("%w: dispute %s is %s", ErrInvalidState, d.ID, d.Status)
	}
	d.Messages = append(d.Messages, Message{Author: author, Body: body, SentAt: at})
	return nil
}

// AddEvidence appends an evidence entry. Resolved disputes accept no new evidence.
func (d *Dispute) AddEvidence(by PartyRole, note string, ref Optional[string], at time.Time) error {
	if _, err := ParsePartyRole(string(by)); err != nil {
		return err
	}
	note = strings.TrimSpace(note)
	if note == "" {
		return fmt.Errorf("%w: evidence note is required", ErrInvalidArgument)
	}
	if raw, ok := ref.Get(); ok {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%w: evidence url %q is not absolute", ErrInvalidArgument, raw)
		}
	}
	if d.Status.IsTerminal() {
		return fmt.Errorf("%w: dispute %s is %s", ErrInvalidState, d.ID, d.Status)
	}
	d.Evidence = append(d.Evidence, Evidence{SubmittedBy: by, Note: note, URL: ref, SubmittedAt: at})
	return nil
}
