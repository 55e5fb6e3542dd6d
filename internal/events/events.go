// Package events publishes admin domain events for downstream consumers
// (order service, payouts, analytics).
package events

import (
	"context"
	"time"

	"marketplace-admin-backend/internal/logger"
)

type Type string

const (
	DisputeOpened        Type = "dispute.opened"
	DisputeAssigned      Type = "dispute.assigned"
	DisputeResolved      Type = "dispute.resolved"
	DisputeMessageAdded  Type = "dispute.message_added"
	DisputeEvidenceAdded Type = "dispute.evidence_added"
	LedgerEntryRecorded  Type = "ledger.entry_recorded"
	UserSuspended        Type = "user.suspended"
	UserReactivated      Type = "user.reactivated"
	ListingApproved      Type = "listing.approved"
	ListingUnlisted      Type = "listing.unlisted"
	ListingReported      Type = "listing.reported"
)

// Event is the wire shape of every published message. EntityID is also the
// Kafka message key, so events for one dispute stay ordered on one partition.
type Event struct {
	Type       Type              `json:"type"`
	EntityID   string            `json:"entity_id"`
	Actor      string            `json:"actor,omitempty"`
	Status     string            `json:"status,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// LogPublisher writes events to the application log. Used when Kafka is not configured.
type LogPublisher struct{}

func NewLogPublisher() *LogPublisher {
	return &LogPublisher{}
}

func (LogPublisher) Publish(ctx context.Context, e Event) error {
	logger.InfoContext(ctx, "Domain event", "type", e.Type, "entity_id", e.EntityID, "status", e.Status, "actor", e.Actor)
	return nil
}

func (LogPublisher) Close() error { return nil }
