package cache

import (
	"context"

	"marketplace-admin-backend/internal/events"
	"marketplace-admin-backend/internal/logger"
)

// InvalidatingPublisher drops the cached dashboard metrics whenever a
// committed change that moves a dashboard count is published.
type InvalidatingPublisher struct {
	next  events.Publisher
	cache DashboardCache
}

func NewInvalidatingPublisher(next events.Publisher, c DashboardCache) *InvalidatingPublisher {
	return &InvalidatingPublisher{next: next, cache: c}
}

// Thread and evidence additions leave every dashboard count unchanged.
var countNeutral = map[events.Type]bool{
	events.DisputeMessageAdded:  true,
	events.DisputeEvidenceAdded: true,
}

func (p *InvalidatingPublisher) Publish(ctx context.Context, e events.Event) error {
	err := p.next.Publish(ctx, e)
	if !countNeutral[e.Type] {
		logger.ExternalServiceCall("redis", "del", "key", dashboardKey, "event", e.Type)
		ierr := p.cache.Invalidate(ctx)
		logger.ExternalServiceResult("redis", "del", ierr)
	}
	return err
}

func (p *InvalidatingPublisher) Close() error {
	return p.next.Close()
}
