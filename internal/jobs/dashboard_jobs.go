package jobs

import (
	"context"

	"marketplace-admin-backend/internal/domain"
	"marketplace-admin-backend/internal/logger"
)

// RefreshDashboard recomputes dashboard metrics and replaces the cached copy
func (jr *JobRunner) RefreshDashboard() error {
	return jr.runWithRecovery(JobRefreshDashboard, func(ctx context.Context) error {
		m, err := jr.services.Dashboard.Refresh(ctx)
		if err != nil {
			return err
		}
		logger.Info("Dashboard metrics refreshed", "generated_at", m.GeneratedAt, "open_disputes", m.DisputesByStatus[domain.DisputeStatusOpen])
		return nil
	})
}
