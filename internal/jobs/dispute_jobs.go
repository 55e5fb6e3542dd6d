package jobs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"marketplace-admin-backend/internal/logger"
)

var (
	ErrUnknownJob  = errors.New("unknown job")
	errJobPanicked = errors.New("job panicked")
)

// ReportStaleDisputes gauges unresolved disputes older than the configured
// threshold and mails the moderators a digest when there are any.
func (jr *JobRunner) ReportStaleDisputes() error {
	return jr.runWithRecovery(JobReportStaleDisputes, func(ctx context.Context) error {
		days := jr.config.Dashboard.StaleAfterDays
		stale, err := jr.services.Disputes.StaleDisputes(ctx, time.Duration(days)*24*time.Hour)
		if err != nil {
			return fmt.Errorf("failed to load stale disputes: %w", err)
		}
		jr.metrics.StaleDisputes.Set(float64(len(stale)))
		if len(stale) == 0 {
			logger.Info("No stale disputes", "threshold_days", days)
			return nil
		}

		now := time.Now().UTC()
		var body strings.Builder
		fmt.Fprintf(&body, "%d disputes have been unresolved for at least %d days:\n\n", len(stale), days)
		for i := range stale {
			d := &stale[i]
			logger.Warn("Stale dispute", "disputeID", d.ID, "status", d.Status, "age_days", d.AgeDays(now), "assigned_to", d.AssignedTo.OrElse(""))
			fmt.Fprintf(&body, "- %s (%s, %d days, assigned to %s)\n", d.ID, d.Status, d.AgeDays(now), d.AssignedTo.OrElse("nobody"))
		}

		subject := fmt.Sprintf("%d stale disputes need attention", len(stale))
		if err := jr.services.Email.SendAdminNotification(ctx, subject, body.String()); err != nil {
			logger.Error("Failed to send stale dispute digest", "error", err)
		}
		return nil
	})
}
