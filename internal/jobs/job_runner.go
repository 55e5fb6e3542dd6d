package jobs

import (
	"context"
	"log/slog"
	"time"

	"marketplace-admin-backend/internal/config"
	"marketplace-admin-backend/internal/logger"
	"marketplace-admin-backend/internal/metrics"
	"marketplace-admin-backend/internal/service"
)

const (
	JobReportStaleDisputes = "report-stale-disputes"
	JobRefreshDashboard    = "refresh-dashboard"
	JobAll                 = "all"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	services *Services
	metrics  *metrics.Metrics
	config   *config.Config
	timeout  time.Duration
	log      *slog.Logger
}

// Services holds all service dependencies needed by jobs
type Services struct {
	Email     service.EmailService
	Disputes  service.DisputeService
	Dashboard service.DashboardService
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(services *Services, m *metrics.Metrics, cfg *config.Config) *JobRunner {
	return &JobRunner{
		services: services,
		metrics:  m,
		config:   cfg,
		timeout:  time.Minute,
		log:      logger.WithComponent("job_runner"),
	}
}

// Config returns the configuration the runner was built with
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery and a deadline
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func(ctx context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			jr.log.Error("Job panicked", "job", jobName, "panic", r)
			err = errJobPanicked
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), jr.timeout)
	defer cancel()

	start := time.Now()
	jr.log.Info("Starting job", "job", jobName)
	if err = jobFunc(ctx); err != nil {
		jr.log.Error("Job failed", "job", jobName, "error", err, "duration", time.Since(start))
		return err
	}
	jr.log.Info("Job completed", "job", jobName, "duration", time.Since(start))
	return nil
}

// Run executes one job by name (or every job for "all").
func (jr *JobRunner) Run(jobName string) error {
	switch jobName {
	case JobReportStaleDisputes:
		return jr.ReportStaleDisputes()
	case JobRefreshDashboard:
		return jr.RefreshDashboard()
	case JobAll:
		staleErr := jr.ReportStaleDisputes()
		if err := jr.RefreshDashboard(); err != nil {
			return err
		}
		return staleErr
	default:
		return ErrUnknownJob
	}
}

// Names lists the jobs accepted by Run.
func Names() []string {
	return []string{JobReportStaleDisputes, JobRefreshDashboard, JobAll}
}
