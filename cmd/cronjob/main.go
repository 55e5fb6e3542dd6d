package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"marketplace-admin-backend/internal/app/bootstrap"
	"marketplace-admin-backend/internal/config"
	"marketplace-admin-backend/internal/jobs"
	"marketplace-admin-backend/internal/logger"
	"marketplace-admin-backend/internal/scheduler"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "", "Path to configuration file (defaults to an in-memory demo setup)")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'report-stale-disputes', 'refresh-dashboard', 'all')")
	flag.Parse()

	// Load configuration
	var (
		cfg *config.Config
		err error
	)
	if *configPath == "" {
		cfg, err = config.Default()
	} else {
		cfg, err = config.Load(*configPath)
	}
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Marketplace Admin Cronjob Runner...", "log_level", cfg.Log.Level, "storage", cfg.Storage.Driver)

	rt, err := bootstrap.New(context.Background(), cfg)
	if err != nil {
		logger.Error("Failed to initialize services", "error", err)
		log.Fatalf("Failed to initialize services: %v", err)
	}
	defer rt.Close()

	// Initialize Job Runner
	jobRunner := jobs.NewJobRunner(rt.JobServices(), rt.Metrics, cfg)

	// Check if running a single job
	if *runOnce != "" {
		logger.Info("Running job once", "job", *runOnce)
		if err := jobRunner.Run(*runOnce); err != nil {
			logger.Error("Job failed", "job", *runOnce, "error", err)
			if errors.Is(err, jobs.ErrUnknownJob) {
				fmt.Printf("Available jobs:\n")
				for _, name := range jobs.Names() {
					fmt.Printf("  - %s\n", name)
				}
			}
			rt.Close()
			os.Exit(1)
		}
		logger.Info("Job execution completed", "job", *runOnce)
		return
	}

	// Initialize Scheduler
	cronScheduler, err := scheduler.NewScheduler(jobRunner)
	if err != nil {
		logger.Error("Failed to register jobs", "error", err)
		log.Fatalf("Failed to register jobs: %v", err)
	}

	// Start scheduler
	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down cronjob scheduler...")
	cronScheduler.Stop()
	logger.Info("Cronjob scheduler stopped. Goodbye!")
}
