// Package bootstrap wires storage, integrations and services from configuration.
// Both the API server and the cron runner start from a Runtime.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"marketplace-admin-backend/internal/cache"
	"marketplace-admin-backend/internal/config"
	"marketplace-admin-backend/internal/events"
	"marketplace-admin-backend/internal/jobs"
	"marketplace-admin-backend/internal/logger"
	"marketplace-admin-backend/internal/metrics"
	"marketplace-admin-backend/internal/repository"
	"marketplace-admin-backend/internal/repository/memory"
	"marketplace-admin-backend/internal/repository/postgres"
	"marketplace-admin-backend/internal/service"
)

type Runtime struct {
	Config    *config.Config
	Metrics   *metrics.Metrics
	Pinger    repository.Pinger
	Publisher events.Publisher
	Email     service.EmailService

	Disputes  service.DisputeService
	Ledger    service.LedgerService
	Users     service.UserService
	Listings  service.ListingService
	Dashboard service.DashboardService

	closers []func() error
}

// New connects every configured backend and builds the services. On error
// anything already opened is closed.
func New(ctx context.Context, cfg *config.Config) (*Runtime, error) {
	rt := &Runtime{Config: cfg, Metrics: metrics.New()}
	if err := rt.build(ctx); err != nil {
		if cerr := rt.Close(); cerr != nil {
			logger.Warn("Failed to release resources after bootstrap error", "error", cerr)
		}
		return nil, err
	}
	return rt, nil
}

func (rt *Runtime) build(ctx context.Context) error {
	cfg := rt.Config

	repos, err := rt.openStorage(ctx)
	if err != nil {
		return err
	}

	rt.Publisher = events.NewLogPublisher()
	if cfg.Kafka.Enabled {
		logger.Info("Publishing domain events to Kafka", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic)
		kp := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		rt.Publisher = kp
		rt.closers = append(rt.closers, kp.Close)
	}

	rt.Email = service.NewLogEmailService()
	if cfg.SendGrid.Enabled {
		logger.Info("Sending notifications through SendGrid", "from", cfg.SendGrid.FromEmail)
		rt.Email = service.NewSendGridEmailService(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName, cfg.SendGrid.ModeratorsEmail)
	}

	var dashboardCache cache.DashboardCache = cache.NoopDashboardCache{}
	if cfg.Redis.Enabled {
		client, err := cache.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return err
		}
		logger.Info("Caching dashboard metrics in Redis", "addr", cfg.Redis.Addr, "ttl", cfg.Dashboard.CacheTTL())
		rt.closers = append(rt.closers, client.Close)
		dashboardCache = cache.NewRedisDashboardCache(client)
		rt.Publisher = cache.NewInvalidatingPublisher(rt.Publisher, dashboardCache)
	}

	writer := service.NewLedgerWriter(repos.ledger, nil)
	rt.Disputes, err = service.NewDisputeService(repos.disputes, repos.tx, writer, rt.Publisher, rt.Email, rt.Metrics, nil)
	if err != nil {
		return err
	}
	rt.Ledger = service.NewLedgerService(writer, repos.ledger, rt.Publisher, rt.Metrics)
	rt.Users = service.NewUserService(repos.users, rt.Publisher, rt.Email, rt.Metrics, nil)
	rt.Listings = service.NewListingService(repos.listings, rt.Publisher, rt.Metrics, nil)
	rt.Dashboard = service.NewDashboardService(repos.disputes, repos.users, repos.listings, repos.ledger, dashboardCache, cfg.Dashboard.CacheTTL(), nil)
	return nil
}

type repositories struct {
	disputes repository.DisputeRepository
	ledger   repository.LedgerRepository
	users    repository.UserRepository
	listings repository.ListingRepository
	tx       repository.Transactor
}

func (rt *Runtime) openStorage(ctx context.Context) (*repositories, error) {
	cfg := rt.Config
	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)
		db, err := postgres.Open(ctx, cfg.GetDatabaseConnectionString(), cfg.Database.MaxOpenConns)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		rt.closers = append(rt.closers, db.Close)
		logger.Info("Database connection established")

		if cfg.Database.RunMigrations {
			if err := postgres.RunMigrations(db); err != nil {
				return nil, fmt.Errorf("failed to run migrations: %w", err)
			}
			logger.Info("Database migrations applied")
		}
		store := postgres.NewStore(db)
		rt.Pinger = store
		return &repositories{store.DisputeRepository, store.LedgerRepository, store.UserRepository, store.ListingRepository, store.Transactor}, nil

	case config.StorageMemory:
		store := memory.NewStore()
		if cfg.Storage.SeedDemo {
			if err := memory.Seed(ctx, store, time.Now().UTC()); err != nil {
				return nil, fmt.Errorf("failed to seed demo data: %w", err)
			}
			logger.Info("Loaded demo data into memory store")
		}
		rt.Pinger = store
		return &repositories{store.DisputeRepository, store.LedgerRepository, store.UserRepository, store.ListingRepository, store.Transactor}, nil
	}
	return nil, fmt.Errorf("unknown storage driver: %q", cfg.Storage.Driver)
}

// Close releases connections in reverse order of opening.
func (rt *Runtime) Close() error {
	var errs []error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	rt.closers = nil
	return errors.Join(errs...)
}

// JobServices returns the subset of services the cron jobs depend on.
func (rt *Runtime) JobServices() *jobs.Services {
	return &jobs.Services{
		Email:     rt.Email,
		Disputes:  rt.Disputes,
		Dashboard: rt.Dashboard,
	}
}
