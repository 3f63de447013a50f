// Package app wires configuration, storage, cache and services together for
// the server and scheduler binaries.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/segyhp/emi-tracker/internal/cache"
	"github.com/segyhp/emi-tracker/internal/config"
	"github.com/segyhp/emi-tracker/internal/metrics"
	"github.com/segyhp/emi-tracker/internal/notifier"
	"github.com/segyhp/emi-tracker/internal/repository"
	"github.com/segyhp/emi-tracker/internal/service"
)

type App struct {
	Config    *config.Config
	DB        *sqlx.DB
	Redis     *redis.Client
	Metrics   *metrics.Metrics
	Billing   *service.BillingService
	Reminders *service.ReminderService
}

// New connects to the database and redis, applies the schema and builds the services
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	db, err := initDB(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	redisClient, err := initRedis(cfg)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize redis: %w", err)
	}

	var summaryCache cache.SummaryCache = cache.NoopSummaryCache{}
	if redisClient != nil {
		summaryCache = cache.NewRedisSummaryCache(redisClient, cfg.Redis.CacheTTL)
	}

	collectors := metrics.New()

	loanRepo := repository.NewLoanRepository(db)
	installmentRepo := repository.NewInstallmentRepository(db)
	reminderRepo := repository.NewReminderRepository(db)

	return &App{
		Config:    cfg,
		DB:        db,
		Redis:     redisClient,
		Metrics:   collectors,
		Billing:   service.NewBillingService(loanRepo, installmentRepo, reminderRepo, summaryCache, collectors, cfg),
		Reminders: service.NewReminderService(reminderRepo, newSender(cfg), collectors),
	}, nil
}

// Close releases the database and redis connections
func (a *App) Close() {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			slog.Warn("failed to close redis", "error", err)
		}
	}
	if err := a.DB.Close(); err != nil {
		slog.Warn("failed to close database", "error", err)
	}
}

func initDB(ctx context.Context, cfg *config.Config) (*sqlx.DB, error) {
	db, err := repository.Open(ctx, cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		return nil, err
	}

	if cfg.Database.Driver == config.DriverPostgres {
		db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)
	}

	if err := repository.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// initRedis returns nil when no redis server is configured
func initRedis(cfg *config.Config) (*redis.Client, error) {
	if !cfg.Redis.Enabled() {
		return nil, nil
	}

	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return nil, err
		}
		return redis.NewClient(opts), nil
	}

	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}), nil
}

func newSender(cfg *config.Config) notifier.Sender {
	if !cfg.SMTP.Enabled() {
		slog.Info("SMTP_HOST not set, reminders will only be logged")
		return notifier.NewLogSender(slog.Default())
	}
	return notifier.NewSMTPSender(cfg.SMTP.Notifier())
}
