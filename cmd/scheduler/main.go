package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/segyhp/emi-tracker/internal/app"
	"github.com/segyhp/emi-tracker/internal/config"
	"github.com/segyhp/emi-tracker/pkg/logging"
	"github.com/segyhp/emi-tracker/pkg/utils"
)

// jobTimeout bounds one run of a scheduled job.
const jobTimeout = 10 * time.Minute

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting EMI scheduler", "timezone", cfg.Scheduler.Timezone)

	application, err := app.New(context.Background(), cfg)
	if err != nil {
		slog.Error("failed to initialize application", "error", err)
		os.Exit(1)
	}
	defer application.Close()

	location := cfg.Location()
	c := cron.New(
		cron.WithParser(config.CronParser()),
		cron.WithLocation(location),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger), cron.Recover(cron.DefaultLogger)),
	)

	if err := setupCronJobs(c, cfg, application, location); err != nil {
		slog.Error("failed to schedule jobs", "error", err)
		os.Exit(1)
	}

	// Start the scheduler
	c.Start()
	slog.Info("scheduler started")

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down scheduler")
	<-c.Stop().Done()
	slog.Info("scheduler stopped")
}

func setupCronJobs(c *cron.Cron, cfg *config.Config, application *app.App, location *time.Location) error {
	// Daily job to move missed installments to overdue
	_, err := c.AddFunc(cfg.Scheduler.OverdueSweepCron, func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		updated, err := application.Billing.SweepOverdue(ctx, today(location))
		if err != nil {
			slog.Error("overdue sweep failed", "error", err)
			return
		}
		slog.Info("overdue sweep job done", "updated", updated)
	})
	if err != nil {
		return err
	}

	// Daily job to send due-date reminders
	_, err = c.AddFunc(cfg.Scheduler.ReminderCron, func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		result, err := application.Reminders.DispatchDue(ctx, today(location))
		if err != nil {
			slog.Error("reminder dispatch failed", "error", err)
			return
		}
		slog.Info("reminder job done", "sent", result.Sent, "failed", result.Failed, "skipped", result.Skipped)
	})
	if err != nil {
		return err
	}

	slog.Info("cron jobs scheduled",
		"overdue_sweep", cfg.Scheduler.OverdueSweepCron,
		"reminders", cfg.Scheduler.ReminderCron,
	)
	return nil
}

// today is the calendar date in the scheduler's time zone
func today(location *time.Location) time.Time {
	return utils.DateOnly(time.Now().In(location))
}
