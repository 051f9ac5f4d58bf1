package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/fonyuygita/protrack-backend/internal/config"
	"github.com/fonyuygita/protrack-backend/internal/notifier"
	"github.com/fonyuygita/protrack-backend/internal/repository"
	"github.com/fonyuygita/protrack-backend/internal/scheduler"
	"github.com/fonyuygita/protrack-backend/internal/service"
	"github.com/fonyuygita/protrack-backend/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Init(cfg.Server.Env, cfg.Logging.Level)
	slog.Info("starting reminder scheduler")

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	paymentRepo := repository.NewPaymentRepository(db)
	userRepo := repository.NewUserRepository(db)
	mailer := notifier.NewSMTPNotifier(cfg.SMTP)
	complianceService := service.NewComplianceService(paymentRepo, userRepo, mailer, cfg)

	sched, err := scheduler.New(cfg.Scheduler.CronSpec, cfg.Scheduler.Timezone, func(ctx context.Context) {
		if _, err := complianceService.RunBatch(ctx, time.Now()); err != nil {
			slog.Error("reminder batch failed", "error", err)
		}
	})
	if err != nil {
		log.Fatalf("Failed to build scheduler: %v", err)
	}

	sched.Start()
	slog.Info("scheduler started", "cron_spec", cfg.Scheduler.CronSpec, "timezone", cfg.Scheduler.Timezone)

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down scheduler")
	sched.Stop()
	slog.Info("scheduler stopped")
}
