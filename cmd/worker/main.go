package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"

	"github.com/ledgerlane/ledgerlane/internal/app"
	"github.com/ledgerlane/ledgerlane/internal/clients"
	"github.com/ledgerlane/ledgerlane/internal/estimates"
	"github.com/ledgerlane/ledgerlane/internal/invoices"
	jobmetrics "github.com/ledgerlane/ledgerlane/internal/jobs"
	"github.com/ledgerlane/ledgerlane/internal/platform/db"
	"github.com/ledgerlane/ledgerlane/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	clientRepo := clients.NewRepository(pool)
	invoiceService := invoices.NewService(invoices.NewRepository(pool), clientRepo)
	estimateService := estimates.NewService(estimates.NewRepository(pool), clientRepo)

	metrics := jobmetrics.NewMetrics(nil)
	overdueJob := jobs.NewOverdueScanJob(invoiceService, logger, metrics)
	expiryJob := jobs.NewExpiryScanJob(estimateService, logger, metrics)
	integrityJob := jobs.NewIntegrityScanJob(invoiceService, estimateService, logger, metrics)

	overdueTask, err := jobs.NewOverdueScanTask(time.Time{})
	if err != nil {
		logger.Error("build overdue task", slog.Any("error", err))
		os.Exit(1)
	}
	expiryTask, err := jobs.NewExpiryScanTask(time.Time{})
	if err != nil {
		logger.Error("build expiry task", slog.Any("error", err))
		os.Exit(1)
	}
	integrityTask, err := jobs.NewIntegrityScanTask()
	if err != nil {
		logger.Error("build integrity task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskOverdueScan, Handler: overdueJob.Handle},
			{Type: jobs.TaskExpiryScan, Handler: expiryJob.Handle},
			{Type: jobs.TaskIntegrityScan, Handler: integrityJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "0 1 * * *", Task: overdueTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "15 1 * * *", Task: expiryTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "30 1 * * *", Task: integrityTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	healthRouter := chi.NewRouter()
	healthRouter.Route("/jobs", jobs.NewHandler(inspector, nil, logger).MountRoutes)
	healthServer := &http.Server{Addr: cfg.WorkerAddr, Handler: healthRouter}
	go func() {
		logger.Info("starting worker health server", slog.String("addr", cfg.WorkerAddr))
		if err := healthServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("worker health server", slog.Any("error", err))
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := healthServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("health server shutdown", slog.Any("error", err))
		}
	}()

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
