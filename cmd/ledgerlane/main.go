package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ledgerlane/ledgerlane/internal/app"
	"github.com/ledgerlane/ledgerlane/internal/auth"
	"github.com/ledgerlane/ledgerlane/internal/bas"
	"github.com/ledgerlane/ledgerlane/internal/clients"
	"github.com/ledgerlane/ledgerlane/internal/estimates"
	"github.com/ledgerlane/ledgerlane/internal/invoices"
	"github.com/ledgerlane/ledgerlane/internal/observability"
	"github.com/ledgerlane/ledgerlane/internal/platform/cache"
	"github.com/ledgerlane/ledgerlane/internal/platform/db"
	"github.com/ledgerlane/ledgerlane/internal/settings"
	"github.com/ledgerlane/ledgerlane/jobs"
	"github.com/ledgerlane/ledgerlane/report"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()

	pdfClient := report.NewClient(cfg.GotenbergURL)
	if err := pdfClient.Ping(ctx); err != nil {
		logger.Warn("gotenberg unreachable, pdf export degraded", slog.Any("error", err))
	}
	pdfExporter, err := report.NewPDFExporter(pdfClient)
	if err != nil {
		logger.Error("init pdf exporter", slog.Any("error", err))
		os.Exit(1)
	}

	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo, redisClient, cfg.SessionTTL)
	authHandler := auth.NewHandler(logger, authService)

	clientRepo := clients.NewRepository(pool)
	clientService := clients.NewService(clientRepo)
	clientHandler := clients.NewHandler(logger, clientService)

	settingsRepo := settings.NewRepository(pool)
	settingsService := settings.NewService(settingsRepo)
	settingsHandler := settings.NewHandler(logger, settingsService)

	invoiceRepo := invoices.NewRepository(pool)
	invoiceService := invoices.NewService(invoiceRepo, clientRepo)
	invoiceHandler := invoices.NewHandler(logger, invoiceService, settingsService, pdfExporter, metrics)

	estimateRepo := estimates.NewRepository(pool)
	estimateService := estimates.NewService(estimateRepo, clientRepo)
	estimateHandler := estimates.NewHandler(logger, estimateService, settingsService, pdfExporter, metrics)

	basService := bas.NewService(invoiceRepo)
	basHandler := bas.NewHandler(logger, basService)

	jobsClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init jobs client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()
	jobsInspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := jobsInspector.Close(); err != nil {
			logger.Warn("jobs inspector close", slog.Any("error", err))
		}
	}()
	jobsHandler := jobs.NewHandler(jobsInspector, jobsClient, logger)

	dashboard := app.NewDashboardHandler(logger, invoiceService, estimateService)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		AuthService:      authService,
		AuthHandler:      authHandler,
		ClientsHandler:   clientHandler,
		InvoicesHandler:  invoiceHandler,
		EstimatesHandler: estimateHandler,
		SettingsHandler:  settingsHandler,
		BASHandler:       basHandler,
		JobsHandler:      jobsHandler,
		Dashboard:        dashboard,
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
