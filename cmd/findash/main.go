package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"findash/internal/amqp"
	"findash/internal/cache"
	"findash/internal/cli"
	apphttp "findash/internal/http"
	"findash/internal/log"
	"findash/internal/report"
	"findash/internal/services"
)

func main() {
	cfg, logger := cli.LoadConfig(log.ComponentApp)
	ctx := context.Background()

	res := cli.OpenStore(ctx, logger, cfg)

	// AMQP is optional; without it the worker's periodic sweep still mirrors
	// new transactions.
	var publisher services.SyncPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue,
			amqp.WithDialTimeout(cfg.AMQPDialTimeout))
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without sync", "error", err)
		} else {
			publisher = client
			logger.Info("Initialized AMQP client", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	ledgerSvc := services.NewLedgerService(res.Store, publisher,
		services.WithPublishTimeout(cfg.PublishTimeout))
	dashboardSvc := services.NewDashboardService(ledgerSvc)

	caches := cache.NewManager()
	caches.Register(ledgerSvc.Users())
	caches.StartCleanup(10 * time.Minute)

	srv := apphttp.NewServer(apphttp.Options{
		Addr:               ":" + cfg.Port,
		Ledger:             ledgerSvc,
		Dashboard:          dashboardSvc,
		Logger:             logger,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		MaxImportBytes:     cfg.MaxImportBytes,
		CurrencySymbol:     cfg.CurrencySymbol,
		PDF:                report.PDFOptions{FontPath: cfg.PDFFontPath},
	})

	shutdownCtx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		caches.Stop()
		if err := ledgerSvc.Close(); err != nil {
			logger.Error("Failed to close ledger service", "error", err)
		}
	})

	logger.Info("Starting findash server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(shutdownCtx, done)
	logger.Info("Server stopped gracefully")
}
