package main

import (
	"context"
	"errors"
	"os"
	"time"

	"findash/internal/amqp"
	"findash/internal/cli"
	"findash/internal/log"
	"findash/internal/services"
	gsheet "findash/internal/sheets/google"
	"findash/internal/worker"
)

func main() {
	cfg, logger := cli.LoadConfig(log.ComponentWorker)
	if err := cfg.ValidateWorker(); err != nil {
		logger.Error("Worker configuration validation failed", "error", err)
		os.Exit(1)
	}

	logger.Info("Starting findash-worker")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	res := cli.OpenStore(ctx, logger, cfg)
	defer res.Cleanup()

	sheetsClient, err := gsheet.New(ctx, gsheet.Config{
		SpreadsheetID:      cfg.GoogleSpreadsheetID,
		SheetName:          cfg.GoogleSheetName,
		ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
		ServiceAccountFile: cfg.GoogleServiceAccountFile,
	})
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", "error", err)
		os.Exit(1)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue,
		amqp.WithDialTimeout(cfg.AMQPDialTimeout))
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	syncWorker := worker.NewSyncWorker(res.Store, sheetsClient, cfg.SyncBatchSize)

	// Catch up on anything published while the worker was down.
	logger.Info("Performing startup sync check...")
	if err := syncWorker.StartupSyncCheck(ctx); err != nil {
		logger.Error("Failed startup sync check", "error", err)
	}

	processor := services.NewSyncProcessor(syncWorker, services.SyncProcessorConfig{
		PollInterval: cfg.SyncInterval,
		BatchSize:    cfg.SyncBatchSize,
	})
	if err := processor.Start(ctx); err != nil {
		logger.Error("Failed to start sync processor", "error", err)
		os.Exit(1)
	}

	go func() {
		if err := amqpClient.ConsumeTransactionSync(ctx, syncWorker.HandleSyncMessage); err != nil {
			if !errors.Is(err, context.Canceled) {
				logger.Error("Message consumption failed", "error", err)
			}
			cancel()
		}
	}()

	shutdownCtx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		cancel()
		if err := processor.Stop(ctx); err != nil {
			logger.Error("Failed to stop sync processor", "error", err)
		}
	})

	select {
	case <-shutdownCtx.Done():
		cli.WaitForShutdown(shutdownCtx, done)
	case <-ctx.Done():
		logger.Info("Context cancelled")
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer stopCancel()
		_ = processor.Stop(stopCtx)
	}
	logger.Info("Worker shutdown complete")
}
