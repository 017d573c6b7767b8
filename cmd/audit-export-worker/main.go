package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"fintrack/internal/amqp"
	"fintrack/internal/config"
	"fintrack/internal/export"
	applog "fintrack/internal/log"
	"fintrack/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	logger.Info("Starting audit-export-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the export worker")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	appender, err := export.NewSheetsAppender(ctx, cfg.GoogleSpreadsheetID, cfg.GoogleSheetName)
	if err != nil {
		logger.Error("Failed to initialize Sheets appender", "error", err,
			"spreadsheet_id", cfg.GoogleSpreadsheetID)
		os.Exit(1)
	}
	logger.Info("Sheets appender initialized",
		"spreadsheet_id", cfg.GoogleSpreadsheetID,
		"sheet", cfg.GoogleSheetName)

	exportWorker := worker.NewExportWorker(appender)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// Reconnect after transient broker failures.
		for {
			err := consumeOnce(ctx, cfg, exportWorker)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			logger.Error("Audit event consumption stopped", "error", err,
				"retry_in", cfg.ExportRetryDelay)

			select {
			case <-ctx.Done():
				return nil
			case <-time.After(cfg.ExportRetryDelay):
			}
		}
	})

	if err := g.Wait(); err != nil {
		logger.Error("Worker error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}

// consumeOnce connects to the broker and consumes audit events until the
// connection drops or ctx is done.
func consumeOnce(ctx context.Context, cfg *config.Config, exportWorker *worker.ExportWorker) error {
	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		return err
	}
	defer amqpClient.Close()

	return amqpClient.ConsumeAuditEvents(ctx, func(msg *amqp.AuditEventMessage) error {
		return exportWorker.HandleAuditEvent(ctx, msg)
	})
}
