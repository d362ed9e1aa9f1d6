package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/light-bringer/offercat-service/internal/app/product/contracts"
	"github.com/light-bringer/offercat-service/internal/config"
	"github.com/light-bringer/offercat-service/internal/pkg/clock"
	"github.com/light-bringer/offercat-service/internal/services"
)

// Config for the outbox cleanup job.
type Config struct {
	Store                  config.StoreConfig
	CompletedRetentionDays int
	FailedRetentionDays    int
	DryRun                 bool
}

func main() {
	cfg := Config{}
	flag.StringVar(&cfg.Store.Driver, "driver", config.DriverSpanner, "Store driver: spanner or postgres")
	flag.StringVar(&cfg.Store.SpannerDatabase, "database", os.Getenv("SPANNER_DATABASE"), "Spanner database (format: projects/PROJECT/instances/INSTANCE/databases/DATABASE)")
	flag.StringVar(&cfg.Store.PostgresDSN, "dsn", os.Getenv("OFFERCAT_STORE_POSTGRES_DSN"), "Postgres DSN")
	flag.IntVar(&cfg.CompletedRetentionDays, "completed-retention", 30, "Retention days for completed events")
	flag.IntVar(&cfg.FailedRetentionDays, "failed-retention", 90, "Retention days for failed events")
	flag.BoolVar(&cfg.DryRun, "dry-run", false, "Show what would be deleted without actually deleting")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	stores, err := services.OpenStores(ctx, cfg.Store, clock.NewRealClock())
	if err != nil {
		logger.Fatal("failed to open store", zap.Error(err))
	}
	defer stores.Close()

	if err := cleanupOutbox(ctx, stores.Outbox, cfg, time.Now().UTC(), logger); err != nil {
		logger.Fatal("cleanup failed", zap.Error(err))
	}
	logger.Info("cleanup completed successfully")
}

func cleanupOutbox(ctx context.Context, outbox contracts.OutboxStore, cfg Config, now time.Time, logger *zap.Logger) error {
	cutoffs := []struct {
		status string
		cutoff time.Time
	}{
		{contracts.OutboxStatusCompleted, now.AddDate(0, 0, -cfg.CompletedRetentionDays)},
		{contracts.OutboxStatusFailed, now.AddDate(0, 0, -cfg.FailedRetentionDays)},
	}

	logger.Info("starting outbox cleanup", zap.Bool("dry_run", cfg.DryRun))

	var total int64
	for _, c := range cutoffs {
		var (
			n   int64
			err error
		)
		if cfg.DryRun {
			n, err = outbox.CountProcessedBefore(ctx, c.status, c.cutoff)
		} else {
			n, err = outbox.DeleteProcessedBefore(ctx, c.status, c.cutoff)
		}
		if err != nil {
			return fmt.Errorf("failed to clean %s events: %w", c.status, err)
		}
		logger.Info("outbox events matched",
			zap.String("status", c.status),
			zap.Time("cutoff", c.cutoff),
			zap.Int64("count", n),
			zap.Bool("deleted", !cfg.DryRun),
		)
		total += n
	}

	if cfg.DryRun {
		logger.Info("dry run finished, rerun without -dry-run to delete", zap.Int64("total", total))
	}
	return nil
}
