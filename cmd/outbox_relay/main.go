package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/pubsub"
	"go.uber.org/zap"

	"github.com/light-bringer/offercat-service/internal/app/product/relay"
	"github.com/light-bringer/offercat-service/internal/config"
	"github.com/light-bringer/offercat-service/internal/pkg/clock"
	"github.com/light-bringer/offercat-service/internal/platform/observability"
	"github.com/light-bringer/offercat-service/internal/services"
)

func main() {
	interval := flag.Duration("interval", 5*time.Second, "Polling interval")
	maxRetries := flag.Int64("max-retries", relay.DefaultMaxRetries, "Failed publishes before an event is parked as failed")
	once := flag.Bool("once", false, "Drain one batch and exit")
	flag.Parse()

	if err := run(*interval, *maxRetries, *once); err != nil {
		log.Fatalf("outbox relay: %v", err)
	}
}

func run(interval time.Duration, maxRetries int64, once bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.PubSub.ProjectID == "" {
		return errors.New("pubsub.project_id is required")
	}

	logger, err := observability.NewLogger(cfg.Log.Level)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = observability.WithLogger(ctx, logger)

	stores, err := services.OpenStores(ctx, cfg.Store, clock.NewRealClock())
	if err != nil {
		return err
	}
	defer stores.Close()

	client, err := pubsub.NewClient(ctx, cfg.PubSub.ProjectID)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	topic := client.Topic(cfg.PubSub.Topic)
	defer topic.Stop()

	publisher, err := relay.NewPubSubPublisher(topic)
	if err != nil {
		return err
	}
	r := relay.New(stores.Outbox, publisher).WithMaxRetries(maxRetries)

	logger.Info("outbox relay started",
		zap.String("store_driver", cfg.Store.Driver),
		zap.String("topic", cfg.PubSub.Topic),
		zap.Duration("interval", interval),
	)

	if once {
		stats, err := r.RunOnce(ctx)
		if err != nil {
			return err
		}
		logger.Info("outbox drained", zap.Int("published", stats.Published), zap.Int("failed", stats.Failed))
		return nil
	}

	if err := r.Run(ctx, interval); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
