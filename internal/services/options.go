package services

import (
	"context"
	"database/sql"
	"fmt"

	"cloud.google.com/go/spanner"

	"github.com/light-bringer/offercat-service/internal/app/product/contracts"
	"github.com/light-bringer/offercat-service/internal/app/product/queries/get_product_detail"
	"github.com/light-bringer/offercat-service/internal/app/product/queries/list_events"
	"github.com/light-bringer/offercat-service/internal/app/product/queries/list_merchant_listings"
	"github.com/light-bringer/offercat-service/internal/app/product/queries/list_products"
	"github.com/light-bringer/offercat-service/internal/app/product/queries/search_products"
	"github.com/light-bringer/offercat-service/internal/app/product/repo"
	"github.com/light-bringer/offercat-service/internal/app/product/repo/memrepo"
	"github.com/light-bringer/offercat-service/internal/app/product/repo/pgrepo"
	"github.com/light-bringer/offercat-service/internal/app/product/usecases/backfill_usp"
	"github.com/light-bringer/offercat-service/internal/app/product/usecases/reduce_stock"
	"github.com/light-bringer/offercat-service/internal/app/product/usecases/remove_inventory"
	"github.com/light-bringer/offercat-service/internal/app/product/usecases/submit_listing"
	"github.com/light-bringer/offercat-service/internal/app/product/usecases/update_inventory"
	"github.com/light-bringer/offercat-service/internal/config"
	"github.com/light-bringer/offercat-service/internal/pkg/clock"
	httphandler "github.com/light-bringer/offercat-service/internal/transport/http"
)

// Stores bundles every persistence contract behind the configured driver.
type Stores struct {
	Products  contracts.ProductRepository
	Sequences contracts.SequenceAllocator
	Search    contracts.SearchIndex
	Outbox    contracts.OutboxStore
	Events    contracts.EventsReadModel

	ping  func(ctx context.Context) error
	close func()
}

// Ping checks that the store is reachable.
func (s *Stores) Ping(ctx context.Context) error {
	if s.ping == nil {
		return nil
	}
	return s.ping(ctx)
}

// Close releases the underlying client.
func (s *Stores) Close() {
	if s.close != nil {
		s.close()
	}
}

// OpenStores connects to the store selected by cfg.Driver.
func OpenStores(ctx context.Context, cfg config.StoreConfig, clk clock.Clock) (*Stores, error) {
	switch cfg.Driver {
	case config.DriverSpanner:
		client, err := spanner.NewClient(ctx, cfg.SpannerDatabase)
		if err != nil {
			return nil, fmt.Errorf("failed to create Spanner client: %w", err)
		}
		return &Stores{
			Products:  repo.NewProductRepo(client, clk),
			Sequences: repo.NewSequenceRepo(client),
			Search:    repo.NewSearchIndex(client, clk),
			Outbox:    repo.NewOutboxRepo(client, clk),
			Events:    repo.NewEventsReadModel(client),
			ping:      func(ctx context.Context) error { return pingSpanner(ctx, client) },
			close:     client.Close,
		}, nil

	case config.DriverPostgres:
		db, err := pgrepo.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		store := pgrepo.NewStore(db, clk)
		return &Stores{
			Products:  store,
			Sequences: store,
			Search:    store,
			Outbox:    store,
			Events:    store,
			ping:      db.PingContext,
			close:     func() { closeDB(db) },
		}, nil

	case config.DriverMemory:
		store := memrepo.NewStore(clk)
		return &Stores{
			Products:  store,
			Sequences: store,
			Search:    store,
			Outbox:    store,
			Events:    store,
		}, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
}

// ServiceOptions holds all dependencies for the application.
type ServiceOptions struct {
	Stores  *Stores
	Handler *httphandler.Handler
}

// NewServiceOptions creates and wires up all application dependencies.
func NewServiceOptions(ctx context.Context, cfg *config.Config) (*ServiceOptions, error) {
	clk := clock.NewRealClock()

	stores, err := OpenStores(ctx, cfg.Store, clk)
	if err != nil {
		return nil, err
	}

	return &ServiceOptions{
		Stores:  stores,
		Handler: NewHandler(stores, clk),
	}, nil
}

// NewHandler builds every use case and query over stores.
func NewHandler(stores *Stores, clk clock.Clock) *httphandler.Handler {
	return httphandler.NewHandler(
		submit_listing.NewInteractor(stores.Products, stores.Sequences, clk),
		update_inventory.NewInteractor(stores.Products),
		remove_inventory.NewInteractor(stores.Products),
		reduce_stock.NewInteractor(stores.Products),
		backfill_usp.NewInteractor(stores.Products),
		list_products.NewQuery(stores.Products),
		list_merchant_listings.NewQuery(stores.Products),
		get_product_detail.NewQuery(stores.Products),
		search_products.NewQuery(stores.Search),
		list_events.NewQuery(stores.Events),
	)
}

// Close closes all resources.
func (s *ServiceOptions) Close() {
	if s.Stores != nil {
		s.Stores.Close()
	}
}

func pingSpanner(ctx context.Context, client *spanner.Client) error {
	iter := client.Single().Query(ctx, spanner.Statement{SQL: "SELECT 1"})
	defer iter.Stop()
	if _, err := iter.Next(); err != nil {
		return fmt.Errorf("spanner ping: %w", err)
	}
	return nil
}

func closeDB(db *sql.DB) {
	_ = db.Close()
}
