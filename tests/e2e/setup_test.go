//go:build integration

package e2e

import (
	"context"
	"testing"

	"cloud.google.com/go/spanner"

	"github.com/light-bringer/offercat-service/internal/app/product/queries/get_product_detail"
	"github.com/light-bringer/offercat-service/internal/app/product/queries/list_merchant_listings"
	"github.com/light-bringer/offercat-service/internal/app/product/queries/list_products"
	"github.com/light-bringer/offercat-service/internal/app/product/repo"
	"github.com/light-bringer/offercat-service/internal/app/product/usecases/backfill_usp"
	"github.com/light-bringer/offercat-service/internal/app/product/usecases/reduce_stock"
	"github.com/light-bringer/offercat-service/internal/app/product/usecases/remove_inventory"
	"github.com/light-bringer/offercat-service/internal/app/product/usecases/submit_listing"
	"github.com/light-bringer/offercat-service/internal/app/product/usecases/update_inventory"
	"github.com/light-bringer/offercat-service/internal/pkg/clock"
	"github.com/light-bringer/offercat-service/tests/testutil"
)

// Services holds all use cases and queries for E2E tests.
type Services struct {
	// Commands
	SubmitListing   *submit_listing.Interactor
	UpdateInventory *update_inventory.Interactor
	RemoveInventory *remove_inventory.Interactor
	ReduceStock     *reduce_stock.Interactor
	BackfillUSP     *backfill_usp.Interactor

	// Queries
	ListProducts  *list_products.Query
	ListMine      *list_merchant_listings.Query
	ProductDetail *get_product_detail.Query

	// Infrastructure
	Clock    *clock.MockClock
	Client   *spanner.Client
	Products *repo.ProductRepo
}

// setupTest initializes all dependencies for E2E testing.
func setupTest(t *testing.T) *Services {
	t.Helper()

	client := testutil.SpannerClient(t)
	clk := testutil.NewMockClock()

	productRepo := repo.NewProductRepo(client, clk)
	sequenceRepo := repo.NewSequenceRepo(client)

	services := &Services{
		SubmitListing:   submit_listing.NewInteractor(productRepo, sequenceRepo, clk),
		UpdateInventory: update_inventory.NewInteractor(productRepo),
		RemoveInventory: remove_inventory.NewInteractor(productRepo),
		ReduceStock:     reduce_stock.NewInteractor(productRepo),
		BackfillUSP:     backfill_usp.NewInteractor(productRepo),
		ListProducts:    list_products.NewQuery(productRepo),
		ListMine:        list_merchant_listings.NewQuery(productRepo),
		ProductDetail:   get_product_detail.NewQuery(productRepo),
		Clock:           clk,
		Client:          client,
		Products:        productRepo,
	}

	return services
}

// ctx returns a context for testing.
func ctx() context.Context {
	return context.Background()
}
