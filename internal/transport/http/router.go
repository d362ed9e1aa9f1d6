// Package http exposes the catalog over a chi router.
package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/light-bringer/offercat-service/internal/app/product/queries/get_product_detail"
	"github.com/light-bringer/offercat-service/internal/app/product/queries/list_events"
	"github.com/light-bringer/offercat-service/internal/app/product/queries/list_merchant_listings"
	"github.com/light-bringer/offercat-service/internal/app/product/queries/list_products"
	"github.com/light-bringer/offercat-service/internal/app/product/queries/search_products"
	"github.com/light-bringer/offercat-service/internal/app/product/usecases/backfill_usp"
	"github.com/light-bringer/offercat-service/internal/app/product/usecases/reduce_stock"
	"github.com/light-bringer/offercat-service/internal/app/product/usecases/remove_inventory"
	"github.com/light-bringer/offercat-service/internal/app/product/usecases/submit_listing"
	"github.com/light-bringer/offercat-service/internal/app/product/usecases/update_inventory"
	"github.com/light-bringer/offercat-service/internal/platform/auth"
	"github.com/light-bringer/offercat-service/internal/platform/httpx"
	"github.com/light-bringer/offercat-service/internal/platform/observability"
	"github.com/light-bringer/offercat-service/internal/platform/ratelimit"
)

// Handler implements the catalog HTTP endpoints.
type Handler struct {
	// Commands
	submitListing   *submit_listing.Interactor
	updateInventory *update_inventory.Interactor
	removeInventory *remove_inventory.Interactor
	reduceStock     *reduce_stock.Interactor
	backfillUSP     *backfill_usp.Interactor

	// Queries
	listProducts         *list_products.Query
	listMerchantListings *list_merchant_listings.Query
	getProductDetail     *get_product_detail.Query
	searchProducts       *search_products.Query
	listEvents           *list_events.Query
}

// NewHandler creates a new catalog HTTP handler.
func NewHandler(
	submitListing *submit_listing.Interactor,
	updateInventory *update_inventory.Interactor,
	removeInventory *remove_inventory.Interactor,
	reduceStock *reduce_stock.Interactor,
	backfillUSP *backfill_usp.Interactor,
	listProducts *list_products.Query,
	listMerchantListings *list_merchant_listings.Query,
	getProductDetail *get_product_detail.Query,
	searchProducts *search_products.Query,
	listEvents *list_events.Query,
) *Handler {
	return &Handler{
		submitListing:        submitListing,
		updateInventory:      updateInventory,
		removeInventory:      removeInventory,
		reduceStock:          reduceStock,
		backfillUSP:          backfillUSP,
		listProducts:         listProducts,
		listMerchantListings: listMerchantListings,
		getProductDetail:     getProductDetail,
		searchProducts:       searchProducts,
		listEvents:           listEvents,
	}
}

// RouterConfig carries the cross-cutting collaborators of the router.
type RouterConfig struct {
	Resolver       auth.Resolver
	Logger         *zap.Logger
	Limiter        *ratelimit.Limiter
	RequestTimeout time.Duration
	// Health reports readiness; nil means always healthy.
	Health func(r *http.Request) error
}

// NewRouter mounts every route behind the shared middleware chain.
func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.TraceMiddleware())
	r.Use(observability.RequestLoggerMiddleware(cfg.Logger))
	r.Use(observability.RecoveryMiddleware(cfg.Logger))
	if cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
	}

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if cfg.Health != nil {
			if err := cfg.Health(req); err != nil {
				httpx.WriteError(req.Context(), w, httpx.NewError("unavailable", "store unreachable", http.StatusServiceUnavailable))
				return
			}
		}
		httpx.WriteData(w, http.StatusOK, map[string]string{"status": "ok"}, "")
	})

	limit := func(next http.Handler) http.Handler { return next }
	if cfg.Limiter != nil {
		limit = cfg.Limiter.Middleware
	}
	merchant := auth.Require(cfg.Resolver, auth.RoleMerchant)

	r.Route("/api/v1/products", func(r chi.Router) {
		r.With(limit).Get("/", h.ListProducts)
		r.With(limit).Get("/search", h.Search)
		r.With(limit).Get("/suggest", h.Suggest)
		r.With(limit).Get("/{id}", h.GetDetail)

		r.With(merchant).Post("/", h.SubmitListing)
		r.With(merchant).Get("/mine", h.ListMine)
		r.With(merchant).Put("/inventory/{id}", h.UpdateInventory)
		r.With(merchant).Delete("/inventory/{id}", h.RemoveInventory)
	})

	r.Route("/api/v1/admin", func(r chi.Router) {
		r.Use(auth.Require(cfg.Resolver, auth.RoleAdmin))
		r.Post("/products/usp", h.BackfillUSP)
		r.Get("/events", h.ListEvents)
	})

	r.Route("/internal/v1", func(r chi.Router) {
		r.Use(auth.Require(cfg.Resolver, auth.RoleService))
		r.Post("/stock/reduce", h.ReduceStock)
	})

	return r
}
