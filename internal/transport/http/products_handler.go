package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/light-bringer/offercat-service/internal/app/product/domain"
	"github.com/light-bringer/offercat-service/internal/app/product/queries/get_product_detail"
	"github.com/light-bringer/offercat-service/internal/app/product/queries/list_products"
	"github.com/light-bringer/offercat-service/internal/app/product/usecases/remove_inventory"
	"github.com/light-bringer/offercat-service/internal/app/product/usecases/submit_listing"
	"github.com/light-bringer/offercat-service/internal/app/product/usecases/update_inventory"
	"github.com/light-bringer/offercat-service/internal/platform/auth"
	"github.com/light-bringer/offercat-service/internal/platform/httpx"
)

const maxBodyBytes = 1 << 20

// SubmitListing handles POST /api/v1/products.
func (h *Handler) SubmitListing(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body ListingRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		httpx.WriteError(ctx, w, badRequest("request body must be a JSON listing"))
		return
	}
	if body.Price == nil {
		httpx.WriteError(ctx, w, badRequest("price is required"))
		return
	}
	if body.Quantity == nil {
		httpx.WriteError(ctx, w, badRequest("quantity is required"))
		return
	}
	price, err := domain.ParseMoney(body.Price.String())
	if err != nil {
		httpx.WriteError(ctx, w, badRequest("price must be a decimal number"))
		return
	}

	view, err := h.submitListing.Execute(ctx, &submit_listing.Request{
		MerchantID:  auth.MerchantID(ctx),
		Name:        body.Name,
		Brand:       body.Brand,
		Description: body.Description,
		Categories:  body.Categories,
		Specs:       body.Specs,
		USP:         body.USP,
		Attributes:  domain.Attributes(body.Attributes),
		ImageURLs:   body.ImageURLs,
		Price:       price,
		Quantity:    *body.Quantity,
	})
	if err != nil {
		writeDomainError(ctx, w, err, nil)
		return
	}
	httpx.WriteData(w, http.StatusCreated, toDisplay(view), "Product listing updated successfully")
}

// ListProducts handles GET /api/v1/products.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	page, err := intParam(q.Get("page"), 0)
	if err != nil || page < 0 {
		httpx.WriteError(ctx, w, badRequest("page must be a non-negative integer"))
		return
	}
	size, err := intParam(q.Get("size"), list_products.DefaultSize)
	if err != nil || size < 1 {
		httpx.WriteError(ctx, w, badRequest("size must be a positive integer"))
		return
	}

	res, err := h.listProducts.Execute(ctx, &list_products.Request{
		Category: q.Get("category"),
		Page:     page,
		Size:     size,
	})
	if err != nil {
		writeDomainError(ctx, w, err, nil)
		return
	}
	httpx.WriteData(w, http.StatusOK, ProductPage{
		Items:         toDisplays(res.Items),
		Page:          res.Page,
		Size:          res.Size,
		TotalProducts: res.TotalProducts,
	}, "Fetched all variants")
}

// ListMine handles GET /api/v1/products/mine.
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	views, err := h.listMerchantListings.Execute(ctx, auth.MerchantID(ctx))
	if err != nil {
		writeDomainError(ctx, w, err, nil)
		return
	}
	httpx.WriteData(w, http.StatusOK, toDisplays(views), "Fetched your listings")
}

// Search handles GET /api/v1/products/search. It never fails.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	views := h.searchProducts.Search(r.Context(), r.URL.Query().Get("q"))
	httpx.WriteData(w, http.StatusOK, toDisplays(views), "")
}

// Suggest handles GET /api/v1/products/suggest.
func (h *Handler) Suggest(w http.ResponseWriter, r *http.Request) {
	views := h.searchProducts.Suggest(r.Context(), r.URL.Query().Get("q"))
	httpx.WriteData(w, http.StatusOK, toDisplays(views), "")
}

// GetDetail handles GET /api/v1/products/{id}.
func (h *Handler) GetDetail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	productID, ok := productIDParam(w, r)
	if !ok {
		return
	}

	detail, err := h.getProductDetail.Execute(ctx, &get_product_detail.Request{
		ProductID: productID,
		VariantID: r.URL.Query().Get("variantId"),
	})
	if err != nil {
		writeDomainError(ctx, w, err, nil)
		return
	}
	httpx.WriteData(w, http.StatusOK, toDetail(detail), "Product details fetched")
}

// UpdateInventory handles PUT /api/v1/products/inventory/{id}.
func (h *Handler) UpdateInventory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	productID, ok := productIDParam(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()

	req := &update_inventory.Request{
		MerchantID: auth.MerchantID(ctx),
		ProductID:  productID,
		VariantID:  q.Get("variantId"),
	}
	if raw := q.Get("price"); raw != "" {
		price, err := domain.ParseMoney(raw)
		if err != nil {
			httpx.WriteError(ctx, w, badRequest("price must be a decimal number"))
			return
		}
		req.Price = price
	}
	if raw := q.Get("stock"); raw != "" {
		stock, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			httpx.WriteError(ctx, w, badRequest("stock must be an integer"))
			return
		}
		req.Stock = &stock
	}

	if err := h.updateInventory.Execute(ctx, req); err != nil {
		writeDomainError(ctx, w, err, messages{
			domain.ErrNotOfferOwner: "You do not have an active offer for this product.",
		})
		return
	}
	httpx.WriteData(w, http.StatusOK, nil, "Inventory updated successfully")
}

// RemoveInventory handles DELETE /api/v1/products/inventory/{id}.
func (h *Handler) RemoveInventory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	productID, ok := productIDParam(w, r)
	if !ok {
		return
	}

	err := h.removeInventory.Execute(ctx, &remove_inventory.Request{
		MerchantID: auth.MerchantID(ctx),
		ProductID:  productID,
		VariantID:  r.URL.Query().Get("variantId"),
	})
	if err != nil {
		writeDomainError(ctx, w, err, messages{
			domain.ErrNotOfferOwner: "Offer not found or you are not authorized to delete it.",
		})
		return
	}
	httpx.WriteData(w, http.StatusOK, nil, "Product offer removed successfully")
}

func productIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.WriteError(r.Context(), w, badRequest(domain.ErrInvalidProductID.Error()))
		return 0, false
	}
	return id, true
}

func intParam(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an integer", errBadRequest, raw)
	}
	return v, nil
}
