package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/light-bringer/offercat-service/internal/app/product/domain"
	"github.com/light-bringer/offercat-service/internal/app/product/usecases/reduce_stock"
	"github.com/light-bringer/offercat-service/internal/platform/httpx"
)

// ReduceStock handles POST /internal/v1/stock/reduce, called by the order service.
func (h *Handler) ReduceStock(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body ReduceStockRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err != nil {
		httpx.WriteError(ctx, w, badRequest("request body must be a JSON stock reduction"))
		return
	}
	if body.ProductID <= 0 {
		httpx.WriteError(ctx, w, badRequest(domain.ErrInvalidProductID.Error()))
		return
	}
	if body.MerchantID == "" {
		httpx.WriteError(ctx, w, badRequest("merchantId is required"))
		return
	}

	err := h.reduceStock.Execute(ctx, &reduce_stock.Request{
		ProductID:  body.ProductID,
		VariantID:  body.VariantID,
		MerchantID: body.MerchantID,
		Quantity:   body.Quantity,
	})
	if err != nil {
		writeDomainError(ctx, w, err, messages{
			domain.ErrMerchantNotSeller: fmt.Sprintf("Merchant %s does not sell this variant.", body.MerchantID),
			domain.ErrInsufficientStock: fmt.Sprintf("Insufficient stock for Merchant %s", body.MerchantID),
		})
		return
	}
	httpx.WriteData(w, http.StatusOK, nil, "Stock reduced successfully")
}
