package update_inventory

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/light-bringer/offercat-service/internal/app/product/contracts"
	"github.com/light-bringer/offercat-service/internal/app/product/domain"
	"github.com/light-bringer/offercat-service/internal/platform/observability"
)

// Request is a partial price/stock update of the caller's own offer.
// A nil Price or Stock leaves that field unchanged.
type Request struct {
	MerchantID string
	ProductID  int64
	VariantID  string
	Price      *domain.Money
	Stock      *int64
}

// Interactor handles the update inventory use case.
type Interactor struct {
	repo contracts.ProductRepository
}

// NewInteractor creates a new update inventory interactor.
func NewInteractor(repo contracts.ProductRepository) *Interactor {
	return &Interactor{repo: repo}
}

// Execute applies the update and saves the product.
func (i *Interactor) Execute(ctx context.Context, req *Request) (err error) {
	ctx, span := observability.StartSpan(ctx, "update_inventory",
		attribute.Int64("product.id", req.ProductID),
		attribute.String("variant.id", req.VariantID),
	)
	defer func() { observability.EndSpan(span, err) }()

	if req.MerchantID == "" {
		return domain.ErrUnauthenticated
	}
	if req.VariantID == "" {
		return domain.ErrEmptyVariantID
	}

	product, err := i.repo.GetByProductID(ctx, req.ProductID)
	if err != nil {
		return fmt.Errorf("failed to load product %d: %w", req.ProductID, err)
	}

	if err := product.UpdateOffer(req.VariantID, req.MerchantID, req.Price, req.Stock); err != nil {
		return err
	}

	if err := i.repo.Save(ctx, product); err != nil {
		return fmt.Errorf("failed to save product %d: %w", req.ProductID, err)
	}

	observability.FromContext(ctx).Info("inventory updated",
		zap.Int64("product_id", req.ProductID),
		zap.String("variant_id", req.VariantID),
		zap.String("merchant_id", req.MerchantID),
		zap.Bool("price_changed", req.Price != nil),
		zap.Bool("stock_changed", req.Stock != nil),
	)
	return nil
}
