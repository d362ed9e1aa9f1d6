package reduce_stock

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/light-bringer/offercat-service/internal/app/product/contracts"
	"github.com/light-bringer/offercat-service/internal/app/product/domain"
	"github.com/light-bringer/offercat-service/internal/platform/observability"
)

// Request comes from the order system. MerchantID is explicit and not the caller.
type Request struct {
	ProductID  int64
	VariantID  string
	MerchantID string
	Quantity   int64
}

// Interactor handles the reduce stock use case. It performs no ownership check and
// must only be reachable from trusted internal callers.
type Interactor struct {
	repo contracts.ProductRepository
}

// NewInteractor creates a new reduce stock interactor.
func NewInteractor(repo contracts.ProductRepository) *Interactor {
	return &Interactor{repo: repo}
}

// Execute decrements the merchant's stock on the variant.
func (i *Interactor) Execute(ctx context.Context, req *Request) (err error) {
	ctx, span := observability.StartSpan(ctx, "reduce_stock",
		attribute.Int64("product.id", req.ProductID),
		attribute.String("variant.id", req.VariantID),
		attribute.Int64("quantity", req.Quantity),
	)
	defer func() { observability.EndSpan(span, err) }()

	if req.VariantID == "" {
		return domain.ErrEmptyVariantID
	}
	if req.Quantity <= 0 {
		return domain.ErrInvalidQuantity
	}

	product, err := i.repo.GetByProductID(ctx, req.ProductID)
	if err != nil {
		return fmt.Errorf("failed to load product %d: %w", req.ProductID, err)
	}

	if err := product.ReduceStock(req.VariantID, req.MerchantID, req.Quantity); err != nil {
		return fmt.Errorf("merchant %s: %w", req.MerchantID, err)
	}

	if err := i.repo.Save(ctx, product); err != nil {
		return fmt.Errorf("failed to save product %d: %w", req.ProductID, err)
	}

	observability.FromContext(ctx).Info("stock reduced",
		zap.Int64("product_id", req.ProductID),
		zap.String("variant_id", req.VariantID),
		zap.String("merchant_id", req.MerchantID),
		zap.Int64("quantity", req.Quantity),
	)
	return nil
}
