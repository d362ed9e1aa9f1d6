package remove_inventory

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/light-bringer/offercat-service/internal/app/product/contracts"
	"github.com/light-bringer/offercat-service/internal/app/product/domain"
	"github.com/light-bringer/offercat-service/internal/platform/observability"
)

// Request identifies the caller's offer to withdraw.
type Request struct {
	MerchantID string
	ProductID  int64
	VariantID  string
}

// Interactor handles the remove inventory use case.
type Interactor struct {
	repo contracts.ProductRepository
}

// NewInteractor creates a new remove inventory interactor.
func NewInteractor(repo contracts.ProductRepository) *Interactor {
	return &Interactor{repo: repo}
}

// Execute withdraws the offer. The product is saved even when its last variant goes.
func (i *Interactor) Execute(ctx context.Context, req *Request) (err error) {
	ctx, span := observability.StartSpan(ctx, "remove_inventory",
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

	variantRemoved, err := product.RemoveOffer(req.VariantID, req.MerchantID)
	if err != nil {
		return err
	}

	if err := i.repo.Save(ctx, product); err != nil {
		return fmt.Errorf("failed to save product %d: %w", req.ProductID, err)
	}

	observability.FromContext(ctx).Info("inventory removed",
		zap.Int64("product_id", req.ProductID),
		zap.String("variant_id", req.VariantID),
		zap.String("merchant_id", req.MerchantID),
		zap.Bool("variant_removed", variantRemoved),
	)
	return nil
}
