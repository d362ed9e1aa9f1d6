package get_product_detail

import (
	"context"
	"fmt"

	"github.com/light-bringer/offercat-service/internal/app/product/contracts"
	"github.com/light-bringer/offercat-service/internal/app/product/domain"
)

// Request identifies one variant of a product.
type Request struct {
	ProductID int64
	VariantID string
}

// Query handles the product detail page.
type Query struct {
	repo contracts.ProductRepository
}

// NewQuery creates a new get product detail query.
func NewQuery(repo contracts.ProductRepository) *Query {
	return &Query{repo: repo}
}

// Execute returns product fields, the variant's images and attributes, and every seller.
func (q *Query) Execute(ctx context.Context, req *Request) (*domain.Detail, error) {
	if req.VariantID == "" {
		return nil, domain.ErrEmptyVariantID
	}

	p, err := q.repo.GetByProductID(ctx, req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("failed to load product %d: %w", req.ProductID, err)
	}
	v, err := p.Variant(req.VariantID)
	if err != nil {
		return nil, err
	}
	return domain.NewDetail(p, v), nil
}
