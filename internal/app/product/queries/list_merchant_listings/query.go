package list_merchant_listings

import (
	"context"
	"fmt"

	"github.com/light-bringer/offercat-service/internal/app/product/contracts"
	"github.com/light-bringer/offercat-service/internal/app/product/domain"
)

// Query lists every variant the caller sells, in the caller's own view.
type Query struct {
	repo contracts.ProductRepository
}

// NewQuery creates a new merchant listings query.
func NewQuery(repo contracts.ProductRepository) *Query {
	return &Query{repo: repo}
}

// Execute returns merchant views ordered by product ID, then variant order.
func (q *Query) Execute(ctx context.Context, merchantID string) ([]*domain.DisplayProjection, error) {
	if merchantID == "" {
		return nil, domain.ErrUnauthenticated
	}

	products, err := q.repo.ListByMerchant(ctx, merchantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list products for merchant %s: %w", merchantID, err)
	}

	views := make([]*domain.DisplayProjection, 0)
	for _, p := range products {
		for _, v := range p.Variants() {
			if _, ok := v.OfferBy(merchantID); ok {
				views = append(views, domain.MerchantView(p, v, merchantID))
			}
		}
	}
	return views, nil
}
