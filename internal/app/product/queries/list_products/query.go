package list_products

import (
	"context"
	"fmt"
	"math"

	"github.com/light-bringer/offercat-service/internal/app/product/contracts"
	"github.com/light-bringer/offercat-service/internal/app/product/domain"
)

const (
	DefaultSize = 20
	MaxSize     = 100
)

// Request contains filtering and pagination parameters. Page is zero-based and
// counts products, not variants.
type Request struct {
	Category string
	Page     int
	Size     int
}

// Result is one page of market views, one per variant of each listed product.
type Result struct {
	Items         []*domain.DisplayProjection
	Page          int
	Size          int
	TotalProducts int64
}

// Query handles the list products query use case.
type Query struct {
	repo contracts.ProductRepository
}

// NewQuery creates a new list products query.
func NewQuery(repo contracts.ProductRepository) *Query {
	return &Query{repo: repo}
}

// Execute retrieves a page of products and flattens their variants.
func (q *Query) Execute(ctx context.Context, req *Request) (*Result, error) {
	size := req.Size
	if size <= 0 {
		size = DefaultSize
	}
	if size > MaxSize {
		size = MaxSize
	}
	page := req.Page
	if page < 0 {
		page = 0
	}
	// offset must stay representable
	if page > (math.MaxInt-size)/size {
		return nil, domain.ErrPageOutOfRange
	}

	res, err := q.repo.List(ctx, contracts.ListFilter{
		Category: req.Category,
		Offset:   page * size,
		Limit:    size,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	items := make([]*domain.DisplayProjection, 0, len(res.Products))
	for _, p := range res.Products {
		for _, v := range p.Variants() {
			items = append(items, domain.MarketView(p, v))
		}
	}

	return &Result{
		Items:         items,
		Page:          page,
		Size:          size,
		TotalProducts: res.TotalCount,
	}, nil
}
