package contracts

import (
	"context"

	"github.com/light-bringer/offercat-service/internal/app/product/domain"
)

// ProductRepository persists whole Product aggregates.
// Implementations return domain.ErrProductNotFound for missing products and
// domain.ErrConcurrentModification when a save loses a version race.
type ProductRepository interface {
	// GetByProductID loads the aggregate by its public numeric ID.
	GetByProductID(ctx context.Context, productID int64) (*domain.Product, error)

	// GetByNormalizedNameAndBrand is the dedup lookup; brand compares case-insensitively.
	GetByNormalizedNameAndBrand(ctx context.Context, normalizedName, brand string) (*domain.Product, error)

	// List returns a page of products ordered by product ID.
	List(ctx context.Context, filter ListFilter) (*ListResult, error)

	// ListByMerchant returns every product on which merchantID holds at least one offer.
	ListByMerchant(ctx context.Context, merchantID string) ([]*domain.Product, error)

	// Save writes the aggregate and its pending domain events in one atomic commit,
	// checking the version the aggregate was loaded at. On success the aggregate
	// is marked committed. A product without changes is not written.
	Save(ctx context.Context, product *domain.Product) error
}

// ListFilter defines filtering options for listing products.
type ListFilter struct {
	// Category matches case-insensitively against any element of the category list.
	Category string
	Offset   int
	Limit    int
}

// ListResult contains a page of products and the total match count.
type ListResult struct {
	Products   []*domain.Product
	TotalCount int64
}

// SequenceAllocator issues monotonically increasing integers per named sequence.
type SequenceAllocator interface {
	NextValue(ctx context.Context, name string) (int64, error)
}

// SearchIndex is the full-text collaborator. Hits are returned ranked and bounded by limit.
type SearchIndex interface {
	// Search matches name, description, brand and categories with light fuzziness.
	Search(ctx context.Context, query string, limit int) ([]*domain.Product, error)

	// Suggest is prefix autocomplete over product names.
	Suggest(ctx context.Context, prefix string, limit int) ([]*domain.Product, error)
}
