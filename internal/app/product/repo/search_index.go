package repo

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/spanner"

	"github.com/light-bringer/offercat-service/internal/app/product/contracts"
	"github.com/light-bringer/offercat-service/internal/app/product/domain"
	"github.com/light-bringer/offercat-service/internal/models/m_product"
	"github.com/light-bringer/offercat-service/internal/pkg/clock"
)

// SearchIndex runs Spanner full-text queries over the hidden token columns.
// search_tokens holds n-grams of the search text, so a single typo still matches;
// name_tokens holds word-prefix substrings of the name for autocomplete.
type SearchIndex struct {
	products *ProductRepo
}

var _ contracts.SearchIndex = (*SearchIndex)(nil)

// NewSearchIndex creates a SearchIndex reading through the product repo's client.
func NewSearchIndex(client *spanner.Client, clk clock.Clock) *SearchIndex {
	return &SearchIndex{products: NewProductRepo(client, clk)}
}

var readColumns = strings.Join(m_product.ReadColumns, ", ")

// Search ranks by n-gram overlap.
func (s *SearchIndex) Search(ctx context.Context, q string, limit int) ([]*domain.Product, error) {
	stmt := spanner.Statement{
		SQL: fmt.Sprintf(`SELECT %s FROM %s
WHERE SEARCH_NGRAMS(%s, @query, min_ngrams => 2)
ORDER BY SCORE_NGRAMS(%s, @query) DESC, %s ASC
LIMIT @limit`, readColumns, m_product.TableName, m_product.SearchTokens, m_product.SearchTokens, m_product.ProductID),
		Params: map[string]interface{}{"query": q, "limit": int64(limit)},
	}
	return s.run(ctx, stmt)
}

// Suggest matches prefixes of words in the product name.
func (s *SearchIndex) Suggest(ctx context.Context, prefix string, limit int) ([]*domain.Product, error) {
	stmt := spanner.Statement{
		SQL: fmt.Sprintf(`SELECT %s FROM %s
WHERE SEARCH_SUBSTRING(%s, @prefix, relative_search_type => 'word_prefix')
ORDER BY %s ASC
LIMIT @limit`, readColumns, m_product.TableName, m_product.NameTokens, m_product.ProductID),
		Params: map[string]interface{}{"prefix": prefix, "limit": int64(limit)},
	}
	return s.run(ctx, stmt)
}

func (s *SearchIndex) run(ctx context.Context, stmt spanner.Statement) ([]*domain.Product, error) {
	products, err := s.products.queryAll(s.products.client.Single().Query(ctx, stmt))
	if err != nil {
		return nil, fmt.Errorf("search query failed: %w", err)
	}
	return products, nil
}
