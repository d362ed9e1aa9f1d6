package pgrepo

import (
	"context"
	"fmt"

	"github.com/light-bringer/offercat-service/internal/app/product/domain"
)

// Search ranks by pg_trgm word similarity, which tolerates small typos.
func (s *Store) Search(ctx context.Context, q string, limit int) ([]*domain.Product, error) {
	rows, err := s.db.QueryContext(ctx, selectProducts+`
		WHERE $1 <% search_text
		ORDER BY word_similarity($1, search_text) DESC, product_id
		LIMIT $2`, q, limit)
	if err != nil {
		return nil, fmt.Errorf("search query failed: %w", err)
	}
	return s.scanAll(rows)
}

// Suggest matches names where the name or any word in it starts with prefix.
func (s *Store) Suggest(ctx context.Context, prefix string, limit int) ([]*domain.Product, error) {
	pattern := prefixPattern(prefix)
	rows, err := s.db.QueryContext(ctx, selectProducts+`
		WHERE lower(name) LIKE $1 OR lower(name) LIKE '% ' || $1
		ORDER BY product_id
		LIMIT $2`, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("suggest query failed: %w", err)
	}
	return s.scanAll(rows)
}
