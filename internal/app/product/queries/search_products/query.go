package search_products

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/light-bringer/offercat-service/internal/app/product/contracts"
	"github.com/light-bringer/offercat-service/internal/app/product/domain"
	"github.com/light-bringer/offercat-service/internal/platform/observability"
)

const (
	SearchLimit  = 20
	SuggestLimit = 5
)

// Query maps search index hits to market views. Index failures never reach the
// caller: they are logged, counted and turned into an empty result.
type Query struct {
	index    contracts.SearchIndex
	degraded metric.Int64Counter
}

// NewQuery creates a new search query.
func NewQuery(index contracts.SearchIndex) *Query {
	degraded, err := observability.Meter().Int64Counter("catalog.search.degraded",
		metric.WithDescription("Search or suggest calls answered empty because the index failed"),
	)
	if err != nil {
		degraded = nil
	}
	return &Query{index: index, degraded: degraded}
}

// Search runs a fuzzy search, bounded to SearchLimit hits.
func (q *Query) Search(ctx context.Context, text string) []*domain.DisplayProjection {
	return q.run(ctx, "search", text, func(ctx context.Context, s string) ([]*domain.Product, error) {
		return q.index.Search(ctx, s, SearchLimit)
	})
}

// Suggest runs a name prefix lookup, bounded to SuggestLimit hits.
func (q *Query) Suggest(ctx context.Context, prefix string) []*domain.DisplayProjection {
	return q.run(ctx, "suggest", prefix, func(ctx context.Context, s string) ([]*domain.Product, error) {
		return q.index.Suggest(ctx, s, SuggestLimit)
	})
}

func (q *Query) run(
	ctx context.Context,
	op, text string,
	lookup func(context.Context, string) ([]*domain.Product, error),
) []*domain.DisplayProjection {
	views := make([]*domain.DisplayProjection, 0)
	text = strings.TrimSpace(text)
	if text == "" {
		return views
	}

	ctx, span := observability.StartSpan(ctx, op, attribute.String("query", text))
	logger := observability.FromContext(ctx)

	hits, err := lookup(ctx, text)
	if err != nil {
		logger.Error(op+" failed", zap.String("query", text), zap.Error(err))
		if q.degraded != nil {
			q.degraded.Add(ctx, 1, metric.WithAttributes(attribute.String("op", op)))
		}
		observability.EndSpan(span, err)
		return views
	}
	span.End()

	for _, p := range hits {
		variants := p.Variants()
		if len(variants) == 0 {
			logger.Warn(op+" hit has no variants", zap.Int64("product_id", p.ProductID()))
			continue
		}
		views = append(views, domain.MarketView(p, variants[0]))
	}
	return views
}
