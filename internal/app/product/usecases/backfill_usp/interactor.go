package backfill_usp

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"go.uber.org/zap"

	"github.com/light-bringer/offercat-service/internal/app/product/contracts"
	"github.com/light-bringer/offercat-service/internal/app/product/domain"
	"github.com/light-bringer/offercat-service/internal/platform/observability"
)

// Pool is the fixed set of highlights products are assigned from.
var Pool = []string{
	"Premium Build Quality",
	"Eco-Friendly Materials",
	"Best in Class Warranty",
	"Award Winning Design",
	"Fast Charging Support",
	"Water Resistant",
	"Ultra Lightweight",
	"Limited Edition",
	"Energy Efficient",
}

const (
	perProduct = 3
	pageSize   = 100
)

// Result summarises one backfill run.
type Result struct {
	Scanned   int `json:"scanned"`
	Updated   int `json:"updated"`
	Conflicts int `json:"conflicts"`
}

// Interactor assigns random highlights to every product that has none.
type Interactor struct {
	repo    contracts.ProductRepository
	shuffle func(n int, swap func(i, j int))
}

// NewInteractor creates a new backfill interactor.
func NewInteractor(repo contracts.ProductRepository) *Interactor {
	return &Interactor{repo: repo, shuffle: rand.Shuffle}
}

// WithShuffle replaces the shuffle; tests pass a deterministic one.
func (i *Interactor) WithShuffle(shuffle func(n int, swap func(i, j int))) *Interactor {
	i.shuffle = shuffle
	return i
}

// Execute walks the catalog page by page. A product modified concurrently is
// skipped and counted; any other store failure stops the run.
func (i *Interactor) Execute(ctx context.Context) (res *Result, err error) {
	ctx, span := observability.StartSpan(ctx, "backfill_usp")
	defer func() { observability.EndSpan(span, err) }()

	logger := observability.FromContext(ctx)
	res = &Result{}

	for offset := 0; ; offset += pageSize {
		page, err := i.repo.List(ctx, contracts.ListFilter{Offset: offset, Limit: pageSize})
		if err != nil {
			return res, fmt.Errorf("failed to list products: %w", err)
		}

		for _, p := range page.Products {
			res.Scanned++
			if p.HasUSP() {
				continue
			}
			p.AssignUSP(i.pick())

			err := i.repo.Save(ctx, p)
			if errors.Is(err, domain.ErrConcurrentModification) {
				res.Conflicts++
				logger.Warn("usp backfill skipped product", zap.Int64("product_id", p.ProductID()), zap.Error(err))
				continue
			}
			if err != nil {
				return res, fmt.Errorf("failed to save product %d: %w", p.ProductID(), err)
			}
			res.Updated++
		}

		if len(page.Products) < pageSize {
			break
		}
	}

	logger.Info("usp backfill finished",
		zap.Int("scanned", res.Scanned),
		zap.Int("updated", res.Updated),
		zap.Int("conflicts", res.Conflicts),
	)
	return res, nil
}

func (i *Interactor) pick() []string {
	pool := make([]string, len(Pool))
	copy(pool, Pool)
	i.shuffle(len(pool), func(a, b int) { pool[a], pool[b] = pool[b], pool[a] })
	return pool[:perProduct]
}
