package repo

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/spanner"
	"google.golang.org/api/iterator"

	"github.com/light-bringer/offercat-service/internal/app/product/contracts"
	"github.com/light-bringer/offercat-service/internal/app/product/domain"
	"github.com/light-bringer/offercat-service/internal/app/product/mapper"
	"github.com/light-bringer/offercat-service/internal/models/m_product"
	"github.com/light-bringer/offercat-service/internal/pkg/clock"
	"github.com/light-bringer/offercat-service/internal/pkg/committer"
	"github.com/light-bringer/offercat-service/internal/pkg/query"
)

// ProductRepo implements ProductRepository for Spanner.
type ProductRepo struct {
	client    *spanner.Client
	committer *committer.Committer
	model     *m_product.Model
	outbox    *OutboxRepo
	clock     clock.Clock
}

var _ contracts.ProductRepository = (*ProductRepo)(nil)

// NewProductRepo creates a new ProductRepo.
func NewProductRepo(client *spanner.Client, clk clock.Clock) *ProductRepo {
	return &ProductRepo{
		client:    client,
		committer: committer.NewCommitter(client),
		model:     m_product.NewModel(),
		outbox:    NewOutboxRepo(client, clk),
		clock:     clk,
	}
}

// InsertMut creates a mutation for a product that has never been saved.
func (r *ProductRepo) InsertMut(product *domain.Product) (*spanner.Mutation, error) {
	data, err := mapper.ToData(product)
	if err != nil {
		return nil, err
	}
	return r.model.InsertMut(data), nil
}

// UpdateMut creates a mutation rewriting the stored product. Nil when nothing changed.
func (r *ProductRepo) UpdateMut(product *domain.Product) (*spanner.Mutation, error) {
	if !product.Changes().HasChanges() {
		return nil, nil
	}
	data, err := mapper.ToData(product)
	if err != nil {
		return nil, err
	}
	return r.model.UpdateMut(data), nil
}

// Save commits the product row and its outbox events in one version-checked transaction.
func (r *ProductRepo) Save(ctx context.Context, product *domain.Product) error {
	if !product.Changes().HasChanges() {
		return nil
	}

	var (
		mut *spanner.Mutation
		err error
	)
	if product.IsNew() {
		mut, err = r.InsertMut(product)
	} else {
		mut, err = r.UpdateMut(product)
	}
	if err != nil {
		return fmt.Errorf("failed to build product mutation: %w", err)
	}

	plan := committer.NewPlan()
	plan.Add(mut)

	records, err := mapper.OutboxRecords(product.DomainEvents(), r.clock.Now())
	if err != nil {
		return err
	}
	for _, rec := range records {
		plan.Add(r.outbox.InsertMut(rec))
	}

	err = r.committer.ApplyWithVersionCheck(ctx, committer.VersionCheck{
		Table:    m_product.TableName,
		Key:      spanner.Key{product.ID()},
		Column:   m_product.Version,
		Expected: product.Version(),
	}, plan)
	if errors.Is(err, committer.ErrOptimisticLockConflict) {
		return fmt.Errorf("product %d: %w", product.ProductID(), domain.ErrConcurrentModification)
	}
	if err != nil {
		return err
	}

	product.MarkCommitted()
	return nil
}

func (r *ProductRepo) selectProducts() *query.Builder {
	return query.From(m_product.TableName).Select(m_product.ReadColumns...)
}

// GetByProductID retrieves a product by its public ID.
func (r *ProductRepo) GetByProductID(ctx context.Context, productID int64) (*domain.Product, error) {
	stmt := r.selectProducts().
		Where(query.Eq(m_product.ProductID, productID)).
		Limit(1).
		Build()
	return r.queryOne(ctx, stmt)
}

// GetByNormalizedNameAndBrand is the dedup lookup. Brands compare by folded key.
func (r *ProductRepo) GetByNormalizedNameAndBrand(ctx context.Context, normalizedName, brand string) (*domain.Product, error) {
	stmt := r.selectProducts().
		Where(query.Eq(m_product.NormalizedName, normalizedName)).
		Where(query.Eq(m_product.BrandKey, domain.BrandKey(brand))).
		Limit(1).
		Build()
	return r.queryOne(ctx, stmt)
}

// List returns a page of products ordered by product ID plus the total match count.
// Both reads share one snapshot.
func (r *ProductRepo) List(ctx context.Context, filter contracts.ListFilter) (*contracts.ListResult, error) {
	base := query.From(m_product.TableName)
	if filter.Category != "" {
		base = base.Where(query.AnyContainsFold(m_product.Categories, filter.Category))
	}

	page := base.Select(m_product.ReadColumns...).
		OrderBy(m_product.ProductID, query.Asc).
		Limit(int64(filter.Limit)).
		Offset(int64(filter.Offset))

	txn := r.client.ReadOnlyTransaction()
	defer txn.Close()

	products, err := r.queryAll(txn.Query(ctx, page.Build()))
	if err != nil {
		return nil, err
	}

	total, err := countRows(txn.Query(ctx, base.Count().Build()))
	if err != nil {
		return nil, err
	}

	return &contracts.ListResult{Products: products, TotalCount: total}, nil
}

// ListByMerchant uses the denormalized merchant_ids column.
func (r *ProductRepo) ListByMerchant(ctx context.Context, merchantID string) ([]*domain.Product, error) {
	stmt := r.selectProducts().
		Where(query.InArray(m_product.MerchantIDs, merchantID)).
		OrderBy(m_product.ProductID, query.Asc).
		Build()
	return r.queryAll(r.client.Single().Query(ctx, stmt))
}

func (r *ProductRepo) queryOne(ctx context.Context, stmt spanner.Statement) (*domain.Product, error) {
	products, err := r.queryAll(r.client.Single().Query(ctx, stmt))
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, domain.ErrProductNotFound
	}
	return products[0], nil
}

func (r *ProductRepo) queryAll(iter *spanner.RowIterator) ([]*domain.Product, error) {
	defer iter.Stop()

	products := make([]*domain.Product, 0)
	for {
		row, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to query products: %w", err)
		}
		p, err := r.rowToDomain(row)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, nil
}

func (r *ProductRepo) rowToDomain(row *spanner.Row) (*domain.Product, error) {
	decoded, err := m_product.DecodeRow(row)
	if err != nil {
		return nil, err
	}
	doc, err := decoded.Decode()
	if err != nil {
		return nil, err
	}
	return mapper.ToProduct(doc, decoded.Version, r.clock)
}

func countRows(iter *spanner.RowIterator) (int64, error) {
	defer iter.Stop()

	row, err := iter.Next()
	if err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	var count int64
	if err := row.Columns(&count); err != nil {
		return 0, fmt.Errorf("failed to parse count: %w", err)
	}
	return count, nil
}
