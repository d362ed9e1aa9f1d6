// Package pgrepo is the PostgreSQL implementation of the product contracts.
// Aggregates live in a JSONB document column next to the indexed lookup columns;
// search uses pg_trgm word similarity.
package pgrepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/light-bringer/offercat-service/internal/app/product/contracts"
	"github.com/light-bringer/offercat-service/internal/app/product/domain"
	"github.com/light-bringer/offercat-service/internal/app/product/mapper"
	"github.com/light-bringer/offercat-service/internal/models/m_product"
	"github.com/light-bringer/offercat-service/internal/pkg/clock"
)

const (
	maxOpenConns    = 20
	uniqueViolation = "23505"
)

// Store implements every product contract on one *sql.DB.
type Store struct {
	db    *sql.DB
	clock clock.Clock
}

var (
	_ contracts.ProductRepository = (*Store)(nil)
	_ contracts.SequenceAllocator = (*Store)(nil)
	_ contracts.SearchIndex       = (*Store)(nil)
	_ contracts.OutboxStore       = (*Store)(nil)
	_ contracts.EventsReadModel   = (*Store)(nil)
)

// Open connects with the lib/pq driver and verifies the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	db.SetMaxOpenConns(maxOpenConns)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	return db, nil
}

// NewStore wraps an open database.
func NewStore(db *sql.DB, clk clock.Clock) *Store {
	return &Store{db: db, clock: clk}
}

const selectProducts = `SELECT id, document, version FROM products`

// NextValue implements contracts.SequenceAllocator with an atomic upsert.
func (s *Store) NextValue(ctx context.Context, name string) (int64, error) {
	var next int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO sequences (name, value) VALUES ($1, 1)
		ON CONFLICT (name) DO UPDATE SET value = sequences.value + 1
		RETURNING value`, name).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate %s value: %w", name, err)
	}
	return next, nil
}

// GetByProductID implements contracts.ProductRepository.
func (s *Store) GetByProductID(ctx context.Context, productID int64) (*domain.Product, error) {
	return s.queryOne(ctx, selectProducts+` WHERE product_id = $1`, productID)
}

// GetByNormalizedNameAndBrand implements contracts.ProductRepository.
func (s *Store) GetByNormalizedNameAndBrand(ctx context.Context, normalizedName, brand string) (*domain.Product, error) {
	return s.queryOne(ctx, selectProducts+` WHERE normalized_name = $1 AND brand_key = $2`,
		normalizedName, domain.BrandKey(brand))
}

// List implements contracts.ProductRepository; page and count share a snapshot.
func (s *Store) List(ctx context.Context, filter contracts.ListFilter) (*contracts.ListResult, error) {
	where, args := "", []interface{}{}
	if filter.Category != "" {
		where = ` WHERE EXISTS (SELECT 1 FROM unnest(categories) AS c WHERE lower(c) LIKE $1)`
		args = append(args, containsPattern(filter.Category))
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to begin list: %w", err)
	}
	defer tx.Rollback()

	var total int64
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	page := selectProducts + where + ` ORDER BY product_id`
	if filter.Limit > 0 {
		page += fmt.Sprintf(` LIMIT %d`, filter.Limit)
	}
	if filter.Offset > 0 {
		page += fmt.Sprintf(` OFFSET %d`, filter.Offset)
	}
	rows, err := tx.QueryContext(ctx, page, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	products, err := s.scanAll(rows)
	if err != nil {
		return nil, err
	}
	return &contracts.ListResult{Products: products, TotalCount: total}, nil
}

// ListByMerchant implements contracts.ProductRepository via the GIN-indexed merchant_ids array.
func (s *Store) ListByMerchant(ctx context.Context, merchantID string) ([]*domain.Product, error) {
	rows, err := s.db.QueryContext(ctx, selectProducts+` WHERE merchant_ids @> $1 ORDER BY product_id`,
		pq.Array([]string{merchantID}))
	if err != nil {
		return nil, fmt.Errorf("failed to list merchant products: %w", err)
	}
	return s.scanAll(rows)
}

// Save implements contracts.ProductRepository. Updates are guarded by
// WHERE version = loaded version; inserts by the name/brand unique constraint.
func (s *Store) Save(ctx context.Context, p *domain.Product) error {
	if !p.Changes().HasChanges() {
		return nil
	}

	data, err := mapper.ToData(p)
	if err != nil {
		return err
	}
	doc, err := json.Marshal(data.Document)
	if err != nil {
		return fmt.Errorf("failed to encode product %d: %w", p.ProductID(), err)
	}
	records, err := mapper.OutboxRecords(p.DomainEvents(), s.clock.Now())
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin save: %w", err)
	}
	defer tx.Rollback()

	if p.IsNew() {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO products (id, product_id, normalized_name, brand_key, name, categories,
				merchant_ids, search_text, document, version, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			data.ID, data.ProductID, data.NormalizedName, data.BrandKey, data.Name,
			pq.Array(data.Categories), pq.Array(data.MerchantIDs), data.SearchText,
			string(doc), data.Version, data.CreatedAt, data.UpdatedAt)
		if isUniqueViolation(err) {
			return fmt.Errorf("product %q by %q: %w", p.Name(), p.Brand(), domain.ErrConcurrentModification)
		}
		if err != nil {
			return fmt.Errorf("failed to insert product %d: %w", p.ProductID(), err)
		}
	} else {
		res, err := tx.ExecContext(ctx, `
			UPDATE products SET name = $3, categories = $4, merchant_ids = $5, search_text = $6,
				document = $7, version = $8, updated_at = $9
			WHERE id = $1 AND version = $2`,
			data.ID, p.Version(), data.Name, pq.Array(data.Categories), pq.Array(data.MerchantIDs),
			data.SearchText, string(doc), data.Version, data.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to update product %d: %w", p.ProductID(), err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return fmt.Errorf("product %d: %w", p.ProductID(), domain.ErrConcurrentModification)
		}
	}

	for _, rec := range records {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO outbox_events (event_id, event_type, aggregate_id, payload, status, created_at, retry_count)
			VALUES ($1, $2, $3, $4, $5, $6, 0)`,
			rec.EventID, rec.EventType, rec.AggregateID, rec.Payload, rec.Status, rec.CreatedAt); err != nil {
			return fmt.Errorf("failed to insert %s event: %w", rec.EventType, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit product %d: %w", p.ProductID(), err)
	}
	p.MarkCommitted()
	return nil
}

func (s *Store) queryOne(ctx context.Context, q string, args ...interface{}) (*domain.Product, error) {
	var (
		id      string
		raw     []byte
		version int64
	)
	err := s.db.QueryRowContext(ctx, q, args...).Scan(&id, &raw, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read product: %w", err)
	}
	return s.decode(id, raw, version)
}

func (s *Store) scanAll(rows *sql.Rows) ([]*domain.Product, error) {
	defer rows.Close()

	products := make([]*domain.Product, 0)
	for rows.Next() {
		var (
			id      string
			raw     []byte
			version int64
		)
		if err := rows.Scan(&id, &raw, &version); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		p, err := s.decode(id, raw, version)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate products: %w", err)
	}
	return products, nil
}

func (s *Store) decode(id string, raw []byte, version int64) (*domain.Product, error) {
	var doc m_product.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode product %s: %w", id, err)
	}
	return mapper.ToProduct(&doc, version, s.clock)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a lowercase LIKE pattern matching substr literally.
func containsPattern(substr string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(substr)) + "%"
}

// prefixPattern builds a lowercase LIKE pattern matching values that start with prefix.
func prefixPattern(prefix string) string {
	return likeEscaper.Replace(strings.ToLower(prefix)) + "%"
}
