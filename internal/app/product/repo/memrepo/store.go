// Package memrepo is an in-process implementation of every product contract.
// It backs the "memory" store driver and the use-case tests. Aggregates are stored
// as encoded documents, so callers never share state with the store.
package memrepo

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/light-bringer/offercat-service/internal/app/product/contracts"
	"github.com/light-bringer/offercat-service/internal/app/product/domain"
	"github.com/light-bringer/offercat-service/internal/app/product/mapper"
	"github.com/light-bringer/offercat-service/internal/models/m_product"
	"github.com/light-bringer/offercat-service/internal/pkg/clock"
)

type entry struct {
	id             string
	productID      int64
	normalizedName string
	brandKey       string
	categories     []string
	merchantIDs    []string
	searchText     string
	name           string
	document       []byte
	version        int64
}

// Store holds products, sequences and outbox events behind one mutex.
type Store struct {
	mu        sync.RWMutex
	clock     clock.Clock
	products  map[string]*entry
	byPublic  map[int64]string
	byKey     map[string]string
	sequences map[string]int64
	outbox    []*contracts.OutboxRecord
}

var (
	_ contracts.ProductRepository = (*Store)(nil)
	_ contracts.SequenceAllocator = (*Store)(nil)
	_ contracts.SearchIndex       = (*Store)(nil)
	_ contracts.OutboxStore       = (*Store)(nil)
	_ contracts.EventsReadModel   = (*Store)(nil)
)

// NewStore creates an empty Store.
func NewStore(clk clock.Clock) *Store {
	return &Store{
		clock:     clk,
		products:  make(map[string]*entry),
		byPublic:  make(map[int64]string),
		byKey:     make(map[string]string),
		sequences: make(map[string]int64),
	}
}

func dedupKey(normalizedName, brandKey string) string {
	return normalizedName + "\x00" + brandKey
}

// NextValue implements contracts.SequenceAllocator.
func (s *Store) NextValue(_ context.Context, name string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sequences[name]++
	return s.sequences[name], nil
}

// GetByProductID implements contracts.ProductRepository.
func (s *Store) GetByProductID(_ context.Context, productID int64) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byPublic[productID]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return s.decode(s.products[id])
}

// GetByNormalizedNameAndBrand implements contracts.ProductRepository.
func (s *Store) GetByNormalizedNameAndBrand(_ context.Context, normalizedName, brand string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byKey[dedupKey(normalizedName, domain.BrandKey(brand))]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return s.decode(s.products[id])
}

// List implements contracts.ProductRepository.
func (s *Store) List(_ context.Context, filter contracts.ListFilter) (*contracts.ListResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := s.sorted(func(e *entry) bool {
		return filter.Category == "" || anyContainsFold(e.categories, filter.Category)
	})
	total := int64(len(matched))

	start := filter.Offset
	if start < 0 {
		start = 0
	}
	if start > len(matched) {
		start = len(matched)
	}
	end := len(matched)
	if filter.Limit > 0 && start+filter.Limit < end {
		end = start + filter.Limit
	}

	products, err := s.decodeAll(matched[start:end])
	if err != nil {
		return nil, err
	}
	return &contracts.ListResult{Products: products, TotalCount: total}, nil
}

// ListByMerchant implements contracts.ProductRepository.
func (s *Store) ListByMerchant(_ context.Context, merchantID string) ([]*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.decodeAll(s.sorted(func(e *entry) bool {
		i := sort.SearchStrings(e.merchantIDs, merchantID)
		return i < len(e.merchantIDs) && e.merchantIDs[i] == merchantID
	}))
}

// Save implements contracts.ProductRepository with the same version semantics as
// the Spanner store: the stored version must equal the loaded one, and a new
// product must not collide with an existing name/brand pair.
func (s *Store) Save(_ context.Context, p *domain.Product) error {
	if !p.Changes().HasChanges() {
		return nil
	}

	data, err := mapper.ToData(p)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(data.Document)
	if err != nil {
		return fmt.Errorf("failed to encode product %d: %w", p.ProductID(), err)
	}
	records, err := mapper.OutboxRecords(p.DomainEvents(), s.clock.Now())
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var current int64
	if e, ok := s.products[p.ID()]; ok {
		current = e.version
	}
	if current != p.Version() {
		return fmt.Errorf("product %d: %w", p.ProductID(), domain.ErrConcurrentModification)
	}

	key := dedupKey(data.NormalizedName, data.BrandKey)
	if owner, ok := s.byKey[key]; ok && owner != p.ID() {
		return fmt.Errorf("product %q by %q: %w", p.Name(), p.Brand(), domain.ErrConcurrentModification)
	}
	if owner, ok := s.byPublic[p.ProductID()]; ok && owner != p.ID() {
		return fmt.Errorf("product id %d taken: %w", p.ProductID(), domain.ErrConcurrentModification)
	}

	s.products[p.ID()] = &entry{
		id:             data.ID,
		productID:      data.ProductID,
		normalizedName: data.NormalizedName,
		brandKey:       data.BrandKey,
		categories:     data.Categories,
		merchantIDs:    data.MerchantIDs,
		searchText:     data.SearchText,
		name:           data.Name,
		document:       raw,
		version:        data.Version,
	}
	s.byKey[key] = p.ID()
	s.byPublic[p.ProductID()] = p.ID()
	s.outbox = append(s.outbox, records...)

	p.MarkCommitted()
	return nil
}

// Search implements contracts.SearchIndex: every query word must match a word of
// the search text exactly, by prefix, or within one edit.
func (s *Store) Search(_ context.Context, q string, limit int) ([]*domain.Product, error) {
	terms := words(q)
	if len(terms) == 0 {
		return []*domain.Product{}, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	type hit struct {
		e     *entry
		score int
	}
	hits := make([]hit, 0)
	for _, e := range s.sorted(nil) {
		if score, ok := matchAll(terms, words(e.searchText)); ok {
			hits = append(hits, hit{e: e, score: score})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })

	ranked := make([]*entry, 0, len(hits))
	for _, h := range hits {
		ranked = append(ranked, h.e)
	}
	return s.decodeAll(truncate(ranked, limit))
}

// Suggest implements contracts.SearchIndex with word-prefix matching on the name.
func (s *Store) Suggest(_ context.Context, prefix string, limit int) ([]*domain.Product, error) {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if prefix == "" {
		return []*domain.Product{}, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := s.sorted(func(e *entry) bool {
		name := strings.ToLower(e.name)
		if strings.HasPrefix(name, prefix) {
			return true
		}
		for _, w := range words(name) {
			if strings.HasPrefix(w, prefix) {
				return true
			}
		}
		return false
	})
	return s.decodeAll(truncate(matched, limit))
}

// Snapshot returns the stored document of a product; used by tests.
func (s *Store) Snapshot(productID int64) (*m_product.Document, int64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byPublic[productID]
	if !ok {
		return nil, 0, false
	}
	e := s.products[id]
	var doc m_product.Document
	if err := json.Unmarshal(e.document, &doc); err != nil {
		return nil, 0, false
	}
	return &doc, e.version, true
}

// sorted returns matching entries ordered by product ID. Callers hold the lock.
func (s *Store) sorted(keep func(*entry) bool) []*entry {
	out := make([]*entry, 0, len(s.products))
	for _, e := range s.products {
		if keep == nil || keep(e) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].productID < out[j].productID })
	return out
}

func (s *Store) decodeAll(entries []*entry) ([]*domain.Product, error) {
	products := make([]*domain.Product, 0, len(entries))
	for _, e := range entries {
		p, err := s.decode(e)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, nil
}

func (s *Store) decode(e *entry) (*domain.Product, error) {
	var doc m_product.Document
	if err := json.Unmarshal(e.document, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode product %d: %w", e.productID, err)
	}
	return mapper.ToProduct(&doc, e.version, s.clock)
}

func truncate(entries []*entry, limit int) []*entry {
	if limit > 0 && len(entries) > limit {
		return entries[:limit]
	}
	return entries
}

func anyContainsFold(values []string, substr string) bool {
	needle := strings.ToLower(substr)
	for _, v := range values {
		if strings.Contains(strings.ToLower(v), needle) {
			return true
		}
	}
	return false
}

func words(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9') && r < 0x80
	})
}

// matchAll scores exact word hits higher than fuzzy ones.
func matchAll(terms, text []string) (int, bool) {
	score := 0
	for _, term := range terms {
		best := 0
		for _, w := range text {
			switch {
			case w == term:
				best = 3
			case strings.HasPrefix(w, term) && best < 2:
				best = 2
			case best < 1 && withinOneEdit(term, w):
				best = 1
			}
			if best == 3 {
				break
			}
		}
		if best == 0 {
			return 0, false
		}
		score += best
	}
	return score, true
}

// withinOneEdit reports a Levenshtein distance of at most one.
func withinOneEdit(a, b string) bool {
	ra, rb := []rune(a), []rune(b)
	if len(ra) > len(rb) {
		ra, rb = rb, ra
	}
	if len(rb)-len(ra) > 1 {
		return false
	}
	i, j, edits := 0, 0, 0
	for i < len(ra) && j < len(rb) {
		if ra[i] == rb[j] {
			i++
			j++
			continue
		}
		edits++
		if edits > 1 {
			return false
		}
		if len(ra) == len(rb) {
			i++
		}
		j++
	}
	return edits+(len(rb)-j)+(len(ra)-i) <= 1
}

func copyRecord(r *contracts.OutboxRecord) *contracts.OutboxRecord {
	c := *r
	if r.ProcessedAt != nil {
		t := *r.ProcessedAt
		c.ProcessedAt = &t
	}
	return &c
}

func (s *Store) now() time.Time {
	return s.clock.Now()
}
