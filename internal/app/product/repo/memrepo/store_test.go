package memrepo

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/offercat-service/internal/app/product/contracts"
	"github.com/light-bringer/offercat-service/internal/app/product/domain"
	"github.com/light-bringer/offercat-service/internal/pkg/clock"
)

func newProduct(t *testing.T, clk clock.Clock, productID int64, name, brand string, categories ...string) *domain.Product {
	t.Helper()
	p, err := domain.NewProduct(fmt.Sprintf("uuid-%d", productID), productID, domain.Details{
		Name:       name,
		Brand:      brand,
		Categories: categories,
	}, clk)
	require.NoError(t, err)
	price, _ := domain.NewMoney(100, 1)
	_, err = p.SubmitOffer(domain.OfferSubmission{
		MerchantID: "m1",
		Attributes: domain.Attributes{"Color": "Black"},
		Price:      price,
		Stock:      2,
	}, func() string { return fmt.Sprintf("v-%d", productID) })
	require.NoError(t, err)
	return p
}

func TestStore_SaveAndLoad(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewMockClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	store := NewStore(clk)

	p := newProduct(t, clk, 1, "iPhone 15", "Apple", "Phones")
	require.NoError(t, store.Save(ctx, p))
	assert.Equal(t, int64(1), p.Version())

	t.Run("by product id", func(t *testing.T) {
		got, err := store.GetByProductID(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "iPhone 15", got.Name())
		assert.Equal(t, int64(1), got.Version())
		assert.Equal(t, 1, got.VariantCount())
	})

	t.Run("by name and brand, case-insensitive brand", func(t *testing.T) {
		got, err := store.GetByNormalizedNameAndBrand(ctx, "iphone15", "APPLE")
		require.NoError(t, err)
		assert.Equal(t, int64(1), got.ProductID())
	})

	t.Run("missing", func(t *testing.T) {
		_, err := store.GetByProductID(ctx, 99)
		assert.ErrorIs(t, err, domain.ErrProductNotFound)
		_, err = store.GetByNormalizedNameAndBrand(ctx, "iphone15", "Samsung")
		assert.ErrorIs(t, err, domain.ErrProductNotFound)
	})

	t.Run("loaded aggregates are independent copies", func(t *testing.T) {
		a, _ := store.GetByProductID(ctx, 1)
		v := a.Variants()[0]
		require.NoError(t, a.ReduceStock(v.ID(), "m1", 1))

		b, _ := store.GetByProductID(ctx, 1)
		o, _ := b.Variants()[0].OfferBy("m1")
		assert.Equal(t, int64(2), o.Stock())
	})

	t.Run("events are written with the save", func(t *testing.T) {
		events, total, err := store.ListEvents(ctx, contracts.EventFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Equal(t, "product.created", events[len(events)-1].EventType)
	})
}

func TestStore_VersionConflict(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewMockClock(time.Now())
	store := NewStore(clk)
	require.NoError(t, store.Save(ctx, newProduct(t, clk, 1, "Pixel 8", "Google")))

	first, _ := store.GetByProductID(ctx, 1)
	second, _ := store.GetByProductID(ctx, 1)
	vid := first.Variants()[0].ID()

	require.NoError(t, first.ReduceStock(vid, "m1", 1))
	require.NoError(t, store.Save(ctx, first))

	require.NoError(t, second.ReduceStock(vid, "m1", 2))
	err := store.Save(ctx, second)
	assert.ErrorIs(t, err, domain.ErrConcurrentModification)

	current, _ := store.GetByProductID(ctx, 1)
	o, _ := current.Variants()[0].OfferBy("m1")
	assert.Equal(t, int64(1), o.Stock())
}

func TestStore_DuplicateFirstInsert(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewMockClock(time.Now())
	store := NewStore(clk)

	require.NoError(t, store.Save(ctx, newProduct(t, clk, 1, "Pixel 8", "Google")))
	err := store.Save(ctx, newProduct(t, clk, 2, "pixel-8", "google"))
	assert.ErrorIs(t, err, domain.ErrConcurrentModification)
}

func TestStore_SaveWithoutChangesIsNoop(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewMockClock(time.Now())
	store := NewStore(clk)
	require.NoError(t, store.Save(ctx, newProduct(t, clk, 1, "Pixel 8", "Google")))

	p, _ := store.GetByProductID(ctx, 1)
	require.NoError(t, store.Save(ctx, p))
	_, version, ok := store.Snapshot(1)
	require.True(t, ok)
	assert.Equal(t, int64(1), version)
}

func TestStore_ListAndFilter(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewMockClock(time.Now())
	store := NewStore(clk)
	require.NoError(t, store.Save(ctx, newProduct(t, clk, 1, "A", "X", "Smart Phones")))
	require.NoError(t, store.Save(ctx, newProduct(t, clk, 2, "B", "X", "Laptops")))
	require.NoError(t, store.Save(ctx, newProduct(t, clk, 3, "C", "X", "phone cases")))

	t.Run("category substring ignores case", func(t *testing.T) {
		res, err := store.List(ctx, contracts.ListFilter{Category: "PHONE"})
		require.NoError(t, err)
		assert.Equal(t, int64(2), res.TotalCount)
		require.Len(t, res.Products, 2)
		assert.Equal(t, int64(1), res.Products[0].ProductID())
		assert.Equal(t, int64(3), res.Products[1].ProductID())
	})

	t.Run("pagination", func(t *testing.T) {
		res, err := store.List(ctx, contracts.ListFilter{Offset: 1, Limit: 1})
		require.NoError(t, err)
		assert.Equal(t, int64(3), res.TotalCount)
		require.Len(t, res.Products, 1)
		assert.Equal(t, int64(2), res.Products[0].ProductID())

		res, err = store.List(ctx, contracts.ListFilter{Offset: 10, Limit: 5})
		require.NoError(t, err)
		assert.Empty(t, res.Products)

		res, err = store.List(ctx, contracts.ListFilter{Offset: -40, Limit: 2})
		require.NoError(t, err)
		require.Len(t, res.Products, 2)
		assert.Equal(t, int64(1), res.Products[0].ProductID())
	})

	t.Run("by merchant", func(t *testing.T) {
		got, err := store.ListByMerchant(ctx, "m1")
		require.NoError(t, err)
		assert.Len(t, got, 3)

		got, err = store.ListByMerchant(ctx, "m2")
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestStore_Search(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewMockClock(time.Now())
	store := NewStore(clk)
	require.NoError(t, store.Save(ctx, newProduct(t, clk, 1, "iPhone 15", "Apple", "Phones")))
	require.NoError(t, store.Save(ctx, newProduct(t, clk, 2, "MacBook Air", "Apple", "Laptops")))
	require.NoError(t, store.Save(ctx, newProduct(t, clk, 3, "Galaxy Phone", "Samsung", "Phones")))

	t.Run("single typo still matches", func(t *testing.T) {
		got, err := store.Search(ctx, "iphne", 20)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, int64(1), got[0].ProductID())
	})

	t.Run("matches brand and categories", func(t *testing.T) {
		got, err := store.Search(ctx, "apple", 20)
		require.NoError(t, err)
		assert.Len(t, got, 2)

		got, err = store.Search(ctx, "phones", 20)
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("limit is honoured", func(t *testing.T) {
		got, err := store.Search(ctx, "phones", 1)
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})

	t.Run("suggest by word prefix", func(t *testing.T) {
		got, err := store.Suggest(ctx, "gal", 5)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Galaxy Phone", got[0].Name())

		got, err = store.Suggest(ctx, "air", 5)
		require.NoError(t, err)
		require.Len(t, got, 1)
	})
}

func TestWithinOneEdit(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"iphone", "iphone", true},
		{"iphne", "iphone", true},
		{"iphome", "iphone", true},
		{"iphonee", "iphone", true},
		{"ipne", "iphone", false},
		{"abc", "xyz", false},
		{"", "a", true},
	}
	for _, tt := range tests {
		t.Run(tt.a+"/"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, withinOneEdit(tt.a, tt.b))
		})
	}
}

func TestStore_Outbox(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewMockClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	store := NewStore(clk)
	require.NoError(t, store.Save(ctx, newProduct(t, clk, 1, "Pixel 8", "Google")))

	pending, err := store.FetchPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 3)

	require.NoError(t, store.MarkCompleted(ctx, pending[0].EventID))
	require.NoError(t, store.MarkFailed(ctx, pending[1].EventID, "boom", 2))
	require.NoError(t, store.MarkFailed(ctx, pending[2].EventID, "boom", 1))

	left, err := store.FetchPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, pending[1].EventID, left[0].EventID)
	assert.Equal(t, int64(1), left[0].RetryCount)
	assert.Equal(t, "boom", left[0].ErrorMessage)

	clk.Advance(48 * time.Hour)
	cutoff := clk.Now().Add(-24 * time.Hour)

	n, err := store.CountProcessedBefore(ctx, contracts.OutboxStatusCompleted, cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = store.DeleteProcessedBefore(ctx, contracts.OutboxStatusFailed, cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, total, err := store.ListEvents(ctx, contracts.EventFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	assert.Error(t, store.MarkCompleted(ctx, "missing"))
}
