package list_products

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/offercat-service/internal/app/product/domain"
	"github.com/light-bringer/offercat-service/internal/app/product/repo/memrepo"
	"github.com/light-bringer/offercat-service/internal/pkg/clock"
)

// seed stores n products, each with `variants` variants sold by merchant A.
func seed(t *testing.T, n, variants int, category func(int64) string) *memrepo.Store {
	t.Helper()
	clk := clock.NewMockClock(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	store := memrepo.NewStore(clk)
	price, _ := domain.NewMoney(10, 1)
	for id := int64(1); id <= int64(n); id++ {
		p, err := domain.NewProduct(fmt.Sprintf("p-%d", id), id, domain.Details{
			Name:       fmt.Sprintf("Item %d", id),
			Brand:      "Acme",
			Categories: []string{category(id)},
		}, clk)
		require.NoError(t, err)
		for v := 0; v < variants; v++ {
			vid := fmt.Sprintf("v-%d-%d", id, v)
			_, err := p.SubmitOffer(domain.OfferSubmission{
				MerchantID: "A",
				Attributes: domain.Attributes{"Size": fmt.Sprint(v)},
				Price:      price,
				Stock:      int64(v),
			}, func() string { return vid })
			require.NoError(t, err)
		}
		require.NoError(t, store.Save(context.Background(), p))
	}
	return store
}

func TestExecute_FlattensVariants(t *testing.T) {
	store := seed(t, 2, 2, func(int64) string { return "Phones" })

	res, err := NewQuery(store).Execute(context.Background(), &Request{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.TotalProducts)
	assert.Equal(t, DefaultSize, res.Size)
	require.Len(t, res.Items, 4)

	assert.Equal(t, "v-1-0", res.Items[0].VariantID)
	assert.False(t, res.Items[0].InStock, "zero stock variant")
	assert.Equal(t, "v-1-1", res.Items[1].VariantID)
	assert.True(t, res.Items[1].InStock)
	assert.Equal(t, int64(2), res.Items[2].ProductID)
}

func TestExecute_PaginationCountsProducts(t *testing.T) {
	store := seed(t, 5, 1, func(int64) string { return "Phones" })
	q := NewQuery(store)

	res, err := q.Execute(context.Background(), &Request{Page: 1, Size: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(5), res.TotalProducts)
	require.Len(t, res.Items, 2)
	assert.Equal(t, int64(3), res.Items[0].ProductID)

	res, err = q.Execute(context.Background(), &Request{Page: -3, Size: 1000})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Page)
	assert.Equal(t, MaxSize, res.Size)
	assert.Len(t, res.Items, 5)
}

func TestExecute_PageBeyondOffsetRange(t *testing.T) {
	store := seed(t, 2, 1, func(int64) string { return "Phones" })
	q := NewQuery(store)

	for _, page := range []int{461168601842738791, 1 << 62, math.MaxInt} {
		t.Run(fmt.Sprint(page), func(t *testing.T) {
			res, err := q.Execute(context.Background(), &Request{Page: page, Size: 20})
			assert.ErrorIs(t, err, domain.ErrPageOutOfRange)
			assert.Nil(t, res)
		})
	}

	res, err := q.Execute(context.Background(), &Request{Page: 1000, Size: 20})
	require.NoError(t, err)
	assert.Empty(t, res.Items)
	assert.Equal(t, int64(2), res.TotalProducts)
}

func TestExecute_CategoryFilter(t *testing.T) {
	store := seed(t, 4, 1, func(id int64) string {
		if id%2 == 0 {
			return "Smart Phones"
		}
		return "Laptops"
	})

	res, err := NewQuery(store).Execute(context.Background(), &Request{Category: "phone"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.TotalProducts)
	require.Len(t, res.Items, 2)
	assert.Equal(t, int64(2), res.Items[0].ProductID)
	assert.Equal(t, int64(4), res.Items[1].ProductID)
}
