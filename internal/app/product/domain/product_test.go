package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/offercat-service/internal/pkg/clock"
)

func testDetails() Details {
	return Details{
		Name:        "iPhone 15",
		Brand:       "Apple",
		Description: "Phone",
		Categories:  []string{"Electronics", "Phones"},
		Specs:       map[string]string{"Chip": "A16"},
	}
}

func money(t *testing.T, s string) *Money {
	t.Helper()
	m, err := ParseMoney(s)
	require.NoError(t, err)
	return m
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("variant-%d", n)
	}
}

func submission(t *testing.T, merchant string, attrs Attributes, price string, stock int64) OfferSubmission {
	return OfferSubmission{
		MerchantID:   merchant,
		MerchantName: MerchantDisplayName(merchant),
		Attributes:   attrs,
		ImageURLs:    []string{"https://img/" + merchant + ".jpg"},
		Price:        money(t, price),
		Stock:        stock,
	}
}

func newTestProduct(t *testing.T) (*Product, *clock.MockClock) {
	t.Helper()
	clk := clock.NewMockClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	p, err := NewProduct("id-1", 1, testDetails(), clk)
	require.NoError(t, err)
	return p, clk
}

func TestNewProduct(t *testing.T) {
	clk := clock.NewMockClock(time.Now())

	t.Run("valid product creation", func(t *testing.T) {
		p, err := NewProduct("id-1", 7, testDetails(), clk)
		require.NoError(t, err)
		assert.Equal(t, "id-1", p.ID())
		assert.Equal(t, int64(7), p.ProductID())
		assert.Equal(t, "iphone15", p.NormalizedName())
		assert.True(t, p.IsActive())
		assert.True(t, p.IsNew())
		assert.Equal(t, 0, p.VariantCount())
		assert.True(t, p.Changes().HasChanges())
		require.Len(t, p.DomainEvents(), 1)
		assert.Equal(t, "product.created", p.DomainEvents()[0].EventType())
	})

	t.Run("empty name returns error", func(t *testing.T) {
		d := testDetails()
		d.Name = "  "
		_, err := NewProduct("id-1", 1, d, clk)
		assert.ErrorIs(t, err, ErrEmptyName)
	})

	t.Run("empty brand returns error", func(t *testing.T) {
		d := testDetails()
		d.Brand = ""
		_, err := NewProduct("id-1", 1, d, clk)
		assert.ErrorIs(t, err, ErrEmptyBrand)
	})

	t.Run("non-positive product id returns error", func(t *testing.T) {
		_, err := NewProduct("id-1", 0, testDetails(), clk)
		assert.ErrorIs(t, err, ErrInvalidProductID)
	})
}

func TestProduct_SubmitOffer(t *testing.T) {
	black := Attributes{"Color": "Black"}
	white := Attributes{"Color": "White"}

	t.Run("first submission creates a variant", func(t *testing.T) {
		p, _ := newTestProduct(t)
		v, err := p.SubmitOffer(submission(t, "m1", black, "999", 5), sequentialIDs())
		require.NoError(t, err)

		assert.Equal(t, "variant-1", v.ID())
		assert.Equal(t, 1, p.VariantCount())
		assert.Equal(t, 1, v.OfferCount())
		assert.Equal(t, "https://img/m1.jpg", v.Thumbnail())
		assert.True(t, p.Changes().Dirty(FieldVariants))
		assert.True(t, p.Changes().Dirty(FieldOffers))
	})

	t.Run("same attributes share a variant", func(t *testing.T) {
		p, _ := newTestProduct(t)
		ids := sequentialIDs()
		_, err := p.SubmitOffer(submission(t, "m1", black, "999", 5), ids)
		require.NoError(t, err)
		v, err := p.SubmitOffer(submission(t, "m2", Attributes{"Color": "Black"}, "949", 3), ids)
		require.NoError(t, err)

		assert.Equal(t, 1, p.VariantCount())
		assert.Equal(t, 2, v.OfferCount())
		// images of an existing variant are not overwritten
		assert.Equal(t, "https://img/m1.jpg", v.Thumbnail())
	})

	t.Run("different attributes create another variant", func(t *testing.T) {
		p, _ := newTestProduct(t)
		ids := sequentialIDs()
		_, _ = p.SubmitOffer(submission(t, "m1", black, "999", 5), ids)
		v, err := p.SubmitOffer(submission(t, "m1", white, "999", 5), ids)
		require.NoError(t, err)

		assert.Equal(t, "variant-2", v.ID())
		assert.Equal(t, 2, p.VariantCount())
	})

	t.Run("resubmission replaces the merchant's offer", func(t *testing.T) {
		p, _ := newTestProduct(t)
		ids := sequentialIDs()
		_, _ = p.SubmitOffer(submission(t, "m1", black, "999", 5), ids)
		_, _ = p.SubmitOffer(submission(t, "m2", black, "949", 1), ids)
		v, err := p.SubmitOffer(submission(t, "m1", black, "899", 2), ids)
		require.NoError(t, err)

		require.Equal(t, 2, v.OfferCount())
		offer, ok := v.OfferBy("m1")
		require.True(t, ok)
		assert.Equal(t, "899.00", offer.Price().String())
		assert.Equal(t, int64(2), offer.Stock())
		// replaced offer moves to the end of the ledger
		assert.Equal(t, "m1", v.Offers()[1].MerchantID())

		last := p.DomainEvents()[len(p.DomainEvents())-1].(*OfferSubmittedEvent)
		assert.True(t, last.Replaced)
	})

	t.Run("validation", func(t *testing.T) {
		p, _ := newTestProduct(t)
		ids := sequentialIDs()

		sub := submission(t, "", black, "1", 1)
		_, err := p.SubmitOffer(sub, ids)
		assert.ErrorIs(t, err, ErrUnauthenticated)

		sub = submission(t, "m1", nil, "1", 1)
		_, err = p.SubmitOffer(sub, ids)
		assert.ErrorIs(t, err, ErrMissingAttributes)

		sub = submission(t, "m1", black, "-1", 1)
		_, err = p.SubmitOffer(sub, ids)
		assert.ErrorIs(t, err, ErrInvalidPrice)

		sub = submission(t, "m1", black, "1", -1)
		_, err = p.SubmitOffer(sub, ids)
		assert.ErrorIs(t, err, ErrInvalidStock)

		assert.Equal(t, 0, p.VariantCount())
	})
}

func TestProduct_UpdateOffer(t *testing.T) {
	p, _ := newTestProduct(t)
	v, _ := p.SubmitOffer(submission(t, "m1", Attributes{"Color": "Black"}, "100", 5), sequentialIDs())

	t.Run("price only", func(t *testing.T) {
		require.NoError(t, p.UpdateOffer(v.ID(), "m1", money(t, "90"), nil))
		o, _ := v.OfferBy("m1")
		assert.Equal(t, "90.00", o.Price().String())
		assert.Equal(t, int64(5), o.Stock())
	})

	t.Run("stock only", func(t *testing.T) {
		stock := int64(0)
		require.NoError(t, p.UpdateOffer(v.ID(), "m1", nil, &stock))
		o, _ := v.OfferBy("m1")
		assert.Equal(t, "90.00", o.Price().String())
		assert.Equal(t, int64(0), o.Stock())
	})

	t.Run("errors", func(t *testing.T) {
		stock := int64(1)
		neg := int64(-1)
		assert.ErrorIs(t, p.UpdateOffer(v.ID(), "m1", nil, nil), ErrNoInventoryChanges)
		assert.ErrorIs(t, p.UpdateOffer(v.ID(), "m2", nil, &stock), ErrNotOfferOwner)
		assert.ErrorIs(t, p.UpdateOffer("missing", "m1", nil, &stock), ErrVariantNotFound)
		assert.ErrorIs(t, p.UpdateOffer(v.ID(), "", nil, &stock), ErrUnauthenticated)
		assert.ErrorIs(t, p.UpdateOffer(v.ID(), "m1", money(t, "-5"), nil), ErrInvalidPrice)
		assert.ErrorIs(t, p.UpdateOffer(v.ID(), "m1", money(t, "0.00000000000000000000001"), nil), ErrMoneyOverflow)
		assert.ErrorIs(t, p.UpdateOffer(v.ID(), "m1", nil, &neg), ErrInvalidStock)
	})
}

func TestProduct_RemoveOffer(t *testing.T) {
	black := Attributes{"Color": "Black"}

	t.Run("variant survives while other offers remain", func(t *testing.T) {
		p, _ := newTestProduct(t)
		ids := sequentialIDs()
		v, _ := p.SubmitOffer(submission(t, "m1", black, "100", 5), ids)
		_, _ = p.SubmitOffer(submission(t, "m2", black, "110", 5), ids)

		removed, err := p.RemoveOffer(v.ID(), "m1")
		require.NoError(t, err)
		assert.False(t, removed)
		assert.Equal(t, 1, v.OfferCount())
	})

	t.Run("empty variant is dropped but product stays", func(t *testing.T) {
		p, _ := newTestProduct(t)
		v, _ := p.SubmitOffer(submission(t, "m1", black, "100", 5), sequentialIDs())

		removed, err := p.RemoveOffer(v.ID(), "m1")
		require.NoError(t, err)
		assert.True(t, removed)
		assert.Equal(t, 0, p.VariantCount())
		assert.True(t, p.IsActive())

		_, err = p.Variant(v.ID())
		assert.ErrorIs(t, err, ErrVariantNotFound)
	})

	t.Run("not owner", func(t *testing.T) {
		p, _ := newTestProduct(t)
		v, _ := p.SubmitOffer(submission(t, "m1", black, "100", 5), sequentialIDs())

		_, err := p.RemoveOffer(v.ID(), "m2")
		assert.ErrorIs(t, err, ErrNotOfferOwner)
		assert.Equal(t, 1, v.OfferCount())
	})
}

func TestProduct_ReduceStock(t *testing.T) {
	p, _ := newTestProduct(t)
	v, _ := p.SubmitOffer(submission(t, "m1", Attributes{"Color": "Black"}, "100", 5), sequentialIDs())

	t.Run("reduces stock", func(t *testing.T) {
		require.NoError(t, p.ReduceStock(v.ID(), "m1", 3))
		o, _ := v.OfferBy("m1")
		assert.Equal(t, int64(2), o.Stock())
	})

	t.Run("insufficient stock leaves offer untouched", func(t *testing.T) {
		err := p.ReduceStock(v.ID(), "m1", 3)
		assert.ErrorIs(t, err, ErrInsufficientStock)
		o, _ := v.OfferBy("m1")
		assert.Equal(t, int64(2), o.Stock())
	})

	t.Run("exact stock reaches zero", func(t *testing.T) {
		require.NoError(t, p.ReduceStock(v.ID(), "m1", 2))
		o, _ := v.OfferBy("m1")
		assert.Equal(t, int64(0), o.Stock())
	})

	t.Run("errors", func(t *testing.T) {
		assert.ErrorIs(t, p.ReduceStock(v.ID(), "m1", 0), ErrInvalidQuantity)
		assert.ErrorIs(t, p.ReduceStock(v.ID(), "m9", 1), ErrMerchantNotSeller)
		assert.ErrorIs(t, p.ReduceStock("missing", "m1", 1), ErrVariantNotFound)
	})
}

func TestProduct_AssignUSPAndCommit(t *testing.T) {
	p, clk := newTestProduct(t)
	clk.Advance(time.Hour)

	p.AssignUSP([]string{"Water Resistant"})
	assert.True(t, p.HasUSP())
	assert.True(t, p.Changes().Dirty(FieldUSP))
	assert.Equal(t, clk.Now(), p.UpdatedAt())

	p.MarkCommitted()
	assert.Equal(t, int64(1), p.Version())
	assert.False(t, p.Changes().HasChanges())
	assert.Empty(t, p.DomainEvents())
	assert.False(t, p.IsNew())
}

func TestProjections(t *testing.T) {
	p, _ := newTestProduct(t)
	ids := sequentialIDs()
	black := Attributes{"Color": "Black"}
	v, _ := p.SubmitOffer(submission(t, "m1", black, "100", 0), ids)
	_, _ = p.SubmitOffer(submission(t, "m2", black, "80", 4), ids)

	t.Run("market view aggregates offers", func(t *testing.T) {
		view := MarketView(p, v)
		assert.Equal(t, "80.00", view.LowestPrice.String())
		assert.Equal(t, 2, view.TotalMerchants)
		assert.Equal(t, int64(4), view.TotalStock)
		assert.True(t, view.InStock)
		assert.Equal(t, "https://img/m1.jpg", view.Thumbnail)
	})

	t.Run("merchant view uses own offer", func(t *testing.T) {
		view := MerchantView(p, v, "m1")
		assert.Equal(t, "100.00", view.LowestPrice.String())
		assert.Equal(t, 2, view.TotalMerchants)
		assert.Equal(t, int64(0), view.TotalStock)
		assert.False(t, view.InStock)
	})

	t.Run("variant without offers or images", func(t *testing.T) {
		empty := NewVariant("v-empty", black, nil)
		view := MarketView(p, empty)
		assert.True(t, view.LowestPrice.IsZero())
		assert.Equal(t, 0, view.TotalMerchants)
		assert.False(t, view.InStock)
		assert.Equal(t, "", view.Thumbnail)
	})

	t.Run("detail lists sellers", func(t *testing.T) {
		d := NewDetail(p, v)
		assert.Equal(t, v.ID(), d.VariantID)
		require.Len(t, d.Sellers, 2)
		assert.Equal(t, "Merchant m1", d.Sellers[0].MerchantName)
		assert.Equal(t, map[string]string{"Chip": "A16"}, d.Specs)
	})
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		want Kind
	}{
		{ErrProductNotFound, KindNotFound},
		{fmt.Errorf("load: %w", ErrVariantNotFound), KindNotFound},
		{ErrMerchantNotSeller, KindNotFound},
		{ErrUnauthenticated, KindUnauthenticated},
		{ErrNotOfferOwner, KindForbidden},
		{ErrInsufficientStock, KindInsufficientStock},
		{ErrConcurrentModification, KindConflict},
		{ErrInvalidPrice, KindValidation},
		{ErrMoneyOverflow, KindValidation},
		{errors.New("boom"), KindInternal},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestClassify(t *testing.T) {
	kind, cause := Classify(fmt.Errorf("save product 3: %w", ErrConcurrentModification))
	assert.Equal(t, KindConflict, kind)
	assert.Same(t, ErrConcurrentModification, cause)

	kind, cause = Classify(errors.New("disk full"))
	assert.Equal(t, KindInternal, kind)
	assert.Nil(t, cause)
}
