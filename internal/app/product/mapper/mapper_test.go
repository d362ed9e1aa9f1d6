package mapper

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/offercat-service/internal/app/product/contracts"
	"github.com/light-bringer/offercat-service/internal/app/product/domain"
	"github.com/light-bringer/offercat-service/internal/models/m_product"
	"github.com/light-bringer/offercat-service/internal/pkg/clock"
)

func buildProduct(t *testing.T) *domain.Product {
	t.Helper()
	clk := clock.NewMockClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	p, err := domain.NewProduct("uuid-1", 3, domain.Details{
		Name:        "Galaxy S24",
		Brand:       "Samsung",
		Description: "Flagship",
		Categories:  []string{"Phones"},
		Specs:       map[string]string{"Screen": "6.2"},
	}, clk)
	require.NoError(t, err)

	price, _ := domain.ParseMoney("799.99")
	_, err = p.SubmitOffer(domain.OfferSubmission{
		MerchantID:   "m2",
		MerchantName: domain.MerchantDisplayName("m2"),
		Attributes:   domain.Attributes{"Color": "Gray"},
		ImageURLs:    []string{"a.jpg", "b.jpg"},
		Price:        price,
		Stock:        4,
	}, func() string { return "v-1" })
	require.NoError(t, err)

	_, err = p.SubmitOffer(domain.OfferSubmission{
		MerchantID: "m1",
		Attributes: domain.Attributes{"Color": "Gray"},
		Price:      price,
		Stock:      1,
	}, func() string { return "v-2" })
	require.NoError(t, err)
	return p
}

func TestDocumentRoundTrip(t *testing.T) {
	p := buildProduct(t)

	doc, err := ToDocument(p)
	require.NoError(t, err)
	require.Len(t, doc.Variants, 1)
	require.Len(t, doc.Variants[0].Offers, 2)
	assert.Equal(t, int64(79999), doc.Variants[0].Offers[0].PriceNumerator)
	assert.Equal(t, int64(100), doc.Variants[0].Offers[0].PriceDenominator)

	// survive a JSON hop the way every store does
	raw, err := json.Marshal(doc)
	require.NoError(t, err)
	var decoded m_product.Document
	require.NoError(t, json.Unmarshal(raw, &decoded))

	back, err := ToProduct(&decoded, 4, clock.NewRealClock())
	require.NoError(t, err)
	assert.Equal(t, int64(4), back.Version())
	assert.Equal(t, p.NormalizedName(), back.NormalizedName())
	assert.Equal(t, p.BrandKey(), back.BrandKey())

	v, err := back.Variant("v-1")
	require.NoError(t, err)
	assert.Equal(t, domain.Attributes{"Color": "Gray"}, v.Attributes())
	assert.Equal(t, "a.jpg", v.Thumbnail())
	offer, ok := v.OfferBy("m2")
	require.True(t, ok)
	assert.Equal(t, "799.99", offer.Price().String())
	assert.Equal(t, "Merchant m2", offer.MerchantName())
	assert.False(t, back.Changes().HasChanges())
}

func TestToData(t *testing.T) {
	p := buildProduct(t)

	data, err := ToData(p)
	require.NoError(t, err)
	assert.Equal(t, int64(1), data.Version)
	assert.Equal(t, "galaxys24", data.NormalizedName)
	assert.Equal(t, []string{"m1", "m2"}, data.MerchantIDs)
	assert.Equal(t, "Galaxy S24 Samsung Flagship Phones", data.SearchText)
}

func TestToDocument_Overflow(t *testing.T) {
	clk := clock.NewRealClock()
	p, _ := domain.NewProduct("uuid-1", 1, domain.Details{Name: "X", Brand: "Y"}, clk)
	huge, _ := domain.ParseMoney("123456789012345678901234567890.5")
	_, err := p.SubmitOffer(domain.OfferSubmission{
		MerchantID: "m1",
		Attributes: domain.Attributes{},
		Price:      huge,
	}, func() string { return "v" })
	require.NoError(t, err)

	_, err = ToDocument(p)
	assert.ErrorIs(t, err, domain.ErrMoneyOverflow)
}

func TestOutboxRecords(t *testing.T) {
	p := buildProduct(t)
	now := time.Now()

	records, err := OutboxRecords(p.DomainEvents(), now)
	require.NoError(t, err)
	require.Len(t, records, len(p.DomainEvents()))

	first := records[0]
	assert.Equal(t, "product.created", first.EventType)
	assert.Equal(t, "uuid-1", first.AggregateID)
	assert.Equal(t, contracts.OutboxStatusPending, first.Status)
	assert.Len(t, first.EventID, 26)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(first.Payload), &payload))
	assert.Equal(t, "galaxys24", payload["normalized_name"])

	seen := map[string]bool{}
	for _, r := range records {
		assert.False(t, seen[r.EventID])
		seen[r.EventID] = true
	}
}
