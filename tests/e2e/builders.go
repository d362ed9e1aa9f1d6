package e2e

import (
	"github.com/light-bringer/offercat-service/internal/app/product/domain"
	"github.com/light-bringer/offercat-service/internal/app/product/usecases/submit_listing"
)

// ListingBuilder helps create listing requests for tests with a fluent interface
type ListingBuilder struct {
	merchantID string
	name       string
	brand      string
	attributes domain.Attributes
	price      string
	quantity   int64
}

// NewListingBuilder creates a new builder with default values
func NewListingBuilder(merchantID string) *ListingBuilder {
	return &ListingBuilder{
		merchantID: merchantID,
		name:       "Test Phone",
		brand:      "Acme",
		attributes: domain.Attributes{"Color": "Black"},
		price:      "100.00",
		quantity:   10,
	}
}

// WithName sets the product name
func (b *ListingBuilder) WithName(name string) *ListingBuilder {
	b.name = name
	return b
}

// WithAttribute sets one variant attribute
func (b *ListingBuilder) WithAttribute(key, value string) *ListingBuilder {
	attrs := b.attributes.Copy()
	attrs[key] = value
	b.attributes = attrs
	return b
}

// WithPrice sets the offer price
func (b *ListingBuilder) WithPrice(price string) *ListingBuilder {
	b.price = price
	return b
}

// WithQuantity sets the offer stock
func (b *ListingBuilder) WithQuantity(quantity int64) *ListingBuilder {
	b.quantity = quantity
	return b
}

// Build creates the submit_listing.Request
func (b *ListingBuilder) Build() *submit_listing.Request {
	price, _ := domain.ParseMoney(b.price)
	return &submit_listing.Request{
		MerchantID:  b.merchantID,
		Name:        b.name,
		Brand:       b.brand,
		Description: "E2E listing",
		Categories:  []string{"Phones"},
		Attributes:  b.attributes.Copy(),
		ImageURLs:   []string{"https://img.example/phone.png"},
		Price:       price,
		Quantity:    b.quantity,
	}
}
