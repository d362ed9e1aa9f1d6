package m_product

import (
	"time"

	"cloud.google.com/go/spanner"
)

// Document is the whole aggregate as stored in the document column. Every store
// (Spanner JSON, Postgres JSONB, memory) keeps this same shape.
type Document struct {
	ID          string            `json:"id"`
	ProductID   int64             `json:"product_id"`
	Name        string            `json:"name"`
	Brand       string            `json:"brand"`
	Description string            `json:"description,omitempty"`
	Categories  []string          `json:"categories"`
	Specs       map[string]string `json:"specs,omitempty"`
	USP         []string          `json:"usp,omitempty"`
	Active      bool              `json:"active"`
	Variants    []VariantDocument `json:"variants"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// VariantDocument is one attribute combination with its offer ledger.
type VariantDocument struct {
	ID         string            `json:"id"`
	Attributes map[string]string `json:"attributes"`
	ImageURLs  []string          `json:"image_urls,omitempty"`
	Offers     []OfferDocument   `json:"offers"`
}

// OfferDocument stores the price as an exact int64 fraction.
type OfferDocument struct {
	MerchantID       string `json:"merchant_id"`
	MerchantName     string `json:"merchant_name"`
	PriceNumerator   int64  `json:"price_numerator"`
	PriceDenominator int64  `json:"price_denominator"`
	Stock            int64  `json:"stock"`
}

// Data represents one row of the products table.
type Data struct {
	ID             string
	ProductID      int64
	NormalizedName string
	BrandKey       string
	Name           string
	Categories     []string
	MerchantIDs    []string
	SearchText     string
	Document       *Document
	Version        int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Row is the read projection decoded from ReadColumns.
type Row struct {
	ID       string
	Document spanner.NullJSON
	Version  int64
}
