package http

import (
	"encoding/json"
	"time"

	"github.com/light-bringer/offercat-service/internal/app/product/contracts"
	"github.com/light-bringer/offercat-service/internal/app/product/domain"
)

// ListingRequest is the body of POST /api/v1/products. Price is decoded as a
// json.Number so it converts to Money without float rounding.
type ListingRequest struct {
	Name        string            `json:"name"`
	Brand       string            `json:"brand"`
	Description string            `json:"description"`
	Categories  []string          `json:"categories"`
	ImageURLs   []string          `json:"imageUrls"`
	Attributes  map[string]string `json:"attributes"`
	Specs       map[string]string `json:"specs"`
	USP         []string          `json:"usp"`
	Price       *json.Number      `json:"price"`
	Quantity    *int64            `json:"quantity"`
}

// ReduceStockRequest is the body of POST /internal/v1/stock/reduce.
type ReduceStockRequest struct {
	ProductID  int64  `json:"productId"`
	VariantID  string `json:"variantId"`
	MerchantID string `json:"merchantId"`
	Quantity   int64  `json:"quantity"`
}

// ProductDisplay is the list/search card of one variant.
type ProductDisplay struct {
	ProductID      int64             `json:"productId"`
	VariantID      string            `json:"variantId"`
	Name           string            `json:"name"`
	Brand          string            `json:"brand"`
	Description    string            `json:"description"`
	ImageURL       *string           `json:"imageUrl"`
	Categories     []string          `json:"categories"`
	Attributes     map[string]string `json:"attributes"`
	LowestPrice    float64           `json:"lowestPrice"`
	TotalMerchants int               `json:"totalMerchants"`
	TotalStock     int64             `json:"totalStock"`
	InStock        bool              `json:"inStock"`
}

// SellerOffer is one row of the detail page seller table.
type SellerOffer struct {
	MerchantID   string  `json:"merchantId"`
	MerchantName string  `json:"merchantName"`
	Price        float64 `json:"price"`
	Stock        int64   `json:"stock"`
}

// ProductDetail is the full product page of one variant.
type ProductDetail struct {
	ProductID   int64             `json:"productId"`
	VariantID   string            `json:"variantId"`
	Name        string            `json:"name"`
	Brand       string            `json:"brand"`
	Description string            `json:"description"`
	ImageURLs   []string          `json:"imageUrls"`
	Categories  []string          `json:"categories"`
	Specs       map[string]string `json:"specs"`
	USP         []string          `json:"usp"`
	Attributes  map[string]string `json:"attributes"`
	Sellers     []SellerOffer     `json:"sellers"`
}

// ProductPage is a page of flattened variants.
type ProductPage struct {
	Items         []ProductDisplay `json:"items"`
	Page          int              `json:"page"`
	Size          int              `json:"size"`
	TotalProducts int64            `json:"totalProducts"`
}

// Event represents a domain event in the HTTP response.
type Event struct {
	EventID      string          `json:"event_id"`
	EventType    string          `json:"event_type"`
	AggregateID  string          `json:"aggregate_id"`
	Payload      json.RawMessage `json:"payload"`
	Status       string          `json:"status"`
	RetryCount   int64           `json:"retry_count"`
	ErrorMessage string          `json:"error_message,omitempty"`
	CreatedAt    string          `json:"created_at"`
	ProcessedAt  *string         `json:"processed_at,omitempty"`
}

// ListEventsResponse represents the HTTP response for listing events.
type ListEventsResponse struct {
	Events     []Event `json:"events"`
	TotalCount int64   `json:"total_count"`
}

func toDisplay(v *domain.DisplayProjection) ProductDisplay {
	d := ProductDisplay{
		ProductID:      v.ProductID,
		VariantID:      v.VariantID,
		Name:           v.Name,
		Brand:          v.Brand,
		Description:    v.Description,
		Categories:     nonNil(v.Categories),
		Attributes:     v.Attributes,
		TotalMerchants: v.TotalMerchants,
		TotalStock:     v.TotalStock,
		InStock:        v.InStock,
	}
	if v.Thumbnail != "" {
		thumb := v.Thumbnail
		d.ImageURL = &thumb
	}
	if v.LowestPrice != nil {
		d.LowestPrice = v.LowestPrice.Float64()
	}
	if d.Attributes == nil {
		d.Attributes = map[string]string{}
	}
	return d
}

func toDisplays(views []*domain.DisplayProjection) []ProductDisplay {
	out := make([]ProductDisplay, 0, len(views))
	for _, v := range views {
		out = append(out, toDisplay(v))
	}
	return out
}

func toDetail(d *domain.Detail) ProductDetail {
	sellers := make([]SellerOffer, 0, len(d.Sellers))
	for _, s := range d.Sellers {
		sellers = append(sellers, SellerOffer{
			MerchantID:   s.MerchantID,
			MerchantName: s.MerchantName,
			Price:        s.Price.Float64(),
			Stock:        s.Stock,
		})
	}
	return ProductDetail{
		ProductID:   d.ProductID,
		VariantID:   d.VariantID,
		Name:        d.Name,
		Brand:       d.Brand,
		Description: d.Description,
		ImageURLs:   nonNil(d.ImageURLs),
		Categories:  nonNil(d.Categories),
		Specs:       d.Specs,
		USP:         nonNil(d.USP),
		Attributes:  d.Attributes,
		Sellers:     sellers,
	}
}

func toEvent(r *contracts.OutboxRecord) Event {
	e := Event{
		EventID:      r.EventID,
		EventType:    r.EventType,
		AggregateID:  r.AggregateID,
		Payload:      json.RawMessage(r.Payload),
		Status:       r.Status,
		RetryCount:   r.RetryCount,
		ErrorMessage: r.ErrorMessage,
		CreatedAt:    r.CreatedAt.Format(time.RFC3339),
	}
	if r.Payload == "" {
		e.Payload = json.RawMessage("null")
	}
	if r.ProcessedAt != nil {
		processedAt := r.ProcessedAt.Format(time.RFC3339)
		e.ProcessedAt = &processedAt
	}
	return e
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
