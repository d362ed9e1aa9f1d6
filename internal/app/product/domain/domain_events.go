package domain

import "time"

// DomainEvent is the base interface for all domain events.
type DomainEvent interface {
	EventType() string
	AggregateID() string
}

// ProductCreatedEvent is emitted when the first listing for a name+brand creates a product.
type ProductCreatedEvent struct {
	ID             string    `json:"id"`
	ProductID      int64     `json:"product_id"`
	NormalizedName string    `json:"normalized_name"`
	Brand          string    `json:"brand"`
	CreatedAt      time.Time `json:"created_at"`
}

func (e *ProductCreatedEvent) EventType() string   { return "product.created" }
func (e *ProductCreatedEvent) AggregateID() string { return e.ID }

// VariantCreatedEvent is emitted when a submission introduces a new attribute set.
type VariantCreatedEvent struct {
	ID         string            `json:"id"`
	ProductID  int64             `json:"product_id"`
	VariantID  string            `json:"variant_id"`
	Attributes map[string]string `json:"attributes"`
	CreatedAt  time.Time         `json:"created_at"`
}

func (e *VariantCreatedEvent) EventType() string   { return "variant.created" }
func (e *VariantCreatedEvent) AggregateID() string { return e.ID }

// OfferSubmittedEvent is emitted when a merchant lists (or re-lists) an offer.
type OfferSubmittedEvent struct {
	ID          string    `json:"id"`
	ProductID   int64     `json:"product_id"`
	VariantID   string    `json:"variant_id"`
	MerchantID  string    `json:"merchant_id"`
	Price       string    `json:"price"`
	Stock       int64     `json:"stock"`
	Replaced    bool      `json:"replaced"`
	SubmittedAt time.Time `json:"submitted_at"`
}

func (e *OfferSubmittedEvent) EventType() string   { return "offer.submitted" }
func (e *OfferSubmittedEvent) AggregateID() string { return e.ID }

// OfferUpdatedEvent is emitted on a merchant's partial inventory update.
type OfferUpdatedEvent struct {
	ID         string    `json:"id"`
	ProductID  int64     `json:"product_id"`
	VariantID  string    `json:"variant_id"`
	MerchantID string    `json:"merchant_id"`
	Price      string    `json:"price"`
	Stock      int64     `json:"stock"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (e *OfferUpdatedEvent) EventType() string   { return "offer.updated" }
func (e *OfferUpdatedEvent) AggregateID() string { return e.ID }

// OfferRemovedEvent is emitted when a merchant withdraws an offer.
type OfferRemovedEvent struct {
	ID         string    `json:"id"`
	ProductID  int64     `json:"product_id"`
	VariantID  string    `json:"variant_id"`
	MerchantID string    `json:"merchant_id"`
	RemovedAt  time.Time `json:"removed_at"`
}

func (e *OfferRemovedEvent) EventType() string   { return "offer.removed" }
func (e *OfferRemovedEvent) AggregateID() string { return e.ID }

// VariantRemovedEvent is emitted when the last offer of a variant goes away.
type VariantRemovedEvent struct {
	ID        string    `json:"id"`
	ProductID int64     `json:"product_id"`
	VariantID string    `json:"variant_id"`
	RemovedAt time.Time `json:"removed_at"`
}

func (e *VariantRemovedEvent) EventType() string   { return "variant.removed" }
func (e *VariantRemovedEvent) AggregateID() string { return e.ID }

// StockReducedEvent is emitted when order fulfilment consumes stock.
type StockReducedEvent struct {
	ID             string    `json:"id"`
	ProductID      int64     `json:"product_id"`
	VariantID      string    `json:"variant_id"`
	MerchantID     string    `json:"merchant_id"`
	Quantity       int64     `json:"quantity"`
	RemainingStock int64     `json:"remaining_stock"`
	ReducedAt      time.Time `json:"reduced_at"`
}

func (e *StockReducedEvent) EventType() string   { return "stock.reduced" }
func (e *StockReducedEvent) AggregateID() string { return e.ID }

// USPAssignedEvent is emitted when marketing highlights are backfilled.
type USPAssignedEvent struct {
	ID         string    `json:"id"`
	ProductID  int64     `json:"product_id"`
	USP        []string  `json:"usp"`
	AssignedAt time.Time `json:"assigned_at"`
}

func (e *USPAssignedEvent) EventType() string   { return "product.usp_assigned" }
func (e *USPAssignedEvent) AggregateID() string { return e.ID }
