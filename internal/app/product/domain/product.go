package domain

import (
	"strings"
	"time"

	"github.com/light-bringer/offercat-service/internal/pkg/clock"
)

// SequenceName is the allocator sequence that issues public product IDs.
const SequenceName = "product_sequence"

// MerchantDisplayName is the label shown for a merchant's offers.
func MerchantDisplayName(merchantID string) string {
	return "Merchant " + merchantID
}

// Details holds the product-level fields supplied by the first listing.
type Details struct {
	Name        string
	Brand       string
	Description string
	Categories  []string
	Specs       map[string]string
	USP         []string
}

// ProductState is the persisted state used to reconstitute an aggregate.
type ProductState struct {
	ID          string
	ProductID   int64
	Name        string
	Brand       string
	Description string
	Categories  []string
	Specs       map[string]string
	USP         []string
	Active      bool
	Variants    []*Variant
	Version     int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// OfferSubmission is one merchant's listing for a specific attribute set.
type OfferSubmission struct {
	MerchantID   string
	MerchantName string
	Attributes   Attributes
	ImageURLs    []string
	Price        *Money
	Stock        int64
}

// Product is the aggregate root shared by every merchant selling the same name+brand.
// It owns its variants, which own their offers; the whole tree is saved at once.
type Product struct {
	id             string
	productID      int64
	normalizedName string
	brandKey       string
	name           string
	brand          string
	description    string
	categories     []string
	specs          map[string]string
	usp            []string
	active         bool
	variants       []*Variant
	version        int64
	createdAt      time.Time
	updatedAt      time.Time

	clock   clock.Clock
	changes *ChangeTracker
	events  []DomainEvent
}

// NewProduct creates an active product with no variants.
func NewProduct(id string, productID int64, d Details, clk clock.Clock) (*Product, error) {
	if strings.TrimSpace(d.Name) == "" {
		return nil, ErrEmptyName
	}
	if strings.TrimSpace(d.Brand) == "" {
		return nil, ErrEmptyBrand
	}
	if productID <= 0 {
		return nil, ErrInvalidProductID
	}

	now := clk.Now()
	p := &Product{
		id:             id,
		productID:      productID,
		normalizedName: NormalizeName(d.Name),
		brandKey:       BrandKey(d.Brand),
		name:           d.Name,
		brand:          d.Brand,
		description:    d.Description,
		categories:     copyStrings(d.Categories),
		specs:          copyStringMap(d.Specs),
		usp:            copyStrings(d.USP),
		active:         true,
		variants:       make([]*Variant, 0, 1),
		createdAt:      now,
		updatedAt:      now,
		clock:          clk,
		changes:        NewChangeTracker(),
		events:         make([]DomainEvent, 0),
	}

	p.changes.MarkDirty(FieldDetails, FieldVariants)
	p.recordEvent(&ProductCreatedEvent{
		ID:             p.id,
		ProductID:      p.productID,
		NormalizedName: p.normalizedName,
		Brand:          p.brand,
		CreatedAt:      now,
	})

	return p, nil
}

// ReconstructProduct reconstitutes a Product from storage.
func ReconstructProduct(s ProductState, clk clock.Clock) *Product {
	variants := s.Variants
	if variants == nil {
		variants = make([]*Variant, 0)
	}
	return &Product{
		id:             s.ID,
		productID:      s.ProductID,
		normalizedName: NormalizeName(s.Name),
		brandKey:       BrandKey(s.Brand),
		name:           s.Name,
		brand:          s.Brand,
		description:    s.Description,
		categories:     s.Categories,
		specs:          s.Specs,
		usp:            s.USP,
		active:         s.Active,
		variants:       variants,
		version:        s.Version,
		createdAt:      s.CreatedAt,
		updatedAt:      s.UpdatedAt,
		clock:          clk,
		changes:        NewChangeTracker(),
		events:         make([]DomainEvent, 0),
	}
}

// Getters
func (p *Product) ID() string                  { return p.id }
func (p *Product) ProductID() int64            { return p.productID }
func (p *Product) NormalizedName() string      { return p.normalizedName }
func (p *Product) BrandKey() string            { return p.brandKey }
func (p *Product) Name() string                { return p.name }
func (p *Product) Brand() string               { return p.brand }
func (p *Product) Description() string         { return p.description }
func (p *Product) Categories() []string        { return copyStrings(p.categories) }
func (p *Product) Specs() map[string]string    { return copyStringMap(p.specs) }
func (p *Product) USP() []string               { return copyStrings(p.usp) }
func (p *Product) IsActive() bool              { return p.active }
func (p *Product) Version() int64              { return p.version }
func (p *Product) CreatedAt() time.Time        { return p.createdAt }
func (p *Product) UpdatedAt() time.Time        { return p.updatedAt }
func (p *Product) Changes() *ChangeTracker     { return p.changes }
func (p *Product) DomainEvents() []DomainEvent { return p.events }
func (p *Product) IsNew() bool                 { return p.version == 0 }
func (p *Product) VariantCount() int           { return len(p.variants) }

// Variants returns the variants in insertion order.
func (p *Product) Variants() []*Variant {
	out := make([]*Variant, len(p.variants))
	copy(out, p.variants)
	return out
}

// Variant looks up a variant by ID.
func (p *Product) Variant(variantID string) (*Variant, error) {
	for _, v := range p.variants {
		if v.id == variantID {
			return v, nil
		}
	}
	return nil, ErrVariantNotFound
}

// SubmitOffer merges a merchant's listing into the variant graph. The variant whose
// attributes match exactly receives the offer; otherwise a new variant is created with
// newVariantID. Any earlier offer by the same merchant on that variant is replaced.
func (p *Product) SubmitOffer(sub OfferSubmission, newVariantID func() string) (*Variant, error) {
	if sub.Attributes == nil {
		return nil, ErrMissingAttributes
	}
	offer, err := NewOffer(sub.MerchantID, sub.MerchantName, sub.Price, sub.Stock)
	if err != nil {
		return nil, err
	}

	now := p.clock.Now()
	variant, ok := MatchVariant(p.variants, sub.Attributes)
	if !ok {
		variant = NewVariant(newVariantID(), sub.Attributes, sub.ImageURLs)
		p.variants = append(p.variants, variant)
		p.changes.MarkDirty(FieldVariants)
		p.recordEvent(&VariantCreatedEvent{
			ID:         p.id,
			ProductID:  p.productID,
			VariantID:  variant.id,
			Attributes: variant.attributes.Copy(),
			CreatedAt:  now,
		})
	}

	replaced := variant.upsertOffer(offer)
	p.touch(now, FieldOffers)
	p.recordEvent(&OfferSubmittedEvent{
		ID:          p.id,
		ProductID:   p.productID,
		VariantID:   variant.id,
		MerchantID:  offer.merchantID,
		Price:       offer.price.String(),
		Stock:       offer.stock,
		Replaced:    replaced,
		SubmittedAt: now,
	})

	return variant, nil
}

// UpdateOffer applies a partial price/stock update to the merchant's own offer.
// A nil argument leaves that field unchanged.
func (p *Product) UpdateOffer(variantID, merchantID string, price *Money, stock *int64) error {
	if merchantID == "" {
		return ErrUnauthenticated
	}
	if price == nil && stock == nil {
		return ErrNoInventoryChanges
	}
	if price != nil {
		if err := ValidatePrice(price); err != nil {
			return err
		}
	}
	if stock != nil && *stock < 0 {
		return ErrInvalidStock
	}

	variant, err := p.Variant(variantID)
	if err != nil {
		return err
	}
	offer, ok := variant.OfferBy(merchantID)
	if !ok {
		return ErrNotOfferOwner
	}

	if price != nil {
		offer.price = price.Copy()
	}
	if stock != nil {
		offer.stock = *stock
	}

	now := p.clock.Now()
	p.touch(now, FieldOffers)
	p.recordEvent(&OfferUpdatedEvent{
		ID:         p.id,
		ProductID:  p.productID,
		VariantID:  variant.id,
		MerchantID: merchantID,
		Price:      offer.price.String(),
		Stock:      offer.stock,
		UpdatedAt:  now,
	})
	return nil
}

// RemoveOffer withdraws the merchant's offer. A variant left without offers is removed;
// the product itself always survives.
func (p *Product) RemoveOffer(variantID, merchantID string) (variantRemoved bool, err error) {
	if merchantID == "" {
		return false, ErrUnauthenticated
	}
	variant, err := p.Variant(variantID)
	if err != nil {
		return false, err
	}
	if !variant.removeOffer(merchantID) {
		return false, ErrNotOfferOwner
	}

	now := p.clock.Now()
	p.touch(now, FieldOffers)
	p.recordEvent(&OfferRemovedEvent{
		ID:         p.id,
		ProductID:  p.productID,
		VariantID:  variant.id,
		MerchantID: merchantID,
		RemovedAt:  now,
	})

	if variant.OfferCount() > 0 {
		return false, nil
	}

	p.dropVariant(variant.id)
	p.changes.MarkDirty(FieldVariants)
	p.recordEvent(&VariantRemovedEvent{
		ID:        p.id,
		ProductID: p.productID,
		VariantID: variant.id,
		RemovedAt: now,
	})
	return true, nil
}

// ReduceStock consumes quantity from a merchant's offer. Stock never goes below zero;
// an insufficient request leaves the offer untouched.
func (p *Product) ReduceStock(variantID, merchantID string, quantity int64) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	variant, err := p.Variant(variantID)
	if err != nil {
		return err
	}
	offer, ok := variant.OfferBy(merchantID)
	if !ok {
		return ErrMerchantNotSeller
	}
	if offer.stock < quantity {
		return ErrInsufficientStock
	}

	offer.stock -= quantity

	now := p.clock.Now()
	p.touch(now, FieldOffers)
	p.recordEvent(&StockReducedEvent{
		ID:             p.id,
		ProductID:      p.productID,
		VariantID:      variant.id,
		MerchantID:     merchantID,
		Quantity:       quantity,
		RemainingStock: offer.stock,
		ReducedAt:      now,
	})
	return nil
}

// HasUSP reports whether marketing highlights are set.
func (p *Product) HasUSP() bool {
	return len(p.usp) > 0
}

// AssignUSP replaces the marketing highlights.
func (p *Product) AssignUSP(usp []string) {
	p.usp = copyStrings(usp)

	now := p.clock.Now()
	p.touch(now, FieldUSP)
	p.recordEvent(&USPAssignedEvent{
		ID:         p.id,
		ProductID:  p.productID,
		USP:        copyStrings(usp),
		AssignedAt: now,
	})
}

// MarkCommitted is called by stores after a successful save. It advances the
// version and clears pending changes and events.
func (p *Product) MarkCommitted() {
	p.version++
	p.changes.Clear()
	p.ClearEvents()
}

// ClearEvents clears all recorded domain events (called after publishing).
func (p *Product) ClearEvents() {
	p.events = make([]DomainEvent, 0)
}

func (p *Product) dropVariant(variantID string) {
	for i, v := range p.variants {
		if v.id == variantID {
			p.variants = append(p.variants[:i], p.variants[i+1:]...)
			return
		}
	}
}

func (p *Product) touch(now time.Time, fields ...Field) {
	p.updatedAt = now
	p.changes.MarkDirty(fields...)
}

// recordEvent adds a domain event to the list of events.
func (p *Product) recordEvent(event DomainEvent) {
	p.events = append(p.events, event)
}
