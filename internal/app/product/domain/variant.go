package domain

// Offer is one merchant's price and stock for one variant.
type Offer struct {
	merchantID   string
	merchantName string
	price        *Money
	stock        int64
}

// NewOffer validates and builds an offer.
func NewOffer(merchantID, merchantName string, price *Money, stock int64) (*Offer, error) {
	if merchantID == "" {
		return nil, ErrUnauthenticated
	}
	if err := ValidatePrice(price); err != nil {
		return nil, err
	}
	if stock < 0 {
		return nil, ErrInvalidStock
	}
	return &Offer{
		merchantID:   merchantID,
		merchantName: merchantName,
		price:        price.Copy(),
		stock:        stock,
	}, nil
}

// ReconstructOffer rebuilds an offer loaded from storage without validation.
func ReconstructOffer(merchantID, merchantName string, price *Money, stock int64) *Offer {
	return &Offer{merchantID: merchantID, merchantName: merchantName, price: price, stock: stock}
}

func (o *Offer) MerchantID() string   { return o.merchantID }
func (o *Offer) MerchantName() string { return o.merchantName }
func (o *Offer) Price() *Money        { return o.price.Copy() }
func (o *Offer) Stock() int64         { return o.stock }

// Variant is a distinct attribute combination of a product. It owns the offer ledger:
// at most one offer per merchant.
type Variant struct {
	id         string
	attributes Attributes
	imageURLs  []string
	offers     []*Offer
}

// NewVariant creates a variant with an empty ledger.
func NewVariant(id string, attributes Attributes, imageURLs []string) *Variant {
	return &Variant{
		id:         id,
		attributes: attributes.Copy(),
		imageURLs:  copyStrings(imageURLs),
		offers:     make([]*Offer, 0, 1),
	}
}

// ReconstructVariant rebuilds a variant loaded from storage.
func ReconstructVariant(id string, attributes Attributes, imageURLs []string, offers []*Offer) *Variant {
	if offers == nil {
		offers = make([]*Offer, 0)
	}
	return &Variant{id: id, attributes: attributes, imageURLs: imageURLs, offers: offers}
}

func (v *Variant) ID() string             { return v.id }
func (v *Variant) Attributes() Attributes { return v.attributes.Copy() }
func (v *Variant) ImageURLs() []string    { return copyStrings(v.imageURLs) }
func (v *Variant) OfferCount() int        { return len(v.offers) }

// Offers returns the ledger in insertion order. The offers must not be modified.
func (v *Variant) Offers() []*Offer {
	out := make([]*Offer, len(v.offers))
	copy(out, v.offers)
	return out
}

// Thumbnail returns the first image, or "" when the variant has none.
func (v *Variant) Thumbnail() string {
	if len(v.imageURLs) == 0 {
		return ""
	}
	return v.imageURLs[0]
}

// OfferBy returns the merchant's offer if present.
func (v *Variant) OfferBy(merchantID string) (*Offer, bool) {
	if i := v.offerIndex(merchantID); i >= 0 {
		return v.offers[i], true
	}
	return nil, false
}

// LowestPrice returns the minimum offer price, or zero without offers.
func (v *Variant) LowestPrice() *Money {
	prices := make([]*Money, 0, len(v.offers))
	for _, o := range v.offers {
		prices = append(prices, o.price)
	}
	if lowest := MinMoney(prices...); lowest != nil {
		return lowest
	}
	return ZeroMoney()
}

// TotalStock sums stock across all offers.
func (v *Variant) TotalStock() int64 {
	var total int64
	for _, o := range v.offers {
		total += o.stock
	}
	return total
}

func (v *Variant) offerIndex(merchantID string) int {
	for i, o := range v.offers {
		if o.merchantID == merchantID {
			return i
		}
	}
	return -1
}

// upsertOffer drops any prior offer of the same merchant and appends the new one.
func (v *Variant) upsertOffer(offer *Offer) (replaced bool) {
	if i := v.offerIndex(offer.merchantID); i >= 0 {
		v.offers = append(v.offers[:i], v.offers[i+1:]...)
		replaced = true
	}
	v.offers = append(v.offers, offer)
	return replaced
}

func (v *Variant) removeOffer(merchantID string) bool {
	i := v.offerIndex(merchantID)
	if i < 0 {
		return false
	}
	v.offers = append(v.offers[:i], v.offers[i+1:]...)
	return true
}

// MatchVariant returns the first variant whose attributes are exactly equal to attrs.
// Extra or missing keys never match.
func MatchVariant(variants []*Variant, attrs Attributes) (*Variant, bool) {
	for _, v := range variants {
		if v.attributes.Equal(attrs) {
			return v, true
		}
	}
	return nil, false
}
