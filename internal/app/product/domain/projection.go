package domain

// DisplayProjection is the aggregated view of one (product, variant) pair.
// It is derived on read and never stored.
type DisplayProjection struct {
	ProductID      int64
	VariantID      string
	Name           string
	Brand          string
	Description    string
	Thumbnail      string
	Categories     []string
	Attributes     Attributes
	LowestPrice    *Money
	TotalMerchants int
	TotalStock     int64
	InStock        bool
}

// SellerOffer is one row of the seller table on the detail page.
type SellerOffer struct {
	MerchantID   string
	MerchantName string
	Price        *Money
	Stock        int64
}

// Detail is the full product page for one variant.
type Detail struct {
	ProductID   int64
	VariantID   string
	Name        string
	Brand       string
	Description string
	ImageURLs   []string
	Categories  []string
	Specs       map[string]string
	USP         []string
	Attributes  Attributes
	Sellers     []SellerOffer
}

func baseProjection(p *Product, v *Variant) *DisplayProjection {
	return &DisplayProjection{
		ProductID:   p.productID,
		VariantID:   v.id,
		Name:        p.name,
		Brand:       p.brand,
		Description: p.description,
		Thumbnail:   v.Thumbnail(),
		Categories:  p.Categories(),
		Attributes:  v.Attributes(),
	}
}

// MarketView aggregates every merchant's offer on v.
func MarketView(p *Product, v *Variant) *DisplayProjection {
	view := baseProjection(p, v)
	view.LowestPrice = v.LowestPrice()
	view.TotalMerchants = v.OfferCount()
	view.TotalStock = v.TotalStock()
	view.InStock = view.TotalStock > 0
	return view
}

// MerchantView substitutes merchantID's own price and stock for the aggregate.
// TotalMerchants still reports the market offer count. Without an offer by the
// merchant it falls back to the market view.
func MerchantView(p *Product, v *Variant, merchantID string) *DisplayProjection {
	view := MarketView(p, v)
	offer, ok := v.OfferBy(merchantID)
	if !ok {
		return view
	}
	view.LowestPrice = offer.Price()
	view.TotalStock = offer.stock
	view.InStock = offer.stock > 0
	return view
}

// NewDetail builds the detail page for v.
func NewDetail(p *Product, v *Variant) *Detail {
	sellers := make([]SellerOffer, 0, len(v.offers))
	for _, o := range v.offers {
		sellers = append(sellers, SellerOffer{
			MerchantID:   o.merchantID,
			MerchantName: o.merchantName,
			Price:        o.Price(),
			Stock:        o.stock,
		})
	}
	return &Detail{
		ProductID:   p.productID,
		VariantID:   v.id,
		Name:        p.name,
		Brand:       p.brand,
		Description: p.description,
		ImageURLs:   v.ImageURLs(),
		Categories:  p.Categories(),
		Specs:       p.Specs(),
		USP:         p.USP(),
		Attributes:  v.Attributes(),
		Sellers:     sellers,
	}
}
