// Package mapper converts Product aggregates to and from their stored shapes.
package mapper

import (
	"fmt"
	"sort"
	"strings"

	"github.com/light-bringer/offercat-service/internal/app/product/domain"
	"github.com/light-bringer/offercat-service/internal/models/m_product"
	"github.com/light-bringer/offercat-service/internal/pkg/clock"
)

// ToDocument flattens the aggregate. Prices that do not fit an int64 fraction fail
// with domain.ErrMoneyOverflow.
func ToDocument(p *domain.Product) (*m_product.Document, error) {
	variants := make([]m_product.VariantDocument, 0, p.VariantCount())
	for _, v := range p.Variants() {
		offers := make([]m_product.OfferDocument, 0, v.OfferCount())
		for _, o := range v.Offers() {
			price := o.Price()
			if !price.IsSafeForStorage() {
				return nil, fmt.Errorf("offer of %s on variant %s: %w", o.MerchantID(), v.ID(), domain.ErrMoneyOverflow)
			}
			num, _ := price.Numerator()
			den, _ := price.Denominator()
			offers = append(offers, m_product.OfferDocument{
				MerchantID:       o.MerchantID(),
				MerchantName:     o.MerchantName(),
				PriceNumerator:   num,
				PriceDenominator: den,
				Stock:            o.Stock(),
			})
		}
		variants = append(variants, m_product.VariantDocument{
			ID:         v.ID(),
			Attributes: v.Attributes(),
			ImageURLs:  v.ImageURLs(),
			Offers:     offers,
		})
	}

	return &m_product.Document{
		ID:          p.ID(),
		ProductID:   p.ProductID(),
		Name:        p.Name(),
		Brand:       p.Brand(),
		Description: p.Description(),
		Categories:  p.Categories(),
		Specs:       p.Specs(),
		USP:         p.USP(),
		Active:      p.IsActive(),
		Variants:    variants,
		CreatedAt:   p.CreatedAt(),
		UpdatedAt:   p.UpdatedAt(),
	}, nil
}

// ToProduct rebuilds the aggregate from a stored document at the given version.
func ToProduct(doc *m_product.Document, version int64, clk clock.Clock) (*domain.Product, error) {
	variants := make([]*domain.Variant, 0, len(doc.Variants))
	for _, vd := range doc.Variants {
		offers := make([]*domain.Offer, 0, len(vd.Offers))
		for _, od := range vd.Offers {
			price, err := domain.NewMoney(od.PriceNumerator, od.PriceDenominator)
			if err != nil {
				return nil, fmt.Errorf("product %d variant %s: invalid price: %w", doc.ProductID, vd.ID, err)
			}
			offers = append(offers, domain.ReconstructOffer(od.MerchantID, od.MerchantName, price, od.Stock))
		}
		variants = append(variants, domain.ReconstructVariant(vd.ID, vd.Attributes, vd.ImageURLs, offers))
	}

	return domain.ReconstructProduct(domain.ProductState{
		ID:          doc.ID,
		ProductID:   doc.ProductID,
		Name:        doc.Name,
		Brand:       doc.Brand,
		Description: doc.Description,
		Categories:  doc.Categories,
		Specs:       doc.Specs,
		USP:         doc.USP,
		Active:      doc.Active,
		Variants:    variants,
		Version:     version,
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
	}, clk), nil
}

// ToData builds the products row written by the next save. The row carries
// version+1 so a successful commit matches MarkCommitted.
func ToData(p *domain.Product) (*m_product.Data, error) {
	doc, err := ToDocument(p)
	if err != nil {
		return nil, err
	}
	return &m_product.Data{
		ID:             p.ID(),
		ProductID:      p.ProductID(),
		NormalizedName: p.NormalizedName(),
		BrandKey:       p.BrandKey(),
		Name:           p.Name(),
		Categories:     p.Categories(),
		MerchantIDs:    MerchantIDs(p),
		SearchText:     SearchText(p),
		Document:       doc,
		Version:        p.Version() + 1,
		CreatedAt:      p.CreatedAt(),
		UpdatedAt:      p.UpdatedAt(),
	}, nil
}

// SearchText is the concatenated text indexed for full-text search.
func SearchText(p *domain.Product) string {
	parts := []string{p.Name(), p.Brand(), p.Description()}
	parts = append(parts, p.Categories()...)
	return strings.Join(nonEmpty(parts), " ")
}

// MerchantIDs lists every merchant holding an offer on the product, sorted and distinct.
func MerchantIDs(p *domain.Product) []string {
	seen := make(map[string]struct{})
	for _, v := range p.Variants() {
		for _, o := range v.Offers() {
			seen[o.MerchantID()] = struct{}{}
		}
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func nonEmpty(in []string) []string {
	out := in[:0]
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
