package submit_listing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/light-bringer/offercat-service/internal/app/product/contracts"
	"github.com/light-bringer/offercat-service/internal/app/product/domain"
	"github.com/light-bringer/offercat-service/internal/pkg/clock"
	"github.com/light-bringer/offercat-service/internal/platform/observability"
	"github.com/light-bringer/offercat-service/internal/platform/textutil"
)

// Request is one merchant listing. MerchantID comes from the resolved identity.
type Request struct {
	MerchantID  string
	Name        string
	Brand       string
	Description string
	Categories  []string
	Specs       map[string]string
	USP         []string
	Attributes  domain.Attributes
	ImageURLs   []string
	Price       *domain.Money
	Quantity    int64
}

// Interactor merges a listing into the shared product graph.
type Interactor struct {
	repo      contracts.ProductRepository
	sequences contracts.SequenceAllocator
	clock     clock.Clock
	newID     func() string
}

// NewInteractor creates a new submit listing interactor.
func NewInteractor(
	repo contracts.ProductRepository,
	sequences contracts.SequenceAllocator,
	clock clock.Clock,
) *Interactor {
	return &Interactor{
		repo:      repo,
		sequences: sequences,
		clock:     clock,
		newID:     uuid.NewString,
	}
}

// WithIDGenerator overrides the generator used for product and variant ids.
func (i *Interactor) WithIDGenerator(newID func() string) *Interactor {
	i.newID = newID
	return i
}

// Execute finds or creates the product for (name, brand), finds or creates the
// variant for the attribute set, replaces the caller's offer on it and saves the
// aggregate. It returns the caller's view of the variant.
func (i *Interactor) Execute(ctx context.Context, req *Request) (view *domain.DisplayProjection, err error) {
	ctx, span := observability.StartSpan(ctx, "submit_listing", attribute.String("merchant.id", req.MerchantID))
	defer func() { observability.EndSpan(span, err) }()

	// 1. Validate and clean request
	clean := sanitize(req)
	if err := validate(clean); err != nil {
		return nil, err
	}

	// 2. Load or create the shared product
	product, created, err := i.loadOrCreate(ctx, clean)
	if err != nil {
		return nil, err
	}

	// 3. Merge the offer
	variant, err := product.SubmitOffer(domain.OfferSubmission{
		MerchantID:   clean.MerchantID,
		MerchantName: domain.MerchantDisplayName(clean.MerchantID),
		Attributes:   clean.Attributes,
		ImageURLs:    clean.ImageURLs,
		Price:        clean.Price,
		Stock:        clean.Quantity,
	}, i.newID)
	if err != nil {
		return nil, err
	}

	// 4. Persist the whole aggregate
	if err := i.repo.Save(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to save product %d: %w", product.ProductID(), err)
	}

	observability.FromContext(ctx).Info("listing submitted",
		zap.Int64("product_id", product.ProductID()),
		zap.String("variant_id", variant.ID()),
		zap.String("merchant_id", clean.MerchantID),
		zap.Bool("product_created", created),
	)

	return domain.MerchantView(product, variant, clean.MerchantID), nil
}

func (i *Interactor) loadOrCreate(ctx context.Context, req *Request) (*domain.Product, bool, error) {
	product, err := i.repo.GetByNormalizedNameAndBrand(ctx, domain.NormalizeName(req.Name), req.Brand)
	if err == nil {
		return product, false, nil
	}
	if !errors.Is(err, domain.ErrProductNotFound) {
		return nil, false, fmt.Errorf("failed to look up product: %w", err)
	}

	productID, err := i.sequences.NextValue(ctx, domain.SequenceName)
	if err != nil {
		return nil, false, fmt.Errorf("failed to allocate product id: %w", err)
	}

	product, err = domain.NewProduct(i.newID(), productID, domain.Details{
		Name:        req.Name,
		Brand:       req.Brand,
		Description: req.Description,
		Categories:  req.Categories,
		Specs:       req.Specs,
		USP:         req.USP,
	}, i.clock)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create product: %w", err)
	}
	return product, true, nil
}

func validate(req *Request) error {
	if req.MerchantID == "" {
		return domain.ErrUnauthenticated
	}
	if req.Name == "" {
		return domain.ErrEmptyName
	}
	if req.Brand == "" {
		return domain.ErrEmptyBrand
	}
	if req.Categories == nil {
		return domain.ErrMissingCategories
	}
	if req.Attributes == nil {
		return domain.ErrMissingAttributes
	}
	if err := domain.ValidatePrice(req.Price); err != nil {
		return err
	}
	if req.Quantity < 0 {
		return domain.ErrInvalidStock
	}
	return nil
}

// sanitize strips markup from every merchant-supplied string. Image URLs are only trimmed.
func sanitize(req *Request) *Request {
	clean := *req
	clean.MerchantID = strings.TrimSpace(req.MerchantID)
	clean.Name = textutil.Clean(req.Name)
	clean.Brand = textutil.Clean(req.Brand)
	clean.Description = textutil.Clean(req.Description)
	clean.Categories = textutil.CleanAll(req.Categories)
	clean.Specs = textutil.CleanMap(req.Specs)
	clean.USP = textutil.CleanAll(req.USP)
	if req.Attributes != nil {
		clean.Attributes = domain.Attributes(textutil.CleanMap(req.Attributes))
	}
	if req.ImageURLs != nil {
		clean.ImageURLs = make([]string, 0, len(req.ImageURLs))
		for _, u := range req.ImageURLs {
			if u = strings.TrimSpace(u); u != "" {
				clean.ImageURLs = append(clean.ImageURLs, u)
			}
		}
	}
	return &clean
}
