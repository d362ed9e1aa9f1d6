package domain

import "errors"

// Domain errors as sentinel values
var (
	// Lookup errors
	ErrProductNotFound = errors.New("product not found")
	ErrVariantNotFound = errors.New("variant not found")

	// Identity and ownership errors
	ErrUnauthenticated   = errors.New("caller identity is required")
	ErrNotOfferOwner     = errors.New("you do not have an active offer for this product")
	ErrMerchantNotSeller = errors.New("merchant does not sell this variant")

	// Inventory errors
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrInvalidQuantity    = errors.New("quantity must be positive")
	ErrNoInventoryChanges = errors.New("price or stock must be provided")

	// Listing validation errors
	ErrEmptyName         = errors.New("product name is required")
	ErrEmptyBrand        = errors.New("brand is required")
	ErrMissingAttributes = errors.New("attributes are required")
	ErrMissingCategories = errors.New("categories are required")
	ErrInvalidPrice      = errors.New("price must be zero or positive")
	ErrInvalidStock      = errors.New("stock must be zero or positive")
	ErrInvalidProductID  = errors.New("product id must be positive")
	ErrEmptyVariantID    = errors.New("variant id is required")
	ErrPageOutOfRange    = errors.New("page is out of range")

	// Persistence errors
	ErrConcurrentModification = errors.New("product was modified concurrently")
)

// Kind is the machine-readable failure class surfaced to callers.
type Kind string

const (
	KindNotFound          Kind = "not_found"
	KindUnauthenticated   Kind = "unauthenticated"
	KindForbidden         Kind = "forbidden"
	KindInsufficientStock Kind = "insufficient_stock"
	KindValidation        Kind = "validation"
	KindConflict          Kind = "conflict"
	KindInternal          Kind = "internal"
)

var kinds = []struct {
	kind Kind
	errs []error
}{
	{KindNotFound, []error{ErrProductNotFound, ErrVariantNotFound, ErrMerchantNotSeller}},
	{KindUnauthenticated, []error{ErrUnauthenticated}},
	{KindForbidden, []error{ErrNotOfferOwner}},
	{KindInsufficientStock, []error{ErrInsufficientStock}},
	{KindConflict, []error{ErrConcurrentModification}},
	{KindValidation, []error{
		ErrInvalidQuantity, ErrNoInventoryChanges, ErrEmptyName, ErrEmptyBrand,
		ErrMissingAttributes, ErrMissingCategories, ErrInvalidPrice, ErrInvalidStock,
		ErrInvalidProductID, ErrEmptyVariantID, ErrMoneyOverflow,
		ErrPageOutOfRange,
	}},
}

// KindOf classifies err; anything unrecognised is internal.
func KindOf(err error) Kind {
	kind, _ := Classify(err)
	return kind
}

// Classify returns the kind of err and the sentinel it wraps. The sentinel is nil
// for internal errors.
func Classify(err error) (Kind, error) {
	for _, k := range kinds {
		for _, target := range k.errs {
			if errors.Is(err, target) {
				return k.kind, target
			}
		}
	}
	return KindInternal, nil
}
