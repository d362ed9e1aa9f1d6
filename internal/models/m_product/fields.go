package m_product

// Field name constants for the products table.
const (
	TableName = "products"

	// NameBrandIndex enforces one product per (normalized_name, brand_key).
	NameBrandIndex = "products_by_name_brand"

	ID             = "id"
	ProductID      = "product_id"
	NormalizedName = "normalized_name"
	BrandKey       = "brand_key"
	Name           = "name"
	Categories     = "categories"
	MerchantIDs    = "merchant_ids"
	SearchText     = "search_text"
	DocumentColumn = "document"
	Version        = "version"
	CreatedAt      = "created_at"
	UpdatedAt      = "updated_at"

	// Hidden TOKENLIST columns used by the search index.
	NameTokens   = "name_tokens"
	SearchTokens = "search_tokens"
)

// Columns lists every writable column in insert order.
var Columns = []string{
	ID,
	ProductID,
	NormalizedName,
	BrandKey,
	Name,
	Categories,
	MerchantIDs,
	SearchText,
	DocumentColumn,
	Version,
	CreatedAt,
	UpdatedAt,
}

// ReadColumns is the projection needed to rebuild an aggregate.
var ReadColumns = []string{ID, DocumentColumn, Version}
