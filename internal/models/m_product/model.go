package m_product

import (
	"encoding/json"
	"fmt"

	"cloud.google.com/go/spanner"
)

// Model builds products mutations. Every write carries the full document plus the
// indexed columns derived from it.
type Model struct{}

func NewModel() *Model {
	return &Model{}
}

func (m *Model) values(data *Data) []interface{} {
	return []interface{}{
		data.ID,
		data.ProductID,
		data.NormalizedName,
		data.BrandKey,
		data.Name,
		data.Categories,
		data.MerchantIDs,
		data.SearchText,
		spanner.NullJSON{Value: data.Document, Valid: data.Document != nil},
		data.Version,
		data.CreatedAt,
		data.UpdatedAt,
	}
}

// InsertMut creates a Spanner mutation for a product that does not exist yet.
// A row with the same key or name/brand pair makes the commit fail.
func (m *Model) InsertMut(data *Data) *spanner.Mutation {
	return spanner.Insert(TableName, Columns, m.values(data))
}

// UpdateMut rewrites every column of an existing product.
func (m *Model) UpdateMut(data *Data) *spanner.Mutation {
	return spanner.Update(TableName, Columns, m.values(data))
}

// DecodeRow reads a row selected with ReadColumns.
func DecodeRow(row *spanner.Row) (*Row, error) {
	var r Row
	if err := row.Columns(&r.ID, &r.Document, &r.Version); err != nil {
		return nil, fmt.Errorf("failed to scan product row: %w", err)
	}
	return &r, nil
}

// Decode unpacks the JSON document column.
func (r *Row) Decode() (*Document, error) {
	if !r.Document.Valid {
		return nil, fmt.Errorf("product %s has no document", r.ID)
	}
	raw, err := r.Document.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to re-encode document: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode document for %s: %w", r.ID, err)
	}
	return &doc, nil
}
