package m_sequence

import "cloud.google.com/go/spanner"

// Field name constants for the sequences table.
const (
	TableName = "sequences"

	Name  = "name"
	Value = "value"
)

// Model provides mutations for the sequences table.
type Model struct{}

// NewModel creates a new Model instance.
func NewModel() *Model {
	return &Model{}
}

// UpsertMut stores the latest issued value for a sequence.
func (m *Model) UpsertMut(name string, value int64) *spanner.Mutation {
	return spanner.InsertOrUpdate(TableName, []string{Name, Value}, []interface{}{name, value})
}
