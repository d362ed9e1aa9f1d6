package m_outbox

import (
	"encoding/json"
	"fmt"
	"sort"

	"cloud.google.com/go/spanner"
)

// Model builds outbox_events mutations.
type Model struct{}

func NewModel() *Model {
	return &Model{}
}

// InsertMut writes a new event; created_at is the commit timestamp, so rows of one
// commit share it and relay order falls back to event_id.
func (m *Model) InsertMut(d *Data) *spanner.Mutation {
	return spanner.Insert(TableName, Columns, []interface{}{
		d.EventID,
		d.EventType,
		d.AggregateID,
		d.Payload,
		d.Status,
		spanner.CommitTimestamp,
		d.ProcessedAt,
		d.RetryCount,
		d.ErrorMessage,
	})
}

// UpdateMut rewrites the given columns of one event. Columns are emitted in sorted
// order so identical updates produce identical mutations.
func (m *Model) UpdateMut(eventID string, updates map[string]interface{}) *spanner.Mutation {
	if len(updates) == 0 {
		return nil
	}
	cols := make([]string, 0, len(updates))
	for col := range updates {
		cols = append(cols, col)
	}
	sort.Strings(cols)

	vals := make([]interface{}, 0, len(cols)+1)
	vals = append(vals, eventID)
	for _, col := range cols {
		vals = append(vals, updates[col])
	}
	return spanner.Update(TableName, append([]string{EventID}, cols...), vals)
}

// JSONPayload wraps raw JSON text so it is stored unquoted.
func JSONPayload(payload string) spanner.NullJSON {
	if payload == "" {
		return spanner.NullJSON{}
	}
	return spanner.NullJSON{Value: json.RawMessage(payload), Valid: true}
}

// DecodeRow scans a row selected with Columns.
func DecodeRow(row *spanner.Row) (*Data, error) {
	var d Data
	if err := row.Columns(
		&d.EventID, &d.EventType, &d.AggregateID, &d.Payload, &d.Status,
		&d.CreatedAt, &d.ProcessedAt, &d.RetryCount, &d.ErrorMessage,
	); err != nil {
		return nil, fmt.Errorf("failed to scan outbox event: %w", err)
	}
	return &d, nil
}
