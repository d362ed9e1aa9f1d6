package repo

import (
	"context"

	"cloud.google.com/go/spanner"

	"github.com/light-bringer/offercat-service/internal/app/product/contracts"
	"github.com/light-bringer/offercat-service/internal/models/m_outbox"
	"github.com/light-bringer/offercat-service/internal/pkg/query"
)

// EventsReadModel implements the EventsReadModel interface for Spanner.
type EventsReadModel struct {
	client *spanner.Client
}

var _ contracts.EventsReadModel = (*EventsReadModel)(nil)

// NewEventsReadModel creates a new EventsReadModel.
func NewEventsReadModel(client *spanner.Client) *EventsReadModel {
	return &EventsReadModel{
		client: client,
	}
}

// ListEvents retrieves the newest matching events and the total match count.
func (r *EventsReadModel) ListEvents(ctx context.Context, filter contracts.EventFilter) ([]*contracts.OutboxRecord, int64, error) {
	base := query.From(m_outbox.TableName)
	if filter.EventType != nil {
		base = base.Where(query.Eq(m_outbox.EventType, *filter.EventType))
	}
	if filter.AggregateID != nil {
		base = base.Where(query.Eq(m_outbox.AggregateID, *filter.AggregateID))
	}
	if filter.Status != nil {
		base = base.Where(query.Eq(m_outbox.Status, *filter.Status))
	}

	page := base.Select(m_outbox.Columns...).
		OrderBy(m_outbox.CreatedAt, query.Desc).
		OrderBy(m_outbox.EventID, query.Desc).
		Limit(int64(filter.Limit))

	txn := r.client.ReadOnlyTransaction()
	defer txn.Close()

	events, err := readOutbox(txn.Query(ctx, page.Build()))
	if err != nil {
		return nil, 0, err
	}
	total, err := countRows(txn.Query(ctx, base.Count().Build()))
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}
