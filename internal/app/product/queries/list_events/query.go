package list_events

import (
	"context"

	"github.com/light-bringer/offercat-service/internal/app/product/contracts"
)

const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

// Request contains filtering parameters for listing events.
type Request struct {
	EventType   *string // e.g. "offer.submitted"
	AggregateID *string // internal product id
	Status      *string // "pending", "completed" or "failed"
	Limit       int
}

// Query handles the list events query use case.
type Query struct {
	readModel contracts.EventsReadModel
}

// NewQuery creates a new list events query.
func NewQuery(readModel contracts.EventsReadModel) *Query {
	return &Query{
		readModel: readModel,
	}
}

// Execute retrieves events newest first, with the total match count.
func (q *Query) Execute(ctx context.Context, req *Request) ([]*contracts.OutboxRecord, int64, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	return q.readModel.ListEvents(ctx, contracts.EventFilter{
		EventType:   req.EventType,
		AggregateID: req.AggregateID,
		Status:      req.Status,
		Limit:       limit,
	})
}
