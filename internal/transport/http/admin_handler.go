package http

import (
	"net/http"
	"strconv"

	"github.com/light-bringer/offercat-service/internal/app/product/queries/list_events"
	"github.com/light-bringer/offercat-service/internal/platform/httpx"
)

// BackfillUSP handles POST /api/v1/admin/products/usp.
func (h *Handler) BackfillUSP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	res, err := h.backfillUSP.Execute(ctx)
	if err != nil {
		writeDomainError(ctx, w, err, nil)
		return
	}
	httpx.WriteData(w, http.StatusOK, res, "USPs backfilled")
}

// ListEvents handles GET /api/v1/admin/events.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()
	req := &list_events.Request{Limit: list_events.DefaultLimit}

	if eventType := query.Get("event_type"); eventType != "" {
		req.EventType = &eventType
	}
	if aggregateID := query.Get("aggregate_id"); aggregateID != "" {
		req.AggregateID = &aggregateID
	}
	if status := query.Get("status"); status != "" {
		req.Status = &status
	}
	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 {
			req.Limit = limit
		}
	}

	records, total, err := h.listEvents.Execute(ctx, req)
	if err != nil {
		writeDomainError(ctx, w, err, nil)
		return
	}

	events := make([]Event, 0, len(records))
	for _, rec := range records {
		events = append(events, toEvent(rec))
	}
	httpx.WriteData(w, http.StatusOK, ListEventsResponse{
		Events:     events,
		TotalCount: total,
	}, "")
}
