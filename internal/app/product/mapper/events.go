package mapper

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/light-bringer/offercat-service/internal/app/product/contracts"
	"github.com/light-bringer/offercat-service/internal/app/product/domain"
)

// OutboxRecords encodes pending domain events as outbox rows. Event IDs are ULIDs,
// so sorting by ID follows creation order.
func OutboxRecords(events []domain.DomainEvent, now time.Time) ([]*contracts.OutboxRecord, error) {
	records := make([]*contracts.OutboxRecord, 0, len(events))
	for _, event := range events {
		payload, err := json.Marshal(event)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s event: %w", event.EventType(), err)
		}
		records = append(records, &contracts.OutboxRecord{
			EventID:     ulid.Make().String(),
			EventType:   event.EventType(),
			AggregateID: event.AggregateID(),
			Payload:     string(payload),
			Status:      contracts.OutboxStatusPending,
			CreatedAt:   now,
		})
	}
	return records, nil
}
