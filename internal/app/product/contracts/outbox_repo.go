package contracts

import (
	"context"
	"time"
)

// Outbox event statuses
const (
	OutboxStatusPending   = "pending"
	OutboxStatusCompleted = "completed"
	OutboxStatusFailed    = "failed"
)

// OutboxRecord is a domain event enriched for persistence and relay.
type OutboxRecord struct {
	EventID      string     `json:"event_id"`
	EventType    string     `json:"event_type"`
	AggregateID  string     `json:"aggregate_id"`
	Payload      string     `json:"payload"` // JSON
	Status       string     `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	ProcessedAt  *time.Time `json:"processed_at,omitempty"`
	RetryCount   int64      `json:"retry_count"`
	ErrorMessage string     `json:"error_message,omitempty"`
}

// OutboxStore is used by the relay to drain events written by ProductRepository.Save.
type OutboxStore interface {
	// FetchPending returns up to limit pending events, oldest first.
	FetchPending(ctx context.Context, limit int) ([]*OutboxRecord, error)

	MarkCompleted(ctx context.Context, eventID string) error

	// MarkFailed records the error and bumps the retry count. Events that reach
	// maxRetries move to the failed status with processed_at set; others stay pending.
	MarkFailed(ctx context.Context, eventID, reason string, maxRetries int64) error

	// CountProcessedBefore counts events in status processed before cutoff.
	CountProcessedBefore(ctx context.Context, status string, cutoff time.Time) (int64, error)

	// DeleteProcessedBefore removes events in status processed before cutoff.
	DeleteProcessedBefore(ctx context.Context, status string, cutoff time.Time) (int64, error)
}

// EventFilter narrows an events listing. Nil fields are ignored.
type EventFilter struct {
	EventType   *string
	AggregateID *string
	Status      *string
	Limit       int
}

// EventsReadModel lists outbox events for operators.
type EventsReadModel interface {
	ListEvents(ctx context.Context, filter EventFilter) ([]*OutboxRecord, int64, error)
}
