// Package relay drains the transactional outbox to a message broker.
package relay

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub"
	"go.uber.org/zap"

	"github.com/light-bringer/offercat-service/internal/app/product/contracts"
	"github.com/light-bringer/offercat-service/internal/platform/observability"
)

const (
	DefaultBatchSize  = 100
	DefaultMaxRetries = 5
)

// Publisher delivers one outbox record and returns the broker message id.
type Publisher interface {
	Publish(ctx context.Context, record *contracts.OutboxRecord) (string, error)
}

// PubSubPublisher publishes records to a Pub/Sub topic. The payload is the
// message body; event metadata travels as attributes.
type PubSubPublisher struct {
	topic *pubsub.Topic
}

// NewPubSubPublisher constructs a Pub/Sub backed publisher.
func NewPubSubPublisher(topic *pubsub.Topic) (*PubSubPublisher, error) {
	if topic == nil {
		return nil, errors.New("pubsub publisher: topic is required")
	}
	// per-product ordering
	topic.EnableMessageOrdering = true
	return &PubSubPublisher{topic: topic}, nil
}

// Publish implements Publisher.
func (p *PubSubPublisher) Publish(ctx context.Context, record *contracts.OutboxRecord) (string, error) {
	result := p.topic.Publish(ctx, &pubsub.Message{
		Data: []byte(record.Payload),
		Attributes: map[string]string{
			"eventId":     record.EventID,
			"eventType":   record.EventType,
			"aggregateId": record.AggregateID,
		},
		OrderingKey: record.AggregateID,
	})
	id, err := result.Get(ctx)
	if err != nil {
		// a failed ordered publish pauses the key until resumed
		p.topic.ResumePublish(record.AggregateID)
		return "", fmt.Errorf("publish %s: %w", record.EventID, err)
	}
	return id, nil
}

// Stats summarises one drain pass.
type Stats struct {
	Published int
	Failed    int
}

// Relay moves pending events to a Publisher.
type Relay struct {
	outbox     contracts.OutboxStore
	publisher  Publisher
	batchSize  int
	maxRetries int64
}

// New creates a Relay with the default batch size and retry budget.
func New(outbox contracts.OutboxStore, publisher Publisher) *Relay {
	return &Relay{
		outbox:     outbox,
		publisher:  publisher,
		batchSize:  DefaultBatchSize,
		maxRetries: DefaultMaxRetries,
	}
}

// WithMaxRetries sets how many failed publishes move an event to failed.
func (r *Relay) WithMaxRetries(n int64) *Relay {
	r.maxRetries = n
	return r
}

// RunOnce publishes one batch. A publish failure is recorded on the event and
// does not stop the batch; only store errors are returned.
func (r *Relay) RunOnce(ctx context.Context) (Stats, error) {
	var stats Stats
	logger := observability.FromContext(ctx)

	records, err := r.outbox.FetchPending(ctx, r.batchSize)
	if err != nil {
		return stats, fmt.Errorf("failed to fetch pending events: %w", err)
	}

	for _, rec := range records {
		msgID, pubErr := r.publisher.Publish(ctx, rec)
		if pubErr != nil {
			stats.Failed++
			logger.Warn("event publish failed",
				zap.String("event_id", rec.EventID),
				zap.String("event_type", rec.EventType),
				zap.Int64("retry_count", rec.RetryCount+1),
				zap.Error(pubErr),
			)
			if err := r.outbox.MarkFailed(ctx, rec.EventID, pubErr.Error(), r.maxRetries); err != nil {
				return stats, fmt.Errorf("failed to mark event %s failed: %w", rec.EventID, err)
			}
			continue
		}
		if err := r.outbox.MarkCompleted(ctx, rec.EventID); err != nil {
			return stats, fmt.Errorf("failed to mark event %s completed: %w", rec.EventID, err)
		}
		stats.Published++
		logger.Debug("event published", zap.String("event_id", rec.EventID), zap.String("message_id", msgID))
	}
	return stats, nil
}

// Run drains the outbox every interval until ctx is done.
func (r *Relay) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		stats, err := r.RunOnce(ctx)
		if err != nil {
			observability.FromContext(ctx).Error("outbox relay pass failed", zap.Error(err))
		} else if stats.Published+stats.Failed > 0 {
			observability.FromContext(ctx).Info("outbox relay pass",
				zap.Int("published", stats.Published),
				zap.Int("failed", stats.Failed),
			)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
