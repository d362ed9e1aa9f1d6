package repo

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/spanner"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"

	"github.com/light-bringer/offercat-service/internal/app/product/contracts"
	"github.com/light-bringer/offercat-service/internal/models/m_outbox"
	"github.com/light-bringer/offercat-service/internal/pkg/clock"
	"github.com/light-bringer/offercat-service/internal/pkg/query"
)

// OutboxRepo writes outbox rows as mutations and serves the relay.
type OutboxRepo struct {
	client *spanner.Client
	model  *m_outbox.Model
	clock  clock.Clock
}

var _ contracts.OutboxStore = (*OutboxRepo)(nil)

// NewOutboxRepo creates a new OutboxRepo.
func NewOutboxRepo(client *spanner.Client, clk clock.Clock) *OutboxRepo {
	return &OutboxRepo{
		client: client,
		model:  m_outbox.NewModel(),
		clock:  clk,
	}
}

// InsertMut creates a mutation for inserting an outbox event.
func (r *OutboxRepo) InsertMut(rec *contracts.OutboxRecord) *spanner.Mutation {
	return r.model.InsertMut(&m_outbox.Data{
		EventID:     rec.EventID,
		EventType:   rec.EventType,
		AggregateID: rec.AggregateID,
		Payload:     m_outbox.JSONPayload(rec.Payload),
		Status:      rec.Status,
		RetryCount:  rec.RetryCount,
	})
}

// FetchPending returns the oldest pending events.
func (r *OutboxRepo) FetchPending(ctx context.Context, limit int) ([]*contracts.OutboxRecord, error) {
	stmt := query.From(m_outbox.TableName).
		Select(m_outbox.Columns...).
		Where(query.Eq(m_outbox.Status, contracts.OutboxStatusPending)).
		OrderBy(m_outbox.CreatedAt, query.Asc).
		OrderBy(m_outbox.EventID, query.Asc).
		Limit(int64(limit)).
		Build()
	return readOutbox(r.client.Single().Query(ctx, stmt))
}

// MarkCompleted flags a relayed event.
func (r *OutboxRepo) MarkCompleted(ctx context.Context, eventID string) error {
	mut := r.model.UpdateMut(eventID, map[string]interface{}{
		m_outbox.Status:      contracts.OutboxStatusCompleted,
		m_outbox.ProcessedAt: r.clock.Now(),
	})
	if _, err := r.client.Apply(ctx, []*spanner.Mutation{mut}); err != nil {
		return fmt.Errorf("failed to mark event %s completed: %w", eventID, err)
	}
	return nil
}

// MarkFailed bumps the retry count and parks the event once retries run out.
func (r *OutboxRepo) MarkFailed(ctx context.Context, eventID, reason string, maxRetries int64) error {
	_, err := r.client.ReadWriteTransaction(ctx, func(ctx context.Context, txn *spanner.ReadWriteTransaction) error {
		row, err := txn.ReadRow(ctx, m_outbox.TableName, spanner.Key{eventID}, []string{m_outbox.RetryCount})
		if spanner.ErrCode(err) == codes.NotFound {
			return fmt.Errorf("outbox event %s not found", eventID)
		}
		if err != nil {
			return err
		}
		var retries int64
		if err := row.Column(0, &retries); err != nil {
			return err
		}
		retries++

		updates := map[string]interface{}{
			m_outbox.RetryCount:   retries,
			m_outbox.ErrorMessage: spanner.NullString{StringVal: reason, Valid: reason != ""},
		}
		if retries >= maxRetries {
			updates[m_outbox.Status] = contracts.OutboxStatusFailed
			updates[m_outbox.ProcessedAt] = r.clock.Now()
		}
		return txn.BufferWrite([]*spanner.Mutation{r.model.UpdateMut(eventID, updates)})
	})
	if err != nil {
		return fmt.Errorf("failed to mark event %s failed: %w", eventID, err)
	}
	return nil
}

func processedBefore(status string, cutoff time.Time) *query.Builder {
	return query.From(m_outbox.TableName).
		Where(query.Eq(m_outbox.Status, status)).
		Where(query.Lt(m_outbox.ProcessedAt, cutoff))
}

// CountProcessedBefore counts events eligible for cleanup.
func (r *OutboxRepo) CountProcessedBefore(ctx context.Context, status string, cutoff time.Time) (int64, error) {
	return countRows(r.client.Single().Query(ctx, processedBefore(status, cutoff).Count().Build()))
}

// DeleteProcessedBefore removes old events with partitioned DML.
func (r *OutboxRepo) DeleteProcessedBefore(ctx context.Context, status string, cutoff time.Time) (int64, error) {
	stmt := processedBefore(status, cutoff).BuildDelete()
	n, err := r.client.PartitionedUpdate(ctx, stmt)
	if err != nil {
		return 0, fmt.Errorf("failed to delete %s events: %w", status, err)
	}
	return n, nil
}

func readOutbox(iter *spanner.RowIterator) ([]*contracts.OutboxRecord, error) {
	defer iter.Stop()

	records := make([]*contracts.OutboxRecord, 0)
	for {
		row, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate events: %w", err)
		}
		data, err := m_outbox.DecodeRow(row)
		if err != nil {
			return nil, err
		}
		records = append(records, toRecord(data))
	}
	return records, nil
}

func toRecord(d *m_outbox.Data) *contracts.OutboxRecord {
	rec := &contracts.OutboxRecord{
		EventID:      d.EventID,
		EventType:    d.EventType,
		AggregateID:  d.AggregateID,
		Payload:      d.PayloadString(),
		Status:       d.Status,
		CreatedAt:    d.CreatedAt,
		RetryCount:   d.RetryCount,
		ErrorMessage: d.ErrorMessage.StringVal,
	}
	if d.ProcessedAt.Valid {
		t := d.ProcessedAt.Time
		rec.ProcessedAt = &t
	}
	return rec
}
