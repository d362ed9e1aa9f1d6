package pgrepo

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/light-bringer/offercat-service/internal/app/product/contracts"
)

const selectEvents = `SELECT event_id, event_type, aggregate_id, payload, status, created_at,
	processed_at, retry_count, error_message FROM outbox_events`

// FetchPending implements contracts.OutboxStore.
func (s *Store) FetchPending(ctx context.Context, limit int) ([]*contracts.OutboxRecord, error) {
	rows, err := s.db.QueryContext(ctx, selectEvents+`
		WHERE status = $1 ORDER BY created_at, event_id LIMIT $2`,
		contracts.OutboxStatusPending, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pending events: %w", err)
	}
	return scanEvents(rows)
}

// MarkCompleted implements contracts.OutboxStore.
func (s *Store) MarkCompleted(ctx context.Context, eventID string) error {
	return s.exec(ctx, "mark completed", `
		UPDATE outbox_events SET status = $2, processed_at = $3 WHERE event_id = $1`,
		eventID, contracts.OutboxStatusCompleted, s.clock.Now())
}

// MarkFailed implements contracts.OutboxStore in a single statement.
func (s *Store) MarkFailed(ctx context.Context, eventID, reason string, maxRetries int64) error {
	return s.exec(ctx, "mark failed", `
		UPDATE outbox_events SET
			retry_count = retry_count + 1,
			error_message = $2,
			status = CASE WHEN retry_count + 1 >= $3 THEN $4 ELSE status END,
			processed_at = CASE WHEN retry_count + 1 >= $3 THEN $5 ELSE processed_at END
		WHERE event_id = $1`,
		eventID, reason, maxRetries, contracts.OutboxStatusFailed, s.clock.Now())
}

// CountProcessedBefore implements contracts.OutboxStore.
func (s *Store) CountProcessedBefore(ctx context.Context, status string, cutoff time.Time) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM outbox_events WHERE status = $1 AND processed_at < $2`,
		status, cutoff).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s events: %w", status, err)
	}
	return n, nil
}

// DeleteProcessedBefore implements contracts.OutboxStore.
func (s *Store) DeleteProcessedBefore(ctx context.Context, status string, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM outbox_events WHERE status = $1 AND processed_at < $2`, status, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete %s events: %w", status, err)
	}
	return res.RowsAffected()
}

// ListEvents implements contracts.EventsReadModel.
func (s *Store) ListEvents(ctx context.Context, filter contracts.EventFilter) ([]*contracts.OutboxRecord, int64, error) {
	var (
		clauses []string
		args    []interface{}
	)
	add := func(column string, value *string) {
		if value != nil {
			args = append(args, *value)
			clauses = append(clauses, fmt.Sprintf("%s = $%d", column, len(args)))
		}
	}
	add("event_type", filter.EventType)
	add("aggregate_id", filter.AggregateID)
	add("status", filter.Status)

	where := ""
	if len(clauses) > 0 {
		where = " WHERE " + strings.Join(clauses, " AND ")
	}

	var total int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM outbox_events`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count events: %w", err)
	}

	q := selectEvents + where + ` ORDER BY created_at DESC, event_id DESC`
	if filter.Limit > 0 {
		q += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list events: %w", err)
	}
	events, err := scanEvents(rows)
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

func (s *Store) exec(ctx context.Context, op, q string, args ...interface{}) error {
	res, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("failed to %s: %w", op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("failed to %s: outbox event %v not found", op, args[0])
	}
	return nil
}

func scanEvents(rows *sql.Rows) ([]*contracts.OutboxRecord, error) {
	defer rows.Close()

	events := make([]*contracts.OutboxRecord, 0)
	for rows.Next() {
		var (
			rec         contracts.OutboxRecord
			payload     []byte
			processedAt sql.NullTime
			errMsg      sql.NullString
		)
		if err := rows.Scan(&rec.EventID, &rec.EventType, &rec.AggregateID, &payload, &rec.Status,
			&rec.CreatedAt, &processedAt, &rec.RetryCount, &errMsg); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		rec.Payload = string(payload)
		rec.ErrorMessage = errMsg.String
		if processedAt.Valid {
			t := processedAt.Time
			rec.ProcessedAt = &t
		}
		events = append(events, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}
	return events, nil
}
