package memrepo

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/light-bringer/offercat-service/internal/app/product/contracts"
)

// FetchPending implements contracts.OutboxStore.
func (s *Store) FetchPending(_ context.Context, limit int) ([]*contracts.OutboxRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pending := make([]*contracts.OutboxRecord, 0)
	for _, r := range s.outbox {
		if r.Status == contracts.OutboxStatusPending {
			pending = append(pending, copyRecord(r))
		}
	}
	sort.SliceStable(pending, func(i, j int) bool {
		if !pending[i].CreatedAt.Equal(pending[j].CreatedAt) {
			return pending[i].CreatedAt.Before(pending[j].CreatedAt)
		}
		return pending[i].EventID < pending[j].EventID
	})
	if limit > 0 && len(pending) > limit {
		pending = pending[:limit]
	}
	return pending, nil
}

// MarkCompleted implements contracts.OutboxStore.
func (s *Store) MarkCompleted(_ context.Context, eventID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.record(eventID)
	if err != nil {
		return err
	}
	now := s.now()
	r.Status = contracts.OutboxStatusCompleted
	r.ProcessedAt = &now
	return nil
}

// MarkFailed implements contracts.OutboxStore.
func (s *Store) MarkFailed(_ context.Context, eventID, reason string, maxRetries int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.record(eventID)
	if err != nil {
		return err
	}
	r.RetryCount++
	r.ErrorMessage = reason
	if r.RetryCount >= maxRetries {
		now := s.now()
		r.Status = contracts.OutboxStatusFailed
		r.ProcessedAt = &now
	}
	return nil
}

// CountProcessedBefore implements contracts.OutboxStore.
func (s *Store) CountProcessedBefore(_ context.Context, status string, cutoff time.Time) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, r := range s.outbox {
		if processedBefore(r, status, cutoff) {
			n++
		}
	}
	return n, nil
}

// DeleteProcessedBefore implements contracts.OutboxStore.
func (s *Store) DeleteProcessedBefore(_ context.Context, status string, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.outbox[:0]
	var n int64
	for _, r := range s.outbox {
		if processedBefore(r, status, cutoff) {
			n++
			continue
		}
		kept = append(kept, r)
	}
	s.outbox = kept
	return n, nil
}

// ListEvents implements contracts.EventsReadModel, newest first.
func (s *Store) ListEvents(_ context.Context, filter contracts.EventFilter) ([]*contracts.OutboxRecord, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]*contracts.OutboxRecord, 0)
	for i := len(s.outbox) - 1; i >= 0; i-- {
		r := s.outbox[i]
		if filter.EventType != nil && r.EventType != *filter.EventType {
			continue
		}
		if filter.AggregateID != nil && r.AggregateID != *filter.AggregateID {
			continue
		}
		if filter.Status != nil && r.Status != *filter.Status {
			continue
		}
		matched = append(matched, copyRecord(r))
	}
	total := int64(len(matched))
	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	return matched, total, nil
}

func (s *Store) record(eventID string) (*contracts.OutboxRecord, error) {
	for _, r := range s.outbox {
		if r.EventID == eventID {
			return r, nil
		}
	}
	return nil, fmt.Errorf("outbox event %s not found", eventID)
}

func processedBefore(r *contracts.OutboxRecord, status string, cutoff time.Time) bool {
	return r.Status == status && r.ProcessedAt != nil && r.ProcessedAt.Before(cutoff)
}
