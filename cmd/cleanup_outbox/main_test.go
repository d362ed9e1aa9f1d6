package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/light-bringer/offercat-service/internal/app/product/contracts"
	"github.com/light-bringer/offercat-service/internal/app/product/domain"
	"github.com/light-bringer/offercat-service/internal/app/product/repo/memrepo"
	"github.com/light-bringer/offercat-service/internal/pkg/clock"
)

func seed(t *testing.T, clk *clock.MockClock) *memrepo.Store {
	t.Helper()
	ctx := context.Background()
	store := memrepo.NewStore(clk)
	p, err := domain.NewProduct("p1", 1, domain.Details{Name: "Lamp", Brand: "Lumo"}, clk)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, p))

	pending, err := store.FetchPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.NoError(t, store.MarkCompleted(ctx, pending[0].EventID))
	return store
}

func TestCleanupOutbox(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewMockClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	store := seed(t, clk)
	cfg := Config{CompletedRetentionDays: 30, FailedRetentionDays: 90}

	t.Run("recent events are kept", func(t *testing.T) {
		require.NoError(t, cleanupOutbox(ctx, store, cfg, clk.Now().AddDate(0, 0, 10), zap.NewNop()))
		_, total, err := store.ListEvents(ctx, contracts.EventFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
	})

	t.Run("dry run deletes nothing", func(t *testing.T) {
		dry := cfg
		dry.DryRun = true
		require.NoError(t, cleanupOutbox(ctx, store, dry, clk.Now().AddDate(0, 0, 31), zap.NewNop()))
		_, total, _ := store.ListEvents(ctx, contracts.EventFilter{})
		assert.Equal(t, int64(1), total)
	})

	t.Run("expired completed events are deleted", func(t *testing.T) {
		require.NoError(t, cleanupOutbox(ctx, store, cfg, clk.Now().AddDate(0, 0, 31), zap.NewNop()))
		_, total, _ := store.ListEvents(ctx, contracts.EventFilter{})
		assert.Equal(t, int64(0), total)
	})
}
