//go:build integration

package integration

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/offercat-service/internal/app/product/domain"
	"github.com/light-bringer/offercat-service/internal/app/product/repo/pgrepo"
	"github.com/light-bringer/offercat-service/tests/testutil"
)

func setupPostgres(t *testing.T) *pgrepo.Store {
	t.Helper()
	dsn := os.Getenv("OFFERCAT_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("OFFERCAT_TEST_POSTGRES_DSN not set")
	}

	ctx := context.Background()
	db, err := pgrepo.Open(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	schema, err := os.ReadFile("../../migrations/postgres/001_initial_schema.sql")
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, string(schema))
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, "TRUNCATE products, sequences, outbox_events")
	require.NoError(t, err)

	return pgrepo.NewStore(db, testutil.NewMockClock())
}

func TestPostgresStore_SaveConflictAndSearch(t *testing.T) {
	store := setupPostgres(t)
	ctx := context.Background()
	clk := testutil.NewMockClock()

	id, err := store.NextValue(ctx, domain.SequenceName)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, testutil.NewTestProduct(t, clk, id, "Trail Runner", "Stride",
		testutil.Offer{MerchantID: "m1", Color: "Blue", Price: "89.90", Stock: 4},
	)))

	first, err := store.GetByProductID(ctx, id)
	require.NoError(t, err)
	second, err := store.GetByProductID(ctx, id)
	require.NoError(t, err)
	variantID := first.Variants()[0].ID()

	require.NoError(t, first.ReduceStock(variantID, "m1", 1))
	require.NoError(t, store.Save(ctx, first))
	require.NoError(t, second.ReduceStock(variantID, "m1", 1))
	assert.ErrorIs(t, store.Save(ctx, second), domain.ErrConcurrentModification)

	dup := testutil.NewTestProduct(t, clk, id+1, "trail-runner", "STRIDE")
	assert.ErrorIs(t, store.Save(ctx, dup), domain.ErrConcurrentModification)

	hits, err := store.Search(ctx, "trail runer", 20)
	require.NoError(t, err)
	require.Len(t, hits, 1)

	hits, err = store.Suggest(ctx, "run", 5)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}
