//go:build integration

package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/offercat-service/internal/app/product/contracts"
	"github.com/light-bringer/offercat-service/internal/app/product/repo"
	"github.com/light-bringer/offercat-service/tests/testutil"
)

func TestOutboxRepository_Lifecycle(t *testing.T) {
	client := testutil.SpannerClient(t)

	ctx := context.Background()
	clk := testutil.NewMockClock()
	products := repo.NewProductRepo(client, clk)
	outbox := repo.NewOutboxRepo(client, clk)
	events := repo.NewEventsReadModel(client)

	require.NoError(t, products.Save(ctx, testutil.NewTestProduct(t, clk, 1, "Desk Lamp", "Lumo",
		testutil.Offer{MerchantID: "m1", Color: "White", Price: "39.90", Stock: 4},
	)))

	pending, err := outbox.FetchPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 3)
	assert.Equal(t, "product.created", pending[0].EventType)

	require.NoError(t, outbox.MarkCompleted(ctx, pending[0].EventID))
	require.NoError(t, outbox.MarkFailed(ctx, pending[1].EventID, "broker down", 1))
	require.NoError(t, outbox.MarkFailed(ctx, pending[2].EventID, "broker down", 3))

	left, err := outbox.FetchPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, int64(1), left[0].RetryCount)

	failed := contracts.OutboxStatusFailed
	listed, total, err := events.ListEvents(ctx, contracts.EventFilter{Status: &failed, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, listed, 1)
	assert.Equal(t, "broker down", listed[0].ErrorMessage)

	cutoff := clk.Now().Add(time.Hour)
	n, err := outbox.CountProcessedBefore(ctx, contracts.OutboxStatusCompleted, cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = outbox.DeleteProcessedBefore(ctx, contracts.OutboxStatusCompleted, cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	testutil.AssertRowCount(t, client, "outbox_events", 2)
}
