package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"

	"cloud.google.com/go/spanner"
	"github.com/stretchr/testify/require"
)

// tables emptied around every test.
var tables = []string{"outbox_events", "products", "sequences"}

// SpannerClient connects to the emulator database and empties it before and after
// the test. The test is skipped when no emulator is configured.
func SpannerClient(t *testing.T) *spanner.Client {
	t.Helper()

	if os.Getenv("SPANNER_EMULATOR_HOST") == "" {
		t.Skip("SPANNER_EMULATOR_HOST not set")
	}

	client, err := spanner.NewClient(context.Background(), SpannerDatabase())
	require.NoError(t, err, "failed to create Spanner client")

	CleanDatabase(t, client)
	t.Cleanup(func() {
		CleanDatabase(t, client)
		client.Close()
	})
	return client
}

// SpannerDatabase is SPANNER_TEST_DATABASE or the emulator default.
func SpannerDatabase() string {
	if db := os.Getenv("SPANNER_TEST_DATABASE"); db != "" {
		return db
	}
	return "projects/test-project/instances/test-instance/databases/offer-catalog-test"
}

func CleanDatabase(t *testing.T, client *spanner.Client) {
	t.Helper()

	muts := make([]*spanner.Mutation, 0, len(tables))
	for _, table := range tables {
		muts = append(muts, spanner.Delete(table, spanner.AllKeys()))
	}
	_, err := client.Apply(context.Background(), muts)
	require.NoError(t, err, "failed to clean database")
}

// AssertRowCount checks the number of rows in table.
func AssertRowCount(t *testing.T, client *spanner.Client, table string, want int) {
	t.Helper()

	iter := client.Single().Query(context.Background(), spanner.Statement{
		SQL: fmt.Sprintf("SELECT COUNT(*) FROM %s", table),
	})
	defer iter.Stop()

	row, err := iter.Next()
	require.NoError(t, err, "failed to count rows in %s", table)

	var got int64
	require.NoError(t, row.Columns(&got))
	require.Equal(t, int64(want), got, "unexpected row count in %s", table)
}
