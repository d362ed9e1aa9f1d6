package testutil

import (
	"context"
	"fmt"
	"testing"

	"cloud.google.com/go/spanner"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/offercat-service/internal/app/product/domain"
	"github.com/light-bringer/offercat-service/internal/pkg/clock"
)

// Offer describes one merchant offer for NewTestProduct.
type Offer struct {
	MerchantID string
	Color      string
	Price      string
	Stock      int64
}

// NewTestProduct builds an unsaved product carrying the given offers.
// Offers with the same Color share a variant.
func NewTestProduct(t *testing.T, clk clock.Clock, productID int64, name, brand string, offers ...Offer) *domain.Product {
	t.Helper()

	p, err := domain.NewProduct(uuid.NewString(), productID, domain.Details{
		Name:        name,
		Brand:       brand,
		Description: fmt.Sprintf("%s by %s", name, brand),
		Categories:  []string{"Electronics"},
	}, clk)
	require.NoError(t, err)

	for _, o := range offers {
		price, err := domain.ParseMoney(o.Price)
		require.NoError(t, err)
		_, err = p.SubmitOffer(domain.OfferSubmission{
			MerchantID:   o.MerchantID,
			MerchantName: domain.MerchantDisplayName(o.MerchantID),
			Attributes:   domain.Attributes{"Color": o.Color},
			ImageURLs:    []string{"https://img.example/" + o.Color + ".png"},
			Price:        price,
			Stock:        o.Stock,
		}, uuid.NewString)
		require.NoError(t, err)
	}
	return p
}

// AssertOutboxEvent verifies an outbox event exists with the given event type.
func AssertOutboxEvent(t *testing.T, client *spanner.Client, eventType string) {
	t.Helper()

	stmt := spanner.Statement{
		SQL:    "SELECT event_id FROM outbox_events WHERE event_type = @eventType",
		Params: map[string]interface{}{"eventType": eventType},
	}

	iter := client.Single().Query(context.Background(), stmt)
	defer iter.Stop()

	row, err := iter.Next()
	require.NoError(t, err, "outbox event not found for type: %s", eventType)
	require.NotNil(t, row, "outbox event not found for type: %s", eventType)
}
