package repo

import (
	"context"
	"fmt"

	"cloud.google.com/go/spanner"
	"google.golang.org/grpc/codes"

	"github.com/light-bringer/offercat-service/internal/app/product/contracts"
	"github.com/light-bringer/offercat-service/internal/models/m_sequence"
)

// SequenceRepo allocates sequence values from the sequences table.
type SequenceRepo struct {
	client *spanner.Client
	model  *m_sequence.Model
}

var _ contracts.SequenceAllocator = (*SequenceRepo)(nil)

// NewSequenceRepo creates a new SequenceRepo.
func NewSequenceRepo(client *spanner.Client) *SequenceRepo {
	return &SequenceRepo{client: client, model: m_sequence.NewModel()}
}

// NextValue increments the named sequence and returns the new value. The first
// value of a fresh sequence is 1.
func (r *SequenceRepo) NextValue(ctx context.Context, name string) (int64, error) {
	var next int64
	_, err := r.client.ReadWriteTransaction(ctx, func(ctx context.Context, txn *spanner.ReadWriteTransaction) error {
		row, err := txn.ReadRow(ctx, m_sequence.TableName, spanner.Key{name}, []string{m_sequence.Value})
		var current int64
		switch {
		case spanner.ErrCode(err) == codes.NotFound:
		case err != nil:
			return err
		default:
			if err := row.Column(0, &current); err != nil {
				return err
			}
		}
		next = current + 1
		return txn.BufferWrite([]*spanner.Mutation{r.model.UpsertMut(name, next)})
	})
	if err != nil {
		return 0, fmt.Errorf("failed to allocate %s value: %w", name, err)
	}
	return next, nil
}
