// Package committer implements the Golden Mutation Pattern for Spanner transactions.
//
// Repositories never apply writes themselves. They return *spanner.Mutation values
// which the caller collects into a CommitPlan, together with the outbox rows for
// the aggregate's domain events, and applies in a single commit:
//
//	plan := committer.NewPlan()
//	plan.Add(productMut)
//	for _, m := range outboxMuts {
//	    plan.Add(m)
//	}
//	err := c.ApplyWithVersionCheck(ctx, committer.VersionCheck{
//	    Table:    "products",
//	    Key:      spanner.Key{id},
//	    Column:   "version",
//	    Expected: loadedVersion,
//	}, plan)
//
// Either every mutation lands or none does.
package committer

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/spanner"
	"google.golang.org/grpc/codes"
)

// ErrOptimisticLockConflict is returned when the stored version differs from the expected one.
var ErrOptimisticLockConflict = errors.New("optimistic lock conflict")

// CommitPlan collects the mutations of one aggregate save.
type CommitPlan struct {
	mutations []*spanner.Mutation
}

func NewPlan() *CommitPlan {
	return &CommitPlan{}
}

// Add appends mut; nil is ignored so "nothing to write" mutations can be passed straight through.
func (cp *CommitPlan) Add(mut *spanner.Mutation) {
	if mut != nil {
		cp.mutations = append(cp.mutations, mut)
	}
}

func (cp *CommitPlan) Len() int { return len(cp.mutations) }

// VersionCheck names the row and column guarding an aggregate.
// Expected == 0 means the row must not exist yet.
type VersionCheck struct {
	Table    string
	Key      spanner.Key
	Column   string
	Expected int64
}

// Committer applies plans for the repositories.
type Committer struct {
	client *spanner.Client
}

func NewCommitter(client *spanner.Client) *Committer {
	return &Committer{client: client}
}

// ApplyWithVersionCheck reads the guard column inside a read-write transaction and
// buffers the plan only when it still holds the expected value. A mismatch, or a
// concurrent insert of the same row, yields ErrOptimisticLockConflict.
func (c *Committer) ApplyWithVersionCheck(ctx context.Context, check VersionCheck, plan *CommitPlan) error {
	if plan.Len() == 0 {
		return nil
	}

	_, err := c.client.ReadWriteTransaction(ctx, func(ctx context.Context, txn *spanner.ReadWriteTransaction) error {
		current, err := readVersion(ctx, txn, check)
		if err != nil {
			return err
		}
		if current != check.Expected {
			return fmt.Errorf("%w: %s expected version %d, found %d",
				ErrOptimisticLockConflict, check.Table, check.Expected, current)
		}
		return txn.BufferWrite(plan.mutations)
	})
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrOptimisticLockConflict) {
		return err
	}
	if spanner.ErrCode(err) == codes.AlreadyExists {
		return fmt.Errorf("%w: %s row inserted concurrently", ErrOptimisticLockConflict, check.Table)
	}
	return fmt.Errorf("failed to apply commit plan with version check: %w", err)
}

// readVersion returns 0 for a missing row.
func readVersion(ctx context.Context, txn *spanner.ReadWriteTransaction, check VersionCheck) (int64, error) {
	row, err := txn.ReadRow(ctx, check.Table, check.Key, []string{check.Column})
	if spanner.ErrCode(err) == codes.NotFound {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read %s.%s: %w", check.Table, check.Column, err)
	}

	var version int64
	if err := row.Column(0, &version); err != nil {
		return 0, fmt.Errorf("failed to parse version: %w", err)
	}
	return version, nil
}
