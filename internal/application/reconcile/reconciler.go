package reconcile

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/storesync/backend/internal/domain/ingest"
	"github.com/storesync/backend/internal/domain/shared"
)

// Reconciler performs change-detecting upserts for one mirrored entity type.
// Existing rows are looked up in one batched query per page, never per record.
// An identical incoming record is a no-op: no write, no mutation reported, so
// re-delivering the same payload drives no downstream recomputation.
type Reconciler[T any] struct {
	// Spec is the tracked field set used to diff and copy records
	Spec ingest.CompareSpec[T]

	// Key extracts the reconciliation key of a record
	Key func(*T) string

	// Find performs the batched lookup by reconciliation key
	Find func(ctx context.Context, storeID uuid.UUID, keys []string) ([]T, error)

	// Insert creates a row, failing with shared.ErrAlreadyExists on a
	// concurrent duplicate
	Insert func(ctx context.Context, record *T) error

	// Save updates an existing row
	Save func(ctx context.Context, record *T) error

	// Bump marks domain bookkeeping (touch, version) on an updated row
	Bump func(*T)
}

// Result partitions a reconciled batch by what happened to each record
type Result[T any] struct {
	Created   []*T
	Updated   []*T
	Unchanged []*T
}

// MutatedCount returns how many records were actually written
func (r Result[T]) MutatedCount() int {
	return len(r.Created) + len(r.Updated)
}

// ReconcileBatch upserts one batch of incoming records. A lost insert race
// (another worker created the row between lookup and insert) falls through to
// the update path instead of failing the batch.
func (r *Reconciler[T]) ReconcileBatch(ctx context.Context, storeID uuid.UUID, incoming []*T) (Result[T], error) {
	var res Result[T]
	if len(incoming) == 0 {
		return res, nil
	}

	keys := make([]string, 0, len(incoming))
	for _, rec := range incoming {
		keys = append(keys, r.Key(rec))
	}
	existing, err := r.Find(ctx, storeID, keys)
	if err != nil {
		return res, fmt.Errorf("batch lookup: %w", err)
	}
	byKey := make(map[string]*T, len(existing))
	for i := range existing {
		byKey[r.Key(&existing[i])] = &existing[i]
	}

	for _, rec := range incoming {
		key := r.Key(rec)
		current, found := byKey[key]
		if !found {
			err := r.Insert(ctx, rec)
			if err == nil {
				res.Created = append(res.Created, rec)
				continue
			}
			if !errors.Is(err, shared.ErrAlreadyExists) {
				return res, fmt.Errorf("insert %s: %w", key, err)
			}
			// Lost the insert race; re-read and take the update path
			current, err = r.findOne(ctx, storeID, key)
			if err != nil {
				return res, err
			}
		}

		if len(r.Spec.Diff(current, rec)) == 0 {
			res.Unchanged = append(res.Unchanged, current)
			continue
		}
		r.Spec.Apply(current, rec)
		if r.Bump != nil {
			r.Bump(current)
		}
		if err := r.Save(ctx, current); err != nil {
			return res, fmt.Errorf("save %s: %w", key, err)
		}
		res.Updated = append(res.Updated, current)
	}

	return res, nil
}

// ReconcileOne upserts a single record
func (r *Reconciler[T]) ReconcileOne(ctx context.Context, storeID uuid.UUID, incoming *T) (Result[T], error) {
	return r.ReconcileBatch(ctx, storeID, []*T{incoming})
}

func (r *Reconciler[T]) findOne(ctx context.Context, storeID uuid.UUID, key string) (*T, error) {
	rows, err := r.Find(ctx, storeID, []string{key})
	if err != nil {
		return nil, fmt.Errorf("re-read %s after duplicate insert: %w", key, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("record %s vanished after duplicate insert: %w", key, shared.ErrNotFound)
	}
	return &rows[0], nil
}
