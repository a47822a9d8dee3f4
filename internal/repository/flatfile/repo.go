package flatfile

import (
	"context"

	"github.com/and161185/marketstore/internal/repository"
)

// repo is the per-kind view over a Store. Reads go through Store.Load so
// references are always resolved against the other collections.
type repo[T any] struct {
	store *Store
	table *Table[T]
	pick  func(*repository.Graph) []T
	id    func(T) string
}

// All implements repository.EntityRepository.
func (r *repo[T]) All(ctx context.Context) ([]T, error) {
	g, err := r.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return r.pick(g), nil
}

// FindByID implements repository.EntityRepository with a linear scan.
func (r *repo[T]) FindByID(ctx context.Context, id string) (T, bool, error) {
	var zero T
	items, err := r.All(ctx)
	if err != nil {
		return zero, false, err
	}
	for _, it := range items {
		if r.id(it) == id {
			return it, true, nil
		}
	}
	return zero, false, nil
}

// WriteAll implements repository.EntityRepository.
func (r *repo[T]) WriteAll(ctx context.Context, items []T) error {
	return r.table.WriteAll(ctx, items)
}

// Append implements repository.EntityRepository.
func (r *repo[T]) Append(ctx context.Context, item T) error {
	return r.table.Append(ctx, item)
}
