package repository

import (
	"context"
	"fmt"
)

// collection is a JSON array of records stored under one key.
type collection[T any] struct {
	repo *Repository
	key  string
	id   func(T) string
}

func (c collection[T]) all(ctx context.Context) ([]T, error) {
	var items []T
	found, err := c.repo.read(ctx, c.key, &items)
	if err != nil {
		return nil, err
	}
	if !found || items == nil {
		return []T{}, nil
	}
	return items, nil
}

func (c collection[T]) get(ctx context.Context, id string) (T, error) {
	var zero T
	items, err := c.all(ctx)
	if err != nil {
		return zero, err
	}
	for _, item := range items {
		if c.id(item) == id {
			return item, nil
		}
	}
	return zero, fmt.Errorf("%s %q: %w", c.key, id, ErrNotFound)
}

// upsert replaces the record with a matching id in place, or appends it.
func (c collection[T]) upsert(ctx context.Context, item T) error {
	return c.repo.mutate(ctx, c.key, func() error { return c.upsertLocked(ctx, item) })
}

func (c collection[T]) upsertLocked(ctx context.Context, item T) error {
	items, err := c.all(ctx)
	if err != nil {
		return err
	}

	id := c.id(item)
	replaced := false
	for i := range items {
		if c.id(items[i]) == id {
			items[i] = item
			replaced = true
			break
		}
	}
	if !replaced {
		items = append(items, item)
	}

	if err := c.repo.write(ctx, c.key, items); err != nil {
		return err
	}

	c.repo.log.Debug().
		Str("key", c.key).
		Str("id", id).
		Bool("replaced", replaced).
		Int("count", len(items)).
		Msg("Record saved")
	return nil
}

// remove drops every record with the given id, keeping the order of the
// rest. Removing an unknown id rewrites the collection unchanged.
func (c collection[T]) remove(ctx context.Context, id string) error {
	return c.repo.mutate(ctx, c.key, func() error { return c.removeLocked(ctx, id) })
}

func (c collection[T]) removeLocked(ctx context.Context, id string) error {
	items, err := c.all(ctx)
	if err != nil {
		return err
	}

	kept := items[:0]
	for _, item := range items {
		if c.id(item) != id {
			kept = append(kept, item)
		}
	}

	if err := c.repo.write(ctx, c.key, kept); err != nil {
		return err
	}

	c.repo.log.Debug().
		Str("key", c.key).
		Str("id", id).
		Int("removed", len(items)-len(kept)).
		Msg("Record deleted")
	return nil
}
