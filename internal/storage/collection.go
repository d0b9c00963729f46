package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Collection is a typed view over one backend document holding a JSON array.
// All access goes through a per-collection mutex so that concurrent
// load-mutate-replace cycles in this process are serialized.
type Collection[T any] struct {
	name    string
	backend Backend
	mu      sync.Mutex
}

// NewCollection creates a Collection stored under name.
func NewCollection[T any](backend Backend, name string) *Collection[T] {
	return &Collection[T]{name: name, backend: backend}
}

// Name returns the collection name.
func (c *Collection[T]) Name() string {
	return c.name
}

// Load reads and parses the whole collection.
func (c *Collection[T]) Load(ctx context.Context) ([]T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.load(ctx)
}

// View runs fn on the current contents without persisting anything.
func (c *Collection[T]) View(ctx context.Context, fn func([]T) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	items, err := c.load(ctx)
	if err != nil {
		return err
	}
	return fn(items)
}

// Replace overwrites the whole collection with all.
func (c *Collection[T]) Replace(ctx context.Context, all []T) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.replace(ctx, all)
}

// Update runs fn on the current contents and persists the slice it returns.
// If fn returns an error nothing is written and the error is returned as is.
func (c *Collection[T]) Update(ctx context.Context, fn func([]T) ([]T, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	items, err := c.load(ctx)
	if err != nil {
		return err
	}

	updated, err := fn(items)
	if err != nil {
		return err
	}

	return c.replace(ctx, updated)
}

func (c *Collection[T]) load(ctx context.Context) ([]T, error) {
	data, err := c.backend.Read(ctx, c.name)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrStorageUnavailable, c.name, err)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: %s is not a JSON array", ErrStorageUnavailable, c.name)
	}

	var items []T
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", ErrStorageUnavailable, c.name, err)
	}
	if items == nil {
		items = []T{}
	}

	return items, nil
}

func (c *Collection[T]) replace(ctx context.Context, all []T) error {
	if all == nil {
		all = []T{}
	}

	data, err := json.MarshalIndent(all, "", "    ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", c.name, err)
	}

	if err := c.backend.Write(ctx, c.name, data); err != nil {
		return fmt.Errorf("%w: write %s: %w", ErrStorageUnavailable, c.name, err)
	}

	return nil
}
