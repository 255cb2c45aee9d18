package memory

import (
	"cmp"
	"context"
	"iter"
	"slices"
	"sync"

	"github.com/picatz/foundry/internal/storage"
)

var _ storage.Backend[string, string] = (*Backend[string, string])(nil)

// Backend is an in-memory storage backend that keeps entries sorted by key.
type Backend[K cmp.Ordered, V any] struct {
	mu      sync.RWMutex
	entries []storage.Entry[K, V]
}

// NewBackend creates an empty in-memory storage backend.
func NewBackend[K cmp.Ordered, V any]() *Backend[K, V] {
	return &Backend[K, V]{}
}

func (b *Backend[K, V]) search(key K) (int, bool) {
	return slices.BinarySearchFunc(b.entries, key, func(e storage.Entry[K, V], k K) int {
		return cmp.Compare(e.Key, k)
	})
}

// Get retrieves a value by its key.
func (b *Backend[K, V]) Get(ctx context.Context, key K) (V, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if i, ok := b.search(key); ok {
		return b.entries[i].Value, true, nil
	}
	var zero V
	return zero, false, nil
}

// Set stores a value, keeping entries in key order.
func (b *Backend[K, V]) Set(ctx context.Context, key K, value V) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	i, ok := b.search(key)
	if ok {
		b.entries[i].Value = value
		return nil
	}
	b.entries = slices.Insert(b.entries, i, storage.Entry[K, V]{Key: key, Value: value})
	return nil
}

// Delete removes a key, if present.
func (b *Backend[K, V]) Delete(ctx context.Context, key K) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if i, ok := b.search(key); ok {
		b.entries = slices.Delete(b.entries, i, i+1)
	}
	return nil
}

// List returns a page of entries starting at pageToken.
func (b *Backend[K, V]) List(ctx context.Context, pageSize *int, pageToken *K) (iter.Seq2[K, V], *K, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	start := 0
	if pageToken != nil {
		start, _ = b.search(*pageToken)
	}

	end := len(b.entries)
	var next *K
	if pageSize != nil && *pageSize > 0 && start+*pageSize < end {
		end = start + *pageSize
		next = storage.PageToken(b.entries[end].Key)
	}

	// Copy so the caller can iterate without holding the lock.
	page := slices.Clone(b.entries[start:end])

	return storage.Seq(page), next, nil
}

// Flush is a no-op.
func (b *Backend[K, V]) Flush(context.Context) error {
	return nil
}

// Close is a no-op.
func (b *Backend[K, V]) Close(context.Context) error {
	return nil
}
