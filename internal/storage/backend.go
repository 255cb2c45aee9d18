// Package storage is a small key/value abstraction used to cache model
// catalog scans between runs. It has an in-memory backend for tests and
// temporary use, and a pebble backend for the on-disk cache.
package storage

import (
	"context"
	"iter"
)

// Entry is a single key/value pair.
type Entry[K, V any] struct {
	Key   K
	Value V
}

// Backend stores values by key. Listing is in ascending key order.
//
// Implementations must be safe for concurrent use.
type Backend[K, V any] interface {
	// Get returns the value for key; found is false if there is none.
	Get(ctx context.Context, key K) (value V, found bool, err error)

	// Set stores value under key, replacing any existing value.
	Set(ctx context.Context, key K, value V) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key K) error

	// List returns up to pageSize entries starting at pageToken (inclusive),
	// or from the first key if pageToken is nil. nextPageToken is nil when
	// there are no more entries.
	List(ctx context.Context, pageSize *int, pageToken *K) (entries iter.Seq2[K, V], nextPageToken *K, err error)

	// Flush persists any buffered writes.
	Flush(ctx context.Context) error

	// Close releases the backend's resources.
	Close(ctx context.Context) error
}

func ptr[T any](v T) *T {
	return &v
}

// PageSize returns a page size for [Backend.List].
func PageSize(pageSize int) *int {
	return ptr(pageSize)
}

// PageToken returns a page token for [Backend.List].
func PageToken[T any](pageToken T) *T {
	return ptr(pageToken)
}

// Seq returns an iterator over entries, for backend implementations.
func Seq[K, V any](entries []Entry[K, V]) iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for _, e := range entries {
			if !yield(e.Key, e.Value) {
				return
			}
		}
	}
}

// All walks every entry of b, page by page, calling fn for each one until it
// returns false or an error occurs.
func All[K, V any](ctx context.Context, b Backend[K, V], pageSize int, fn func(K, V) bool) error {
	var token *K
	for {
		entries, next, err := b.List(ctx, PageSize(pageSize), token)
		if err != nil {
			return err
		}
		for k, v := range entries {
			if !fn(k, v) {
				return nil
			}
		}
		if next == nil {
			return nil
		}
		token = next
	}
}
