package pebble

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/cockroachdb/pebble"
	"github.com/picatz/foundry/internal/storage"
)

var _ storage.Backend[string, any] = (*Backend[string, any])(nil)

// DefaultListPageSize is the page size used when List is given none.
const DefaultListPageSize = 25

// Backend is a storage backend on top of a Pebble database.
//
// Pebble can use an in-memory filesystem (see [vfs.NewMem]) or a directory
// on disk, depending on the options provided.
//
// [vfs.NewMem]: https://pkg.go.dev/github.com/cockroachdb/pebble/vfs#NewMem
type Backend[K comparable, V any] struct {
	db    *pebble.DB
	codec storage.Codec[K, V]
}

// NewBackend opens (or creates) a Pebble database in dirname.
func NewBackend[K comparable, V any](dirname string, opts *pebble.Options, codec storage.Codec[K, V]) (*Backend[K, V], error) {
	db, err := pebble.Open(dirname, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open pebble database: %w", err)
	}
	return &Backend[K, V]{db: db, codec: codec}, nil
}

// Get retrieves a value by its key.
func (b *Backend[K, V]) Get(ctx context.Context, key K) (V, bool, error) {
	var zero V

	keyBytes, err := b.codec.EncodeKey(key)
	if err != nil {
		return zero, false, fmt.Errorf("failed to encode key: %w", err)
	}

	valueBytes, closer, err := b.db.Get(keyBytes)
	if errors.Is(err, pebble.ErrNotFound) {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, fmt.Errorf("failed to get value: %w", err)
	}
	defer closer.Close()

	// valueBytes is only valid until closer is closed; the codec copies
	// what it needs while decoding.
	value, err := b.codec.DecodeValue(valueBytes)
	if err != nil {
		return zero, false, fmt.Errorf("failed to decode value: %w", err)
	}

	return value, true, nil
}

// Set stores a value, syncing it to disk.
func (b *Backend[K, V]) Set(ctx context.Context, key K, value V) error {
	keyBytes, err := b.codec.EncodeKey(key)
	if err != nil {
		return fmt.Errorf("failed to encode key: %w", err)
	}

	valueBytes, err := b.codec.EncodeValue(value)
	if err != nil {
		return fmt.Errorf("failed to encode value: %w", err)
	}

	if err := b.db.Set(keyBytes, valueBytes, pebble.Sync); err != nil {
		return fmt.Errorf("failed to set value: %w", err)
	}
	return nil
}

// Delete removes a key.
func (b *Backend[K, V]) Delete(ctx context.Context, key K) error {
	keyBytes, err := b.codec.EncodeKey(key)
	if err != nil {
		return fmt.Errorf("failed to encode key: %w", err)
	}

	if err := b.db.Delete(keyBytes, pebble.Sync); err != nil {
		return fmt.Errorf("failed to delete key: %w", err)
	}
	return nil
}

// List returns a page of entries in key order, starting at pageToken.
func (b *Backend[K, V]) List(ctx context.Context, pageSize *int, pageToken *K) (iter.Seq2[K, V], *K, error) {
	iterOpts := &pebble.IterOptions{}

	if pageToken != nil {
		lowerBound, err := b.codec.EncodeKey(*pageToken)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to encode page token: %w", err)
		}
		iterOpts.LowerBound = lowerBound
	}

	limit := DefaultListPageSize
	if pageSize != nil && *pageSize > 0 {
		limit = *pageSize
	}

	it, err := b.db.NewIter(iterOpts)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create iterator: %w", err)
	}
	defer it.Close()

	var (
		entries []storage.Entry[K, V]
		next    *K
	)

	for valid := it.First(); valid; valid = it.Next() {
		if err := ctx.Err(); err != nil {
			return nil, nil, fmt.Errorf("stopped listing: %w", err)
		}

		k, err := b.codec.DecodeKey(it.Key())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to decode key: %w", err)
		}

		if len(entries) == limit {
			next = &k
			break
		}

		v, err := b.codec.DecodeValue(it.Value())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to decode value for key %v: %w", k, err)
		}

		entries = append(entries, storage.Entry[K, V]{Key: k, Value: v})
	}
	if err := it.Error(); err != nil {
		return nil, nil, fmt.Errorf("failed to list entries: %w", err)
	}

	return storage.Seq(entries), next, nil
}

// Flush flushes the memtable to disk.
func (b *Backend[K, V]) Flush(ctx context.Context) error {
	if err := b.db.Flush(); err != nil {
		return fmt.Errorf("failed to flush pebble database: %w", err)
	}
	return nil
}

// Close closes the database.
func (b *Backend[K, V]) Close(ctx context.Context) error {
	if err := b.db.Close(); err != nil {
		return fmt.Errorf("failed to close pebble database: %w", err)
	}
	return nil
}
