// Package storagetest is a conformance suite for storage backends.
package storagetest

import (
	"iter"
	"testing"
	"time"

	"github.com/picatz/foundry/internal/storage"
	"github.com/shoenig/test/must"
)

// BackendSuite tests the basic operations and key ordering of a backend.
func BackendSuite(t *testing.T, backend storage.Backend[string, string]) {
	t.Helper()

	ctx := t.Context()

	_, found, err := backend.Get(ctx, "missing")
	must.NoError(t, err)
	must.False(t, found)

	// Inserted out of order; listing must come back sorted.
	for _, kv := range [][2]string{{"b", "2"}, {"a", "1"}, {"c", "3"}} {
		must.NoError(t, backend.Set(ctx, kv[0], kv[1]))
	}

	value, found, err := backend.Get(ctx, "a")
	must.NoError(t, err)
	must.True(t, found)
	must.Eq(t, "1", value)

	must.NoError(t, backend.Set(ctx, "a", "one"))

	value, _, err = backend.Get(ctx, "a")
	must.NoError(t, err)
	must.Eq(t, "one", value)

	entries, next, err := backend.List(ctx, storage.PageSize(2), nil)
	must.NoError(t, err)
	must.Eq(t, []string{"a", "b"}, keys(entries))
	must.NotNil(t, next)
	must.Eq(t, "c", *next)

	entries, next, err = backend.List(ctx, storage.PageSize(2), next)
	must.NoError(t, err)
	must.Eq(t, []string{"c"}, keys(entries))
	must.Nil(t, next)

	var all []string
	err = storage.All(ctx, backend, 1, func(k, v string) bool {
		all = append(all, k+"="+v)
		return true
	})
	must.NoError(t, err)
	must.Eq(t, []string{"a=one", "b=2", "c=3"}, all)

	must.NoError(t, backend.Delete(ctx, "b"))
	must.NoError(t, backend.Delete(ctx, "not-there"))

	_, found, err = backend.Get(ctx, "b")
	must.NoError(t, err)
	must.False(t, found)

	entries, next, err = backend.List(ctx, nil, nil)
	must.NoError(t, err)
	must.Eq(t, []string{"a", "c"}, keys(entries))
	must.Nil(t, next)

	must.NoError(t, backend.Flush(ctx))
}

// Record is a structured value for [BackendSuite_structs].
type Record struct {
	Name     string            `json:"name"`
	TakenAt  time.Time         `json:"taken_at"`
	Versions map[string]string `json:"versions"`
}

// BackendSuite_structs tests that structured values survive a round trip
// through the backend.
func BackendSuite_structs(t *testing.T, backend storage.Backend[string, Record]) {
	t.Helper()

	ctx := t.Context()

	want := Record{
		Name:     "gpt-4.1-mini",
		TakenAt:  time.Date(2025, 11, 15, 12, 0, 0, 0, time.UTC),
		Versions: map[string]string{"2025-04-14": "eastus"},
	}

	must.NoError(t, backend.Set(ctx, "sub/default", want))

	got, found, err := backend.Get(ctx, "sub/default")
	must.NoError(t, err)
	must.True(t, found)
	must.Eq(t, want.Name, got.Name)
	must.True(t, want.TakenAt.Equal(got.TakenAt))
	must.MapEq(t, want.Versions, got.Versions)
}

func keys[K, V any](entries iter.Seq2[K, V]) []K {
	var out []K
	for k := range entries {
		out = append(out, k)
	}
	return out
}
