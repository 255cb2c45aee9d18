package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/picatz/foundry/internal/storage"
	"github.com/segmentio/ksuid"
)

// Snapshot is a stored scan of one subscription.
//
// Snapshots hold every entry, unfiltered, so one scan serves both the
// default and the non-OpenAI listing.
type Snapshot struct {
	ID           string    `json:"id"`
	Subscription string    `json:"subscription"`
	TakenAt      time.Time `json:"taken_at"`
	Locations    []string  `json:"locations"`
	Entries      []Entry   `json:"entries"`
}

// Age is how long ago the snapshot was taken, relative to now.
func (s *Snapshot) Age(now time.Time) time.Duration {
	return now.Sub(s.TakenAt)
}

// Cache keeps the latest snapshot per subscription.
type Cache struct {
	backend storage.Backend[string, Snapshot]
	ttl     time.Duration
	now     func() time.Time
}

// NewCache returns a Cache over backend. Snapshots older than ttl are
// treated as missing; a ttl of zero or less never expires them.
func NewCache(backend storage.Backend[string, Snapshot], ttl time.Duration) *Cache {
	return &Cache{backend: backend, ttl: ttl, now: time.Now}
}

// Get returns the snapshot for subscription if there is one that has not
// expired.
func (c *Cache) Get(ctx context.Context, subscription string) (*Snapshot, bool, error) {
	snap, found, err := c.backend.Get(ctx, subscription)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cached catalog for %s: %w", subscription, err)
	}
	if !found {
		return nil, false, nil
	}
	if c.ttl > 0 && snap.Age(c.now()) > c.ttl {
		return nil, false, nil
	}
	return &snap, true, nil
}

// Put stores a new snapshot of entries for subscription.
func (c *Cache) Put(ctx context.Context, subscription string, locations []string, entries []Entry) (*Snapshot, error) {
	snap := Snapshot{
		ID:           ksuid.New().String(),
		Subscription: subscription,
		TakenAt:      c.now().UTC(),
		Locations:    locations,
		Entries:      entries,
	}
	if err := c.backend.Set(ctx, subscription, snap); err != nil {
		return nil, fmt.Errorf("failed to cache catalog for %s: %w", subscription, err)
	}
	return &snap, nil
}

// Snapshots returns every stored snapshot, expired or not, by subscription.
func (c *Cache) Snapshots(ctx context.Context) ([]Snapshot, error) {
	var snaps []Snapshot
	err := storage.All(ctx, c.backend, 50, func(_ string, s Snapshot) bool {
		snaps = append(snaps, s)
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list cached catalogs: %w", err)
	}
	return snaps, nil
}

// Clear removes every stored snapshot and returns how many there were.
func (c *Cache) Clear(ctx context.Context) (int, error) {
	snaps, err := c.Snapshots(ctx)
	if err != nil {
		return 0, err
	}
	for _, s := range snaps {
		if err := c.backend.Delete(ctx, s.Subscription); err != nil {
			return 0, fmt.Errorf("failed to delete cached catalog for %s: %w", s.Subscription, err)
		}
	}
	return len(snaps), nil
}
