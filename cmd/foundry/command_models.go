package main

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/cockroachdb/pebble"
	"github.com/picatz/foundry/internal/catalog"
	"github.com/picatz/foundry/internal/storage"
	pebbleStorage "github.com/picatz/foundry/internal/storage/pebble"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var modelsFlags struct {
	subscription string
	locations    bool
	nonOpenAI    bool
	refresh      bool
	cacheTTL     time.Duration
}

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List models that work with the Responses API",
	Long: `List the models a subscription can use with the Responses API.

Every location's model catalog is scanned through Azure Resource Manager.
Scans are cached per subscription; use --refresh to scan again.

The control plane only tags OpenAI models with Responses API support. Use
--non-openai to list the non-OpenAI models (DeepSeek, Meta, xAI, and others)
that support chat completion, which also work with the Responses API.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		sub, err := catalog.ResolveSubscription(ctx, modelsFlags.subscription, cfg.SubscriptionID)
		if err != nil {
			return err
		}

		label := "OpenAI models with Responses API support"
		if modelsFlags.nonOpenAI {
			label = "non-OpenAI chat-capable models (work with Responses API)"
		}

		fmt.Fprintf(out, "%s %s\n\n", styleBold.Render("Subscription:"), sub)

		cache, closeCache := openCatalogCache(cfg.CacheDir, cmp.Or(modelsFlags.cacheTTL, cfg.CacheTTL))
		defer closeCache()

		entries, err := loadCatalog(ctx, cmd.ErrOrStderr(), out, cache, sub, label)
		if err != nil {
			return err
		}

		models := catalog.Select(entries, catalog.Locations, modelsFlags.nonOpenAI)
		printModels(out, models, len(catalog.Locations), label, modelsFlags.locations)

		return nil
	},
}

var modelsCacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage cached catalog scans",
}

var modelsCacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached catalog scans",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cache, closeCache, err := newCatalogCache(cfg.CacheDir, 0)
		if err != nil {
			return err
		}
		defer closeCache()

		snaps, err := cache.Snapshots(cmd.Context())
		if err != nil {
			return err
		}

		printSnapshots(cmd.OutOrStdout(), snaps, time.Now())
		return nil
	},
}

var modelsCacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached catalog scans",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cache, closeCache, err := newCatalogCache(cfg.CacheDir, 0)
		if err != nil {
			return err
		}
		defer closeCache()

		n, err := cache.Clear(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Removed %s cached scan(s)\n", styleNumber.Render(fmt.Sprint(n)))
		return nil
	},
}

func init() {
	flags := modelsCmd.Flags()
	flags.StringVarP(&modelsFlags.subscription, "subscription", "s", "", "Azure subscription ID (default $AZURE_SUBSCRIPTION_ID or the active az subscription)")
	flags.BoolVarP(&modelsFlags.locations, "locations", "l", false, "show per-region breakdown for models not available in all regions")
	flags.BoolVar(&modelsFlags.nonOpenAI, "non-openai", false, "list non-OpenAI models that support chat completion and work with the Responses API")
	flags.BoolVar(&modelsFlags.refresh, "refresh", false, "ignore any cached scan")
	flags.DurationVar(&modelsFlags.cacheTTL, "cache-ttl", 0, "how long a cached scan stays fresh (default $FOUNDRY_CACHE_TTL or 24h)")

	modelsCacheCmd.AddCommand(modelsCacheListCmd, modelsCacheClearCmd)
	modelsCmd.AddCommand(modelsCacheCmd)
	rootCmd.AddCommand(modelsCmd)
}

// loadCatalog returns the cached scan for sub, or scans every location and
// caches the result.
func loadCatalog(ctx context.Context, stderr, out io.Writer, cache *catalog.Cache, sub, label string) ([]catalog.Entry, error) {
	if cache != nil && !modelsFlags.refresh {
		snap, found, err := cache.Get(ctx, sub)
		if err != nil {
			logger.Warnw("ignoring catalog cache", "error", err)
		}
		if found {
			age := snap.Age(time.Now()).Round(time.Second)
			logger.Debugw("using cached catalog", "snapshot", snap.ID, "age", age)
			fmt.Fprintf(out, "%s\n\n", styleFaint.Render(fmt.Sprintf("Using catalog scanned %s ago (--refresh to scan again)", age)))
			return snap.Entries, nil
		}
	}

	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create credential: %w", err)
	}

	lister, err := catalog.NewARMLister(sub, cred)
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(out, "Scanning %d locations for %s...\n\n", len(catalog.Locations), label)

	entries, err := catalog.Scan(ctx, lister, catalog.Locations, catalog.ScanOptions{
		Logger:   logger,
		Progress: scanProgress(stderr, len(catalog.Locations)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan model catalog: %w", err)
	}

	if cache != nil {
		snap, err := cache.Put(ctx, sub, catalog.Locations, entries)
		if err != nil {
			logger.Warnw("failed to cache catalog", "error", err)
		} else {
			logger.Debugw("cached catalog", "snapshot", snap.ID, "entries", len(entries))
		}
	}

	return entries, nil
}

// scanProgress draws a progress bar on w while locations complete, if w is
// a terminal.
func scanProgress(w io.Writer, total int) func(string, int, error) {
	if _, tty := terminalWidth(w); !tty {
		return nil
	}

	var (
		mu   sync.Mutex
		done int
	)
	return func(location string, _ int, _ error) {
		mu.Lock()
		defer mu.Unlock()

		done++
		var (
			percent       = float64(done) / float64(total)
			barWidth      = 20
			completedBars = int(percent * float64(barWidth))
			remainingBars = barWidth - completedBars
			progressBar   = strings.Repeat("█", completedBars) + strings.Repeat("_", remainingBars)
		)
		fmt.Fprint(w, styleFaint.Render("\033[0G\033[K"+fmt.Sprintf("Scanning %s (%d/%d) %s", progressBar, done, total, location)))
		if done == total {
			fmt.Fprint(w, "\033[0G\033[K")
		}
	}
}

// openCatalogCache opens the on-disk catalog cache. The cache is optional:
// if it cannot be opened, a warning is logged and a nil cache is returned.
func openCatalogCache(dir string, ttl time.Duration) (*catalog.Cache, func()) {
	cache, closeCache, err := newCatalogCache(dir, ttl)
	if err != nil {
		logger.Warnw("catalog cache unavailable", "dir", dir, "error", err)
		return nil, func() {}
	}
	return cache, closeCache
}

func newCatalogCache(dir string, ttl time.Duration) (*catalog.Cache, func(), error) {
	path := filepath.Join(dir, "catalog")
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	backend, err := pebbleStorage.NewBackend[string, catalog.Snapshot](path, &pebble.Options{
		LoggerAndTracer: &pebbleLogger{logger: logger.Named("pebble")},
	}, storage.StringKeyCodec[catalog.Snapshot]{})
	if err != nil {
		return nil, nil, err
	}

	closeCache := func() {
		if err := backend.Close(context.Background()); err != nil {
			logger.Warnw("failed to close catalog cache", "error", err)
		}
	}

	return catalog.NewCache(backend, ttl), closeCache, nil
}

// pebbleLogger sends pebble's informational messages to the debug log.
type pebbleLogger struct {
	logger *zap.SugaredLogger
}

func (l *pebbleLogger) Infof(format string, args ...interface{}) {
	l.logger.Debugf(format, args...)
}

func (l *pebbleLogger) Fatalf(format string, args ...interface{}) {
	l.logger.Fatalf(format, args...)
}

func (l *pebbleLogger) Eventf(ctx context.Context, format string, args ...interface{}) {}

func (l *pebbleLogger) IsTracingEnabled(ctx context.Context) bool {
	return false
}
