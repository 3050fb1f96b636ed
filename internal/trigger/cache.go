// Package trigger implements the keyword rule cache, the message matcher,
// and the rule administration operations.
package trigger

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"trigger_bot/internal/model"
	"trigger_bot/internal/observability"
	"trigger_bot/internal/storage"
)

// DefaultReloadInterval is how often the cache re-reads the store when no
// explicit interval is configured.
const DefaultReloadInterval = 5 * time.Minute

// Cache holds an immutable snapshot of all enabled rules, rebuilt wholesale
// from storage. Readers get the snapshot through an atomic pointer, so a
// reload in progress never blocks or corrupts concurrent matching.
type Cache struct {
	store    storage.Storage
	metrics  *observability.Metrics
	log      *slog.Logger
	interval time.Duration

	snapshot  atomic.Pointer[[]model.Rule]
	responses atomic.Int64
}

// NewCache creates a Cache with an empty snapshot. Call Reload before
// serving messages. metrics may be nil.
func NewCache(store storage.Storage, metrics *observability.Metrics, log *slog.Logger, interval time.Duration) *Cache {
	if interval <= 0 {
		interval = DefaultReloadInterval
	}
	c := &Cache{
		store:    store,
		metrics:  metrics,
		log:      log,
		interval: interval,
	}
	empty := []model.Rule{}
	c.snapshot.Store(&empty)
	return c
}

// Reload fetches all enabled rules from storage, lowercases their keywords
// and exceptions, and atomically replaces the snapshot. On a store error the
// previous snapshot stays in place untouched.
//
// Concurrent reloads are safe; each builds a complete snapshot from current
// store state and the last swap wins.
func (c *Cache) Reload(ctx context.Context) error {
	rules, err := c.store.ListEnabledRules(ctx)
	if err != nil {
		c.metrics.ObserveReload(err, 0)
		return fmt.Errorf("list enabled rules: %w", err)
	}

	for i := range rules {
		rules[i].Keywords = lowercaseAll(rules[i].Keywords)
		rules[i].Exceptions = lowercaseAll(rules[i].Exceptions)
	}
	if rules == nil {
		rules = []model.Rule{}
	}

	c.snapshot.Store(&rules)
	c.metrics.ObserveReload(nil, len(rules))
	return nil
}

// Snapshot returns the current rule snapshot in first-match-wins order.
// Callers must treat the returned slice as read-only.
func (c *Cache) Snapshot() []model.Rule {
	return *c.snapshot.Load()
}

// Rules returns the number of rules in the current snapshot.
func (c *Cache) Rules() int {
	return len(c.Snapshot())
}

// Responses returns the number of auto-responses sent since process start.
func (c *Cache) Responses() int64 {
	return c.responses.Load()
}

// Run reloads the cache on a fixed interval until ctx is cancelled. A failed
// reload keeps the previous snapshot and is retried on the next tick.
func (c *Cache) Run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.Reload(ctx); err != nil {
				c.log.Error("periodic reload", "error", err)
			} else {
				c.log.Debug("periodic reload", "rules", c.Rules())
			}
		}
	}
}

func lowercaseAll(values []string) []string {
	for i, v := range values {
		values[i] = strings.ToLower(v)
	}
	return values
}
