package context

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/hrygo/eidos/plugin/ai/cache"
	"github.com/hrygo/eidos/plugin/ai/collector"
	"github.com/hrygo/eidos/plugin/ai/pattern"
)

// Collector produces the raw data a context is built from.
type Collector interface {
	Collect(ctx context.Context, userID int32, days int) (*collector.CollectedData, error)
}

// Config configures the context cache.
type Config struct {
	TTL      time.Duration // Context freshness (default: 1 hour)
	Capacity int           // Max cached users (default: 1000)
	Days     int           // Collection window (default: 30)
}

// DefaultConfig returns default configuration.
func DefaultConfig() Config {
	return Config{
		TTL:      time.Hour,
		Capacity: 1000,
		Days:     collector.DefaultDays,
	}
}

// Cache holds the latest UserContext per user. Concurrent builds for the same
// user are collapsed into one.
type Cache struct {
	collector Collector
	entries   *cache.LRUCache[int32, *UserContext]
	group     singleflight.Group
	ttl       time.Duration
	days      int
	now       func() time.Time

	// generations counts invalidations per user. A build only stores its
	// result if no invalidation happened while it was collecting.
	mu          sync.Mutex
	generations map[int32]uint64

	stats cacheStats
}

type cacheStats struct {
	hits   atomic.Int64
	builds atomic.Int64
}

// Stats is a point-in-time view of cache activity.
type Stats struct {
	Hits   int64 `json:"hits"`
	Builds int64 `json:"builds"`
	Size   int   `json:"size"`
}

// NewCache creates a context cache over collector.
func NewCache(collector Collector, cfg Config) *Cache {
	defaults := DefaultConfig()
	if cfg.TTL <= 0 {
		cfg.TTL = defaults.TTL
	}
	if cfg.Capacity <= 0 {
		cfg.Capacity = defaults.Capacity
	}
	if cfg.Days <= 0 {
		cfg.Days = defaults.Days
	}
	return &Cache{
		collector: collector,
		entries:   cache.NewLRUCache[int32, *UserContext](cfg.Capacity, cfg.TTL),
		ttl:       cfg.TTL,
		days:      cfg.Days,
		now:       time.Now,

		generations: make(map[int32]uint64),
	}
}

// GetOrBuild returns the cached context when it is younger than the TTL and
// forceRefresh is false. Otherwise it builds a new one. A forced refresh
// still joins a build already in flight for the same user.
func (c *Cache) GetOrBuild(ctx context.Context, userID int32, forceRefresh bool) (*UserContext, error) {
	if !forceRefresh {
		if uc, ok := c.entries.Get(userID); ok && c.now().Sub(uc.LastUpdated) < c.ttl {
			c.stats.hits.Add(1)
			return uc, nil
		}
	}

	// The build is shared, so it must not die with the first caller's request.
	buildCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(groupKey(userID), func() (any, error) {
		return c.build(buildCtx, userID)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*UserContext), nil
	}
}

func (c *Cache) build(ctx context.Context, userID int32) (*UserContext, error) {
	start := time.Now()
	generation := c.generation(userID)
	data, err := c.collector.Collect(ctx, userID, c.days)
	if err != nil {
		return nil, err
	}
	uc := newUserContext(data, pattern.Analyze(data), c.now())
	c.stats.builds.Add(1)

	c.mu.Lock()
	stale := c.generations[userID] != generation
	if !stale {
		c.entries.Set(userID, uc, c.ttl)
	}
	c.mu.Unlock()

	slog.Debug("built user context",
		slog.Int("user_id", int(userID)),
		slog.Int("insights", len(uc.Insights)),
		slog.Bool("stale", stale),
		slog.Duration("elapsed", time.Since(start)),
	)
	return uc, nil
}

func (c *Cache) generation(userID int32) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generations[userID]
}

func groupKey(userID int32) string {
	return strconv.Itoa(int(userID))
}

// Invalidate drops the user's cached context. A build already collecting for
// the user is detached: its result is not stored, and later callers start a
// new build.
func (c *Cache) Invalidate(userID int32) {
	c.mu.Lock()
	c.generations[userID]++
	c.entries.Delete(userID)
	c.mu.Unlock()
	c.group.Forget(groupKey(userID))
}

// Sweep removes expired contexts and returns how many were dropped.
func (c *Cache) Sweep() int {
	return c.entries.CleanupExpired()
}

// Stats returns cache counters.
func (c *Cache) Stats() Stats {
	return Stats{
		Hits:   c.stats.hits.Load(),
		Builds: c.stats.builds.Load(),
		Size:   c.entries.Size(),
	}
}
