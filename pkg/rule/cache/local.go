package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/singleflight"

	"rulecraft/engine/pkg/lang/ast"
)

// LocalConfig configures LocalCache. Zero values fall back to spec.md
// §4.J's defaults.
type LocalConfig struct {
	// MaxSize is the maximum number of entries before LRU eviction.
	// Default: 1000.
	MaxSize int
	// TTLWrite is how long an entry remains valid after being written,
	// regardless of access. Default: 2h.
	TTLWrite time.Duration
	// TTLAccess is how long an entry remains valid after its last access.
	// Default: 30m.
	TTLAccess time.Duration
	// CleanupInterval is how often the background sweep runs. Default: 1m.
	CleanupInterval time.Duration
	// Registry is the Prometheus registry metrics register against. A
	// fresh registry is created if nil, so multiple LocalCache instances
	// (e.g. in tests) never collide on metric names.
	Registry *prometheus.Registry
}

func (c *LocalConfig) applyDefaults() {
	if c.MaxSize == 0 {
		c.MaxSize = 1000
	}
	if c.TTLWrite == 0 {
		c.TTLWrite = 2 * time.Hour
	}
	if c.TTLAccess == 0 {
		c.TTLAccess = 30 * time.Minute
	}
	if c.CleanupInterval == 0 {
		c.CleanupInterval = time.Minute
	}
}

type entry struct {
	rule         *ast.Rule
	writeExpiry  time.Time
	accessExpiry time.Time
	lastAccess   time.Time
}

func (e *entry) expired(now time.Time) bool {
	return now.After(e.writeExpiry) || now.After(e.accessExpiry)
}

// LocalCache is a bounded, mutex-guarded in-process AST cache with LRU
// eviction and a background TTL sweep, adapted from the teacher's
// MemoryBackend (size-bound map, cleanupLoop ticker, evictOldestLocked)
// generalized from rate-limit state to parsed rule ASTs, plus a
// singleflight group guaranteeing at most one concurrent build per key.
type LocalCache struct {
	mu      sync.Mutex
	entries map[string]*entry
	cfg     LocalConfig
	group   singleflight.Group
	metrics *cacheMetrics

	hits      uint64
	misses    uint64
	evictions uint64

	done chan struct{}
}

// NewLocalCache constructs a LocalCache and starts its background cleanup
// goroutine.
func NewLocalCache(cfg LocalConfig) *LocalCache {
	cfg.applyDefaults()
	c := &LocalCache{
		entries: make(map[string]*entry),
		cfg:     cfg,
		metrics: newCacheMetrics(cfg.Registry, "cache"),
		done:    make(chan struct{}),
	}
	go c.cleanupLoop()
	return c
}

// Get implements Cache.
func (c *LocalCache) Get(ctx context.Context, key string, load Loader) (*ast.Rule, error) {
	if rule, ok := c.lookup(key); ok {
		return rule, nil
	}

	result, err, _ := c.group.Do(key, func() (interface{}, error) {
		if rule, ok := c.lookup(key); ok {
			return rule, nil
		}
		atomic.AddUint64(&c.misses, 1)
		c.metrics.recordMiss()
		rule, err := load()
		if err != nil {
			return nil, err
		}
		c.store(key, rule)
		return rule, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*ast.Rule), nil
}

func (c *LocalCache) lookup(key string) (*ast.Rule, bool) {
	now := c.now()
	c.mu.Lock()
	e, ok := c.entries[key]
	if !ok {
		c.mu.Unlock()
		return nil, false
	}
	if e.expired(now) {
		delete(c.entries, key)
		c.mu.Unlock()
		atomic.AddUint64(&c.misses, 1)
		c.metrics.recordMiss()
		return nil, false
	}
	e.lastAccess = now
	e.accessExpiry = now.Add(c.cfg.TTLAccess)
	c.mu.Unlock()

	atomic.AddUint64(&c.hits, 1)
	c.metrics.recordHit()
	return e.rule, true
}

func (c *LocalCache) store(key string, rule *ast.Rule) {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.cfg.MaxSize {
		c.evictOldestLocked()
	}
	c.entries[key] = &entry{
		rule:         rule,
		writeExpiry:  now.Add(c.cfg.TTLWrite),
		accessExpiry: now.Add(c.cfg.TTLAccess),
		lastAccess:   now,
	}
	c.metrics.setSize(len(c.entries))
}

// evictOldestLocked evicts the least-recently-accessed entry. Caller must
// hold mu.
func (c *LocalCache) evictOldestLocked() {
	var oldestKey string
	var oldestTime time.Time
	found := false
	for k, e := range c.entries {
		if !found || e.lastAccess.Before(oldestTime) {
			oldestKey, oldestTime, found = k, e.lastAccess, true
		}
	}
	if found {
		delete(c.entries, oldestKey)
		atomic.AddUint64(&c.evictions, 1)
		c.metrics.recordEviction()
	}
}

// Invalidate implements Cache.
func (c *LocalCache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; ok {
		delete(c.entries, key)
		c.metrics.setSize(len(c.entries))
	}
}

// Stats implements Cache.
func (c *LocalCache) Stats() Stats {
	hits := atomic.LoadUint64(&c.hits)
	misses := atomic.LoadUint64(&c.misses)
	evictions := atomic.LoadUint64(&c.evictions)

	c.mu.Lock()
	size := len(c.entries)
	c.mu.Unlock()

	var rate float64
	if total := hits + misses; total > 0 {
		rate = float64(hits) / float64(total)
	}
	return Stats{Hits: hits, Misses: misses, Evictions: evictions, Size: size, HitRate: rate}
}

// Healthy implements Cache: a local in-process map is always available.
func (c *LocalCache) Healthy() bool { return true }

// Close implements Cache, stopping the background cleanup sweep.
func (c *LocalCache) Close() error {
	close(c.done)
	return nil
}

func (c *LocalCache) now() time.Time { return time.Now() }

func (c *LocalCache) cleanupLoop() {
	ticker := time.NewTicker(c.cfg.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.sweepExpired()
		case <-c.done:
			return
		}
	}
}

func (c *LocalCache) sweepExpired() {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, e := range c.entries {
		if e.expired(now) {
			delete(c.entries, k)
			atomic.AddUint64(&c.evictions, 1)
			c.metrics.recordEviction()
		}
	}
	c.metrics.setSize(len(c.entries))
}
