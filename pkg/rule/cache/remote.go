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

// RemoteBackend is the external key-value collaborator a RemoteCache
// fronts. spec.md §4.J treats the remote tier as an external collaborator,
// so no concrete client (Redis, etcd, ...) is bundled here — callers
// implement this interface against whichever store they operate.
type RemoteBackend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// Ping reports whether the backend is currently reachable, feeding
	// RemoteCache.Healthy.
	Ping(ctx context.Context) error
}

// Codec serializes/deserializes an *ast.Rule for RemoteBackend storage.
// The AST cache never ships a concrete implementation: callers supply one
// matched to their RemoteBackend's wire format (gob, protobuf, JSON of an
// intermediate shape, ...).
type Codec interface {
	Encode(rule *ast.Rule) ([]byte, error)
	Decode(data []byte) (*ast.Rule, error)
}

// RemoteConfig configures RemoteCache.
type RemoteConfig struct {
	TTL      time.Duration // per-entry TTL sent to the backend. Default: 2h.
	Registry *prometheus.Registry
}

func (c *RemoteConfig) applyDefaults() {
	if c.TTL == 0 {
		c.TTL = 2 * time.Hour
	}
}

// RemoteCache is a thin adapter from the uniform Cache interface onto an
// injected RemoteBackend, still providing the same singleflight
// at-most-one-concurrent-build guarantee and hit/miss/eviction statistics
// locally (the backend itself is opaque and may be shared across
// processes, so eviction counts here only reflect this process's explicit
// Invalidate calls).
type RemoteCache struct {
	backend RemoteBackend
	codec   Codec
	cfg     RemoteConfig
	group   singleflight.Group
	metrics *cacheMetrics

	hits      uint64
	misses    uint64
	evictions uint64

	healthMu sync.RWMutex
	healthy  bool
}

// NewRemoteCache constructs a RemoteCache over backend using codec to
// (de)serialize ASTs.
func NewRemoteCache(backend RemoteBackend, codec Codec, cfg RemoteConfig) *RemoteCache {
	cfg.applyDefaults()
	return &RemoteCache{
		backend: backend,
		codec:   codec,
		cfg:     cfg,
		metrics: newCacheMetrics(cfg.Registry, "remote_cache"),
		healthy: true,
	}
}

// Get implements Cache.
func (c *RemoteCache) Get(ctx context.Context, key string, load Loader) (*ast.Rule, error) {
	if rule, ok := c.lookup(ctx, key); ok {
		return rule, nil
	}

	result, err, _ := c.group.Do(key, func() (interface{}, error) {
		if rule, ok := c.lookup(ctx, key); ok {
			return rule, nil
		}
		atomic.AddUint64(&c.misses, 1)
		c.metrics.recordMiss()
		rule, err := load()
		if err != nil {
			return nil, err
		}
		c.store(ctx, key, rule)
		return rule, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*ast.Rule), nil
}

func (c *RemoteCache) lookup(ctx context.Context, key string) (*ast.Rule, bool) {
	data, found, err := c.backend.Get(ctx, key)
	c.recordHealth(err)
	if err != nil || !found {
		return nil, false
	}
	rule, err := c.codec.Decode(data)
	if err != nil {
		return nil, false
	}
	atomic.AddUint64(&c.hits, 1)
	c.metrics.recordHit()
	return rule, true
}

func (c *RemoteCache) store(ctx context.Context, key string, rule *ast.Rule) {
	data, err := c.codec.Encode(rule)
	if err != nil {
		return
	}
	err = c.backend.Put(ctx, key, data, c.cfg.TTL)
	c.recordHealth(err)
}

// Invalidate implements Cache.
func (c *RemoteCache) Invalidate(key string) {
	err := c.backend.Delete(context.Background(), key)
	c.recordHealth(err)
	if err == nil {
		atomic.AddUint64(&c.evictions, 1)
		c.metrics.recordEviction()
	}
}

// Stats implements Cache. Size is not tracked locally since the backend
// owns storage; it always reports 0.
func (c *RemoteCache) Stats() Stats {
	hits := atomic.LoadUint64(&c.hits)
	misses := atomic.LoadUint64(&c.misses)
	evictions := atomic.LoadUint64(&c.evictions)
	var rate float64
	if total := hits + misses; total > 0 {
		rate = float64(hits) / float64(total)
	}
	return Stats{Hits: hits, Misses: misses, Evictions: evictions, HitRate: rate}
}

// Healthy implements Cache, reflecting the last observed backend error.
func (c *RemoteCache) Healthy() bool {
	c.healthMu.RLock()
	defer c.healthMu.RUnlock()
	return c.healthy
}

// Close implements Cache. RemoteCache owns no background resources of its
// own; the backend's lifecycle belongs to its caller.
func (c *RemoteCache) Close() error { return nil }

func (c *RemoteCache) recordHealth(err error) {
	c.healthMu.Lock()
	defer c.healthMu.Unlock()
	c.healthy = err == nil
}
