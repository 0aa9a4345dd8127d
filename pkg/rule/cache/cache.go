// Package cache implements the AST cache: a content-hash keyed store of
// parsed rule ASTs sitting between raw source text and the rest of the
// pipeline, bounded in size with dual write/access TTLs, LRU eviction, and
// an at-most-one-concurrent-build guarantee per key.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"rulecraft/engine/pkg/lang/ast"
)

// Key hashes source text into the cache's lowercase hex SHA-256 key space.
func Key(source []byte) string {
	sum := sha256.Sum256(source)
	return hex.EncodeToString(sum[:])
}

// Loader builds a fresh AST for a cache miss. It is invoked at most once
// concurrently per key, regardless of how many goroutines call Get for
// that key at the same time.
type Loader func() (*ast.Rule, error)

// Stats is a point-in-time snapshot of the cache's monotonic counters.
type Stats struct {
	Hits       uint64
	Misses     uint64
	Evictions  uint64
	Size       int
	HitRate    float64
}

// Cache is the uniform interface both the local and remote backends
// satisfy, per spec.md §4.J's "two backends behind one interface".
type Cache interface {
	// Get returns the cached AST for key, calling load to build and store
	// it on a miss. Concurrent misses for the same key share one load.
	Get(ctx context.Context, key string, load Loader) (*ast.Rule, error)
	// Invalidate removes key from the cache, if present.
	Invalidate(key string)
	// Stats returns the current counters.
	Stats() Stats
	// Healthy reports whether the backend is currently able to serve
	// requests (always true for LocalCache; reflects last-known
	// reachability for RemoteCache).
	Healthy() bool
	// Close releases any background resources (cleanup goroutines,
	// remote connections).
	Close() error
}
