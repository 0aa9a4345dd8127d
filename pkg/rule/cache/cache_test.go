package cache

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"rulecraft/engine/pkg/lang/ast"
)

func TestKeyIsStableSHA256Hex(t *testing.T) {
	k1 := Key([]byte("name: foo\n"))
	k2 := Key([]byte("name: foo\n"))
	if k1 != k2 {
		t.Errorf("Key() not stable across calls: %s != %s", k1, k2)
	}
	if len(k1) != 64 {
		t.Errorf("Key() length = %d, want 64 hex chars", len(k1))
	}
}

func TestLocalCacheHitAfterFirstMiss(t *testing.T) {
	c := NewLocalCache(LocalConfig{})
	defer c.Close()

	var loads int32
	load := func() (*ast.Rule, error) {
		atomic.AddInt32(&loads, 1)
		return &ast.Rule{Name: "r"}, nil
	}

	key := Key([]byte("rule-1"))
	for i := 0; i < 3; i++ {
		if _, err := c.Get(context.Background(), key, load); err != nil {
			t.Fatalf("Get: %v", err)
		}
	}
	if loads != 1 {
		t.Errorf("loader called %d times, want 1", loads)
	}
	stats := c.Stats()
	if stats.Hits != 2 || stats.Misses != 1 {
		t.Errorf("Stats() = %+v, want 2 hits / 1 miss", stats)
	}
}

func TestLocalCacheEvictsOnSizeBound(t *testing.T) {
	c := NewLocalCache(LocalConfig{MaxSize: 2})
	defer c.Close()

	load := func(name string) Loader {
		return func() (*ast.Rule, error) { return &ast.Rule{Name: name}, nil }
	}
	for _, k := range []string{"a", "b", "c"} {
		if _, err := c.Get(context.Background(), k, load(k)); err != nil {
			t.Fatalf("Get(%s): %v", k, err)
		}
	}
	stats := c.Stats()
	if stats.Size > 2 {
		t.Errorf("Size = %d, want <= 2 after inserting 3 entries over MaxSize=2", stats.Size)
	}
	if stats.Evictions == 0 {
		t.Error("expected at least one eviction once MaxSize was exceeded")
	}
}

func TestLocalCacheInvalidateForcesReload(t *testing.T) {
	c := NewLocalCache(LocalConfig{})
	defer c.Close()

	key := Key([]byte("rule-1"))
	var loads int32
	load := func() (*ast.Rule, error) {
		atomic.AddInt32(&loads, 1)
		return &ast.Rule{Name: "r"}, nil
	}
	if _, err := c.Get(context.Background(), key, load); err != nil {
		t.Fatalf("Get: %v", err)
	}
	c.Invalidate(key)
	if _, err := c.Get(context.Background(), key, load); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if loads != 2 {
		t.Errorf("loader called %d times after invalidate, want 2", loads)
	}
}

func TestLocalCacheExpiresOnAccessTTL(t *testing.T) {
	c := NewLocalCache(LocalConfig{TTLAccess: time.Millisecond})
	defer c.Close()

	key := Key([]byte("rule-1"))
	var loads int32
	load := func() (*ast.Rule, error) {
		atomic.AddInt32(&loads, 1)
		return &ast.Rule{Name: "r"}, nil
	}
	if _, err := c.Get(context.Background(), key, load); err != nil {
		t.Fatalf("Get: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, err := c.Get(context.Background(), key, load); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if loads != 2 {
		t.Errorf("loader called %d times after access TTL expiry, want 2", loads)
	}
}

type fakeBackend struct {
	store map[string][]byte
	err   error
}

func (f *fakeBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if f.err != nil {
		return nil, false, f.err
	}
	v, ok := f.store[key]
	return v, ok, nil
}
func (f *fakeBackend) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if f.err != nil {
		return f.err
	}
	f.store[key] = value
	return nil
}
func (f *fakeBackend) Delete(ctx context.Context, key string) error {
	delete(f.store, key)
	return nil
}
func (f *fakeBackend) Ping(ctx context.Context) error { return f.err }

type fakeCodec struct{}

func (fakeCodec) Encode(rule *ast.Rule) ([]byte, error) { return []byte(rule.Name), nil }
func (fakeCodec) Decode(data []byte) (*ast.Rule, error) { return &ast.Rule{Name: string(data)}, nil }

func TestRemoteCacheRoundTrips(t *testing.T) {
	backend := &fakeBackend{store: make(map[string][]byte)}
	c := NewRemoteCache(backend, fakeCodec{}, RemoteConfig{})

	var loads int32
	load := func() (*ast.Rule, error) {
		atomic.AddInt32(&loads, 1)
		return &ast.Rule{Name: "remote_rule"}, nil
	}
	key := "remote-key"
	for i := 0; i < 2; i++ {
		rule, err := c.Get(context.Background(), key, load)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if rule.Name != "remote_rule" {
			t.Errorf("rule.Name = %q, want remote_rule", rule.Name)
		}
	}
	if loads != 1 {
		t.Errorf("loader called %d times, want 1", loads)
	}
	if !c.Healthy() {
		t.Error("expected RemoteCache to report healthy after successful calls")
	}
}

func TestRemoteCacheReportsUnhealthyOnBackendError(t *testing.T) {
	backend := &fakeBackend{store: make(map[string][]byte), err: errors.New("unreachable")}
	c := NewRemoteCache(backend, fakeCodec{}, RemoteConfig{})

	load := func() (*ast.Rule, error) { return &ast.Rule{Name: "r"}, nil }
	if _, err := c.Get(context.Background(), "k", load); err != nil {
		t.Fatalf("Get should fall back to the loader despite backend error: %v", err)
	}
	if c.Healthy() {
		t.Error("expected RemoteCache to report unhealthy after a backend error")
	}
}
