package cache

import "github.com/prometheus/client_golang/prometheus"

// cacheMetrics tracks AST cache performance, adapted from the gateway's
// generic per-named-cache Prometheus metrics into one fixed instance per
// LocalCache/RemoteCache (the cache's own hit/miss/eviction/size counters
// spec.md §4.J requires, not an out-of-scope external metrics sink).
type cacheMetrics struct {
	hitsTotal      prometheus.Counter
	missesTotal    prometheus.Counter
	evictionsTotal prometheus.Counter
	entries        prometheus.Gauge
}

func newCacheMetrics(registry *prometheus.Registry, subsystem string) *cacheMetrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	m := &cacheMetrics{
		hitsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rulecraft",
			Subsystem: subsystem,
			Name:      "cache_hits_total",
			Help:      "Total number of AST cache hits",
		}),
		missesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rulecraft",
			Subsystem: subsystem,
			Name:      "cache_misses_total",
			Help:      "Total number of AST cache misses",
		}),
		evictionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rulecraft",
			Subsystem: subsystem,
			Name:      "cache_evictions_total",
			Help:      "Total number of AST cache evictions (size-bound or TTL expiry)",
		}),
		entries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "rulecraft",
			Subsystem: subsystem,
			Name:      "cache_entries",
			Help:      "Current number of entries held in the AST cache",
		}),
	}
	registry.MustRegister(m.hitsTotal, m.missesTotal, m.evictionsTotal, m.entries)
	return m
}

func (m *cacheMetrics) recordHit()      { m.hitsTotal.Inc() }
func (m *cacheMetrics) recordMiss()     { m.missesTotal.Inc() }
func (m *cacheMetrics) recordEviction() { m.evictionsTotal.Inc() }
func (m *cacheMetrics) setSize(n int)   { m.entries.Set(float64(n)) }
