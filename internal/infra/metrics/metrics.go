// Package metrics exposes Prometheus collectors for locks, cache and warmup.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "commerce"

// Lock acquisition and release results.
const (
	LockAcquired = "acquired"
	LockConflict = "conflict"
	LockError    = "error"
	LockLost     = "lost"
	LockReleased = "released"
)

// Cache lookup results.
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

// Metrics is nil-safe: adapters built without metrics skip recording.
type Metrics struct {
	lockAcquire     *prometheus.CounterVec
	lockRelease     *prometheus.CounterVec
	cacheRequests   *prometheus.CounterVec
	cacheEvictions  prometheus.Counter
	warmupDuration  prometheus.Gauge
	warmupProducts  prometheus.Gauge
	warmupFailures  prometheus.Counter
	eventsPublished *prometheus.CounterVec
	eventsConsumed  *prometheus.CounterVec
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		lockAcquire: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lock_acquire_total",
			Help:      "Lock acquisition attempts by result.",
		}, []string{"result"}),
		lockRelease: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lock_release_total",
			Help:      "Lock releases by result.",
		}, []string{"result"}),
		cacheRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_requests_total",
			Help:      "Cache lookups by result.",
		}, []string{"result"}),
		cacheEvictions: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_evicted_keys_total",
			Help:      "Keys removed by explicit or pattern eviction.",
		}),
		warmupDuration: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "warmup_duration_seconds",
			Help:      "Duration of the last cache warmup run.",
		}),
		warmupProducts: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "warmup_products",
			Help:      "Products loaded by the last cache warmup run.",
		}),
		warmupFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "warmup_failures_total",
			Help:      "Failed cache warmup runs.",
		}),
		eventsPublished: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Domain events published by topic and result.",
		}, []string{"topic", "result"}),
		eventsConsumed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_consumed_total",
			Help:      "Domain events consumed by topic and result.",
		}, []string{"topic", "result"}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

func (m *Metrics) LockAcquire(result string) {
	if m == nil {
		return
	}
	m.lockAcquire.WithLabelValues(result).Inc()
}

func (m *Metrics) LockRelease(result string) {
	if m == nil {
		return
	}
	m.lockRelease.WithLabelValues(result).Inc()
}

func (m *Metrics) CacheLookup(result string) {
	if m == nil {
		return
	}
	m.cacheRequests.WithLabelValues(result).Inc()
}

func (m *Metrics) CacheEvicted(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.cacheEvictions.Add(float64(n))
}

func (m *Metrics) EventPublished(topic string, err error) {
	if m == nil {
		return
	}
	m.eventsPublished.WithLabelValues(topic, resultOf(err)).Inc()
}

func (m *Metrics) EventConsumed(topic string, err error) {
	if m == nil {
		return
	}
	m.eventsConsumed.WithLabelValues(topic, resultOf(err)).Inc()
}

func (m *Metrics) ObserveHTTP(method, route, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, status).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// ObserveWarmup implements warmup.Recorder.
func (m *Metrics) ObserveWarmup(d time.Duration, products int, err error) {
	if m == nil {
		return
	}
	m.warmupDuration.Set(d.Seconds())
	m.warmupProducts.Set(float64(products))
	if err != nil {
		m.warmupFailures.Inc()
	}
}

func resultOf(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
