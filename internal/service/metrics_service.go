package service

import (
	"net/http"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/availability-api/internal/models"
)

const (
	metricsNamespace = "availability"
	icsFetchError    = "error"
)

// MetricsService owns a private Prometheus registry and keeps plain counters
// for the JSON summary. All methods are safe on a nil receiver.
type MetricsService struct {
	handler http.Handler

	requestDuration *prometheus.HistogramVec
	requests        *prometheus.CounterVec
	cacheLookups    *prometheus.HistogramVec
	cacheWrites     prometheus.Histogram
	overlays        *prometheus.CounterVec
	overlayBlocks   prometheus.Counter
	icsFetches      *prometheus.CounterVec

	stats struct {
		requests       atomic.Uint64
		requestNanos   atomic.Uint64
		cacheHits      atomic.Uint64
		cacheMisses    atomic.Uint64
		overlays       atomic.Uint64
		icsFetches     atomic.Uint64
		icsFetchErrors atomic.Uint64
	}
}

// NewMetricsService registers the service collectors plus the Go runtime and
// process collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	m := &MetricsService{
		handler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status",
		}, []string{"method", "route", "status"}),
		cacheLookups: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "cache_lookup_seconds",
			Help:      "Busy-block cache lookup latency by result",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1},
		}, []string{"result"}),
		cacheWrites: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "cache_write_seconds",
			Help:      "Busy-block cache write latency",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1},
		}),
		overlays: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "overlay_computations_total",
			Help:      "Overlay computations by event type",
		}, []string{"kind"}),
		overlayBlocks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "overlay_busy_blocks_emitted_total",
			Help:      "Clipped busy blocks returned by overlay computations",
		}),
		icsFetches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "ics_fetch_total",
			Help:      "Calendar feed fetches by outcome",
		}, []string{"result"}),
	}
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records one served request.
func (m *MetricsService) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	code := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, route, code).Observe(duration.Seconds())
	m.requests.WithLabelValues(method, route, code).Inc()
	m.stats.requests.Add(1)
	m.stats.requestNanos.Add(uint64(duration.Nanoseconds()))
}

// RecordCacheOperation records a cache lookup and whether it hit.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
		m.stats.cacheHits.Add(1)
	} else {
		m.stats.cacheMisses.Add(1)
	}
	m.cacheLookups.WithLabelValues(result).Observe(duration.Seconds())
}

// ObserveCacheWrite records a cache write.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrites.Observe(duration.Seconds())
}

// RecordOverlay counts one overlay computation and the blocks it emitted.
func (m *MetricsService) RecordOverlay(kind string, blocks int) {
	if m == nil {
		return
	}
	m.overlays.WithLabelValues(kind).Inc()
	m.overlayBlocks.Add(float64(blocks))
	m.stats.overlays.Add(1)
}

// RecordICSFetch counts a feed fetch outcome: ok, cached or error.
func (m *MetricsService) RecordICSFetch(result string) {
	if m == nil {
		return
	}
	m.icsFetches.WithLabelValues(result).Inc()
	m.stats.icsFetches.Add(1)
	if result == icsFetchError {
		m.stats.icsFetchErrors.Add(1)
	}
}

// Snapshot summarises the counters for the JSON metrics endpoint.
func (m *MetricsService) Snapshot() models.SystemMetrics {
	if m == nil {
		return models.SystemMetrics{}
	}
	hits := m.stats.cacheHits.Load()
	misses := m.stats.cacheMisses.Load()
	requests := m.stats.requests.Load()

	snap := models.SystemMetrics{
		CacheHits:           hits,
		CacheMisses:         misses,
		RequestsTotal:       requests,
		OverlayComputations: m.stats.overlays.Load(),
		ICSFetches:          m.stats.icsFetches.Load(),
		ICSFetchErrors:      m.stats.icsFetchErrors.Load(),
		Goroutines:          runtime.NumGoroutine(),
		GeneratedAt:         time.Now().UTC(),
	}
	if lookups := hits + misses; lookups > 0 {
		snap.CacheHitRatio = float64(hits) / float64(lookups)
	}
	if requests > 0 {
		snap.AverageRequestDurationMs = float64(m.stats.requestNanos.Load()) / float64(requests) / float64(time.Millisecond)
	}
	return snap
}
