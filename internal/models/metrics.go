package models

import "time"

// SystemMetrics is a JSON snapshot of the service's instrumentation counters.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	OverlayComputations      uint64    `json:"overlay_computations"`
	ICSFetches               uint64    `json:"ics_fetches"`
	ICSFetchErrors           uint64    `json:"ics_fetch_errors"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
