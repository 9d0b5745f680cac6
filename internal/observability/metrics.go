// Package observability provides Prometheus collectors and OpenTelemetry tracing.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DatabaseQueryLatency records read-composition latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vidtube_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// ToggleTotal counts like and subscription toggles by target kind and resulting state.
	ToggleTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vidtube_toggles_total",
		Help: "Total number of like and subscription toggles",
	}, []string{"kind", "state"})

	// UploadsTotal counts object storage uploads by folder and outcome.
	UploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vidtube_uploads_total",
		Help: "Total number of media uploads",
	}, []string{"folder", "outcome"})

	// CacheLookups counts cache-aside lookups by cache name and result.
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vidtube_cache_lookups_total",
		Help: "Cache lookups by result",
	}, []string{"cache", "result"})

	// WebSocketBackpressureDrops counts notifications dropped because a client could not keep up.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vidtube_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"reason"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}

// RecordToggle records the outcome of a toggle.
func RecordToggle(kind string, on bool) {
	state := "off"
	if on {
		state = "on"
	}
	ToggleTotal.WithLabelValues(kind, state).Inc()
}
