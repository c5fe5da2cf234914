// Package metrics provides Prometheus instrumentation for the chat engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vision_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	// RequestsTotal tracks total HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vision_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// ChatTurnsTotal counts finished turns by context kind and outcome.
	ChatTurnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vision_chat_turns_total",
			Help: "Total chat turns handled",
		},
		[]string{"kind", "outcome"},
	)

	// CompletionCallsTotal counts completion calls by provider, mode and outcome.
	CompletionCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vision_completion_calls_total",
			Help: "Total completion calls",
		},
		[]string{"provider", "mode", "outcome"},
	)

	// CompletionDuration tracks completion latency.
	CompletionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vision_completion_duration_seconds",
			Help:    "Completion call duration in seconds",
			Buckets: []float64{.25, .5, 1, 2, 5, 10, 20, 30, 60},
		},
		[]string{"provider", "mode"},
	)

	// VoiceFallbacksTotal counts English fallback attempts in voice chat.
	VoiceFallbacksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vision_voice_fallbacks_total",
			Help: "Total voice language fallback calls",
		},
	)

	// StoreWriteFailuresTotal counts failed message appends.
	StoreWriteFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vision_store_write_failures_total",
			Help: "Total failed conversation message writes",
		},
		[]string{"kind", "role"},
	)

	// WSConnectionsActive tracks open websocket connections per namespace.
	WSConnectionsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "vision_ws_connections_active",
			Help: "Number of active websocket connections",
		},
		[]string{"namespace"},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, path, status string, duration float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}

// RecordCompletion records one completion call.
func RecordCompletion(provider, mode, outcome string, duration float64) {
	CompletionCallsTotal.WithLabelValues(provider, mode, outcome).Inc()
	CompletionDuration.WithLabelValues(provider, mode).Observe(duration)
}

// RecordTurn records a finished turn.
func RecordTurn(kind, outcome string) {
	ChatTurnsTotal.WithLabelValues(kind, outcome).Inc()
}

// RecordStoreWriteFailure records a failed append.
func RecordStoreWriteFailure(kind, role string) {
	StoreWriteFailuresTotal.WithLabelValues(kind, role).Inc()
}
