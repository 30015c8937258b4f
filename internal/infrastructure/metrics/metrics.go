package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Compress-API Metrics
var (
	// Request counters
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vidcrunch",
			Subsystem: "compress_api",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// Request duration histogram
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "vidcrunch",
			Subsystem: "compress_api",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"method", "endpoint"},
	)

	// Signed upload credentials issued
	SignRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vidcrunch",
			Subsystem: "compress_api",
			Name:      "sign_requests_total",
			Help:      "Total signed upload credentials issued",
		},
		[]string{"status"},
	)

	// History record operations
	HistoryOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vidcrunch",
			Subsystem: "compress_api",
			Name:      "history_operations_total",
			Help:      "Total history store operations",
		},
		[]string{"operation", "status"},
	)

	// Compressed bytes recorded on create
	CompressedBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "vidcrunch",
			Subsystem: "compress_api",
			Name:      "compressed_bytes_total",
			Help:      "Total compressed bytes persisted to history",
		},
	)
)

// RecordRequest records an HTTP request
func RecordRequest(method, endpoint, status string, durationSec float64) {
	RequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	RequestDuration.WithLabelValues(method, endpoint).Observe(durationSec)
}

// RecordSign records an upload credential issuance
func RecordSign(status string) {
	SignRequestsTotal.WithLabelValues(status).Inc()
}

// RecordHistoryOperation records a history store operation
func RecordHistoryOperation(operation, status string) {
	HistoryOperationsTotal.WithLabelValues(operation, status).Inc()
}
