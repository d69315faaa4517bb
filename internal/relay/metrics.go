package relay

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	valuesDecoded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bencwire",
			Subsystem: "relay",
			Name:      "values_decoded_total",
			Help:      "Complete Bencode values decoded from ingest streams.",
		},
		[]string{"relay", "kind"},
	)
	flattenedBytes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bencwire",
			Subsystem: "relay",
			Name:      "flattened_bytes_total",
			Help:      "Flattened token bytes produced by decode rounds.",
		},
		[]string{"relay"},
	)
	valueSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "bencwire",
			Subsystem: "relay",
			Name:      "value_flattened_bytes",
			Help:      "Flattened size of decoded values in bytes.",
			Buckets:   prometheus.ExponentialBuckets(8, 2, 6),
		},
		[]string{"relay"},
	)
	decodeErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bencwire",
			Subsystem: "relay",
			Name:      "decode_errors_total",
			Help:      "Decode faults by kind.",
		},
		[]string{"relay", "kind"},
	)
	activeConns = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "bencwire",
			Subsystem: "relay",
			Name:      "active_connections",
			Help:      "Open ingest connections.",
		},
		[]string{"relay"},
	)
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bencwire",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total admin API requests.",
		},
		[]string{"relay", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "bencwire",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Admin API request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"relay", "method", "path", "status"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			valuesDecoded,
			flattenedBytes,
			valueSize,
			decodeErrors,
			activeConns,
			httpRequests,
			httpDuration,
		)
	})
}

func RecordValue(relay, kind string, flattened int) {
	RegisterMetrics()
	valuesDecoded.WithLabelValues(relay, kind).Inc()
	flattenedBytes.WithLabelValues(relay).Add(float64(flattened))
	valueSize.WithLabelValues(relay).Observe(float64(flattened))
}

func RecordDecodeError(relay, kind string) {
	RegisterMetrics()
	decodeErrors.WithLabelValues(relay, kind).Inc()
}

func RecordConnectionOpened(relay string) {
	RegisterMetrics()
	activeConns.WithLabelValues(relay).Inc()
}

func RecordConnectionClosed(relay string) {
	RegisterMetrics()
	activeConns.WithLabelValues(relay).Dec()
}

func RecordHTTPRequest(relay, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(relay, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(relay, method, path, statusLabel).Observe(duration.Seconds())
}
