// Package metrics exposes Prometheus collectors for the dinodash pipeline and
// data service.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	enrichLinksTotal           *prometheus.CounterVec
	rateLimitDelaySeconds      *prometheus.HistogramVec
	normalizeRowsTotal         *prometheus.CounterVec
	normalizeDroppedRowsTotal  *prometheus.CounterVec
	exportsTotal               *prometheus.CounterVec
	exportBytesTotal           *prometheus.CounterVec
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec
	datasetRecords             prometheus.Gauge

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		enrichLinksTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dinodash_enrich_links_total",
				Help: "Detail pages processed by the image enrichment, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		rateLimitDelaySeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dinodash_rate_limit_delay_seconds",
				Help:    "Time spent waiting on the per-host rate limiter.",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"host"},
		)

		normalizeRowsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dinodash_normalize_rows_total",
				Help: "Rows seen by the normalization pipeline, labeled by stage (input, output).",
			},
			[]string{"stage"},
		)

		normalizeDroppedRowsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dinodash_normalize_dropped_rows_total",
				Help: "Rows dropped by the normalization pipeline, labeled by rule.",
			},
			[]string{"rule"},
		)

		exportsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dinodash_exports_total",
				Help: "Export artifacts written, labeled by format and status.",
			},
			[]string{"format", "status"},
		)

		exportBytesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dinodash_export_bytes_total",
				Help: "Bytes of export artifacts served or stored, labeled by format.",
			},
			[]string{"format"},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2},
			},
			[]string{"method", "route"},
		)

		datasetRecords = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "dinodash_dataset_records",
				Help: "Number of normalized records currently served.",
			},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveEnrichment counts one detail page by outcome.
func ObserveEnrichment(outcome string) {
	Init()
	enrichLinksTotal.WithLabelValues(outcome).Inc()
}

// ObserveRateLimitDelay records how long a request waited for its host's token.
func ObserveRateLimitDelay(host string, d time.Duration) {
	Init()
	rateLimitDelaySeconds.WithLabelValues(host).Observe(d.Seconds())
}

// ObserveNormalize records the input/output row counts of one pipeline run
// and the rows each rule dropped.
func ObserveNormalize(input, output int, dropped map[string]int) {
	Init()
	normalizeRowsTotal.WithLabelValues("input").Add(float64(input))
	normalizeRowsTotal.WithLabelValues("output").Add(float64(output))
	for rule, n := range dropped {
		if n > 0 {
			normalizeDroppedRowsTotal.WithLabelValues(rule).Add(float64(n))
		}
	}
}

// ObserveExport counts an export artifact.
func ObserveExport(format, status string, size int) {
	Init()
	exportsTotal.WithLabelValues(format, status).Inc()
	if size > 0 {
		exportBytesTotal.WithLabelValues(format).Add(float64(size))
	}
}

// SetDatasetRecords publishes the size of the served table.
func SetDatasetRecords(n int) {
	Init()
	datasetRecords.Set(float64(n))
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	Init()
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}
