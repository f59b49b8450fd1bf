package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Upstream user directory metrics.
var (
	UpstreamRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Total number of user directory fetches",
		},
		[]string{"status"}, // "success" / "error"
	)

	UpstreamRequestDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "User directory fetch duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	UpstreamErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_errors_total",
			Help:      "Total user directory fetch errors",
		},
		[]string{"error_type"}, // transport, status, decode, invalid_payload
	)

	UpstreamRecords = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "upstream_records",
			Help:      "Number of user records returned by the last successful fetch",
		},
	)
)

// Report metrics.
var (
	ReportsRenderedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_rendered_total",
			Help:      "Total report render attempts",
		},
		[]string{"status"}, // success, empty, error
	)

	ReportPages = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "report_pages",
			Help:      "Pages per rendered report",
			Buckets:   []float64{1, 2, 3, 5, 10, 25},
		},
	)

	SearchMatches = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_matches",
			Help:      "Matches per search action",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100},
		},
	)
)

var registerOnce sync.Once

// RegisterDomainMetrics registers upstream, search and report metrics.
// Must be called from main; repeated calls are no-ops.
func RegisterDomainMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			UpstreamRequestsTotal,
			UpstreamRequestDuration,
			UpstreamErrorsTotal,
			UpstreamRecords,
			ReportsRenderedTotal,
			ReportPages,
			SearchMatches,
		)
	})
}
