// Package metrics provides Prometheus collectors for the API.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's Prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	// HTTPRequests counts requests by method, route pattern and status code.
	HTTPRequests *prometheus.CounterVec
	// HTTPDuration observes request latency by route pattern.
	HTTPDuration *prometheus.HistogramVec
	// JobsSubmitted counts processing jobs submitted to the compute provider.
	JobsSubmitted prometheus.Counter
	// JobsSettled counts settled jobs by outcome (success or failure).
	JobsSettled *prometheus.CounterVec
	// LedgerEntries counts appended ledger entries by change type.
	LedgerEntries *prometheus.CounterVec
}

// New creates all collectors and registers them on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "retake_http_requests_total",
			Help: "HTTP requests processed, by method, route and status code.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "retake_http_request_duration_seconds",
			Help:    "HTTP request latency, by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		JobsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "retake_jobs_submitted_total",
			Help: "Processing jobs submitted to the compute provider.",
		}),
		JobsSettled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "retake_jobs_settled_total",
			Help: "Processing jobs settled, by outcome.",
		}, []string{"outcome"}),
		LedgerEntries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "retake_ledger_entries_total",
			Help: "Ledger entries appended, by change type.",
		}, []string{"change_type"}),
	}

	m.registry.MustRegister(
		m.HTTPRequests,
		m.HTTPDuration,
		m.JobsSubmitted,
		m.JobsSettled,
		m.LedgerEntries,
	)

	return m
}

// Handler returns the HTTP handler serving the registry's metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
