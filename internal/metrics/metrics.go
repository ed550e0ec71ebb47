// Package metrics provides Prometheus metrics for the feed factory.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// FactoryMetrics collects provisioning metrics for one process.
type FactoryMetrics struct {
	registry *prometheus.Registry

	FeedsTotal     *prometheus.CounterVec // outcome: created|failed
	FeedRetries    prometheus.Counter
	AttachFailures prometheus.Counter
	LedgerCalls    *prometheus.HistogramVec // op: create|attach|configure|verify
	EventsMatched  *prometheus.CounterVec   // provider label
}

// New creates a metrics collector with its own registry.
func New() *FactoryMetrics {
	registry := prometheus.NewRegistry()

	m := &FactoryMetrics{
		registry: registry,
		FeedsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "feedfactory_feeds_total",
			Help: "Feeds processed, by outcome.",
		}, []string{"outcome"}),
		FeedRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "feedfactory_feed_retries_total",
			Help: "Whole-feed provisioning retries.",
		}),
		AttachFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "feedfactory_attach_failures_total",
			Help: "Individual job attachments that failed.",
		}),
		LedgerCalls: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "feedfactory_ledger_call_seconds",
			Help:    "Ledger call latency by operation.",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"}),
		EventsMatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "feedfactory_events_matched_total",
			Help: "Secondary provider events matched to anchor events.",
		}, []string{"provider"}),
	}

	registry.MustRegister(m.FeedsTotal, m.FeedRetries, m.AttachFailures, m.LedgerCalls, m.EventsMatched)
	return m
}

// Handler exposes the registry for the /metrics endpoint.
func (m *FactoryMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
