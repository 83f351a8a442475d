// Package metrics defines the Prometheus collectors exported by the query
// engine and its builder, and the HTTP handler used to scrape them.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every Prometheus collector registered by the engine.
type Metrics struct {
	QueriesTotal       *prometheus.CounterVec
	QueryLatency       *prometheus.HistogramVec
	QueryResultsCount  prometheus.Histogram
	TierLoadsTotal     *prometheus.CounterVec
	TierLoadDuration   *prometheus.HistogramVec
	PostingBytesDecode prometheus.Counter
	PrefixExpansions   prometheus.Counter
	BuildsTotal        *prometheus.CounterVec
	BuildDuration      prometheus.Histogram
}

const namespace = "cryptobib_search"

// New creates and registers every collector.
func New() *Metrics {
	m := &Metrics{
		QueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "queries_total",
				Help:      "Total queries served, by outcome (hit, empty, error).",
			},
			[]string{"outcome"},
		),
		QueryLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "query_latency_seconds",
				Help:      "Query latency in seconds, by tier reached.",
				Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
			},
			[]string{"tier"},
		),
		QueryResultsCount: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "query_results_count",
				Help:      "Number of ranked results returned per query, post-limit.",
				Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 500, 1000},
			},
		),
		TierLoadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tier_loads_total",
				Help:      "Tier load attempts, by tier and outcome.",
			},
			[]string{"tier", "outcome"},
		),
		TierLoadDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "tier_load_duration_seconds",
				Help:      "Time spent loading one tier's artifacts from disk.",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"tier"},
		),
		PostingBytesDecode: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "posting_bytes_decoded_total",
				Help:      "Total posting-list bytes varint-decoded while matching.",
			},
		),
		PrefixExpansions: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "prefix_expansions_total",
				Help:      "Total terminal-token prefix expansions performed.",
			},
		),
		BuildsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "builds_total",
				Help:      "Total index builds, by outcome.",
			},
			[]string{"outcome"},
		),
		BuildDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "build_duration_seconds",
				Help:      "Full corpus-to-artifact build duration in seconds.",
				Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300},
			},
		),
	}

	prometheus.MustRegister(
		m.QueriesTotal,
		m.QueryLatency,
		m.QueryResultsCount,
		m.TierLoadsTotal,
		m.TierLoadDuration,
		m.PostingBytesDecode,
		m.PrefixExpansions,
		m.BuildsTotal,
		m.BuildDuration,
	)

	return m
}

// Handler returns the Prometheus scrape HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
