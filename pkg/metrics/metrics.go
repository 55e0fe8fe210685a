// Package metrics registers the service's Prometheus collectors.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "consultant_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "consultant_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	TurnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "consultant_turns_total",
			Help: "Conversation turns processed, by classified intent and outcome",
		},
		[]string{"intent", "status"},
	)

	GenerationAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "consultant_generation_attempts_total",
			Help: "Language model calls, by outcome",
		},
		[]string{"status"},
	)

	GenerationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "consultant_generation_duration_seconds",
			Help:    "Latency of successful language model calls",
			Buckets: []float64{.25, .5, 1, 2, 4, 8, 15, 30, 60},
		},
	)

	RetrievalQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "consultant_retrieval_queries_total",
			Help: "Example retrieval queries, by source (cache, search) and outcome",
		},
		[]string{"source", "status"},
	)

	IngestedExamplesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "consultant_ingested_examples_total",
			Help: "Example posts processed by the ingestion pipeline",
		},
		[]string{"status"},
	)
)

// ObserveHTTP records one finished HTTP request.
func ObserveHTTP(method, route, status string, elapsed time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveGeneration records one language model attempt.
func ObserveGeneration(err error, elapsed time.Duration) {
	if err != nil {
		GenerationAttemptsTotal.WithLabelValues("error").Inc()
		return
	}
	GenerationAttemptsTotal.WithLabelValues("success").Inc()
	GenerationDuration.Observe(elapsed.Seconds())
}
