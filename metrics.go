package main

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "opr"

// registry is kept separate from the default one so /metrics only carries
// what this service records.
var registry = prometheus.NewRegistry()

var (
	solvesTotal = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: "engine",
		Name:      "solves_total",
		Help:      "Number of least-squares solves performed.",
	})
	solveDuration = promauto.With(registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Subsystem: "engine",
		Name:      "request_duration_seconds",
		Help:      "Time spent computing ratings for one request, by kind.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"kind"})
	underconstrainedTotal = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: "engine",
		Name:      "underconstrained_total",
		Help:      "Solves rejected because the match set left a team unconstrained.",
	})
	fetchTotal = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: "source",
		Name:      "fetch_total",
		Help:      "Source page fetches by page and outcome (ok, error, snapshot).",
	}, []string{"page", "outcome"})
	matchesFetched = promauto.With(registry).NewGaugeVec(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Subsystem: "source",
		Name:      "matches",
		Help:      "Matches returned by the last resolution of each page.",
	}, []string{"page"})
	httpRequests = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by route, method and status code.",
	}, []string{"route", "method", "status"})
	httpDuration = promauto.With(registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})
)

func observeSince(h *prometheus.HistogramVec, label string, start time.Time) {
	h.WithLabelValues(label).Observe(time.Since(start).Seconds())
}
