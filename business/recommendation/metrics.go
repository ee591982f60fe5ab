package recommendation

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	reasonNoHistory   = "no_history"
	reasonNoNeighbors = "no_neighbors"
	reasonError       = "error"
	reasonBreakerOpen = "breaker_open"
	reasonTimeout     = "timeout"
)

var (
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_requests_total",
			Help: "Count of recommendation requests by algorithm.",
		},
		[]string{"algorithm"},
	)

	FallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_fallbacks_total",
			Help: "Count of popularity fallbacks by algorithm and reason.",
		},
		[]string{"algorithm", "reason"},
	)

	Latency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommendation_latency_seconds",
			Help:    "Recommendation computation latency by algorithm.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"algorithm"},
	)
)

func init() {
	prometheus.MustRegister(RequestsTotal, FallbacksTotal, Latency)
}

func countFallback(strategy Strategy, reason string) {
	FallbacksTotal.WithLabelValues(string(strategy), reason).Inc()
}
