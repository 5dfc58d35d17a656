// Package metrics exposes prometheus instrumentation for provider calls.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	providerCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ereuna_provider_calls_total",
		Help: "Provider call attempts by outcome.",
	}, []string{"provider", "operation", "status", "classification"})

	providerDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ereuna_provider_call_duration_seconds",
		Help:    "Provider call latency.",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"provider", "operation"})
)

// ProviderRecorder satisfies the engine's Recorder interface with
// prometheus counters and histograms.
type ProviderRecorder struct{}

// RecordCall records one provider call attempt.
func (ProviderRecorder) RecordCall(provider, operation, status, classification string, duration time.Duration) {
	providerCalls.WithLabelValues(provider, operation, status, classification).Inc()
	providerDuration.WithLabelValues(provider, operation).Observe(duration.Seconds())
}

// Handler returns the /metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
