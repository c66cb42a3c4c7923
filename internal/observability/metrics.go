// Package observability provides prometheus metrics for seedvault.
package observability

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all prometheus collectors for the application.
type Metrics struct {
	registry *prometheus.Registry

	// GeminiRequests counts AI provider calls by operation and outcome.
	GeminiRequests *prometheus.CounterVec
	// GeminiDuration observes AI provider call latency by operation.
	GeminiDuration *prometheus.HistogramVec
	// SeedOperations counts seed repository operations by operation and
	// outcome, incremented at the API layer.
	SeedOperations *prometheus.CounterVec
}

// NewMetrics creates and registers all collectors on a private registry.
func NewMetrics() (*Metrics, error) {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		GeminiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "seedvault_gemini_requests_total",
			Help: "AI provider requests by operation and status",
		}, []string{"operation", "status"}),
		GeminiDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "seedvault_gemini_request_duration_seconds",
			Help:    "AI provider request duration",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60},
		}, []string{"operation"}),
		SeedOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "seedvault_seed_operations_total",
			Help: "Seed repository operations by operation and status",
		}, []string{"operation", "status"}),
	}

	for _, collector := range []prometheus.Collector{
		m.GeminiRequests, m.GeminiDuration, m.SeedOperations,
	} {
		if err := m.registry.Register(collector); err != nil {
			return nil, fmt.Errorf("failed to register collector: %w", err)
		}
	}
	return m, nil
}

// Handler returns the HTTP handler serving the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveGemini records the outcome and duration of one provider call.
func (m *Metrics) ObserveGemini(operation, status string, seconds float64) {
	if m == nil {
		return
	}
	m.GeminiRequests.WithLabelValues(operation, status).Inc()
	m.GeminiDuration.WithLabelValues(operation).Observe(seconds)
}

// CountSeedOp records the outcome of one seed repository operation.
func (m *Metrics) CountSeedOp(operation, status string) {
	if m == nil {
		return
	}
	m.SeedOperations.WithLabelValues(operation, status).Inc()
}
