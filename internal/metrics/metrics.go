// Package metrics exposes Prometheus collectors for the data layer.
//
// A nil *Metrics is valid and records nothing, so components can take one
// unconditionally.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Mutation outcomes.
const (
	OutcomeDelivered = "delivered"
	OutcomeQueued    = "queued"
	OutcomeLost      = "enqueue_failed"
)

// Reconcile results.
const (
	ResultDelivered = "delivered"
	ResultFailed    = "failed"
)

// Metrics holds the collectors and the registry they are registered on.
type Metrics struct {
	registry         *prometheus.Registry
	handler          http.Handler
	mutations        *prometheus.CounterVec
	queueDepth       prometheus.Gauge
	reconciled       *prometheus.CounterVec
	deliveryDuration prometheus.Histogram
}

// New creates a private registry with the data-layer collectors plus the
// standard Go and process collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	mutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dokan_mutations_total",
		Help: "Mutations executed, by collection, operation and outcome.",
	}, []string{"collection", "operation", "outcome"})
	queueDepth := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "dokan_sync_queue_depth",
		Help: "Mutations waiting for remote confirmation.",
	})
	reconciled := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dokan_reconcile_deliveries_total",
		Help: "Queued mutations replayed by the reconciler, by result.",
	}, []string{"result"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "dokan_remote_delivery_seconds",
		Help:    "Latency of remote delivery attempts.",
		Buckets: prometheus.DefBuckets,
	})
	registry.MustRegister(
		mutations, queueDepth, reconciled, duration,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return &Metrics{
		registry:         registry,
		handler:          promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		mutations:        mutations,
		queueDepth:       queueDepth,
		reconciled:       reconciled,
		deliveryDuration: duration,
	}
}

// Handler returns the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Registry exposes the underlying registry for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// MutationExecuted counts one executed mutation.
func (m *Metrics) MutationExecuted(collection, operation, outcome string) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(collection, operation, outcome).Inc()
}

// SetQueueDepth records the current sync queue length.
func (m *Metrics) SetQueueDepth(n int) {
	if m == nil {
		return
	}
	m.queueDepth.Set(float64(n))
}

// Reconciled counts one replay attempt.
func (m *Metrics) Reconciled(result string) {
	if m == nil {
		return
	}
	m.reconciled.WithLabelValues(result).Inc()
}

// ObserveDelivery records the latency of one delivery attempt.
func (m *Metrics) ObserveDelivery(d time.Duration) {
	if m == nil {
		return
	}
	m.deliveryDuration.Observe(d.Seconds())
}
