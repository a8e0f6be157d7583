package metrics

import (
	"time"

	"github.com/marmos91/stackhaus/internal/allocservice/store"
)

// NewAllocMetrics creates a new Prometheus-backed store.Metrics
// instance.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
// Callers should pass the result to store.Store.SetMetrics; a nil
// Metrics is zero overhead.
func NewAllocMetrics() store.Metrics {
	if !IsEnabled() {
		return nil
	}
	return newPrometheusAllocMetrics()
}

var newPrometheusAllocMetrics func() store.Metrics

// RegisterAllocMetricsConstructor registers the Prometheus allocation
// store metrics constructor. Called by internal/metrics/prometheus
// during package initialization.
func RegisterAllocMetricsConstructor(constructor func() store.Metrics) {
	newPrometheusAllocMetrics = constructor
}

// ObserveReconciliation is a nil-safe wrapper around store.Metrics.ObserveReconciliation.
func ObserveReconciliation(m store.Metrics, duration time.Duration, err error) {
	if m != nil {
		m.ObserveReconciliation(duration, err)
	}
}

// RecordAssignmentTransition is a nil-safe wrapper around store.Metrics.RecordAssignmentTransition.
func RecordAssignmentTransition(m store.Metrics, state string) {
	if m != nil {
		m.RecordAssignmentTransition(state)
	}
}
