package metrics

import (
	"time"

	"github.com/marmos91/stackhaus/internal/stackwriter"
)

// NewWriterMetrics creates a new Prometheus-backed stackwriter.Metrics
// instance.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
// Callers should pass the result straight into stackwriter.Options;
// a nil Metrics is zero overhead.
func NewWriterMetrics() stackwriter.Metrics {
	if !IsEnabled() {
		return nil
	}
	return newPrometheusWriterMetrics()
}

// newPrometheusWriterMetrics is set by internal/metrics/prometheus's
// init(), breaking the import cycle a direct dependency would create.
var newPrometheusWriterMetrics func() stackwriter.Metrics

// RegisterWriterMetricsConstructor registers the Prometheus writer
// metrics constructor. Called by internal/metrics/prometheus during
// package initialization.
func RegisterWriterMetricsConstructor(constructor func() stackwriter.Metrics) {
	newPrometheusWriterMetrics = constructor
}

// ObservePut is a nil-safe wrapper around stackwriter.Metrics.ObservePut.
func ObservePut(m stackwriter.Metrics, bytes int, duration time.Duration, err error) {
	if m != nil {
		m.ObservePut(bytes, duration, err)
	}
}

// RecordRollover is a nil-safe wrapper around stackwriter.Metrics.RecordRollover.
func RecordRollover(m stackwriter.Metrics) {
	if m != nil {
		m.RecordRollover()
	}
}
