package metrics

import (
	"time"

	"github.com/marmos91/stackhaus/internal/stackreader"
)

// NewReaderMetrics creates a new Prometheus-backed stackreader.Metrics
// instance.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
// Callers should pass the result to stackreader.Reader.SetMetrics; a
// nil Metrics is zero overhead.
func NewReaderMetrics() stackreader.Metrics {
	if !IsEnabled() {
		return nil
	}
	return newPrometheusReaderMetrics()
}

var newPrometheusReaderMetrics func() stackreader.Metrics

// RegisterReaderMetricsConstructor registers the Prometheus reader
// metrics constructor. Called by internal/metrics/prometheus during
// package initialization.
func RegisterReaderMetricsConstructor(constructor func() stackreader.Metrics) {
	newPrometheusReaderMetrics = constructor
}

// ObserveFetch is a nil-safe wrapper around stackreader.Metrics.ObserveFetch.
func ObserveFetch(m stackreader.Metrics, bytes int, duration time.Duration, err error) {
	if m != nil {
		m.ObserveFetch(bytes, duration, err)
	}
}

// ObserveList is a nil-safe wrapper around stackreader.Metrics.ObserveList.
func ObserveList(m stackreader.Metrics, duration time.Duration, err error) {
	if m != nil {
		m.ObserveList(duration, err)
	}
}
