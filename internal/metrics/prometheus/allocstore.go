package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/marmos91/stackhaus/internal/allocservice/store"
	"github.com/marmos91/stackhaus/internal/metrics"
)

func init() {
	metrics.RegisterAllocMetricsConstructor(newAllocMetrics)
}

// allocMetrics is the Prometheus implementation of store.Metrics.
type allocMetrics struct {
	reconciliationsTotal   *prometheus.CounterVec
	reconciliationDuration prometheus.Histogram
	transitionsTotal       *prometheus.CounterVec
}

func newAllocMetrics() store.Metrics {
	reg := metrics.GetRegistry()

	return &allocMetrics{
		reconciliationsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "stackhaus_alloc_reconciliations_total",
				Help: "Total number of PreLoad reconciliation passes by status",
			},
			[]string{"status"},
		),
		reconciliationDuration: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name: "stackhaus_alloc_reconciliation_duration_milliseconds",
				Help: "Duration of PreLoad reconciliation passes in milliseconds, including retried attempts",
				Buckets: []float64{
					1, 5, 10, 50, 100, 500, 1000, 5000,
				},
			},
		),
		transitionsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "stackhaus_alloc_assignment_transitions_total",
				Help: "Total number of preload assignment state transitions by target state",
			},
			[]string{"state"},
		),
	}
}

func (m *allocMetrics) ObserveReconciliation(duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.reconciliationsTotal.WithLabelValues(status).Inc()
	m.reconciliationDuration.Observe(duration.Seconds() * 1000)
}

func (m *allocMetrics) RecordAssignmentTransition(state string) {
	m.transitionsTotal.WithLabelValues(state).Inc()
}
