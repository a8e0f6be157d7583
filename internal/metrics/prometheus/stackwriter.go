package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/marmos91/stackhaus/internal/metrics"
	"github.com/marmos91/stackhaus/internal/stackwriter"
)

func init() {
	metrics.RegisterWriterMetricsConstructor(newWriterMetrics)
}

// writerMetrics is the Prometheus implementation of stackwriter.Metrics.
type writerMetrics struct {
	putsTotal      *prometheus.CounterVec
	putDuration    prometheus.Histogram
	putBytes       prometheus.Histogram
	rolloversTotal prometheus.Counter
}

func newWriterMetrics() stackwriter.Metrics {
	reg := metrics.GetRegistry()

	return &writerMetrics{
		putsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "stackhaus_writer_puts_total",
				Help: "Total number of Put calls by status",
			},
			[]string{"status"},
		),
		putDuration: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name: "stackhaus_writer_put_duration_milliseconds",
				Help: "Duration of Put calls in milliseconds",
				Buckets: []float64{
					1, 5, 10, 50, 100, 500, 1000, 5000,
				},
			},
		),
		putBytes: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name: "stackhaus_writer_put_bytes",
				Help: "Distribution of payload sizes written via Put",
				Buckets: []float64{
					256, 4096, 65536, 1048576, 10485760, 104857600,
				},
			},
		),
		rolloversTotal: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "stackhaus_writer_rollovers_total",
				Help: "Total number of stacks opened (fresh open or size-ceiling rollover)",
			},
		),
	}
}

func (m *writerMetrics) ObservePut(bytes int, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.putsTotal.WithLabelValues(status).Inc()
	m.putDuration.Observe(duration.Seconds() * 1000)
	if err == nil {
		m.putBytes.Observe(float64(bytes))
	}
}

func (m *writerMetrics) RecordRollover() {
	m.rolloversTotal.Inc()
}
