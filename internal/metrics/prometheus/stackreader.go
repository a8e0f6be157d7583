package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/marmos91/stackhaus/internal/metrics"
	"github.com/marmos91/stackhaus/internal/stackreader"
)

func init() {
	metrics.RegisterReaderMetricsConstructor(newReaderMetrics)
}

// readerMetrics is the Prometheus implementation of stackreader.Metrics.
type readerMetrics struct {
	fetchesTotal   *prometheus.CounterVec
	fetchDuration  prometheus.Histogram
	fetchBytes     prometheus.Histogram
	listsTotal     *prometheus.CounterVec
	listDuration   prometheus.Histogram
}

func newReaderMetrics() stackreader.Metrics {
	reg := metrics.GetRegistry()

	return &readerMetrics{
		fetchesTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "stackhaus_reader_fetches_total",
				Help: "Total number of Fetch calls by status",
			},
			[]string{"status"},
		),
		fetchDuration: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name: "stackhaus_reader_fetch_duration_milliseconds",
				Help: "Duration of Fetch calls in milliseconds",
				Buckets: []float64{
					1, 5, 10, 50, 100, 500, 1000, 5000,
				},
			},
		),
		fetchBytes: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name: "stackhaus_reader_fetch_bytes",
				Help: "Distribution of payload sizes returned by Fetch",
				Buckets: []float64{
					256, 4096, 65536, 1048576, 10485760, 104857600,
				},
			},
		),
		listsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "stackhaus_reader_lists_total",
				Help: "Total number of enumeration calls (List, ListAl, ListStack) by status",
			},
			[]string{"status"},
		),
		listDuration: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name: "stackhaus_reader_list_duration_milliseconds",
				Help: "Duration of enumeration calls in milliseconds",
				Buckets: []float64{
					1, 5, 10, 50, 100, 500, 1000, 5000, 10000,
				},
			},
		),
	}
}

func (m *readerMetrics) ObserveFetch(bytes int, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.fetchesTotal.WithLabelValues(status).Inc()
	m.fetchDuration.Observe(duration.Seconds() * 1000)
	if err == nil {
		m.fetchBytes.Observe(float64(bytes))
	}
}

func (m *readerMetrics) ObserveList(duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.listsTotal.WithLabelValues(status).Inc()
	m.listDuration.Observe(duration.Seconds() * 1000)
}
