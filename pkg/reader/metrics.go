package reader

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultDecoded = "decoded"
	resultMiss    = "miss"
)

// Metrics holds Prometheus metrics for log readers. A nil *Metrics records
// nothing.
type Metrics struct {
	indexBuildDuration prometheus.Histogram
	linesScannedTotal  prometheus.Counter
	recordsIndexed     prometheus.Gauge
	recordReadsTotal   *prometheus.CounterVec
	recordReadDuration prometheus.Histogram
}

// NewMetrics creates and registers reader metrics with reg. A nil reg uses
// the default Prometheus registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		indexBuildDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "monolog_index_build_duration_seconds",
				Help:    "Time spent scanning a log file for record boundaries",
				Buckets: prometheus.DefBuckets,
			},
		),
		linesScannedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "monolog_lines_scanned_total",
				Help: "Total number of physical lines scanned while indexing",
			},
		),
		recordsIndexed: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "monolog_records_indexed",
				Help: "Number of records in the most recently built index",
			},
		),
		recordReadsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "monolog_record_reads_total",
				Help: "Total number of records read by index, by decode result",
			},
			[]string{"result"},
		),
		recordReadDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "monolog_record_read_duration_seconds",
				Help:    "Time spent seeking, reading and decoding one record",
				Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
			},
		),
	}
}

// RecordIndexBuild records a completed boundary scan.
func (m *Metrics) RecordIndexBuild(lines, records int, duration time.Duration) {
	if m == nil {
		return
	}
	m.indexBuildDuration.Observe(duration.Seconds())
	m.linesScannedTotal.Add(float64(lines))
	m.recordsIndexed.Set(float64(records))
}

// RecordRead records one indexed read and whether it decoded.
func (m *Metrics) RecordRead(decoded bool, duration time.Duration) {
	if m == nil {
		return
	}
	result := resultDecoded
	if !decoded {
		result = resultMiss
	}
	m.recordReadsTotal.WithLabelValues(result).Inc()
	m.recordReadDuration.Observe(duration.Seconds())
}
