package core

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Row outcomes recorded by hireload_upload_rows_total.
const (
	outcomeInserted  = "inserted"
	outcomeUpdated   = "updated"
	outcomeDuplicate = "duplicate"
	outcomeInvalid   = "invalid"
	outcomeFailed    = "failed"
)

// Batch results recorded by hireload_batches_total.
const (
	batchCommitted = "committed"
	batchFallback  = "fallback"
	batchAborted   = "aborted"
)

type metrics struct {
	uploadRows     *prometheus.CounterVec
	batches        *prometheus.CounterVec
	uploadDuration *prometheus.HistogramVec
	reportDuration *prometheus.HistogramVec
	inFlight       prometheus.Gauge
}

var metricsSingleton = sync.OnceValue(func() *metrics {
	return &metrics{
		uploadRows: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hireload",
			Name:      "upload_rows_total",
			Help:      "Rows processed by uploads, by entity and outcome.",
		}, []string{"entity", "outcome"}),
		batches: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hireload",
			Name:      "batches_total",
			Help:      "Write batches, by entity and result.",
		}, []string{"entity", "result"}),
		uploadDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "hireload",
			Name:      "upload_duration_seconds",
			Help:      "Duration of completed uploads.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		}, []string{"entity", "result"}),
		reportDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "hireload",
			Name:      "report_duration_seconds",
			Help:      "Duration of aggregate report queries.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"report"}),
		inFlight: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: "hireload",
			Name:      "uploads_in_flight",
			Help:      "Uploads currently holding a limiter slot.",
		}),
	}
})

func getMetrics() *metrics {
	return metricsSingleton()
}

func recordRows(entity Entity, outcome string, n int) {
	if n <= 0 {
		return
	}
	getMetrics().uploadRows.WithLabelValues(string(entity), outcome).Add(float64(n))
}

func recordBatch(entity Entity, result string) {
	getMetrics().batches.WithLabelValues(string(entity), result).Inc()
}

func recordUpload(entity Entity, result string, d time.Duration) {
	getMetrics().uploadDuration.WithLabelValues(string(entity), result).Observe(d.Seconds())
}

func recordReport(report string, d time.Duration) {
	getMetrics().reportDuration.WithLabelValues(report).Observe(d.Seconds())
}
