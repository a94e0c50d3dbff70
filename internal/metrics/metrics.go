// ============================================================================
// Seq2Fun-Core Metrics - Prometheus Monitoring
// ============================================================================
//
// Package: internal/metrics
// File: metrics.go
// Purpose: Collect and expose pipeline throughput/backlog metrics for
// Prometheus.
//
// Metric Categories:
//
//   1. Read Counters - cumulative, monotonically increasing:
//      - reads_processed_total: every record a worker has classified
//      - reads_mapped_total: records with a resolved ortholog hit
//      - reads_failed_total{reason}: per-filter-verdict rejection counts
//
//   2. Performance Metrics (Histogram):
//      - batch_processing_seconds: wall time to process one dequeued batch
//
//   3. Status Metrics (Gauge) - instantaneous values:
//      - queue_depth: current BatchQueue residency
//      - writer_pending_bytes{sink}: unflushed bytes per writer sink
//
// Grounded on the teacher's internal/metrics.Collector: same
// counter/histogram/gauge grouping and StartServer shape, retargeted from
// job-queue vocabulary to read-pipeline vocabulary.
// ============================================================================

package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector collects Prometheus metrics for one pipeline run.
type Collector struct {
	readsProcessed prometheus.Counter
	readsMapped    prometheus.Counter
	readsFailed    *prometheus.CounterVec

	batchLatency prometheus.Histogram

	queueDepth    prometheus.Gauge
	writerPending *prometheus.GaugeVec
}

// NewCollector creates and registers a new metrics collector. Safe to call
// at most once per process (prometheus.MustRegister panics on duplicate
// registration).
func NewCollector() *Collector {
	c := &Collector{
		readsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "seq2fun_reads_processed_total",
			Help: "Total number of reads classified by a worker.",
		}),
		readsMapped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "seq2fun_reads_mapped_total",
			Help: "Total number of reads with a resolved ortholog hit.",
		}),
		readsFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "seq2fun_reads_failed_total",
			Help: "Total number of reads rejected, labeled by filter verdict.",
		}, []string{"reason"}),
		batchLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "seq2fun_batch_processing_seconds",
			Help:    "Wall time to process one dequeued batch of reads.",
			Buckets: prometheus.DefBuckets,
		}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "seq2fun_queue_depth",
			Help: "Current BatchQueue residency (batches buffered).",
		}),
		writerPending: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "seq2fun_writer_pending_bytes",
			Help: "Unflushed bytes currently queued in a writer sink.",
		}, []string{"sink"}),
	}

	prometheus.MustRegister(c.readsProcessed)
	prometheus.MustRegister(c.readsMapped)
	prometheus.MustRegister(c.readsFailed)
	prometheus.MustRegister(c.batchLatency)
	prometheus.MustRegister(c.queueDepth)
	prometheus.MustRegister(c.writerPending)

	return c
}

// RecordProcessed increments the processed-reads counter by n.
func (c *Collector) RecordProcessed(n int) {
	c.readsProcessed.Add(float64(n))
}

// RecordMapped increments the mapped-reads counter by n.
func (c *Collector) RecordMapped(n int) {
	c.readsMapped.Add(float64(n))
}

// RecordFailed increments the per-reason failure counter.
func (c *Collector) RecordFailed(reason string, n int) {
	c.readsFailed.WithLabelValues(reason).Add(float64(n))
}

// ObserveBatchLatency records how long one batch took to process.
func (c *Collector) ObserveBatchLatency(seconds float64) {
	c.batchLatency.Observe(seconds)
}

// SetQueueDepth publishes the current BatchQueue residency.
func (c *Collector) SetQueueDepth(depth int) {
	c.queueDepth.Set(float64(depth))
}

// SetWriterPending publishes a writer sink's current unflushed byte count.
func (c *Collector) SetWriterPending(sinkName string, bytes int64) {
	c.writerPending.WithLabelValues(sinkName).Set(float64(bytes))
}

// StartServer starts the Prometheus metrics HTTP server on port, serving
// /metrics. Blocks; callers run it in its own goroutine.
func StartServer(port int) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	addr := fmt.Sprintf(":%d", port)
	return http.ListenAndServe(addr, mux)
}
