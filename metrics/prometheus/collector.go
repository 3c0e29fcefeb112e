// Package prometheus exports sequence metrics to Prometheus.
//
//	reg := prom.NewRegistry()
//	mc := prometheus.NewCollector(reg)
//	seq := arrayseq.New(arrayseq.WithMetricsCollector(mc))
package prometheus

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/arrayseq"
)

const namespace = "arrayseq"

var _ arrayseq.MetricsCollector = (*Collector)(nil)

// Collector implements arrayseq.MetricsCollector with Prometheus metrics.
type Collector struct {
	grows       prom.Counter
	growBytes   prom.Histogram
	flushes     prom.Counter
	flushRows   prom.Counter
	opLatency   *prom.HistogramVec
	transferred *prom.CounterVec
}

// NewCollector creates the metrics and registers them with reg. A nil reg
// uses prometheus.DefaultRegisterer.
func NewCollector(reg prom.Registerer) *Collector {
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	c := &Collector{
		grows: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "store_reallocations_total",
			Help:      "Total backing store reallocations",
		}),
		growBytes: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "store_size_bytes",
			Help:      "Size of backing stores after reallocation",
			Buckets:   prom.ExponentialBuckets(1<<10, 4, 12),
		}),
		flushes: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "build_flushes_total",
			Help:      "Total buffered build batches flushed",
		}),
		flushRows: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "build_rows_total",
			Help:      "Total rows appended by buffered builds",
		}),
		opLatency: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "archive_latency_seconds",
			Help:      "Latency of archive saves and loads",
			Buckets:   prom.DefBuckets,
		}, []string{"op", "status"}),
		transferred: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "archive_bytes_total",
			Help:      "Archive bytes written and read",
		}, []string{"op"}),
	}
	reg.MustRegister(c.grows, c.growBytes, c.flushes, c.flushRows, c.opLatency, c.transferred)
	return c
}

// RecordGrow implements arrayseq.MetricsCollector.
func (c *Collector) RecordGrow(_, _ int, bytes int64) {
	c.grows.Inc()
	c.growBytes.Observe(float64(bytes))
}

// RecordFlush implements arrayseq.MetricsCollector.
func (c *Collector) RecordFlush(_, rows int) {
	c.flushes.Inc()
	c.flushRows.Add(float64(rows))
}

// RecordSave implements arrayseq.MetricsCollector.
func (c *Collector) RecordSave(bytes int64, d time.Duration, err error) {
	c.observe("save", bytes, d, err)
}

// RecordLoad implements arrayseq.MetricsCollector.
func (c *Collector) RecordLoad(bytes int64, d time.Duration, err error) {
	c.observe("load", bytes, d, err)
}

func (c *Collector) observe(op string, bytes int64, d time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	c.opLatency.WithLabelValues(op, status).Observe(d.Seconds())
	c.transferred.WithLabelValues(op).Add(float64(bytes))
}
