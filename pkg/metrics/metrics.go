// Package metrics collects Prometheus metrics for a cleaning run.
//
// Every Collector owns its registry, so runs and tests never share counters.
// The registry can be written in the text exposition format for node
// exporter's textfile collector.
//
// # Basic Usage
//
//	collector := metrics.NewCollector()
//	timer := metrics.NewTimer()
//	// process one file
//	collector.FileProcessed(metrics.StatusSuccess, timer.Stop())
//	_ = collector.WriteToTextfile("/var/lib/node_exporter/tabclean.prom")
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ajitpratap0/tabclean/pkg/errors"
)

const namespace = "tabclean"

// File outcome labels.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Collector holds the metrics of one run.
type Collector struct {
	registry *prometheus.Registry

	filesProcessed    *prometheus.CounterVec
	fileDuration      prometheus.Histogram
	rowsRead          prometheus.Counter
	rowsWritten       prometheus.Counter
	duplicatesFound   prometheus.Counter
	invalidValues     *prometheus.CounterVec
	nullCells         *prometheus.CounterVec
	transformDuration *prometheus.HistogramVec
}

// NewCollector creates a collector with a fresh registry.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		filesProcessed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "files_processed_total",
				Help:      "Input files processed, by outcome",
			},
			[]string{"status"},
		),
		fileDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "file_duration_seconds",
				Help:      "Time to read, clean and write one input file",
				Buckets:   prometheus.ExponentialBuckets(0.01, 2, 14),
			},
		),
		rowsRead: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rows_read_total",
				Help:      "Data rows read from input files",
			},
		),
		rowsWritten: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rows_written_total",
				Help:      "Data rows written to output files",
			},
		),
		duplicatesFound: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "duplicates_found_total",
				Help:      "Rows whose duplicate key repeated an earlier row",
			},
		),
		invalidValues: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "invalid_values_total",
				Help:      "Cells replaced because they were not an allowed value",
			},
			[]string{"column"},
		),
		nullCells: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "null_cells_total",
				Help:      "Null cells in cleaned output",
			},
			[]string{"column"},
		),
		transformDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "transform_duration_seconds",
				Help:      "Time spent applying one transform to one column",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
			},
			[]string{"transform"},
		),
	}
}

// Registry returns the registry the metrics live in.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// ObserveTransform records one transform application. Its signature matches
// the mapping engine's observer hook.
func (c *Collector) ObserveTransform(name string, d time.Duration) {
	c.transformDuration.WithLabelValues(name).Observe(d.Seconds())
}

// FileProcessed records the outcome of one input file.
func (c *Collector) FileProcessed(status string, d time.Duration) {
	c.filesProcessed.WithLabelValues(status).Inc()
	c.fileDuration.Observe(d.Seconds())
}

// RowsRead adds to the rows read counter.
func (c *Collector) RowsRead(n int) {
	c.rowsRead.Add(float64(n))
}

// RowsWritten adds to the rows written counter.
func (c *Collector) RowsWritten(n int) {
	c.rowsWritten.Add(float64(n))
}

// RecordQuality adds the figures of one quality report.
func (c *Collector) RecordQuality(duplicates int, invalidByColumn, nullsByColumn map[string]int) {
	c.duplicatesFound.Add(float64(duplicates))
	for column, n := range invalidByColumn {
		c.invalidValues.WithLabelValues(column).Add(float64(n))
	}
	for column, n := range nullsByColumn {
		c.nullCells.WithLabelValues(column).Add(float64(n))
	}
}

// WriteToTextfile writes all metrics to path in the text exposition format.
func (c *Collector) WriteToTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to write metrics file").
			WithDetail("path", path)
	}
	return nil
}

// Timer measures elapsed time.
type Timer struct {
	start time.Time
}

// NewTimer starts a timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Stop returns the time elapsed since the timer started.
func (t *Timer) Stop() time.Duration {
	return time.Since(t.start)
}
