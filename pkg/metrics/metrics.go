// Package metrics tracks job throughput and data quality with Prometheus
// collectors.
//
// # Overview
//
// Each Collector owns a private registry, so several jobs (or tests) can run
// in one process without clashing on metric names. The collectors cover:
//   - rows loaded and values coerced to missing during type inference
//   - groups emitted and rows dropped for a missing key
//   - duration of each job phase
//   - jobs finished by status
//
// # Basic Usage
//
//	m := metrics.NewCollector("bears")
//	timer := metrics.NewTimer("load")
//	table, err := csvio.LoadFile(path, nil)
//	m.ObservePhase("load", timer.Stop())
//	m.RecordLoad(table)
//
//	// Persist for the node exporter textfile collector
//	err = m.WriteTextfile("/var/lib/node_exporter/bears.prom")
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ajitpratap0/bears/pkg/columnar"
)

// Collector groups the job metrics on a private registry
type Collector struct {
	registry      *prometheus.Registry
	rowsLoaded    prometheus.Counter
	valuesCoerced *prometheus.CounterVec
	missingValues *prometheus.CounterVec
	groupsEmitted prometheus.Counter
	rowsDropped   prometheus.Counter
	phaseDuration *prometheus.HistogramVec
	jobs          *prometheus.CounterVec
}

// NewCollector creates the collectors under namespace and registers them
func NewCollector(namespace string) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		rowsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_loaded_total",
			Help:      "Total number of input rows loaded into tables",
		}),
		valuesCoerced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "values_coerced_total",
			Help:      "Values in numeric columns that did not parse and were stored as missing",
		}, []string{"column"}),
		missingValues: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "missing_values_total",
			Help:      "Missing cells per loaded column",
		}, []string{"column"}),
		groupsEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "groups_emitted_total",
			Help:      "Total number of groups aggregated into result rows",
		}),
		rowsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_dropped_total",
			Help:      "Rows excluded from aggregation for having a missing key",
		}),
		phaseDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "phase_duration_seconds",
			Help:      "Duration of job phases",
			Buckets: []float64{
				0.001, // 1ms - small tables
				0.01,  // 10ms
				0.1,   // 100ms
				1,     // 1s - census sized input
				10,    // 10s
				60,    // 1m
			},
		}, []string{"phase"}),
		jobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_total",
			Help:      "Jobs finished, by status",
		}, []string{"status"}),
	}

	c.registry.MustRegister(
		c.rowsLoaded,
		c.valuesCoerced,
		c.missingValues,
		c.groupsEmitted,
		c.rowsDropped,
		c.phaseDuration,
		c.jobs,
	)
	return c
}

// Registry returns the registry holding the collectors
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// RecordLoad counts the rows of a freshly loaded table and, per column, its
// missing and coerced values
func (c *Collector) RecordLoad(t *columnar.Table) {
	c.rowsLoaded.Add(float64(t.RowCount()))
	for i := 0; i < t.NumColumns(); i++ {
		col := t.ColumnAt(i)
		c.missingValues.WithLabelValues(col.Name()).Add(float64(col.MissingCount()))
		if n := col.Coerced(); n > 0 {
			c.valuesCoerced.WithLabelValues(col.Name()).Add(float64(n))
		}
	}
}

// RecordGroups counts emitted groups and rows dropped for a missing key
func (c *Collector) RecordGroups(groups, dropped int) {
	c.groupsEmitted.Add(float64(groups))
	c.rowsDropped.Add(float64(dropped))
}

// ObservePhase records how long a phase took
func (c *Collector) ObservePhase(phase string, d time.Duration) {
	c.phaseDuration.WithLabelValues(phase).Observe(d.Seconds())
}

// RecordJob counts a finished job
func (c *Collector) RecordJob(status string) {
	c.jobs.WithLabelValues(status).Inc()
}

// WriteTextfile writes the current values in the Prometheus text format,
// atomically replacing path
func (c *Collector) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, c.registry)
}

// Timer provides a simple timing mechanism for measuring operation durations.
// It captures the start time on creation and calculates elapsed time on stop.
type Timer struct {
	start time.Time
	name  string
}

// NewTimer creates a new timer and starts timing immediately.
// The name parameter is for identification in logs or metrics.
func NewTimer(name string) *Timer {
	return &Timer{
		start: time.Now(),
		name:  name,
	}
}

// Name returns the name the timer was created with
func (t *Timer) Name() string {
	return t.name
}

// Stop returns the elapsed duration since creation. The timer can be
// stopped multiple times.
func (t *Timer) Stop() time.Duration {
	return time.Since(t.start)
}
