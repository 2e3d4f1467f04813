package metrics

import (
	"context"
	"time"

	"go.opencensus.io/stats"
)

// Init the global registry, with its exporter.
//
// Only the first call matters. Registering metrics before Init initializes the registry with defaults.
func Init(opts ...Option) {
	initOnce.Do(func() {
		mp = newRegistry(opts...)
	})
}

// Flush all collected metrics to the exporter
func Flush() {
	if mp == nil {
		return
	}
	mp.flush()
}

// EnsureMetrics registers a struct of measures at some location, allocating its measures.
//
// Only the first registration at a location is retained. Registering another type at the
// same location panics.
func EnsureMetrics(location string, m interface{}) interface{} {
	Init()
	return mp.ensure(location, m)
}

// Inc increments a counter
func Inc(counter *stats.Int64Measure, tags ...map[string]string) {
	record(context.Background(), tags, counter.M(1))
}

// Int64 records a value
func Int64(measure *stats.Int64Measure, value int64, tags ...map[string]string) {
	record(context.Background(), tags, measure.M(value))
}

// Since records the milliseconds elapsed since start
func Since(start time.Time, measure *stats.Float64Measure, tags ...map[string]string) {
	record(context.Background(), tags, measure.M(float64(time.Since(start).Nanoseconds())/1e6))
}

// Enable equips a pipeline stage with metrics collection.
//
//	type Exporter struct {
//	  metrics.Enable
//	  m *M
//	}
//
//	e.EnableMetrics(enabled)
//	if e.MetricsEnabled() {
//	  e.m = e.EnsureMetrics("exporter", &M{}).(*M)
//	}
type Enable struct {
	metricsEnabled bool
}

// MetricsEnabled tells whether metrics are collected
func (e Enable) MetricsEnabled() bool {
	return e.metricsEnabled
}

// EnableMetrics toggles metrics collection
func (e *Enable) EnableMetrics(enabled bool) {
	e.metricsEnabled = enabled
}

// EnsureMetrics registers a struct of measures, at the given name in the metrics tree.
//
// It panics if m is not a pointer to a struct.
func (e *Enable) EnsureMetrics(name string, m interface{}) interface{} {
	return EnsureMetrics(name, m)
}
