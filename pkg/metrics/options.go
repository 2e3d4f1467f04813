package metrics

import (
	"time"

	"go.opencensus.io/stats/view"
)

// Option for the metrics registry
type Option func(*registry)

// WithExporter conveys views to some collector. The default exporter logs nothing.
func WithExporter(exporter view.Exporter) Option {
	return func(r *registry) {
		if exporter != nil {
			r.exporter = flusher(exporter)
		}
	}
}

// WithReportingPeriod sets how often views are exported in the background.
// Periods under a second are ignored: the opencensus default of 10s applies.
func WithReportingPeriod(d time.Duration) Option {
	return func(r *registry) {
		r.period = d
	}
}
