// Package zaplog exports opencensus views as structured log entries.
package zaplog

import (
	"go.opencensus.io/stats/view"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var _ view.Exporter = &Exporter{}

// Option for the log exporter
type Option func(*Exporter)

// WithLevel sets the level at which view data is logged. The default is debug.
func WithLevel(level zapcore.Level) Option {
	return func(e *Exporter) {
		e.level = level
	}
}

// Exporter logs view data
type Exporter struct {
	l     *zap.Logger
	level zapcore.Level
}

// NewExporter builds a log exporter. A nil logger yields a no-op exporter.
func NewExporter(l *zap.Logger, opts ...Option) *Exporter {
	if l == nil {
		l = zap.NewNop()
	}
	e := &Exporter{
		l:     l.With(zap.String("exporter", "metrics")),
		level: zapcore.DebugLevel,
	}
	for _, apply := range opts {
		apply(e)
	}
	return e
}

// ExportView logs one entry per row of view data
func (e *Exporter) ExportView(viewData *view.Data) {
	if viewData == nil || viewData.View == nil {
		return
	}
	ce := e.l.Check(e.level, "metric")
	if ce == nil {
		return
	}

	for _, row := range viewData.Rows {
		fields := make([]zap.Field, 0, len(row.Tags)+3)
		fields = append(fields,
			zap.String("view", viewData.View.Name),
			zap.Time("end", viewData.End),
		)
		for _, t := range row.Tags {
			fields = append(fields, zap.String(t.Key.Name(), t.Value))
		}
		fields = append(fields, value(row.Data))

		if ce = e.l.Check(e.level, "metric"); ce != nil {
			ce.Write(fields...)
		}
	}
}

func value(data view.AggregationData) zap.Field {
	switch d := data.(type) {
	case *view.CountData:
		return zap.Int64("count", d.Value)
	case *view.SumData:
		return zap.Float64("sum", d.Value)
	case *view.LastValueData:
		return zap.Float64("last", d.Value)
	case *view.DistributionData:
		return zap.Float64("mean", d.Mean)
	default:
		return zap.Skip()
	}
}
