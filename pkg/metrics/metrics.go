// Package metrics collects opencensus measurements about the stages of a migration.
//
// Stages declare their metrics as structs of measures, decorated with struct tags.
// Registering such a struct allocates its measures and a default view for each.
package metrics

import (
	"context"
	"path"
	"strings"
	"sync"
	"time"

	units "github.com/docker/go-units"
	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
	"go.uber.org/zap"

	"github.com/oneconcern/vcsmigrate/pkg/metrics/exporters/zaplog"
)

const (
	unitCount        = "count"
	unitMilliseconds = "milliseconds"
	unitBytes        = "bytes"
)

var (
	// global registry
	mp       *registry
	initOnce sync.Once
)

type registry struct {
	exporter FlushExporter
	period   time.Duration

	mu       sync.Mutex
	modules  map[string]interface{}
	measures []stats.Measure
	views    []*view.View
}

// DefaultExporter logs views to the provided logger, at debug level
func DefaultExporter(l *zap.Logger) view.Exporter {
	return zaplog.NewExporter(l)
}

func newRegistry(opts ...Option) *registry {
	r := &registry{
		modules: make(map[string]interface{}),
	}
	for _, apply := range opts {
		apply(r)
	}
	if r.exporter == nil {
		r.exporter = flusher(DefaultExporter(nil))
	}

	view.RegisterExporter(r.exporter)
	if r.period >= time.Second {
		view.SetReportingPeriod(r.period)
	}
	return r
}

func (r *registry) ensure(location string, m interface{}) interface{} {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.modules[location]; ok {
		if !sameType(existing, m) {
			panic("metrics module " + location + " is already registered with a different type")
		}
		return existing
	}
	scanStruct(location, r.addMeasure, m)
	r.modules[location] = m
	return m
}

// flush exports the current data of all registered views
func (r *registry) flush() {
	r.mu.Lock()
	views := append([]*view.View(nil), r.views...)
	r.mu.Unlock()

	now := time.Now()
	for _, v := range views {
		rows, err := view.RetrieveData(v.Name)
		if err != nil {
			continue
		}
		r.exporter.Flush(&view.Data{View: v, Start: now, End: now, Rows: rows})
	}
}

// addMeasure creates a measure and its views, as described by the struct tags of a field.
//
// The default view depends on the unit: durations and sizes get a distribution, counters a count.
// Extra views are declared with extraviews:"sum,lastvalue,count".
func (r *registry) addMeasure(field interface{}, name, group string, tags fieldTags) interface{} {
	name = path.Join(group, name)
	description := tags.description
	if description == "" {
		description = name
	}
	unit, dist := unitAndDist(tags.unit)

	var measure stats.Measure
	switch field.(type) {
	case *stats.Int64Measure:
		measure = stats.Int64(name, description, unit)
	case *stats.Float64Measure:
		measure = stats.Float64(name, description, unit)
	default:
		return nil
	}
	r.measures = append(r.measures, measure)

	keys := make([]tag.Key, 0, len(tags.groupings))
	for _, g := range tags.groupings {
		keys = append(keys, tag.MustNewKey(g))
	}

	r.register(&view.View{
		Name:        name,
		Description: describe(description, dist),
		Measure:     measure,
		Aggregation: dist,
		TagKeys:     keys,
	})

	for _, extra := range tags.views {
		var agg *view.Aggregation
		switch extra {
		case unitCount:
			agg = view.Count()
		case "sum":
			agg = view.Sum()
		case "lastvalue":
			agg = view.LastValue()
		default:
			continue
		}
		r.register(&view.View{
			Name:        describe(name, agg),
			Description: describe(description, agg),
			Measure:     measure,
			Aggregation: agg,
			TagKeys:     keys,
		})
	}
	return measure
}

func (r *registry) register(v *view.View) {
	r.views = append(r.views, v)
	_ = view.Register(v)
}

func unitAndDist(unit string) (string, *view.Aggregation) {
	switch unit {
	case unitMilliseconds:
		// buckets in milliseconds
		return stats.UnitMilliseconds, view.Distribution(
			1, 10, 50, 100, 500,
			1000, 5000, 10000, 30000, 60000,
			300000, 900000, 3600000,
		)
	case unitBytes:
		return stats.UnitBytes, view.Distribution(
			512,
			units.KiB, 16*units.KiB, 128*units.KiB,
			units.MiB, 16*units.MiB, 128*units.MiB,
			units.GiB,
		)
	default:
		return stats.UnitDimensionless, view.Count()
	}
}

func describe(desc string, agg *view.Aggregation) string {
	switch agg.Type {
	case view.AggTypeCount:
		return desc + " [count]"
	case view.AggTypeSum:
		return desc + " [cumulated]"
	case view.AggTypeDistribution:
		return desc + " [distribution]"
	case view.AggTypeLastValue:
		return desc + " [last]"
	default:
		return desc
	}
}

func record(ctx context.Context, extras []map[string]string, m stats.Measurement) {
	mutators := make([]tag.Mutator, 0, 4)
	for _, extra := range extras {
		for k, v := range extra {
			mutators = append(mutators, tag.Upsert(tag.MustNewKey(k), v))
		}
	}
	_ = stats.RecordWithTags(ctx, mutators, m)
}

func splitList(in string) []string {
	if in == "" {
		return nil
	}
	parts := strings.Split(in, ",")
	res := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			res = append(res, p)
		}
	}
	return res
}

// FlushExporter is a view exporter which may be flushed concurrently with the background exporter
type FlushExporter interface {
	view.Exporter
	Flush(*view.Data)
}

func flusher(e view.Exporter) FlushExporter {
	if f, ok := e.(FlushExporter); ok {
		return f
	}
	return &simpleFlusher{e: e}
}

type simpleFlusher struct {
	e view.Exporter
	m sync.RWMutex
}

func (f *simpleFlusher) ExportView(viewData *view.Data) {
	f.m.RLock()
	f.e.ExportView(viewData)
	f.m.RUnlock()
}

func (f *simpleFlusher) Flush(viewData *view.Data) {
	f.m.Lock()
	f.e.ExportView(viewData)
	f.m.Unlock()
}
