package metrics

import (
	"go.opencensus.io/stats/view"
	"go.uber.org/zap"

	"github.com/oneconcern/vcsmigrate/pkg/metrics/exporters/zaplog"
)

// testExporter logs metrics at debug level
func testExporter(tags map[string]string) view.Exporter {
	l, _ := zap.NewDevelopment()
	fields := make([]zap.Field, 0, len(tags))
	for k, v := range tags {
		fields = append(fields, zap.String(k, v))
	}
	return zaplog.NewExporter(l.With(fields...))
}
