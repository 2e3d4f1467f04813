package zaplog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestExportView(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	e := NewExporter(zap.New(core))

	key := tag.MustNewKey("operation")
	v := &view.View{
		Name:        "changesets",
		Measure:     stats.Int64("changesets", "number of changesets", stats.UnitDimensionless),
		Aggregation: view.Count(),
		TagKeys:     []tag.Key{key},
	}

	e.ExportView(&view.Data{
		View: v,
		End:  time.Now(),
		Rows: []*view.Row{
			{Tags: []tag.Tag{{Key: key, Value: "build"}}, Data: &view.CountData{Value: 12}},
			{Tags: []tag.Tag{{Key: key, Value: "export"}}, Data: &view.SumData{Value: 3}},
		},
	})

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "changesets", entries[0].ContextMap()["view"])
	assert.Equal(t, "build", entries[0].ContextMap()["operation"])
	assert.Equal(t, int64(12), entries[0].ContextMap()["count"])
	assert.Equal(t, float64(3), entries[1].ContextMap()["sum"])

	quiet := NewExporter(zap.New(core), WithLevel(zapcore.DebugLevel-1))
	quiet.ExportView(nil)
	assert.Len(t, logs.All(), 2)
	NewExporter(nil).ExportView(&view.Data{View: v})
}
