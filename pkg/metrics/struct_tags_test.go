package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opencensus.io/stats"
)

func TestStructTags(t *testing.T) {
	r := newRegistry()
	m := &exampleMetrics{}

	scanStruct("parent", r.addMeasure, m)

	assert.Nil(t, m.Telemetry.Ignored)
	assert.NotNil(t, m.Telemetry.TestCount)
	assert.NotNil(t, m.Volume.Items.FileCount)
	assert.NotNil(t, m.Volume.Items.FileSize)
	require.NotNil(t, m.Usage)
	require.NotNil(t, m.Usage.Timing)
	assert.IsType(t, &stats.Float64Measure{}, m.Usage.Timing)
	assert.NotNil(t, m.Pipeline.Processed)

	assert.Equal(t, "parent/volume/items/fileCount", m.Volume.Items.FileCount.Name())
	assert.Len(t, r.measures, 9)
	assert.Len(t, r.views, 13)
}

func TestScanStructPanics(t *testing.T) {
	r := newRegistry()
	assert.Panics(t, func() { scanStruct("x", r.addMeasure, exampleMetrics{}) })
	assert.Panics(t, func() { scanStruct("x", r.addMeasure, (*exampleMetrics)(nil)) })
}
