package metrics

import "go.opencensus.io/stats"

type exampleMetrics struct {
	Telemetry struct {
		Ignored   []FilesMetrics      `group:"ignored"`
		TestCount *stats.Int64Measure `metric:"testCount" description:"number of tests"`
	} `group:"telemetry"`
	Volume struct {
		Items FilesMetrics `group:"items"`
	} `group:"volume"`
	Usage    *UsageMetrics `group:"usage"`
	Pipeline StageMetrics  `group:"pipeline"`
}

func (e *exampleMetrics) IncTest() {
	Inc(e.Telemetry.TestCount, map[string]string{"kind": "test"})
}
