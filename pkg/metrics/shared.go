package metrics

import (
	"time"

	"go.opencensus.io/stats"
)

// FilesMetrics reports about the items of a source history
type FilesMetrics struct {
	FileCount *stats.Int64Measure `metric:"fileCount" description:"number of items" extraviews:"sum" tags:"kind,operation"`
	FileSize  *stats.Int64Measure `metric:"fileSize" unit:"bytes" description:"size of item contents" extraviews:"sum" tags:"kind,operation"`
}

func (f *FilesMetrics) tags(operation string) map[string]string {
	return map[string]string{"kind": "history", "operation": operation}
}

// Inc counts an item
func (f *FilesMetrics) Inc(operation string) {
	Inc(f.FileCount, f.tags(operation))
}

// Size records the size of an item content
func (f *FilesMetrics) Size(size int64, operation string) {
	Int64(f.FileSize, size, f.tags(operation))
}

// UsageMetrics reports about calls to some entry point, such as backend operations
type UsageMetrics struct {
	Count    *stats.Int64Measure   `metric:"usageCount" description:"number of calls" tags:"kind,method"`
	Failures *stats.Int64Measure   `metric:"usageFailures" description:"number of failed calls" tags:"kind,method"`
	Timing   *stats.Float64Measure `metric:"timing" unit:"milliseconds" description:"duration of a call" tags:"kind,method"`
}

func (u *UsageMetrics) tags(method string) map[string]string {
	return map[string]string{"kind": "usage", "method": method}
}

// Used records a call, with its duration
func (u *UsageMetrics) Used(start time.Time, method string) {
	Since(start, u.Timing, u.tags(method))
	Inc(u.Count, u.tags(method))
}

// UsedAll records a call and its failure if any, in a single deferred call:
//
//	defer func(start time.Time) {
//	  m.UsedAll(start, "commit")(err)
//	}(time.Now())
func (u *UsageMetrics) UsedAll(start time.Time, method string) func(error) {
	return func(err error) {
		u.Used(start, method)
		if err != nil {
			u.Failed(method)
		}
	}
}

// Failed records a failed call
func (u *UsageMetrics) Failed(method string) {
	Inc(u.Failures, u.tags(method))
}

// StageMetrics reports about the progress of a pipeline stage
type StageMetrics struct {
	Processed *stats.Int64Measure   `metric:"processed" description:"number of units processed by a stage" extraviews:"sum" tags:"kind,stage"`
	Skipped   *stats.Int64Measure   `metric:"skipped" description:"number of units skipped by a stage" extraviews:"sum" tags:"kind,stage"`
	Timing    *stats.Float64Measure `metric:"stageTiming" unit:"milliseconds" description:"duration of a stage run" tags:"kind,stage"`
}

func (p *StageMetrics) tags(stage string) map[string]string {
	return map[string]string{"kind": "pipeline", "stage": stage}
}

// Add records n units processed by a stage
func (p *StageMetrics) Add(n int64, stage string) {
	if n == 0 {
		return
	}
	Int64(p.Processed, n, p.tags(stage))
}

// Skip records n units skipped by a stage
func (p *StageMetrics) Skip(n int64, stage string) {
	if n == 0 {
		return
	}
	Int64(p.Skipped, n, p.tags(stage))
}

// Ran records the duration of a stage run
func (p *StageMetrics) Ran(start time.Time, stage string) {
	Since(start, p.Timing, p.tags(stage))
}
