package analyzer

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"go.uber.org/atomic"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/oneconcern/vcsmigrate/pkg/metrics"
	"github.com/oneconcern/vcsmigrate/pkg/model"
	"github.com/oneconcern/vcsmigrate/pkg/source"
	"github.com/oneconcern/vcsmigrate/pkg/taskqueue"
)

const stage = "analyze"

// Analyzer builds the revision stream of a source subtree
type Analyzer struct {
	metrics.Enable
	m *M

	reader  source.Reader
	root    string
	exclude *Matcher
	l       *zap.Logger

	files     *atomic.Int64
	revisions *atomic.Int64
	skipped   *atomic.Int64
	excluded  *atomic.Int64
	cancelled *atomic.Bool
	completed *atomic.Bool

	mu        sync.RWMutex
	stream    *model.Stream
	rootKey   string
	locations map[string]location
}

// location of an item in the source tree at ingestion time
type location struct {
	name   string
	parent string
}

// New analyzer for the subtree rooted at some source path
func New(reader source.Reader, root string, opts ...Option) *Analyzer {
	a := &Analyzer{
		reader:    reader,
		root:      root,
		l:         zap.NewNop(),
		files:     atomic.NewInt64(0),
		revisions: atomic.NewInt64(0),
		skipped:   atomic.NewInt64(0),
		excluded:  atomic.NewInt64(0),
		cancelled: atomic.NewBool(false),
		completed: atomic.NewBool(false),
		stream:    model.NewStream(),
		locations: make(map[string]location),
	}
	for _, apply := range opts {
		apply(a)
	}
	if a.MetricsEnabled() {
		a.m = a.EnsureMetrics("analyzer", &M{}).(*M)
	}
	return a
}

// Task wraps the analysis as a queued task
func (a *Analyzer) Task() taskqueue.Task {
	return taskqueue.NewTask(stage, a.Run)
}

// Run the analysis.
//
// Cancellation is checked once per visited item: a cancelled run keeps what was ingested
// so far and returns no error.
func (a *Analyzer) Run(ctx context.Context, reporter taskqueue.Reporter) error {
	start := time.Now()
	a.reset()

	root, err := source.Container(ctx, a.reader, a.root)
	if err != nil {
		return err
	}
	a.l.Info("analyzing source history", zap.String("root", root.Path()), zap.String("source", a.reader.String()))
	a.mu.Lock()
	a.rootKey = root.Key()
	a.mu.Unlock()

	if err = a.visit(ctx, root, "", reporter); err != nil {
		return err
	}

	if a.cancelled.Load() {
		a.l.Info("analysis cancelled", zap.Int64("files", a.FileCount()), zap.Int64("revisions", a.RevisionCount()))
		return nil
	}

	a.completed.Store(true)
	if a.MetricsEnabled() {
		a.m.Volume.Revisions.Ran(start, stage)
	}
	reporter.SetStatus(fmt.Sprintf("analyzed %d file(s), %d revision(s)", a.FileCount(), a.RevisionCount()))
	a.l.Info("analysis complete",
		zap.Int64("files", a.FileCount()),
		zap.Int64("revisions", a.RevisionCount()),
		zap.Int64("skipped records", a.SkippedCount()),
		zap.Int64("excluded items", a.excluded.Load()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}

func (a *Analyzer) visit(ctx context.Context, item source.Item, parent string, reporter taskqueue.Reporter) error {
	if ctx.Err() != nil {
		a.cancelled.Store(true)
		return nil
	}

	if a.exclude.Match(item.Path()) {
		a.l.Debug("excluded", zap.String("path", item.Path()), zap.Bool("container", item.IsContainer()))
		a.excluded.Inc()
		return nil
	}

	revisions, err := item.Revisions(ctx)
	if err != nil {
		if ctx.Err() != nil {
			a.cancelled.Store(true)
			return nil
		}
		if !source.IsOnlyBadRecords(err) {
			return err
		}
		for _, e := range multierr.Errors(err) {
			a.l.Warn("skipped revision record", zap.String("path", item.Path()), zap.Error(e))
		}
		bad := int64(len(multierr.Errors(err)))
		a.skipped.Add(bad)
		if a.MetricsEnabled() {
			a.m.Volume.Revisions.Skip(bad, stage)
		}
	}

	a.mu.Lock()
	for _, r := range revisions {
		a.stream.Add(r)
	}
	a.locations[item.Key()] = location{name: item.Name(), parent: parent}
	a.mu.Unlock()
	a.revisions.Add(int64(len(revisions)))
	if a.MetricsEnabled() {
		a.m.Volume.Revisions.Add(int64(len(revisions)), stage)
	}

	if !item.IsContainer() {
		a.files.Inc()
		if a.MetricsEnabled() {
			a.m.Volume.Items.Inc(stage)
		}
		reporter.SetStatus(fmt.Sprintf("analyzing %s (%d file(s), %d revision(s))", item.Path(), a.FileCount(), a.RevisionCount()))
		return nil
	}

	children, err := item.Children(ctx)
	if err != nil {
		if ctx.Err() != nil {
			a.cancelled.Store(true)
			return nil
		}
		return err
	}
	for _, child := range children {
		if err = a.visit(ctx, child, item.Key(), reporter); err != nil {
			return err
		}
		if a.cancelled.Load() {
			return nil
		}
	}
	return nil
}

func (a *Analyzer) reset() {
	a.files.Store(0)
	a.revisions.Store(0)
	a.skipped.Store(0)
	a.excluded.Store(0)
	a.cancelled.Store(false)
	a.completed.Store(false)
	a.mu.Lock()
	a.stream = model.NewStream()
	a.rootKey = ""
	a.locations = make(map[string]location)
	a.mu.Unlock()
}

// FileCount is the number of leaves visited so far
func (a *Analyzer) FileCount() int64 {
	return a.files.Load()
}

// RevisionCount is the number of revisions ingested so far
func (a *Analyzer) RevisionCount() int64 {
	return a.revisions.Load()
}

// SkippedCount is the number of malformed revision records skipped so far
func (a *Analyzer) SkippedCount() int64 {
	return a.skipped.Load()
}

// IsComplete tells if the last run went through the whole subtree
func (a *Analyzer) IsComplete() bool {
	return a.completed.Load()
}

// IsCancelled tells if the last run was cancelled
func (a *Analyzer) IsCancelled() bool {
	return a.cancelled.Load()
}

// Partial yields a copy of the stream as ingested so far
func (a *Analyzer) Partial() *model.Stream {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return a.stream.Clone()
}

// Stream yields the complete revision stream, or nil when the analysis did not complete.
//
// The returned stream must not be mutated.
func (a *Analyzer) Stream() *model.Stream {
	if !a.completed.Load() {
		return nil
	}
	a.mu.RLock()
	defer a.mu.RUnlock()

	return a.stream
}

// RootKey is the key of the analyzed root container
func (a *Analyzer) RootKey() string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return a.rootKey
}

// Locate yields the name and parent key of an item, as they were at ingestion time
func (a *Analyzer) Locate(key string) (name, parent string, ok bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	loc, ok := a.locations[key]
	return loc.name, loc.parent, ok
}

// Content retrieves the content of some revision from the source
func (a *Analyzer) Content(ctx context.Context, ref string) (io.ReadCloser, error) {
	return a.reader.Content(ctx, ref)
}
