// Package exporter replays changesets as commits and tags on a target backend.
package exporter

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/oneconcern/vcsmigrate/pkg/backend"
	"github.com/oneconcern/vcsmigrate/pkg/exporter/status"
	"github.com/oneconcern/vcsmigrate/pkg/metrics"
	"github.com/oneconcern/vcsmigrate/pkg/model"
	"github.com/oneconcern/vcsmigrate/pkg/taskqueue"
	qstatus "github.com/oneconcern/vcsmigrate/pkg/taskqueue/status"
)

const stage = "export"

// Source retrieves content and initial locations of source items
type Source interface {
	Content(ctx context.Context, ref string) (io.ReadCloser, error)

	// Locate yields the name and parent key of an item, when known
	Locate(key string) (name, parent string, ok bool)

	// RootKey is the key of the container mapped to the root of the target tree
	RootKey() string
}

// Exporter replays changesets on a backend
type Exporter struct {
	metrics.Enable
	m *M

	target   backend.Backend
	location string
	source   Source

	reset          bool
	continueAfter  time.Time
	authors        model.AuthorMapping
	domain         string
	transcoder     *Transcoder
	defaultComment string
	l              *zap.Logger

	total     *atomic.Int64
	done      *atomic.Int64
	commits   *atomic.Int64
	tags      *atomic.Int64
	skipped   *atomic.Int64
	cancelled *atomic.Bool
}

// New exporter to some backend location
func New(target backend.Backend, location string, src Source, opts ...Option) *Exporter {
	e := &Exporter{
		target:         target,
		location:       location,
		source:         src,
		defaultComment: DefaultComment,
		l:              zap.NewNop(),
		total:          atomic.NewInt64(0),
		done:           atomic.NewInt64(0),
		commits:        atomic.NewInt64(0),
		tags:           atomic.NewInt64(0),
		skipped:        atomic.NewInt64(0),
		cancelled:      atomic.NewBool(false),
	}
	for _, apply := range opts {
		apply(e)
	}
	if e.MetricsEnabled() {
		e.m = e.EnsureMetrics("exporter", &M{}).(*M)
	}
	return e
}

// Task wraps the export as a queued task. The changesets are resolved when the task runs.
func (e *Exporter) Task(input func() []*model.Changeset) taskqueue.Task {
	return taskqueue.NewTask(stage, func(ctx context.Context, reporter taskqueue.Reporter) error {
		changesets := input()
		if changesets == nil {
			return status.ErrNoChangesets
		}
		return e.Run(ctx, changesets, reporter)
	})
}

// Run the export.
//
// Cancellation is checked between changesets: a changeset is never interrupted while committing.
// A cancelled export returns the queue's cancellation error, which is not a failure.
func (e *Exporter) Run(ctx context.Context, changesets []*model.Changeset, reporter taskqueue.Reporter) error {
	start := time.Now()
	e.init(len(changesets))

	// backend operations complete even when an abort is requested meanwhile
	bctx := context.WithoutCancel(ctx)

	cursor, lastCommit, err := e.prepare(bctx)
	if err != nil {
		return err
	}

	ws := newWorkspace(e.source, e.l)
	tagged := make(map[string]string)

	for i, cs := range changesets {
		if ctx.Err() != nil {
			e.cancelled.Store(true)
			e.l.Info("export cancelled",
				zap.Int64("commits", e.CommitCount()),
				zap.Int("remaining changesets", len(changesets)-i),
			)
			return qstatus.ErrCancelled
		}

		if !cursor.IsZero() && !cs.Timestamp().After(cursor) {
			// already applied by some prior run: only keep track of paths
			ws.apply(cs)
			e.skipped.Inc()
			e.done.Inc()
			if e.MetricsEnabled() {
				e.m.Volume.Changesets.Skip(1, stage)
			}
			continue
		}

		if cs.IsLabel() {
			if err = e.tag(bctx, cs, lastCommit, tagged); err != nil {
				return err
			}
		} else {
			var id string
			if id, err = e.commit(bctx, cs, ws.apply(cs)); err != nil {
				return err
			}
			lastCommit = id
		}

		n := e.done.Inc()
		reporter.SetStatus(fmt.Sprintf("%d/%d %s %s", n, len(changesets), cs.Timestamp().Format(time.RFC3339), cs.Author))
	}

	if e.MetricsEnabled() {
		e.m.Volume.Changesets.Ran(start, stage)
	}
	e.l.Info("export complete",
		zap.String("target", e.target.String()),
		zap.Int64("commits", e.CommitCount()),
		zap.Int64("tags", e.TagCount()),
		zap.Int64("skipped changesets", e.SkippedCount()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}

func (e *Exporter) init(total int) {
	e.total.Store(int64(total))
	e.done.Store(0)
	e.commits.Store(0)
	e.tags.Store(0)
	e.skipped.Store(0)
	e.cancelled.Store(false)
}

// prepare the target and determine the resume cursor
func (e *Exporter) prepare(ctx context.Context) (time.Time, string, error) {
	if e.reset {
		if err := e.target.Reset(ctx, e.location); err != nil {
			return time.Time{}, "", status.ErrTarget.WrapWithLog(e.l, err, zap.String("location", e.location))
		}
	} else if err := e.target.Init(ctx, e.location); err != nil {
		return time.Time{}, "", status.ErrTarget.WrapWithLog(e.l, err, zap.String("location", e.location))
	}

	last, err := e.target.LastCommit(ctx)
	if err != nil {
		return time.Time{}, "", status.ErrTarget.WrapWithLog(e.l, err, zap.String("location", e.location))
	}

	cursor := e.continueAfter
	var lastCommit string
	if last != nil {
		lastCommit = last.ID
		if last.Timestamp.After(cursor) {
			cursor = last.Timestamp
		}
	}
	if !cursor.IsZero() {
		e.l.Info("resuming export", zap.Time("continue after", cursor), zap.String("last commit", lastCommit))
	}
	return cursor, lastCommit, nil
}

func (e *Exporter) commit(ctx context.Context, cs *model.Changeset, mutations []backend.Mutation) (id string, err error) {
	if e.MetricsEnabled() {
		defer func(t0 time.Time) {
			e.m.Usage.Commit.UsedAll(t0, "commit")(err)
		}(time.Now())
	}

	author := e.authors.Resolve(cs.Author, e.domain)
	message := cs.Comment()
	if message == "" {
		message = e.defaultComment
	}
	message = e.transcoder.Transcode(message)

	id, err = e.target.Commit(ctx, backend.Commit{
		Mutations: mutations,
		Author:    author,
		Timestamp: cs.Timestamp(),
		Message:   message,
	})
	if err != nil {
		return "", status.ErrCommit.WrapWithLog(e.l, err,
			zap.Stringer("changeset", cs),
			zap.Int64("commits", e.CommitCount()),
		)
	}

	e.commits.Inc()
	if e.MetricsEnabled() {
		e.m.Volume.Changesets.Add(1, stage)
	}
	e.l.Debug("changeset committed",
		zap.String("commit", id),
		zap.Stringer("author", author),
		zap.Time("timestamp", cs.Timestamp()),
		zap.Int("revisions", cs.Len()),
		zap.Int("mutations", len(mutations)),
	)
	return id, nil
}

func (e *Exporter) tag(ctx context.Context, cs *model.Changeset, commitID string, tagged map[string]string) error {
	label := cs.Label()
	if commitID == "" {
		e.l.Warn("label before any commit, skipped", zap.String("label", label), zap.Time("timestamp", cs.Timestamp()))
		return nil
	}

	name := model.SanitizeTag(label)
	if name == "" {
		name = fmt.Sprintf("label-%d", cs.Revisions[0].Version)
	}
	if tagged[name] == commitID {
		// the same label set on several items
		return nil
	}

	if err := e.target.Tag(ctx, name, commitID); err != nil {
		return status.ErrCommit.WrapWithLog(e.l, err, zap.String("label", label), zap.String("tag", name), zap.String("commit", commitID))
	}
	tagged[name] = commitID

	e.tags.Inc()
	if e.MetricsEnabled() {
		e.m.Volume.Tags.Add(1, stage)
	}
	e.l.Debug("label tagged", zap.String("label", label), zap.String("tag", name), zap.String("commit", commitID))
	return nil
}

// Total is the number of changesets of the current run
func (e *Exporter) Total() int64 {
	return e.total.Load()
}

// Done is the number of changesets processed so far, skipped ones included
func (e *Exporter) Done() int64 {
	return e.done.Load()
}

// CommitCount is the number of commits created so far
func (e *Exporter) CommitCount() int64 {
	return e.commits.Load()
}

// TagCount is the number of tags created so far
func (e *Exporter) TagCount() int64 {
	return e.tags.Load()
}

// SkippedCount is the number of changesets skipped as already exported
func (e *Exporter) SkippedCount() int64 {
	return e.skipped.Load()
}

// IsCancelled tells if the last run was cancelled
func (e *Exporter) IsCancelled() bool {
	return e.cancelled.Load()
}
