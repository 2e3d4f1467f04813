package changeset

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/oneconcern/vcsmigrate/pkg/errors"
	"github.com/oneconcern/vcsmigrate/pkg/metrics"
	"github.com/oneconcern/vcsmigrate/pkg/model"
	"github.com/oneconcern/vcsmigrate/pkg/taskqueue"
	"github.com/oneconcern/vcsmigrate/pkg/taskqueue/status"
)

const (
	stage = "build"

	// revisions processed between two cancellation checks
	checkpoint = 4096
)

var (
	// ErrInvalidThreshold is returned when the thresholds are negative or inconsistent
	ErrInvalidThreshold = errors.New("invalid changeset threshold")

	// ErrNoStream is returned when the builder runs without a complete revision stream
	ErrNoStream = errors.New("no revision stream to build changesets from")
)

// M describes metrics for the changeset package
type M struct {
	Volume struct {
		Changesets metrics.StageMetrics `group:"changesets" description:"metrics about reconstructed changesets"`
	} `group:"volumetry" description:""`
}

// Builder reconstructs changesets from a revision stream
type Builder struct {
	metrics.Enable
	m *M

	anyComment  time.Duration
	sameComment time.Duration
	l           *zap.Logger

	result []*model.Changeset
	built  *atomic.Int64
}

// New changeset builder
func New(opts ...Option) (*Builder, error) {
	b := &Builder{
		anyComment:  DefaultAnyCommentThreshold,
		sameComment: DefaultSameCommentThreshold,
		l:           zap.NewNop(),
		built:       atomic.NewInt64(0),
	}
	for _, apply := range opts {
		apply(b)
	}

	if b.anyComment < 0 || b.sameComment < 0 {
		return nil, ErrInvalidThreshold.WrapMessage("thresholds must be positive")
	}
	if b.sameComment < b.anyComment {
		return nil, ErrInvalidThreshold.WrapMessage("same comment threshold (%v) is shorter than any comment threshold (%v)", b.sameComment, b.anyComment)
	}
	if b.MetricsEnabled() {
		b.m = b.EnsureMetrics("changeset", &M{}).(*M)
	}
	return b, nil
}

// Task wraps the builder as a queued task. The input stream is resolved when the task runs.
func (b *Builder) Task(input func() *model.Stream) taskqueue.Task {
	return taskqueue.NewTask(stage, func(ctx context.Context, reporter taskqueue.Reporter) error {
		stream := input()
		if stream == nil {
			return ErrNoStream
		}

		start := time.Now()
		res, err := b.build(ctx, stream)
		if err != nil {
			return err
		}
		b.result = res
		b.built.Store(int64(len(res)))

		if b.MetricsEnabled() {
			b.m.Volume.Changesets.Add(int64(len(res)), stage)
			b.m.Volume.Changesets.Ran(start, stage)
		}
		reporter.SetStatus(fmt.Sprintf("built %d changeset(s) from %d revision(s)", len(res), stream.Len()))
		b.l.Info("changesets built",
			zap.Int("changesets", len(res)),
			zap.Int("revisions", stream.Len()),
			zap.Duration("elapsed", time.Since(start)),
		)
		return nil
	})
}

// Changesets yields the result of the last run of the builder task.
//
// It must not be called concurrently with the task: use Count to follow progress.
func (b *Builder) Changesets() []*model.Changeset {
	return b.result
}

// Count is the number of changesets built by the last run of the builder task
func (b *Builder) Count() int {
	return int(b.built.Load())
}

// Build changesets from a complete stream
func (b *Builder) Build(stream *model.Stream) []*model.Changeset {
	res, _ := b.build(context.Background(), stream)
	return res
}

func (b *Builder) build(ctx context.Context, stream *model.Stream) ([]*model.Changeset, error) {
	var (
		sealed  = make([]*model.Changeset, 0)
		current *model.Changeset
		// author of the last placed revision
		previous string
		seen     int
	)

	place := func(r model.Revision) {
		author := model.NormalizeAuthor(r.Author)
		if current != nil && author == previous && !r.IsLabel() && !current.IsLabel() &&
			b.folds(current.Revisions[len(current.Revisions)-1], r) {
			current.Revisions = append(current.Revisions, r)
			return
		}
		if current != nil {
			sealed = append(sealed, current)
		}
		current = &model.Changeset{Author: r.Author, Revisions: []model.Revision{r}}
		previous = author
	}

	for _, at := range stream.Times() {
		bucket := stream.At(at)
		for len(bucket) > 0 {
			// labels are barriers: content revisions are only regrouped between them
			end := 0
			for end < len(bucket) && !bucket[end].IsLabel() {
				end++
			}
			for _, r := range regroup(bucket[:end], previous) {
				if seen++; seen%checkpoint == 0 && ctx.Err() != nil {
					return nil, status.ErrCancelled
				}
				place(r)
			}
			if end < len(bucket) {
				seen++
				place(bucket[end])
				end++
			}
			bucket = bucket[end:]
		}
	}
	if current != nil {
		sealed = append(sealed, current)
	}

	sort.SliceStable(sealed, func(i, j int) bool {
		return sealed[i].Timestamp().Before(sealed[j].Timestamp())
	})

	return sealed, nil
}

// folds tells if r extends a changeset whose last member is last
func (b *Builder) folds(last, r model.Revision) bool {
	gap := r.Timestamp.Sub(last.Timestamp)
	if gap <= b.anyComment {
		return true
	}
	return r.Comment == last.Comment && gap <= b.sameComment
}

// regroup revisions recorded at the same instant so that revisions by the same author are adjacent.
//
// The author of the preceding revision goes first, then authors in order of appearance.
// A revision never moves ahead of an earlier revision on the same item.
func regroup(revisions []model.Revision, previous string) []model.Revision {
	if len(revisions) < 2 {
		return revisions
	}

	rest := append([]model.Revision(nil), revisions...)
	res := make([]model.Revision, 0, len(rest))
	author := previous

	for len(rest) > 0 {
		var (
			kept    = rest[:0:0]
			blocked = make(map[string]struct{})
		)
		for _, r := range rest {
			_, isBlocked := blocked[r.Key]
			if !isBlocked && model.NormalizeAuthor(r.Author) == author {
				res = append(res, r)
				continue
			}
			blocked[r.Key] = struct{}{}
			kept = append(kept, r)
		}
		rest = kept
		if len(rest) > 0 {
			author = model.NormalizeAuthor(rest[0].Author)
		}
	}
	return res
}
