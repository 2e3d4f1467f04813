// Package migration orchestrates the analysis, changeset reconstruction and export of a source history.
//
// All stages of a run execute in order on a primary single-worker queue. Short probes, such as
// querying the target for its last commit, run on a second queue and never contend with the pipeline.
package migration

import (
	"context"
	"fmt"
	"sync"

	"github.com/spf13/afero"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/oneconcern/vcsmigrate/pkg/analyzer"
	"github.com/oneconcern/vcsmigrate/pkg/backend"
	"github.com/oneconcern/vcsmigrate/pkg/changeset"
	"github.com/oneconcern/vcsmigrate/pkg/config"
	"github.com/oneconcern/vcsmigrate/pkg/exporter"
	"github.com/oneconcern/vcsmigrate/pkg/migration/status"
	"github.com/oneconcern/vcsmigrate/pkg/model"
	"github.com/oneconcern/vcsmigrate/pkg/source"
	"github.com/oneconcern/vcsmigrate/pkg/taskqueue"
)

const (
	stageIdle    = "idle"
	stageAuthors = "authors"
)

// Migration of a source history to a target backend
type Migration struct {
	cfg          *config.Config
	reader       source.Reader
	newBackend   func() (backend.Backend, error)
	probeBackend func() (backend.Backend, error)
	fs           afero.Fs
	l            *zap.Logger

	primary *taskqueue.Queue
	probe   *taskqueue.Queue
	closed  *atomic.Bool

	mu  sync.Mutex
	run *run
}

// run holds the stages of one pipeline run
type run struct {
	analyzer *analyzer.Analyzer
	builder  *changeset.Builder
	exporter *exporter.Exporter
	target   backend.Backend
	authors  *AuthorsReport

	stage    string
	aborted  bool
	outcome  Outcome
	failures []error
	done     chan struct{}
}

// AuthorsReport lists the authors found by an analysis
type AuthorsReport struct {
	// All authors, normalized
	All []string
	// Unmapped authors, with no identity in the mapping
	Unmapped []string
	// Added authors, appended to the mapping file
	Added []string
}

// New migration. Each run gets a fresh backend from newBackend.
func New(cfg *config.Config, reader source.Reader, newBackend func() (backend.Backend, error), opts ...Option) (*Migration, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	m := &Migration{
		cfg:        cfg,
		reader:     reader,
		newBackend: newBackend,
		fs:         afero.NewOsFs(),
		l:          zap.NewNop(),
		closed:     atomic.NewBool(false),
	}
	for _, apply := range opts {
		apply(m)
	}
	if m.probeBackend == nil {
		m.probeBackend = newBackend
	}

	m.primary = taskqueue.New("primary", taskqueue.Logger(m.l), taskqueue.OnIdle(m.onIdle))
	m.probe = taskqueue.New("probe", taskqueue.Logger(m.l))
	return m, nil
}

// Start a full run: analysis, changeset reconstruction, then export.
//
// Start does not block: use Wait or Status to follow the run.
func (m *Migration) Start() error {
	r, err := m.newRun()
	if err != nil {
		return err
	}

	target, err := m.newBackend()
	if err != nil {
		return m.abandon(r, err)
	}
	m.mu.Lock()
	r.target = target
	m.mu.Unlock()

	builder, err := changeset.New(
		changeset.Logger(m.l),
		changeset.AnyCommentThreshold(m.cfg.AnyCommentThreshold),
		changeset.SameCommentThreshold(m.cfg.SameCommentThreshold),
		changeset.WithMetrics(m.cfg.Metrics),
	)
	if err != nil {
		return m.abandon(r, err)
	}

	var transcoder *exporter.Transcoder
	if m.cfg.TranscodeComments {
		if transcoder, err = exporter.NewTranscoder(m.cfg.SourceEncoding, m.cfg.CommentEncoding); err != nil {
			return m.abandon(r, err)
		}
	}

	opts := []exporter.Option{
		exporter.Logger(m.l),
		exporter.Reset(m.cfg.Reset),
		exporter.Authors(config.LoadAuthors(m.fs, m.cfg.AuthorMap, m.l)),
		exporter.EmailDomain(m.cfg.EmailDomain),
		exporter.Transcode(transcoder),
		exporter.WithDefaultComment(m.cfg.DefaultComment),
		exporter.WithMetrics(m.cfg.Metrics),
	}
	if !m.cfg.ContinueAfter.IsZero() {
		opts = append(opts, exporter.ContinueAfter(m.cfg.ContinueAfter))
	}
	exp := exporter.New(target, m.cfg.Target, r.analyzer, opts...)

	m.mu.Lock()
	r.builder = builder
	r.exporter = exp
	m.mu.Unlock()

	err = m.primary.Submit(
		m.staged(r, r.analyzer.Task()),
		m.staged(r, builder.Task(r.analyzer.Stream)),
		m.staged(r, exp.Task(builder.Changesets)),
	)
	if err != nil {
		return m.abandon(r, err)
	}
	m.l.Info("migration started",
		zap.String("source", m.reader.String()),
		zap.String("path", m.cfg.SourcePath),
		zap.String("target", target.String()),
	)
	return nil
}

// AnalyzeAuthors starts an analysis-only run, which lists the authors of the source history.
//
// Unmapped authors are appended to the author mapping file, with an empty identity.
func (m *Migration) AnalyzeAuthors() error {
	r, err := m.newRun()
	if err != nil {
		return err
	}

	authors := taskqueue.NewTask(stageAuthors, func(ctx context.Context, reporter taskqueue.Reporter) error {
		stream := r.analyzer.Stream()
		if stream == nil {
			return changeset.ErrNoStream
		}
		all := stream.Authors()
		mapping := config.LoadAuthors(m.fs, m.cfg.AuthorMap, m.l)
		report := &AuthorsReport{All: all, Unmapped: mapping.Unmapped(all)}

		if m.cfg.AuthorMap != "" {
			added, err := config.AppendAuthors(m.fs, m.cfg.AuthorMap, report.Unmapped)
			if err != nil {
				// a mapping file we cannot write does not invalidate the analysis
				m.l.Warn("cannot update author mapping", zap.String("path", m.cfg.AuthorMap), zap.Error(err))
			}
			report.Added = added
		}

		m.mu.Lock()
		r.authors = report
		m.mu.Unlock()
		reporter.SetStatus(fmt.Sprintf("found %d author(s), %d unmapped", len(all), len(report.Unmapped)))
		return nil
	})

	if err = m.primary.Submit(m.staged(r, r.analyzer.Task()), m.staged(r, authors)); err != nil {
		return m.abandon(r, err)
	}
	return nil
}

func (m *Migration) newRun() (*run, error) {
	if m.closed.Load() {
		return nil, status.ErrClosed
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.run != nil && !m.run.outcome.IsTerminal() {
		return nil, status.ErrBusy
	}

	matcher, err := analyzer.NewMatcher(m.cfg.Exclude...)
	if err != nil {
		return nil, err
	}
	r := &run{
		analyzer: analyzer.New(m.reader, m.cfg.SourcePath,
			analyzer.Logger(m.l),
			analyzer.Exclude(matcher),
			analyzer.WithMetrics(m.cfg.Metrics),
		),
		stage:   stageIdle,
		outcome: OutcomeRunning,
		done:    make(chan struct{}),
	}
	m.run = r
	return r, nil
}

// abandon a run which could not be submitted
func (m *Migration) abandon(r *run, err error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r.outcome = OutcomeFailed
	r.failures = append(r.failures, err)
	m.closeTarget(r)
	close(r.done)
	return err
}

// closeTarget releases the backend of a run. It must be called with the lock held.
func (m *Migration) closeTarget(r *run) {
	if r.target == nil {
		return
	}
	if err := r.target.Close(); err != nil {
		m.l.Warn("closing target", zap.String("target", r.target.String()), zap.Error(err))
	}
	r.target = nil
}

// staged tracks the current stage of a run
func (m *Migration) staged(r *run, task taskqueue.Task) taskqueue.Task {
	return taskqueue.NewTask(task.Name(), func(ctx context.Context, reporter taskqueue.Reporter) error {
		m.mu.Lock()
		r.stage = task.Name()
		m.mu.Unlock()

		return task.Run(ctx, reporter)
	})
}

// onIdle concludes the current run
func (m *Migration) onIdle() {
	failures := m.primary.FetchExceptions()

	m.mu.Lock()
	defer m.mu.Unlock()

	r := m.run
	if r == nil || r.outcome.IsTerminal() {
		return
	}
	r.failures = append(r.failures, failures...)
	cancelled := r.aborted || r.analyzer.IsCancelled() || (r.exporter != nil && r.exporter.IsCancelled())

	switch {
	case len(r.failures) > 0:
		r.outcome = OutcomeFailed
	case cancelled:
		r.outcome = OutcomeCancelled
	default:
		r.outcome = OutcomeCompleted
	}
	r.stage = stageIdle
	m.closeTarget(r)
	close(r.done)

	fields := []zap.Field{zap.Stringer("outcome", r.outcome), zap.Duration("active", m.primary.ActiveTime())}
	if r.exporter != nil {
		fields = append(fields, zap.Int64("commits", r.exporter.CommitCount()), zap.Int64("tags", r.exporter.TagCount()))
	}
	for _, err := range r.failures {
		m.l.Error("run failure", zap.Error(err))
	}
	m.l.Info("migration run over", fields...)
}

// Abort the current run. The export stops after the changeset being committed.
func (m *Migration) Abort() {
	m.mu.Lock()
	if m.run != nil && !m.run.outcome.IsTerminal() {
		m.run.aborted = true
	}
	m.mu.Unlock()

	m.primary.Abort()
}

// Wait for the current run to end, and yield its outcome
func (m *Migration) Wait() Outcome {
	m.mu.Lock()
	r := m.run
	m.mu.Unlock()

	if r == nil {
		return OutcomeNone
	}
	<-r.done

	m.mu.Lock()
	defer m.mu.Unlock()
	return r.outcome
}

// Authors yields the report of the last authors analysis, if any
func (m *Migration) Authors() *AuthorsReport {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.run == nil {
		return nil
	}
	return m.run.authors
}

// Status yields a snapshot of the progress of the current or last run
func (m *Migration) Status() Progress {
	p := Progress{
		Stage:      stageIdle,
		LastStatus: m.primary.LastStatus(),
		ActiveTime: m.primary.ActiveTime(),
		Idle:       m.primary.IsIdle(),
		Aborting:   m.primary.IsAborting(),
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	r := m.run
	if r == nil {
		return p
	}
	p.Outcome = r.outcome
	p.Stage = r.stage
	p.Failures = append([]error(nil), r.failures...)

	p.Files = r.analyzer.FileCount()
	p.Revisions = r.analyzer.RevisionCount()
	p.SkippedRecords = r.analyzer.SkippedCount()
	if r.builder != nil {
		p.Changesets = r.builder.Count()
	}
	if r.exporter != nil {
		p.Exported = r.exporter.Done()
		p.Commits = r.exporter.CommitCount()
		p.Tags = r.exporter.TagCount()
		p.SkippedExported = r.exporter.SkippedCount()
	}
	return p
}

// ProbeResult is the outcome of a probe of the target
type ProbeResult struct {
	Last *model.CommitRef
	Err  error
}

// ProbeLastCommit queries the target for its last commit, on the probe queue.
//
// The probe uses its own backend instance. The result is delivered once on the returned channel.
func (m *Migration) ProbeLastCommit() <-chan ProbeResult {
	res := make(chan ProbeResult, 1)
	if m.closed.Load() {
		res <- ProbeResult{Err: status.ErrClosed}
		return res
	}

	task := taskqueue.NewTask("probe-last-commit", func(ctx context.Context, _ taskqueue.Reporter) error {
		last, err := m.lastCommit(ctx)
		res <- ProbeResult{Last: last, Err: err}
		return nil
	})
	if err := m.probe.Submit(task); err != nil {
		res <- ProbeResult{Err: err}
	}
	return res
}

func (m *Migration) lastCommit(ctx context.Context) (last *model.CommitRef, err error) {
	target, err := m.probeBackend()
	if err != nil {
		return nil, err
	}
	defer func() {
		if e := target.Close(); e != nil && err == nil {
			err = e
		}
	}()

	if err = target.Init(ctx, m.cfg.Target); err != nil {
		return nil, err
	}
	return target.LastCommit(ctx)
}

// Close aborts any ongoing work and releases the queues and the target
func (m *Migration) Close() error {
	if m.closed.Swap(true) {
		return nil
	}
	m.Abort()
	m.primary.Close()
	m.probe.Close()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.run != nil {
		m.closeTarget(m.run)
	}
	return nil
}
