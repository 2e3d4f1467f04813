package trunk

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strconv"

	"github.com/spf13/afero"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"

	"github.com/oneconcern/vcsmigrate/pkg/backend"
	"github.com/oneconcern/vcsmigrate/pkg/backend/status"
	"github.com/oneconcern/vcsmigrate/pkg/model"
)

const (
	trunkDir    = "trunk"
	tagsDir     = "tags"
	branchesDir = "branches"
	revlogDir   = ".revlog"
)

var _ backend.Backend = &Backend{}

// Backend maintains a trunk/tags/branches working copy and its revision log
type Backend struct {
	base     afero.Fs
	inMemory bool
	l        *zap.Logger

	location string
	fs       afero.Fs
	log      *revlog
	head     *model.HeadDescriptor
}

// New trunk backend
func New(opts ...Option) *Backend {
	b := &Backend{
		base: afero.NewOsFs(),
		l:    zap.NewNop(),
	}
	for _, apply := range opts {
		apply(b)
	}
	return b
}

func (b *Backend) String() string {
	return "trunk@" + b.location
}

// Init prepares the working copy layout and opens the revision log, keeping history
func (b *Backend) Init(_ context.Context, location string) error {
	if location == "" {
		return status.ErrInvalidLocation.WrapMessage("a local directory is required")
	}
	if b.log != nil && b.location == location {
		return b.loadHead()
	}
	if err := b.Close(); err != nil {
		return err
	}

	b.location = location
	b.fs = afero.NewBasePathFs(b.base, location)
	for _, dir := range []string{trunkDir, tagsDir, branchesDir} {
		if err := b.fs.MkdirAll(dir, 0755); err != nil {
			return status.ErrInvalidLocation.Wrap(err)
		}
	}

	log, err := openRevlog(filepath.Join(location, revlogDir), b.inMemory, b.l)
	if err != nil {
		return err
	}
	b.log = log
	return b.loadHead()
}

// Reset discards the working copy and the revision log
func (b *Backend) Reset(ctx context.Context, location string) error {
	if err := b.Init(ctx, location); err != nil {
		return err
	}
	b.l.Info("resetting target history", zap.String("target", b.String()))

	for _, dir := range []string{trunkDir, tagsDir, branchesDir} {
		if err := b.fs.RemoveAll(dir); err != nil {
			return err
		}
		if err := b.fs.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	if err := b.log.drop(); err != nil {
		return err
	}
	b.head = nil
	return nil
}

func (b *Backend) loadHead() error {
	head, err := b.log.head()
	if err != nil {
		return err
	}
	b.head = head
	return nil
}

// LastCommit yields the head revision
func (b *Backend) LastCommit(_ context.Context) (*model.CommitRef, error) {
	if b.log == nil {
		return nil, status.ErrNotInitialized
	}
	if b.head == nil {
		return nil, nil
	}
	ref := b.head.Ref()
	return &ref, nil
}

// Commit applies mutations to trunk and records a new revision.
//
// Mutations are replayable: putting, deleting or renaming again after a partial failure converges
// to the same tree.
func (b *Backend) Commit(ctx context.Context, commit backend.Commit) (string, error) {
	if b.log == nil {
		return "", status.ErrNotInitialized
	}
	if b.head != nil && commit.Timestamp.Before(b.head.Timestamp) {
		return "", status.ErrOutOfOrder.WrapMessage("%v < %v", commit.Timestamp, b.head.Timestamp)
	}
	for _, m := range commit.Mutations {
		if err := m.Validate(); err != nil {
			return "", err
		}
	}

	for _, m := range commit.Mutations {
		if err := b.apply(ctx, m); err != nil {
			return "", err
		}
	}

	files, err := b.countFiles(trunkDir)
	if err != nil {
		return "", err
	}

	var n uint64 = 1
	var parents []string
	if b.head != nil {
		n = b.head.Count + 1
		parents = []string{b.head.ID}
	}
	desc := model.CommitDescriptor{
		ID:           revisionID(n),
		Message:      commit.Message,
		Parents:      parents,
		Timestamp:    commit.Timestamp,
		Contributors: []model.Contributor{commit.Author},
		EntriesCount: files,
		Version:      model.CurrentCommitVersion,
	}
	head := model.HeadDescriptor{ID: desc.ID, Timestamp: desc.Timestamp, Count: n}
	if err = b.log.commit(desc, head); err != nil {
		return "", err
	}

	b.head = &head
	b.l.Debug("committed", zap.String("revision", desc.ID), zap.Time("timestamp", desc.Timestamp), zap.Int("mutations", len(commit.Mutations)))
	return desc.ID, nil
}

func (b *Backend) apply(ctx context.Context, m backend.Mutation) error {
	target := path.Join(trunkDir, backend.CleanPath(m.Path))

	switch m.Op {
	case backend.OpPut:
		rdr, err := m.Content(ctx)
		if err != nil {
			return err
		}
		defer rdr.Close()
		if err = b.fs.MkdirAll(path.Dir(target), 0755); err != nil {
			return err
		}
		return b.writeFile(target, rdr)

	case backend.OpDelete:
		return b.fs.RemoveAll(target)

	case backend.OpRename:
		from := path.Join(trunkDir, backend.CleanPath(m.From))
		info, err := b.fs.Stat(from)
		if err != nil {
			if os.IsNotExist(err) {
				// already moved, or an empty container never materialized
				return nil
			}
			return err
		}
		if err = b.fs.MkdirAll(path.Dir(target), 0755); err != nil {
			return err
		}
		if err = b.fs.RemoveAll(target); err != nil {
			return err
		}
		if !info.IsDir() {
			return b.fs.Rename(from, target)
		}
		// not all file systems move directory contents
		if err = b.copyTree(from, target); err != nil {
			return err
		}
		return b.fs.RemoveAll(from)
	}
	return nil
}

func (b *Backend) writeFile(target string, rdr io.Reader) (err error) {
	f, err := b.fs.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, f.Close())
	}()
	_, err = io.Copy(f, rdr)
	return err
}

func (b *Backend) countFiles(root string) (uint64, error) {
	var count uint64
	err := afero.Walk(b.fs, root, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			count++
		}
		return nil
	})
	return count, err
}

// Tag copies trunk under tags/{name}. Only the head revision may be tagged.
func (b *Backend) Tag(_ context.Context, name, commitID string) error {
	if b.log == nil {
		return status.ErrNotInitialized
	}
	if err := model.ValidateTag(name); err != nil {
		return status.ErrInvalidTag.Wrap(err)
	}
	var desc model.CommitDescriptor
	found, err := b.log.get(revKey(revisionNumber(commitID)), &desc)
	if err != nil {
		return err
	}
	if !found || desc.ID != commitID {
		return status.ErrNoCommit.WrapMessage("%s", commitID)
	}
	if b.head == nil || b.head.ID != commitID {
		return status.ErrInvalidTag.WrapMessage("%s: only the head revision may be tagged", commitID)
	}

	target := path.Join(tagsDir, name)
	if err = b.fs.RemoveAll(target); err != nil {
		return err
	}
	if err = b.copyTree(trunkDir, target); err != nil {
		return err
	}
	return b.log.tag(model.TagDescriptor{
		Name:         name,
		CommitID:     commitID,
		Timestamp:    desc.Timestamp,
		Contributors: desc.Contributors,
	})
}

func (b *Backend) copyTree(from, to string) error {
	return afero.Walk(b.fs, from, func(pth string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(from, pth)
		if err != nil {
			return err
		}
		target := filepath.Join(to, rel)
		if info.IsDir() {
			return b.fs.MkdirAll(target, 0755)
		}
		src, err := b.fs.Open(pth)
		if err != nil {
			return err
		}
		defer src.Close()
		return b.writeFile(target, src)
	})
}

// Log lists revisions, most recent first
func (b *Backend) Log(_ context.Context) ([]model.CommitDescriptor, error) {
	if b.log == nil {
		return nil, status.ErrNotInitialized
	}
	var log []model.CommitDescriptor
	err := b.log.scan(revPrefix, func(value []byte) error {
		var desc model.CommitDescriptor
		if err := yaml.Unmarshal(value, &desc); err != nil {
			return err
		}
		log = append([]model.CommitDescriptor{desc}, log...)
		return nil
	})
	return log, err
}

// Tags lists tags, sorted by name
func (b *Backend) Tags(_ context.Context) ([]model.TagDescriptor, error) {
	if b.log == nil {
		return nil, status.ErrNotInitialized
	}
	var tags []model.TagDescriptor
	err := b.log.scan(tagPrefix, func(value []byte) error {
		var desc model.TagDescriptor
		if err := yaml.Unmarshal(value, &desc); err != nil {
			return err
		}
		tags = append(tags, desc)
		return nil
	})
	return tags, err
}

// Fs exposes the working copy, read-only
func (b *Backend) Fs() afero.Fs {
	return afero.NewReadOnlyFs(b.fs)
}

// Close the revision log
func (b *Backend) Close() error {
	if b.log == nil {
		return nil
	}
	err := b.log.close()
	b.log = nil
	b.head = nil
	return err
}

func revisionID(n uint64) string {
	return fmt.Sprintf("r%d", n)
}

func revisionNumber(id string) uint64 {
	if len(id) < 2 || id[0] != 'r' {
		return 0
	}
	n, err := strconv.ParseUint(id[1:], 10, 64)
	if err != nil {
		return 0
	}
	return n
}
