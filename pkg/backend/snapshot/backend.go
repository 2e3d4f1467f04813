// Copyright © 2018 One Concern

package snapshot

import (
	"bytes"
	"context"
	"encoding/hex"
	"io"
	"sort"

	blake2b "github.com/minio/blake2b-simd"
	"github.com/segmentio/ksuid"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"

	"github.com/oneconcern/vcsmigrate/pkg/backend"
	"github.com/oneconcern/vcsmigrate/pkg/backend/status"
	"github.com/oneconcern/vcsmigrate/pkg/errors"
	"github.com/oneconcern/vcsmigrate/pkg/model"
	"github.com/oneconcern/vcsmigrate/pkg/storage"
	"github.com/oneconcern/vcsmigrate/pkg/storage/locator"
	storagestatus "github.com/oneconcern/vcsmigrate/pkg/storage/status"
)

var _ backend.Backend = &Backend{}

// Backend stores commits as full file trees on a storage.Store
type Backend struct {
	store       storage.Store
	fixedStore  bool
	locatorOpts []locator.Option
	l           *zap.Logger

	head *model.HeadDescriptor
	tree map[string]model.Entry
}

// New snapshot backend
func New(opts ...Option) *Backend {
	b := &Backend{
		l: zap.NewNop(),
	}
	for _, apply := range opts {
		apply(b)
	}
	b.fixedStore = b.store != nil
	return b
}

func (b *Backend) String() string {
	if b.store == nil {
		return "snapshot"
	}
	return "snapshot@" + b.store.String()
}

// Init opens the target location, keeping its history
func (b *Backend) Init(ctx context.Context, location string) error {
	if err := b.open(ctx, location); err != nil {
		return err
	}
	return b.loadHead(ctx)
}

// Reset opens the target location and discards its history
func (b *Backend) Reset(ctx context.Context, location string) error {
	if err := b.open(ctx, location); err != nil {
		return err
	}
	b.l.Info("resetting target history", zap.String("target", b.String()))
	if err := b.store.Clear(ctx); err != nil {
		return err
	}
	b.head = nil
	b.tree = make(map[string]model.Entry)
	return nil
}

func (b *Backend) open(ctx context.Context, location string) error {
	if b.fixedStore {
		return nil
	}
	store, err := locator.Open(ctx, location, append([]locator.Option{locator.Logger(b.l)}, b.locatorOpts...)...)
	if err != nil {
		return status.ErrInvalidLocation.Wrap(err)
	}
	b.store = store
	return nil
}

func (b *Backend) loadHead(ctx context.Context) error {
	b.head = nil
	b.tree = make(map[string]model.Entry)

	buf, err := storage.GetBytes(ctx, b.store, model.GetArchivePathToHead())
	if err != nil {
		if errors.Is(err, storagestatus.ErrNotExists) {
			return nil
		}
		return err
	}
	var head model.HeadDescriptor
	if err = yaml.Unmarshal(buf, &head); err != nil {
		return err
	}
	if head.ID == "" {
		return nil
	}

	entries, err := b.Entries(ctx, head.ID)
	if err != nil {
		return err
	}
	for _, e := range entries {
		b.tree[e.NameWithPath] = e
	}
	b.head = &head
	return nil
}

// LastCommit yields the head commit
func (b *Backend) LastCommit(_ context.Context) (*model.CommitRef, error) {
	if b.tree == nil {
		return nil, status.ErrNotInitialized
	}
	if b.head == nil {
		return nil, nil
	}
	ref := b.head.Ref()
	return &ref, nil
}

// Commit a new tree, with the mutations applied to the head tree
func (b *Backend) Commit(ctx context.Context, commit backend.Commit) (string, error) {
	if b.tree == nil {
		return "", status.ErrNotInitialized
	}
	if b.head != nil && commit.Timestamp.Before(b.head.Timestamp) {
		return "", status.ErrOutOfOrder.WrapMessage("%v < %v", commit.Timestamp, b.head.Timestamp)
	}

	tree := make(map[string]model.Entry, len(b.tree))
	for k, v := range b.tree {
		tree[k] = v
	}
	for _, m := range commit.Mutations {
		if err := b.apply(ctx, tree, m); err != nil {
			return "", err
		}
	}

	id, err := ksuid.NewRandom()
	if err != nil {
		return "", err
	}
	desc := model.CommitDescriptor{
		ID:           id.String(),
		Message:      commit.Message,
		Timestamp:    commit.Timestamp,
		Contributors: []model.Contributor{commit.Author},
		EntriesCount: uint64(len(tree)),
		Version:      model.CurrentCommitVersion,
	}
	var count uint64
	if b.head != nil {
		desc.Parents = []string{b.head.ID}
		count = b.head.Count
	}

	entries := make(model.Entries, 0, len(tree))
	for _, e := range tree {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].NameWithPath < entries[j].NameWithPath })

	if err = b.putYAML(ctx, model.GetArchivePathToEntries(desc.ID), entries, storage.NoOverWrite); err != nil {
		return "", err
	}
	if err = b.putYAML(ctx, model.GetArchivePathToCommit(desc.ID), desc, storage.NoOverWrite); err != nil {
		return "", err
	}

	head := model.HeadDescriptor{ID: desc.ID, Timestamp: desc.Timestamp, Count: count + 1}
	if err = b.putYAML(ctx, model.GetArchivePathToHead(), head, storage.OverWrite); err != nil {
		return "", err
	}

	b.head = &head
	b.tree = tree
	b.l.Debug("committed",
		zap.String("id", desc.ID),
		zap.Time("timestamp", desc.Timestamp),
		zap.Int("mutations", len(commit.Mutations)),
		zap.Int("files", len(tree)),
	)
	return desc.ID, nil
}

func (b *Backend) apply(ctx context.Context, tree map[string]model.Entry, m backend.Mutation) error {
	if err := m.Validate(); err != nil {
		return err
	}
	pth := backend.CleanPath(m.Path)

	switch m.Op {
	case backend.OpPut:
		entry, err := b.putBlob(ctx, m.Content)
		if err != nil {
			return err
		}
		entry.NameWithPath = pth
		tree[pth] = entry

	case backend.OpDelete:
		for k := range tree {
			if backend.IsUnder(k, pth) {
				delete(tree, k)
			}
		}

	case backend.OpRename:
		from := backend.CleanPath(m.From)
		moved := make([]model.Entry, 0, 1)
		for k, e := range tree {
			if backend.IsUnder(k, from) {
				moved = append(moved, e)
				delete(tree, k)
			}
		}
		for _, e := range moved {
			e.NameWithPath = backend.Rebase(e.NameWithPath, from, pth)
			tree[e.NameWithPath] = e
		}
	}
	return nil
}

func (b *Backend) putBlob(ctx context.Context, content backend.ContentFunc) (model.Entry, error) {
	rdr, err := content(ctx)
	if err != nil {
		return model.Entry{}, err
	}
	defer rdr.Close()

	hasher := blake2b.New512()
	var buf bytes.Buffer
	size, err := io.Copy(io.MultiWriter(hasher, &buf), rdr)
	if err != nil {
		return model.Entry{}, err
	}
	hash := hex.EncodeToString(hasher.Sum(nil))

	err = b.store.Put(ctx, model.GetArchivePathToBlob(hash), &buf, storage.NoOverWrite)
	if err != nil && !errors.Is(err, storagestatus.ErrExists) {
		return model.Entry{}, err
	}
	return model.Entry{Hash: hash, Size: uint64(size)}, nil
}

// Tag names some commit. Tagging again with the same name moves the tag.
func (b *Backend) Tag(ctx context.Context, name, commitID string) error {
	if b.tree == nil {
		return status.ErrNotInitialized
	}
	if err := model.ValidateTag(name); err != nil {
		return status.ErrInvalidTag.Wrap(err)
	}
	commit, err := b.GetCommit(ctx, commitID)
	if err != nil {
		return err
	}
	desc := model.TagDescriptor{
		Name:         name,
		CommitID:     commitID,
		Timestamp:    commit.Timestamp,
		Contributors: commit.Contributors,
	}
	return b.putYAML(ctx, model.GetArchivePathToTag(name), desc, storage.OverWrite)
}

func (b *Backend) putYAML(ctx context.Context, key string, v interface{}, exclusive bool) error {
	buf, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	return storage.PutBytes(ctx, b.store, key, buf, exclusive)
}

func (b *Backend) getYAML(ctx context.Context, key string, v interface{}) error {
	buf, err := storage.GetBytes(ctx, b.store, key)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(buf, v)
}

// Close the backend
func (b *Backend) Close() error {
	b.tree = nil
	b.head = nil
	return nil
}
