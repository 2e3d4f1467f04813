// Copyright © 2018 One Concern

package snapshot

import (
	"context"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/oneconcern/vcsmigrate/pkg/backend/status"
	"github.com/oneconcern/vcsmigrate/pkg/errors"
	"github.com/oneconcern/vcsmigrate/pkg/model"
	storagestatus "github.com/oneconcern/vcsmigrate/pkg/storage/status"
)

// GetCommit reads a commit descriptor
func (b *Backend) GetCommit(ctx context.Context, id string) (model.CommitDescriptor, error) {
	var desc model.CommitDescriptor
	if b.store == nil {
		return desc, status.ErrNotInitialized
	}
	if id == "" {
		return desc, status.ErrNoCommit
	}
	if err := b.getYAML(ctx, model.GetArchivePathToCommit(id), &desc); err != nil {
		if errors.Is(err, storagestatus.ErrNotExists) {
			return desc, status.ErrNoCommit.WrapMessage("%s", id)
		}
		return desc, err
	}
	return desc, nil
}

// Entries lists the files of the tree at some commit
func (b *Backend) Entries(ctx context.Context, id string) (model.Entries, error) {
	var entries model.Entries
	if b.store == nil {
		return nil, status.ErrNotInitialized
	}
	if err := b.getYAML(ctx, model.GetArchivePathToEntries(id), &entries); err != nil {
		if errors.Is(err, storagestatus.ErrNotExists) {
			return nil, status.ErrNoCommit.WrapMessage("%s", id)
		}
		return nil, err
	}
	return entries, nil
}

// Log lists commits from the head, most recent first
func (b *Backend) Log(ctx context.Context) ([]model.CommitDescriptor, error) {
	if b.tree == nil {
		return nil, status.ErrNotInitialized
	}
	if b.head == nil {
		return nil, nil
	}

	log := make([]model.CommitDescriptor, 0, b.head.Count)
	for id := b.head.ID; id != ""; {
		desc, err := b.GetCommit(ctx, id)
		if err != nil {
			return nil, err
		}
		log = append(log, desc)
		id = ""
		if len(desc.Parents) > 0 {
			id = desc.Parents[0]
		}
	}
	return log, nil
}

// Tags lists all tags, sorted by name
func (b *Backend) Tags(ctx context.Context) ([]model.TagDescriptor, error) {
	if b.store == nil {
		return nil, status.ErrNotInitialized
	}
	keys, err := b.store.Keys(ctx, model.GetArchivePathPrefixToTags())
	if err != nil {
		return nil, err
	}
	tags := make([]model.TagDescriptor, 0, len(keys))
	for _, key := range keys {
		if !strings.HasSuffix(key, "/"+path.Base(model.GetArchivePathToTag("x"))) {
			continue
		}
		var desc model.TagDescriptor
		if err = b.getYAML(ctx, key, &desc); err != nil {
			return nil, err
		}
		tags = append(tags, desc)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })
	return tags, nil
}

// Open the content of a file in some commit
func (b *Backend) Open(ctx context.Context, commitID, pth string) (io.ReadCloser, error) {
	entries, err := b.Entries(ctx, commitID)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.NameWithPath == pth {
			return b.store.Get(ctx, model.GetArchivePathToBlob(e.Hash))
		}
	}
	return nil, storagestatus.ErrNotExists.WrapMessage("%s@%s", pth, commitID)
}
