package backend

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/oneconcern/vcsmigrate/pkg/backend/status"
	"github.com/oneconcern/vcsmigrate/pkg/model"
)

// Backend is a target version control system
type Backend interface {
	String() string

	// Init prepares the target location, keeping any prior history
	Init(ctx context.Context, location string) error

	// Reset prepares the target location, discarding any prior history
	Reset(ctx context.Context, location string) error

	// LastCommit yields the last commit, or nil when the target has no history
	LastCommit(ctx context.Context) (*model.CommitRef, error)

	// Commit applies a set of mutations atomically and yields the new commit id
	Commit(ctx context.Context, commit Commit) (string, error)

	// Tag names some commit
	Tag(ctx context.Context, name, commitID string) error

	Close() error
}

// Commit describes what to commit
type Commit struct {
	Mutations []Mutation
	Author    model.Contributor
	Timestamp time.Time
	Message   string
}

// Op is a kind of file mutation
type Op uint8

// Supported mutations
const (
	OpPut Op = iota + 1
	OpDelete
	OpRename
)

func (o Op) String() string {
	switch o {
	case OpPut:
		return "put"
	case OpDelete:
		return "delete"
	case OpRename:
		return "rename"
	default:
		return "unknown"
	}
}

// ContentFunc opens some content on demand
type ContentFunc func(context.Context) (io.ReadCloser, error)

// Mutation of a single file in the target tree.
//
// Paths are slash-separated and relative to the root of the tree.
type Mutation struct {
	Op   Op
	Path string

	// From is the path before a rename
	From string

	// Content of a put
	Content ContentFunc
}

func (m Mutation) String() string {
	if m.Op == OpRename {
		return fmt.Sprintf("%v %s -> %s", m.Op, m.From, m.Path)
	}
	return fmt.Sprintf("%v %s", m.Op, m.Path)
}

// Validate a mutation
func (m Mutation) Validate() error {
	if CleanPath(m.Path) == "" {
		return status.ErrInvalidMutation.WrapMessage("%v: empty path", m)
	}
	switch m.Op {
	case OpPut:
		if m.Content == nil {
			return status.ErrInvalidMutation.WrapMessage("%v: no content", m)
		}
	case OpRename:
		if CleanPath(m.From) == "" {
			return status.ErrInvalidMutation.WrapMessage("%v: empty source path", m)
		}
	case OpDelete:
	default:
		return status.ErrInvalidMutation.WrapMessage("%v: unsupported operation", m)
	}
	return nil
}

// Put builds a mutation writing content at some path
func Put(pth string, content ContentFunc) Mutation {
	return Mutation{Op: OpPut, Path: pth, Content: content}
}

// Delete builds a mutation removing some path
func Delete(pth string) Mutation {
	return Mutation{Op: OpDelete, Path: pth}
}

// Rename builds a mutation moving some path
func Rename(from, to string) Mutation {
	return Mutation{Op: OpRename, From: from, Path: to}
}

// CleanPath normalizes a slash-separated path, relative to the root of a tree
func CleanPath(pth string) string {
	parts := strings.Split(pth, "/")
	kept := parts[:0]
	for _, part := range parts {
		if part == "" || part == "." {
			continue
		}
		kept = append(kept, part)
	}
	return strings.Join(kept, "/")
}

// IsUnder tells if a path equals or lies under some directory path
func IsUnder(pth, dir string) bool {
	return pth == dir || strings.HasPrefix(pth, dir+"/")
}

// Rebase moves a path from under a directory to under another one
func Rebase(pth, from, to string) string {
	if pth == from {
		return to
	}
	return to + strings.TrimPrefix(pth, from)
}
