package source

import (
	"context"
	"io"
	"strings"

	"go.uber.org/multierr"

	"github.com/oneconcern/vcsmigrate/pkg/errors"
	"github.com/oneconcern/vcsmigrate/pkg/model"
	"github.com/oneconcern/vcsmigrate/pkg/source/status"
)

// RootPath is the path to the root container of a source repository
const RootPath = "$"

// Reader knows how to navigate a source repository
type Reader interface {
	// GetItem resolves a path. It fails with status.ErrPathNotFound when the path does not resolve.
	GetItem(ctx context.Context, path string) (Item, error)

	// Content retrieves the content referred to by a revision
	Content(ctx context.Context, ref string) (io.ReadCloser, error)

	String() string
}

// Item is a node in a source repository
type Item interface {
	// Key is the stable identity of the item
	Key() string
	Name() string
	// Path of the item at the time it was resolved
	Path() string
	IsContainer() bool

	// Children of a container, ordered. Leaves have no children.
	Children(ctx context.Context) ([]Item, error)

	// Revisions of this item, ordered by version.
	//
	// Malformed records are skipped: the returned error then only aggregates status.ErrBadRecord
	// errors, and the valid revisions are still returned. Any other error is fatal.
	Revisions(ctx context.Context) ([]model.Revision, error)
}

// Container resolves a path which must be a container
func Container(ctx context.Context, reader Reader, path string) (Item, error) {
	item, err := reader.GetItem(ctx, path)
	if err != nil {
		return nil, err
	}
	if !item.IsContainer() {
		return nil, status.ErrNotAContainer.WrapMessage("%s", path)
	}
	return item, nil
}

// SplitPath breaks a source path into names, from the root.
//
// Accepted forms are "$", "$/a/b", "/a/b" and "a/b".
func SplitPath(path string) []string {
	path = strings.TrimSpace(path)
	path = strings.TrimPrefix(path, RootPath)
	parts := strings.Split(strings.Trim(path, "/"), "/")
	res := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" {
			res = append(res, part)
		}
	}
	return res
}

// JoinPath builds a source path from a parent path and a name
func JoinPath(parent, name string) string {
	if parent == "" {
		parent = RootPath
	}
	return strings.TrimSuffix(parent, "/") + "/" + name
}

// IsOnlyBadRecords tells if an error only aggregates malformed record errors
func IsOnlyBadRecords(err error) bool {
	if err == nil {
		return false
	}
	for _, e := range multierr.Errors(err) {
		if !errors.Is(e, status.ErrBadRecord) {
			return false
		}
	}
	return true
}
