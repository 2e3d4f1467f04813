package dump

import (
	"context"
	"io"
	"sort"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"

	"github.com/oneconcern/vcsmigrate/pkg/errors"
	"github.com/oneconcern/vcsmigrate/pkg/model"
	"github.com/oneconcern/vcsmigrate/pkg/source"
	"github.com/oneconcern/vcsmigrate/pkg/source/status"
	"github.com/oneconcern/vcsmigrate/pkg/storage"
	storagestatus "github.com/oneconcern/vcsmigrate/pkg/storage/status"
)

// Option for the dump reader
type Option func(*Reader)

// Logger for the reader
func Logger(l *zap.Logger) Option {
	return func(r *Reader) {
		if l != nil {
			r.l = l
		}
	}
}

// Reader reads a yaml history dump from a storage.Store
type Reader struct {
	store storage.Store
	l     *zap.Logger

	mu    sync.Mutex
	items map[string]*ItemDescriptor
}

var _ source.Reader = &Reader{}

// New dump reader
func New(store storage.Store, opts ...Option) *Reader {
	r := &Reader{
		store: store,
		l:     zap.NewNop(),
		items: make(map[string]*ItemDescriptor),
	}
	for _, apply := range opts {
		apply(r)
	}
	return r
}

func (r *Reader) String() string {
	return "dump@" + r.store.String()
}

// GetItem resolves a path, from the root container
func (r *Reader) GetItem(ctx context.Context, path string) (source.Item, error) {
	buf, err := storage.GetBytes(ctx, r.store, rootFile)
	if err != nil {
		return nil, r.unreachable(err, rootFile)
	}
	var root rootDescriptor
	if err = yaml.Unmarshal(buf, &root); err != nil || root.Key == "" {
		return nil, status.ErrSourceUnreachable.WrapMessage("invalid root descriptor: %v", err)
	}

	current, err := r.item(ctx, root.Key, source.RootPath)
	if err != nil {
		return nil, err
	}

	for _, name := range source.SplitPath(path) {
		if !current.IsContainer() {
			return nil, status.ErrPathNotFound.WrapMessage("%s: %s is not a container", path, current.Path())
		}
		children, err := current.Children(ctx)
		if err != nil {
			return nil, err
		}
		var found source.Item
		for _, child := range children {
			if child.Name() == name {
				found = child
				break
			}
		}
		if found == nil {
			return nil, status.ErrPathNotFound.WrapMessage("%s", path)
		}
		current = found.(*item)
	}

	return current, nil
}

// Content retrieves some revision content
func (r *Reader) Content(ctx context.Context, ref string) (io.ReadCloser, error) {
	rdr, err := r.store.Get(ctx, contentPath(ref))
	if err != nil {
		if errors.Is(err, storagestatus.ErrNotExists) {
			return nil, status.ErrContentNotFound.WrapMessage("%s", ref)
		}
		return nil, status.ErrSourceUnreachable.Wrap(err)
	}
	return rdr, nil
}

func (r *Reader) item(ctx context.Context, key, path string) (*item, error) {
	r.mu.Lock()
	desc, ok := r.items[key]
	r.mu.Unlock()

	if !ok {
		buf, err := storage.GetBytes(ctx, r.store, itemPath(key))
		if err != nil {
			return nil, r.unreachable(err, itemPath(key))
		}
		desc = new(ItemDescriptor)
		if err = yaml.Unmarshal(buf, desc); err != nil {
			return nil, status.ErrSourceUnreachable.WrapMessage("item %s: %v", key, err)
		}
		if desc.Key == "" {
			desc.Key = key
		}

		r.mu.Lock()
		r.items[key] = desc
		r.mu.Unlock()
	}

	return &item{desc: desc, path: path, reader: r}, nil
}

// unreachable reports a failure to read the tree structure
func (r *Reader) unreachable(err error, key string) error {
	return status.ErrSourceUnreachable.WrapWithLog(r.l, err, zap.String("key", key), zap.String("source", r.String()))
}

type item struct {
	desc   *ItemDescriptor
	path   string
	reader *Reader
}

func (i *item) Key() string       { return i.desc.Key }
func (i *item) Name() string      { return i.desc.Name }
func (i *item) Path() string      { return i.path }
func (i *item) IsContainer() bool { return i.desc.Container }

func (i *item) Children(ctx context.Context) ([]source.Item, error) {
	if !i.desc.Container {
		return nil, nil
	}
	children := make([]source.Item, 0, len(i.desc.Children))
	for _, key := range i.desc.Children {
		child, err := i.reader.item(ctx, key, "")
		if err != nil {
			return nil, err
		}
		child.path = source.JoinPath(i.path, child.Name())
		children = append(children, child)
	}
	return children, nil
}

func (i *item) Revisions(ctx context.Context) ([]model.Revision, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var errs error
	revisions := make([]model.Revision, 0, len(i.desc.Revisions))
	for pos, rec := range i.desc.Revisions {
		rev, err := rec.Revision()
		if err == nil {
			if rev.Key == "" {
				rev.Key = i.desc.Key
			}
			rev.Container = rev.Container || i.desc.Container
			if rev.Key != i.desc.Key {
				err = model.ErrInvalidRevision.WrapMessage("record belongs to item %s", rev.Key)
			} else {
				err = rev.Validate()
			}
		}
		if err != nil {
			errs = multierr.Append(errs, status.ErrBadRecord.Wrap(
				errors.Errorf("item %s (%s), record %d: %v", i.desc.Key, i.path, pos, err)),
			)
			continue
		}
		revisions = append(revisions, rev)
	}

	sort.SliceStable(revisions, func(a, b int) bool { return revisions[a].Version < revisions[b].Version })

	return revisions, errs
}
