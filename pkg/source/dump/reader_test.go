package dump

import (
	"context"
	"io/ioutil"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/oneconcern/vcsmigrate/pkg/errors"
	"github.com/oneconcern/vcsmigrate/pkg/model"
	"github.com/oneconcern/vcsmigrate/pkg/source"
	"github.com/oneconcern/vcsmigrate/pkg/source/status"
	"github.com/oneconcern/vcsmigrate/pkg/storage"
	"github.com/oneconcern/vcsmigrate/pkg/storage/localfs"
)

var t0 = time.Date(2004, 3, 12, 9, 30, 0, 0, time.UTC)

func testDump(t *testing.T) (*Reader, storage.Store) {
	store := localfs.New(afero.NewMemMapFs())
	b := NewBuilder("root").
		Container("root", "p1", "proj").
		Leaf("p1", "f1", "a.txt").
		Leaf("p1", "f2", "b.txt").
		Container("p1", "p2", "sub").
		Revision(
			model.Revision{Key: "f1", Version: 2, Timestamp: t0.Add(time.Minute), Author: "jdoe", Action: model.ActionModified, Content: "f1-2", Name: "a.txt", Parent: "p1"},
			model.Revision{Key: "f1", Version: 1, Timestamp: t0, Author: "jdoe", Action: model.ActionAdded, Content: "f1-1", Name: "a.txt", Parent: "p1", Comment: "initial"},
			model.Revision{Key: "p2", Version: 1, Timestamp: t0, Author: "jdoe", Action: model.ActionAdded, Name: "sub", Parent: "p1"},
		).
		Record("f2", RevisionRecord{Version: "1", Timestamp: "2004-03-12 09:31:00", Author: "jsmith", Action: "added", Content: "f2-1", Name: "b.txt"}).
		Record("f2", RevisionRecord{Version: "two", Timestamp: "2004-03-12 09:32:00", Author: "jsmith", Action: "Modified", Content: "f2-2"}).
		Record("f2", RevisionRecord{Version: "3", Timestamp: "2004-03-12 09:33:00", Author: "jsmith", Action: "Exploded"}).
		Record("f2", RevisionRecord{Version: "4", Timestamp: "2004-03-12 09:34:00", Author: "jsmith", Action: "Modified"}).
		Content("f1-1", []byte("hello")).
		Content("f1-2", []byte("hello world"))
	require.NoError(t, b.Write(context.Background(), store))

	return New(store), store
}

func TestGetItem(t *testing.T) {
	ctx := context.Background()
	reader, _ := testDump(t)

	root, err := reader.GetItem(ctx, source.RootPath)
	require.NoError(t, err)
	assert.True(t, root.IsContainer())
	assert.Equal(t, "root", root.Key())

	leaf, err := reader.GetItem(ctx, "$/proj/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "f1", leaf.Key())
	assert.Equal(t, "$/proj/a.txt", leaf.Path())
	assert.False(t, leaf.IsContainer())

	children, err := leaf.Children(ctx)
	require.NoError(t, err)
	assert.Empty(t, children)

	proj, err := reader.GetItem(ctx, "/proj")
	require.NoError(t, err)
	children, err = proj.Children(ctx)
	require.NoError(t, err)
	require.Len(t, children, 3)
	assert.Equal(t, "$/proj/sub", children[2].Path())

	_, err = reader.GetItem(ctx, "$/proj/missing.txt")
	assert.True(t, errors.Is(err, status.ErrPathNotFound))

	_, err = reader.GetItem(ctx, "$/proj/a.txt/deeper")
	assert.True(t, errors.Is(err, status.ErrPathNotFound))

	_, err = source.Container(ctx, reader, "$/proj/a.txt")
	assert.True(t, errors.Is(err, status.ErrNotAContainer))

	c, err := source.Container(ctx, reader, "$/proj/sub")
	require.NoError(t, err)
	assert.Equal(t, "p2", c.Key())
}

func TestRevisions(t *testing.T) {
	ctx := context.Background()
	reader, _ := testDump(t)

	leaf, err := reader.GetItem(ctx, "$/proj/a.txt")
	require.NoError(t, err)
	revisions, err := leaf.Revisions(ctx)
	require.NoError(t, err)
	require.Len(t, revisions, 2)
	assert.Equal(t, 1, revisions[0].Version, "revisions are ordered by version")
	assert.Equal(t, "initial", revisions[0].Comment)
	assert.True(t, revisions[0].Timestamp.Equal(t0))

	sub, err := reader.GetItem(ctx, "$/proj/sub")
	require.NoError(t, err)
	revisions, err = sub.Revisions(ctx)
	require.NoError(t, err)
	require.Len(t, revisions, 1)
	assert.True(t, revisions[0].Container)

	bad, err := reader.GetItem(ctx, "$/proj/b.txt")
	require.NoError(t, err)
	revisions, err = bad.Revisions(ctx)
	require.Error(t, err)
	assert.True(t, source.IsOnlyBadRecords(err))
	assert.Len(t, multierr.Errors(err), 3)
	require.Len(t, revisions, 1, "valid records are still returned")
	assert.Equal(t, "f2", revisions[0].Key)
	assert.Equal(t, model.ActionAdded, revisions[0].Action)
	assert.True(t, revisions[0].Timestamp.Equal(t0.Add(time.Minute)))
}

func TestContent(t *testing.T) {
	ctx := context.Background()
	reader, _ := testDump(t)

	rdr, err := reader.Content(ctx, "f1-2")
	require.NoError(t, err)
	buf, err := ioutil.ReadAll(rdr)
	require.NoError(t, err)
	require.NoError(t, rdr.Close())
	assert.Equal(t, "hello world", string(buf))

	_, err = reader.Content(ctx, "nope")
	assert.True(t, errors.Is(err, status.ErrContentNotFound))
}

func TestUnreachable(t *testing.T) {
	ctx := context.Background()

	empty := New(localfs.New(afero.NewMemMapFs()))
	_, err := empty.GetItem(ctx, "$")
	assert.True(t, errors.Is(err, status.ErrSourceUnreachable))

	reader, store := testDump(t)
	require.NoError(t, store.Delete(ctx, itemPath("p2")))
	proj, err := reader.GetItem(ctx, "$/proj")
	require.NoError(t, err)
	_, err = proj.Children(ctx)
	assert.True(t, errors.Is(err, status.ErrSourceUnreachable))
	assert.False(t, source.IsOnlyBadRecords(err))
}

func TestLegacyEncodedComments(t *testing.T) {
	ctx := context.Background()
	store := localfs.New(afero.NewMemMapFs())
	legacy := "r\xe9sum\xe9 des modifications"

	b := NewBuilder("root").
		Leaf("root", "f1", "a.txt").
		Revision(model.Revision{Key: "f1", Version: 1, Timestamp: t0, Author: "jdoe", Action: model.ActionAdded, Comment: legacy})
	require.NoError(t, b.Write(ctx, store))

	raw, err := storage.GetBytes(ctx, store, itemPath("f1"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "!!binary", "bytes which are not utf-8 are kept as binary")

	leaf, err := New(store).GetItem(ctx, "$/a.txt")
	require.NoError(t, err)
	revisions, err := leaf.Revisions(ctx)
	require.NoError(t, err)
	require.Len(t, revisions, 1)
	assert.Equal(t, legacy, revisions[0].Comment)
}
