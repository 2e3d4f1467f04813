// Copyright © 2018 One Concern

package localfs

import (
	"bytes"
	"context"
	"io/ioutil"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oneconcern/vcsmigrate/pkg/errors"
	"github.com/oneconcern/vcsmigrate/pkg/storage"
	"github.com/oneconcern/vcsmigrate/pkg/storage/status"
)

func TestHas(t *testing.T) {
	bs := setupStore(t)

	has, err := bs.Has(context.Background(), "sixteentons")
	require.NoError(t, err)
	require.True(t, has)

	has, err = bs.Has(context.Background(), "commits/seventeentons")
	require.NoError(t, err)
	require.True(t, has)

	has, err = bs.Has(context.Background(), "fifteentons")
	require.NoError(t, err)
	require.False(t, has)

	has, err = bs.Has(context.Background(), "commits")
	require.NoError(t, err)
	require.False(t, has, "directories are not objects")
}

func TestGet(t *testing.T) {
	bs := setupStore(t)

	rdr, err := bs.Get(context.Background(), "sixteentons")
	require.NoError(t, err)
	b, err := ioutil.ReadAll(rdr)
	require.NoError(t, err)
	require.NoError(t, rdr.Close())
	assert.Equal(t, "this is the text", string(b))

	_, err = bs.Get(context.Background(), "fifteentons")
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrNotExists))
}

func TestKeys(t *testing.T) {
	bs := setupStore(t)

	keys, err := bs.Keys(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"commits/seventeentons", "sixteentons"}, keys)

	keys, err = bs.Keys(context.Background(), "commits/")
	require.NoError(t, err)
	assert.Equal(t, []string{"commits/seventeentons"}, keys)
}

func TestDelete(t *testing.T) {
	bs := setupStore(t)

	require.NoError(t, bs.Delete(context.Background(), "commits/seventeentons"))
	require.NoError(t, bs.Delete(context.Background(), "not-there"))
	k, _ := bs.Keys(context.Background(), "")
	assert.Len(t, k, 1)
}

func TestClear(t *testing.T) {
	bs := setupStore(t)

	require.NoError(t, bs.Clear(context.Background()))
	k, _ := bs.Keys(context.Background(), "")
	require.Empty(t, k)
}

func TestPut(t *testing.T) {
	bs := setupStore(t)

	content := bytes.NewBufferString("here we go once again")
	err := bs.Put(context.Background(), "tags/eighteentons", content, storage.NoOverWrite)
	require.NoError(t, err)

	b, err := storage.GetBytes(context.Background(), bs, "tags/eighteentons")
	require.NoError(t, err)
	assert.Equal(t, "here we go once again", string(b))

	err = storage.PutBytes(context.Background(), bs, "tags/eighteentons", []byte("again"), storage.NoOverWrite)
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrExists))

	require.NoError(t, storage.PutBytes(context.Background(), bs, "tags/eighteentons", []byte("short"), storage.OverWrite))
	b, err = storage.GetBytes(context.Background(), bs, "tags/eighteentons")
	require.NoError(t, err)
	assert.Equal(t, "short", string(b), "overwrite truncates the previous content")

	k, _ := bs.Keys(context.Background(), "")
	assert.Len(t, k, 3)
}

func TestNewAt(t *testing.T) {
	dir := t.TempDir()
	bs, err := NewAt(dir)
	require.NoError(t, err)
	assert.Contains(t, bs.String(), dir)

	require.NoError(t, storage.PutBytes(context.Background(), bs, "a/b/c", []byte("x"), storage.OverWrite))
	keys, err := bs.Keys(context.Background(), "a/")
	require.NoError(t, err)
	assert.Equal(t, []string{"a/b/c"}, keys)
}

func setupStore(t testing.TB) storage.Store {
	t.Helper()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "sixteentons", []byte("this is the text"), 0600))
	require.NoError(t, fs.MkdirAll("commits", 0700))
	require.NoError(t, afero.WriteFile(fs, "commits/seventeentons", []byte("this is the text for another thing"), 0600))

	return New(fs)
}
