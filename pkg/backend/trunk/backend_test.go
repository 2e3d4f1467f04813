package trunk

import (
	"context"
	"io"
	"io/ioutil"
	"strings"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/dgraph-io/badger/v3"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oneconcern/vcsmigrate/pkg/backend"
	"github.com/oneconcern/vcsmigrate/pkg/backend/status"
	"github.com/oneconcern/vcsmigrate/pkg/errors"
	"github.com/oneconcern/vcsmigrate/pkg/model"
)

var t0 = time.Date(2004, 3, 12, 9, 30, 0, 0, time.UTC)

func text(s string) backend.ContentFunc {
	return func(context.Context) (io.ReadCloser, error) {
		return ioutil.NopCloser(strings.NewReader(s)), nil
	}
}

func newTestBackend(t testing.TB) (*Backend, afero.Fs) {
	fs := afero.NewMemMapFs()
	b := New(WithFs(fs), InMemory(true))
	require.NoError(t, b.Init(context.Background(), "/target"))
	return b, fs
}

func readFile(t testing.TB, fs afero.Fs, pth string) string {
	buf, err := afero.ReadFile(fs, pth)
	require.NoError(t, err)
	return string(buf)
}

func TestTrunkLayout(t *testing.T) {
	b, fs := newTestBackend(t)
	defer func() { _ = b.Close() }()

	for _, dir := range []string{"/target/trunk", "/target/tags", "/target/branches"} {
		ok, err := afero.DirExists(fs, dir)
		require.NoError(t, err)
		assert.Truef(t, ok, "expected %s", dir)
	}
	assert.Equal(t, "trunk@/target", b.String())
}

func TestTrunkHistory(t *testing.T) {
	ctx := context.Background()
	b, fs := newTestBackend(t)
	defer func() { _ = b.Close() }()

	last, err := b.LastCommit(ctx)
	require.NoError(t, err)
	require.Nil(t, last)

	author := model.Contributor{Name: "John Doe", Email: "jdoe@example.com"}
	id1, err := b.Commit(ctx, backend.Commit{
		Mutations: []backend.Mutation{
			backend.Put("proj/a.txt", text("hello")),
			backend.Put("proj/sub/b.txt", text("bonjour")),
		},
		Author:    author,
		Timestamp: t0,
		Message:   "initial import",
	})
	require.NoError(t, err)
	assert.Equal(t, "r1", id1)
	assert.Equal(t, "hello", readFile(t, fs, "/target/trunk/proj/a.txt"))

	id2, err := b.Commit(ctx, backend.Commit{
		Mutations: []backend.Mutation{
			backend.Rename("proj/sub", "proj/lib"),
			backend.Delete("proj/a.txt"),
			backend.Put("proj/lib/b.txt", text("hallo")),
		},
		Author:    author,
		Timestamp: t0.Add(time.Hour),
		Message:   "reorganize",
	})
	require.NoError(t, err)
	assert.Equal(t, "r2", id2)

	ok, err := afero.Exists(fs, "/target/trunk/proj/a.txt")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "hallo", readFile(t, fs, "/target/trunk/proj/lib/b.txt"))

	last, err = b.LastCommit(ctx)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, id2, last.ID)
	assert.True(t, t0.Add(time.Hour).Equal(last.Timestamp))

	log, err := b.Log(ctx)
	require.NoError(t, err)
	require.Len(t, log, 2)
	assert.Equal(t, "r2", log[0].ID)
	assert.Equal(t, []string{"r1"}, log[0].Parents)
	assert.Equal(t, uint64(1), log[0].EntriesCount)
	assert.Equal(t, "initial import", log[1].Message)
	assert.Equal(t, uint64(2), log[1].EntriesCount)

	_, err = b.Commit(ctx, backend.Commit{Author: author, Timestamp: t0})
	assert.True(t, errors.Is(err, status.ErrOutOfOrder))

	// reopening keeps history
	require.NoError(t, b.Init(ctx, "/target"))
	last, err = b.LastCommit(ctx)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, id2, last.ID)
}

func TestTrunkReplay(t *testing.T) {
	ctx := context.Background()
	b, fs := newTestBackend(t)
	defer func() { _ = b.Close() }()

	commit := backend.Commit{
		Mutations: []backend.Mutation{
			backend.Put("x/a.txt", text("one")),
			backend.Rename("x/a.txt", "y/a.txt"),
			backend.Delete("x"),
		},
		Timestamp: t0,
	}
	_, err := b.Commit(ctx, commit)
	require.NoError(t, err)

	// replaying the same mutations converges
	commit.Mutations = commit.Mutations[1:]
	_, err = b.Commit(ctx, commit)
	require.NoError(t, err)

	assert.Equal(t, "one", readFile(t, fs, "/target/trunk/y/a.txt"))
	ok, err := afero.Exists(fs, "/target/trunk/x")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTrunkTags(t *testing.T) {
	ctx := context.Background()
	b, fs := newTestBackend(t)
	defer func() { _ = b.Close() }()

	require.True(t, errors.Is(b.Tag(ctx, "v1", "r1"), status.ErrNoCommit))

	id1, err := b.Commit(ctx, backend.Commit{
		Mutations: []backend.Mutation{backend.Put("a.txt", text("v1"))},
		Timestamp: t0,
	})
	require.NoError(t, err)
	require.NoError(t, b.Tag(ctx, "release-1.0", id1))
	assert.Equal(t, "v1", readFile(t, fs, "/target/tags/release-1.0/a.txt"))

	assert.True(t, errors.Is(b.Tag(ctx, "bad tag", id1), status.ErrInvalidTag))

	_, err = b.Commit(ctx, backend.Commit{
		Mutations: []backend.Mutation{backend.Put("a.txt", text("v2"))},
		Timestamp: t0.Add(time.Minute),
	})
	require.NoError(t, err)
	assert.True(t, errors.Is(b.Tag(ctx, "late", id1), status.ErrInvalidTag))
	assert.Equal(t, "v1", readFile(t, fs, "/target/tags/release-1.0/a.txt"))

	tags, err := b.Tags(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, "release-1.0", tags[0].Name)
	assert.Equal(t, id1, tags[0].CommitID)
}

func TestTrunkReset(t *testing.T) {
	ctx := context.Background()
	b, fs := newTestBackend(t)
	defer func() { _ = b.Close() }()

	_, err := b.Commit(ctx, backend.Commit{
		Mutations: []backend.Mutation{backend.Put("a.txt", text("v1"))},
		Timestamp: t0,
	})
	require.NoError(t, err)

	require.NoError(t, b.Reset(ctx, "/target"))
	last, err := b.LastCommit(ctx)
	require.NoError(t, err)
	assert.Nil(t, last)

	ok, err := afero.Exists(fs, "/target/trunk/a.txt")
	require.NoError(t, err)
	assert.False(t, ok)

	id, err := b.Commit(ctx, backend.Commit{Timestamp: t0})
	require.NoError(t, err)
	assert.Equal(t, "r1", id)
}

func TestTrunkNotInitialized(t *testing.T) {
	b := New(InMemory(true))
	_, err := b.LastCommit(context.Background())
	assert.True(t, errors.Is(err, status.ErrNotInitialized))
	assert.True(t, errors.Is(b.Init(context.Background(), ""), status.ErrInvalidLocation))
	assert.NoError(t, b.Close())
}

func TestRetryOnConflict(t *testing.T) {
	assert.NoError(t, retryOnConflict(nil))
	assert.Equal(t, badger.ErrConflict, retryOnConflict(badger.ErrConflict))

	var permanent *backoff.PermanentError
	require.ErrorAs(t, retryOnConflict(badger.ErrTxnTooBig), &permanent)
	assert.Equal(t, badger.ErrTxnTooBig, permanent.Err)

	attempts := 0
	err := backoff.Retry(func() error {
		attempts++
		if attempts < 3 {
			return retryOnConflict(badger.ErrConflict)
		}
		return retryOnConflict(nil)
	}, backoff.NewConstantBackOff(time.Millisecond))
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)

	attempts = 0
	err = backoff.Retry(func() error {
		attempts++
		return retryOnConflict(badger.ErrTxnTooBig)
	}, backoff.NewConstantBackOff(time.Millisecond))
	assert.True(t, errors.Is(err, badger.ErrTxnTooBig))
	assert.Equal(t, 1, attempts)
}
