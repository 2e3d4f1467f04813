package locator

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oneconcern/vcsmigrate/pkg/errors"
	"github.com/oneconcern/vcsmigrate/pkg/storage"
	"github.com/oneconcern/vcsmigrate/pkg/storage/status"
)

func TestParse(t *testing.T) {
	for _, toPin := range []struct {
		location string
		expected Location
		wantErr  bool
	}{
		{location: "/tmp/target", expected: Location{Scheme: SchemeLocal, Path: "/tmp/target"}},
		{location: "relative/dir", expected: Location{Scheme: SchemeLocal, Path: "relative/dir"}},
		{location: "file:///var/lib/migration", expected: Location{Scheme: SchemeLocal, Path: "/var/lib/migration"}},
		{location: "s3://history/repos/main", expected: Location{Scheme: SchemeS3, Bucket: "history", Path: "repos/main"}},
		{location: "gs://history", expected: Location{Scheme: SchemeGCS, Bucket: "history"}},
		{location: "gs:///nobucket", wantErr: true},
		{location: "ftp://host/dir", wantErr: true},
		{location: "  ", wantErr: true},
	} {
		fixture := toPin
		t.Run(fixture.location, func(t *testing.T) {
			loc, err := Parse(fixture.location)
			if fixture.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, status.ErrInvalidLocation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, fixture.expected, loc)
		})
	}
}

func TestOpenLocal(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "target")
	store, err := Open(context.Background(), dir)
	require.NoError(t, err)
	require.NoError(t, storage.PutBytes(context.Background(), store, "HEAD", []byte("x"), storage.OverWrite))
	assert.FileExists(t, filepath.Join(dir, "HEAD"))
}
