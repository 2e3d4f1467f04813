package source

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/multierr"

	"github.com/oneconcern/vcsmigrate/pkg/source/status"
)

func TestSplitPath(t *testing.T) {
	tests := []struct {
		path string
		want []string
	}{
		{path: "$", want: []string{}},
		{path: "", want: []string{}},
		{path: "$/", want: []string{}},
		{path: "$/proj/sub", want: []string{"proj", "sub"}},
		{path: "/proj//sub/", want: []string{"proj", "sub"}},
		{path: "proj", want: []string{"proj"}},
	}
	for _, toPin := range tests {
		tt := toPin
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, SplitPath(tt.path))
		})
	}

	assert.Equal(t, "$/proj", JoinPath("$", "proj"))
	assert.Equal(t, "$/proj/a.txt", JoinPath("$/proj/", "a.txt"))
	assert.Equal(t, "$/a.txt", JoinPath("", "a.txt"))
}

func TestIsOnlyBadRecords(t *testing.T) {
	bad := multierr.Combine(
		status.ErrBadRecord.WrapMessage("record 1"),
		status.ErrBadRecord.WrapMessage("record 2"),
	)
	assert.True(t, IsOnlyBadRecords(bad))
	assert.True(t, IsOnlyBadRecords(status.ErrBadRecord))
	assert.False(t, IsOnlyBadRecords(nil))
	assert.False(t, IsOnlyBadRecords(multierr.Append(bad, fmt.Errorf("disk on fire"))))
	assert.False(t, IsOnlyBadRecords(status.ErrSourceUnreachable))
}
