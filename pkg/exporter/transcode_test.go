package exporter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oneconcern/vcsmigrate/pkg/errors"
	"github.com/oneconcern/vcsmigrate/pkg/exporter/status"
)

func TestTranscode(t *testing.T) {
	tr, err := NewTranscoder("windows-1252", "utf-8")
	require.NoError(t, err)
	assert.Equal(t, "café", tr.Transcode("caf\xe9"))
	assert.Equal(t, "déjà vu", tr.Transcode("déjà vu"), "valid text is kept")
	assert.Equal(t, "", tr.Transcode(""))

	tr, err = NewTranscoder("utf-8", "ISO-8859-1")
	require.NoError(t, err)
	assert.Equal(t, "caf\xe9", tr.Transcode("café"))

	var none *Transcoder
	assert.Equal(t, "caf\xe9", none.Transcode("caf\xe9"))

	_, err = NewTranscoder("klingon", "utf-8")
	assert.True(t, errors.Is(err, status.ErrInvalidEncoding))
}
