// Package status declares error constants returned by the exporter package.
package status

import "github.com/oneconcern/vcsmigrate/pkg/errors"

var (
	// ErrCommit is a failure applying a changeset to the target. The export stops there.
	ErrCommit = errors.New("cannot commit changeset")

	// ErrTarget is returned when the target cannot be initialized
	ErrTarget = errors.New("cannot initialize target")

	// ErrNoChangesets is returned when the exporter runs without changesets to replay
	ErrNoChangesets = errors.New("no changesets to export")

	// ErrInvalidEncoding is returned for unknown character encodings
	ErrInvalidEncoding = errors.New("unsupported character encoding")
)
