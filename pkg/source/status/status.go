// Package status declares error constants returned by source readers.
package status

import "github.com/oneconcern/vcsmigrate/pkg/errors"

var (
	// ErrPathNotFound is returned when a source path does not resolve to an existing item
	ErrPathNotFound = errors.New("source path not found")

	// ErrNotAContainer is returned when a path resolves to a leaf where a container is required
	ErrNotAContainer = errors.New("source item is not a container")

	// ErrBadRecord flags a single malformed revision record. Such records are skipped.
	ErrBadRecord = errors.New("malformed revision record")

	// ErrSourceUnreachable is returned when the source tree itself cannot be read
	ErrSourceUnreachable = errors.New("source repository is unreachable")

	// ErrContentNotFound is returned when some revision content cannot be retrieved
	ErrContentNotFound = errors.New("revision content not found")
)
