// Package status declares error constants returned by target backends.
package status

import "github.com/oneconcern/vcsmigrate/pkg/errors"

var (
	// ErrUnknownKind is returned for an unsupported backend kind
	ErrUnknownKind = errors.New("unknown backend kind")

	// ErrNotInitialized is returned when using a backend before Init or Reset
	ErrNotInitialized = errors.New("backend is not initialized")

	// ErrNoCommit is returned when referring to a commit which does not exist
	ErrNoCommit = errors.New("commit not found")

	// ErrInvalidTag is returned when a tag name is not acceptable
	ErrInvalidTag = errors.New("invalid tag")

	// ErrOutOfOrder is returned when committing with a timestamp older than the last commit
	ErrOutOfOrder = errors.New("commit is older than the last commit")

	// ErrInvalidMutation is returned for a mutation which cannot be applied
	ErrInvalidMutation = errors.New("invalid mutation")

	// ErrInvalidLocation is returned when a target location is not suitable for a backend
	ErrInvalidLocation = errors.New("invalid target location")
)
