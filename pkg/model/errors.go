package model

import "github.com/oneconcern/vcsmigrate/pkg/errors"

var (
	// ErrInvalidRevision is returned when a revision record is malformed
	ErrInvalidRevision = errors.New("invalid revision")

	// ErrInvalidContributor is returned when an identity cannot be parsed
	ErrInvalidContributor = errors.New("invalid contributor")

	// ErrInvalidTag is returned when a tag name is not valid
	ErrInvalidTag = errors.New("invalid tag name")
)
