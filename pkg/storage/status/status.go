// Copyright © 2018 One Concern

// Package status declares the errors returned by stores.
//
// It is kept apart from pkg/storage so that store implementations and their callers
// may share it without import cycles.
package status

import (
	"net/http"

	"github.com/oneconcern/vcsmigrate/pkg/errors"
)

var (
	// ErrNotExists indicates that the fetched object does not exist on storage
	ErrNotExists = errors.New("object doesn't exist")

	// ErrNotFound indicates that the storage API did not find the target resource, e.g. a bucket
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized indicates missing or invalid credentials
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates that the storage API forbids access to the target resource
	ErrForbidden = errors.New("forbidden")

	// ErrExists indicates an object which already exists and may not be overwritten
	ErrExists = errors.New("exists already")

	// ErrInvalidResource indicates an invalid bucket name
	ErrInvalidResource = errors.New("invalid storage resource name")

	// ErrInvalidLocation indicates a location URL which does not resolve to any supported store
	ErrInvalidLocation = errors.New("invalid storage location")

	// ErrStorageAPI indicates any other storage API error
	ErrStorageAPI = errors.New("storage API error")
)

// FromHTTP maps the HTTP status of a failed storage API call to a sentinel error
func FromHTTP(code int, err error) error {
	switch code {
	case http.StatusUnauthorized:
		return ErrUnauthorized.Wrap(err)
	case http.StatusForbidden:
		return ErrForbidden.Wrap(err)
	case http.StatusNotFound:
		return ErrNotFound.Wrap(err)
	case http.StatusPreconditionFailed:
		// conditional writes refuse to overwrite existing objects
		return ErrExists.Wrap(err)
	default:
		return ErrStorageAPI.Wrap(err)
	}
}
