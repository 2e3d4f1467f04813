// Package status declares error constants returned by the migration package.
package status

import "github.com/oneconcern/vcsmigrate/pkg/errors"

var (
	// ErrBusy is returned when starting a run while another one is in progress
	ErrBusy = errors.New("a migration run is already in progress")

	// ErrClosed is returned when using a closed migration
	ErrClosed = errors.New("migration is closed")
)
