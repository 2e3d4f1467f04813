// Package status declares error constants returned by the config package.
package status

import "github.com/oneconcern/vcsmigrate/pkg/errors"

var (
	// ErrConfigIO is a failure reading or writing a settings or mapping file
	ErrConfigIO = errors.New("cannot access configuration file")

	// ErrInvalidConfig is returned when the run configuration is inconsistent
	ErrInvalidConfig = errors.New("invalid configuration")
)
