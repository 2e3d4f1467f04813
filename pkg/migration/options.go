package migration

import (
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/oneconcern/vcsmigrate/pkg/backend"
)

// Option for a migration
type Option func(*Migration)

// Logger for the migration and its stages
func Logger(l *zap.Logger) Option {
	return func(m *Migration) {
		if l != nil {
			m.l = l
		}
	}
}

// WithFs sets the file system holding the author mapping file. The default is the OS file system.
func WithFs(fs afero.Fs) Option {
	return func(m *Migration) {
		if fs != nil {
			m.fs = fs
		}
	}
}

// WithProbeBackend provides backend instances to probe queue tasks, independently from the
// backend used by the pipeline. It defaults to the pipeline backend factory.
func WithProbeBackend(fn func() (backend.Backend, error)) Option {
	return func(m *Migration) {
		if fn != nil {
			m.probeBackend = fn
		}
	}
}
