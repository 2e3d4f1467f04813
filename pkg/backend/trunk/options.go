package trunk

import (
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Option for the trunk backend
type Option func(*Backend)

// Logger for the backend
func Logger(l *zap.Logger) Option {
	return func(b *Backend) {
		if l != nil {
			b.l = l
		}
	}
}

// WithFs sets the file system holding the working copy. The default is the OS file system.
func WithFs(fs afero.Fs) Option {
	return func(b *Backend) {
		if fs != nil {
			b.base = fs
		}
	}
}

// InMemory keeps the revision log in memory. This is intended for tests.
func InMemory(enabled bool) Option {
	return func(b *Backend) {
		b.inMemory = enabled
	}
}
