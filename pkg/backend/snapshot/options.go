package snapshot

import (
	"go.uber.org/zap"

	"github.com/oneconcern/vcsmigrate/pkg/storage"
	"github.com/oneconcern/vcsmigrate/pkg/storage/locator"
)

// Option for the snapshot backend
type Option func(*Backend)

// Logger for the backend
func Logger(l *zap.Logger) Option {
	return func(b *Backend) {
		if l != nil {
			b.l = l
		}
	}
}

// WithStore uses a given store, regardless of the location passed to Init or Reset
func WithStore(store storage.Store) Option {
	return func(b *Backend) {
		b.store = store
	}
}

// WithLocatorOptions passes options to resolve target locations into stores
func WithLocatorOptions(opts ...locator.Option) Option {
	return func(b *Backend) {
		b.locatorOpts = append(b.locatorOpts, opts...)
	}
}
