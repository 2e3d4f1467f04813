package changeset

import (
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultAnyCommentThreshold is the default gap allowed between two revisions of a changeset
	DefaultAnyCommentThreshold = 30 * time.Second

	// DefaultSameCommentThreshold is the default gap allowed between two revisions of a changeset sharing the same comment
	DefaultSameCommentThreshold = 10 * time.Minute
)

// Option for the builder
type Option func(*Builder)

// Logger for the builder
func Logger(l *zap.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.l = l
		}
	}
}

// AnyCommentThreshold sets the maximum gap to fold a revision into its author's open changeset
func AnyCommentThreshold(d time.Duration) Option {
	return func(b *Builder) {
		b.anyComment = d
	}
}

// SameCommentThreshold sets the maximum gap to fold a revision with the same comment into its author's open changeset
func SameCommentThreshold(d time.Duration) Option {
	return func(b *Builder) {
		b.sameComment = d
	}
}

// WithMetrics toggles metrics collection
func WithMetrics(enabled bool) Option {
	return func(b *Builder) {
		b.EnableMetrics(enabled)
	}
}
