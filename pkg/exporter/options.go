package exporter

import (
	"time"

	"go.uber.org/zap"

	"github.com/oneconcern/vcsmigrate/pkg/model"
)

// DefaultComment is the commit message of changesets without any comment
const DefaultComment = "(no comment)"

// Option for the exporter
type Option func(*Exporter)

// Logger for the exporter
func Logger(l *zap.Logger) Option {
	return func(e *Exporter) {
		if l != nil {
			e.l = l
		}
	}
}

// Reset discards any prior history at the target location
func Reset(enabled bool) Option {
	return func(e *Exporter) {
		e.reset = enabled
	}
}

// ContinueAfter skips changesets at or before some timestamp.
//
// When the target already holds a later commit, the target's last commit prevails.
func ContinueAfter(cursor time.Time) Option {
	return func(e *Exporter) {
		e.continueAfter = cursor
	}
}

// Authors maps source authors to contributors
func Authors(mapping model.AuthorMapping) Option {
	return func(e *Exporter) {
		e.authors = mapping
	}
}

// EmailDomain completes unmapped authors as user@domain
func EmailDomain(domain string) Option {
	return func(e *Exporter) {
		e.domain = domain
	}
}

// Transcode comments. A nil transcoder leaves comments untouched.
func Transcode(t *Transcoder) Option {
	return func(e *Exporter) {
		e.transcoder = t
	}
}

// WithDefaultComment sets the commit message used for changesets without comment
func WithDefaultComment(comment string) Option {
	return func(e *Exporter) {
		if comment != "" {
			e.defaultComment = comment
		}
	}
}

// WithMetrics toggles metrics on the exporter
func WithMetrics(enabled bool) Option {
	return func(e *Exporter) {
		e.EnableMetrics(enabled)
	}
}
