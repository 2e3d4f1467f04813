package analyzer

import (
	"go.uber.org/zap"
)

// Option for the analyzer
type Option func(*Analyzer)

// Logger for the analyzer
func Logger(l *zap.Logger) Option {
	return func(a *Analyzer) {
		if l != nil {
			a.l = l
		}
	}
}

// Exclude items matching some patterns
func Exclude(m *Matcher) Option {
	return func(a *Analyzer) {
		a.exclude = m
	}
}

// WithMetrics toggles metrics collection
func WithMetrics(enabled bool) Option {
	return func(a *Analyzer) {
		a.EnableMetrics(enabled)
	}
}
