package gcs

import (
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// Option is a functor to pass optional parameters to the gcs store
type Option func(*gcs)

// Logger specifies a logger for this store
func Logger(logger *zap.Logger) Option {
	return func(g *gcs) {
		if logger != nil {
			g.l = logger
		}
	}
}

// Prefix roots all keys under some prefix in the bucket
func Prefix(prefix string) Option {
	return func(g *gcs) {
		g.prefix = prefix
	}
}

// Credentials file to authenticate with Google Cloud
func Credentials(file string) Option {
	return func(g *gcs) {
		if file != "" {
			g.clientOpts = append(g.clientOpts, option.WithCredentialsFile(file))
		}
	}
}
