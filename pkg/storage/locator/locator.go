// Package locator resolves a location URL into a storage.Store.
//
// Supported locations:
//   - s3://bucket[/prefix]
//   - gs://bucket[/prefix]
//   - file:///some/dir or a plain local path
package locator

import (
	"context"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"go.uber.org/zap"

	"github.com/oneconcern/vcsmigrate/pkg/storage"
	"github.com/oneconcern/vcsmigrate/pkg/storage/gcs"
	"github.com/oneconcern/vcsmigrate/pkg/storage/localfs"
	"github.com/oneconcern/vcsmigrate/pkg/storage/status"
	"github.com/oneconcern/vcsmigrate/pkg/storage/sthree"
)

// Scheme of a location
type Scheme string

// Supported schemes
const (
	SchemeLocal Scheme = "file"
	SchemeS3    Scheme = "s3"
	SchemeGCS   Scheme = "gs"
)

// Location is a parsed location URL
type Location struct {
	Scheme Scheme
	Bucket string
	Path   string
}

type options struct {
	l           *zap.Logger
	credentials string
	awsRegion   string
}

// Option for store resolution
type Option func(*options)

// Logger for the resolved store
func Logger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.l = l
		}
	}
}

// GCSCredentials sets a credentials file for gs:// locations
func GCSCredentials(file string) Option {
	return func(o *options) {
		o.credentials = file
	}
}

// AWSRegion sets the region for s3:// locations
func AWSRegion(region string) Option {
	return func(o *options) {
		o.awsRegion = region
	}
}

// Parse a location string
func Parse(location string) (Location, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return Location{}, status.ErrInvalidLocation.WrapMessage("empty location")
	}
	if !strings.Contains(location, "://") {
		return Location{Scheme: SchemeLocal, Path: location}, nil
	}

	u, err := url.Parse(location)
	if err != nil {
		return Location{}, status.ErrInvalidLocation.Wrap(err)
	}
	switch Scheme(u.Scheme) {
	case SchemeLocal:
		return Location{Scheme: SchemeLocal, Path: u.Path}, nil
	case SchemeS3, SchemeGCS:
		if u.Host == "" {
			return Location{}, status.ErrInvalidLocation.WrapMessage("missing bucket in %q", location)
		}
		return Location{Scheme: Scheme(u.Scheme), Bucket: u.Host, Path: strings.Trim(u.Path, "/")}, nil
	default:
		return Location{}, status.ErrInvalidLocation.WrapMessage("unsupported scheme %q", u.Scheme)
	}
}

// Open resolves a location into a store
func Open(ctx context.Context, location string, opts ...Option) (storage.Store, error) {
	o := options{l: zap.NewNop()}
	for _, apply := range opts {
		apply(&o)
	}
	loc, err := Parse(location)
	if err != nil {
		return nil, err
	}

	o.l.Debug("resolving store", zap.String("location", location), zap.String("scheme", string(loc.Scheme)))
	switch loc.Scheme {
	case SchemeS3:
		cfg := aws.NewConfig()
		if o.awsRegion != "" {
			cfg = cfg.WithRegion(o.awsRegion)
		}
		return sthree.New(sthree.Bucket(loc.Bucket), sthree.Prefix(loc.Path), sthree.AWSConfig(cfg), sthree.Logger(o.l))
	case SchemeGCS:
		return gcs.New(ctx, loc.Bucket, gcs.Prefix(loc.Path), gcs.Credentials(o.credentials), gcs.Logger(o.l))
	default:
		return localfs.NewAt(loc.Path)
	}
}
