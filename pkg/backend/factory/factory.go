// Package factory builds target backends from their kind
package factory

import (
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/oneconcern/vcsmigrate/pkg/backend"
	"github.com/oneconcern/vcsmigrate/pkg/backend/snapshot"
	"github.com/oneconcern/vcsmigrate/pkg/backend/status"
	"github.com/oneconcern/vcsmigrate/pkg/backend/trunk"
	"github.com/oneconcern/vcsmigrate/pkg/storage/locator"
)

// Settings shared by all backends. Fields not relevant to some kind are ignored.
type Settings struct {
	Logger *zap.Logger

	// Fs holds trunk working copies
	Fs afero.Fs

	// InMemory keeps the trunk revision log in memory
	InMemory bool

	// GCSCredentials and AWSRegion resolve snapshot locations on cloud object stores
	GCSCredentials string
	AWSRegion      string
}

// New backend of a given kind
func New(kind backend.Kind, settings Settings) (backend.Backend, error) {
	l := settings.Logger
	if l == nil {
		l = zap.NewNop()
	}
	l = l.With(zap.Stringer("backend", kind))

	switch kind {
	case backend.KindSnapshot:
		var lopts []locator.Option
		lopts = append(lopts, locator.Logger(l))
		if settings.GCSCredentials != "" {
			lopts = append(lopts, locator.GCSCredentials(settings.GCSCredentials))
		}
		if settings.AWSRegion != "" {
			lopts = append(lopts, locator.AWSRegion(settings.AWSRegion))
		}
		return snapshot.New(snapshot.Logger(l), snapshot.WithLocatorOptions(lopts...)), nil

	case backend.KindTrunk:
		return trunk.New(trunk.Logger(l), trunk.WithFs(settings.Fs), trunk.InMemory(settings.InMemory)), nil

	default:
		return nil, status.ErrUnknownKind.WrapMessage("%v", kind)
	}
}
