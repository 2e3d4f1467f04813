package gcs

import (
	gcsStorage "cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"

	"github.com/oneconcern/vcsmigrate/pkg/errors"
	"github.com/oneconcern/vcsmigrate/pkg/storage/status"
)

// toSentinelErrors translates GCS client errors into storage errors
func toSentinelErrors(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gcsStorage.ErrObjectNotExist) {
		return status.ErrNotExists.Wrap(err)
	}
	if errors.Is(err, gcsStorage.ErrBucketNotExist) {
		return status.ErrNotFound.Wrap(err)
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return status.FromHTTP(apiErr.Code, err)
	}
	return err
}
