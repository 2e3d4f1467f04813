package sthree

import (
	"net/http"

	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/s3"

	"github.com/oneconcern/vcsmigrate/pkg/errors"
	"github.com/oneconcern/vcsmigrate/pkg/storage/status"
)

// toSentinelErrors translates S3 request failures into storage errors.
//
// See https://docs.aws.amazon.com/AmazonS3/latest/API/ErrorResponses.html#ErrorCodeList
func toSentinelErrors(err error) error {
	if err == nil {
		return nil
	}
	var failure awserr.RequestFailure
	if !errors.As(err, &failure) {
		return err
	}

	switch code := failure.Code(); {
	case code == s3.ErrCodeNoSuchKey, code == "NotFound":
		// NotFound is returned by HEAD requests and S3-compatible servers such as minio
		return status.ErrNotExists.Wrap(err)
	case code == s3.ErrCodeNoSuchBucket:
		return status.ErrNotFound.Wrap(err)
	case code == "InvalidBucketName" && failure.StatusCode() == http.StatusBadRequest:
		return status.ErrInvalidResource.Wrap(err)
	default:
		return status.FromHTTP(failure.StatusCode(), err)
	}
}
