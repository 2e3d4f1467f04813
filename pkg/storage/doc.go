// Copyright © 2018 One Concern

// Package storage provides interface to handle backend storage objects.
//
// Stores hold the durable state of migration targets (commits, tags, blobs)
// and may also serve a history dump to the source reader.
//
// This package supports the following backends:
//   - GCS (Google)
//   - S3 (AWS)
//   - local file system
package storage
