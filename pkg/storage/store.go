// Copyright © 2018 One Concern

package storage

import (
	"bytes"
	"context"
	"io"
	"io/ioutil"
	"strings"
)

const (
	// NoOverWrite makes Put fail whenever the key already exists
	NoOverWrite = true
	// OverWrite lets Put replace an existing key
	OverWrite = false
)

// Store implementations know how to write entries to a K/V model.
//
// Typically this is something file system-like. Examples are S3, local FS, NFS, ...
// Implementations of this interface are assumed to be fairly simple.
type Store interface {
	String() string
	Has(context.Context, string) (bool, error)
	Get(context.Context, string) (io.ReadCloser, error)
	Put(context.Context, string, io.Reader, bool) error
	Delete(context.Context, string) error
	// Keys lists all keys starting with prefix, in lexicographic order
	Keys(context.Context, string) ([]string, error)
	Clear(context.Context) error
}

// GetBytes reads a whole object into memory
func GetBytes(ctx context.Context, store Store, key string) ([]byte, error) {
	rdr, err := store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	defer rdr.Close()
	return ioutil.ReadAll(rdr)
}

// PutBytes writes a buffer as an object
func PutBytes(ctx context.Context, store Store, key string, buffer []byte, exclusive bool) error {
	return store.Put(ctx, key, bytes.NewReader(buffer), exclusive)
}

// JoinKey builds an object key from path-like parts, ignoring empty parts
func JoinKey(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.Trim(part, "/")
		if part != "" {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, "/")
}
