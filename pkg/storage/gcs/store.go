// Copyright © 2018 One Concern

// Package gcs implements a storage.Store on Google Cloud Storage
package gcs

import (
	"context"
	"io"
	"sort"
	"strings"

	gcsStorage "cloud.google.com/go/storage"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/oneconcern/vcsmigrate/pkg/errors"
	"github.com/oneconcern/vcsmigrate/pkg/storage"
	"github.com/oneconcern/vcsmigrate/pkg/storage/status"
)

type gcs struct {
	client     *gcsStorage.Client
	bucket     string
	prefix     string
	clientOpts []option.ClientOption
	l          *zap.Logger
}

// New GCS store on some bucket
func New(ctx context.Context, bucket string, opts ...Option) (storage.Store, error) {
	if bucket == "" {
		return nil, status.ErrInvalidResource.WrapMessage("empty bucket name")
	}
	googleStore := &gcs{
		bucket: bucket,
		l:      zap.NewNop(),
	}
	for _, apply := range opts {
		apply(googleStore)
	}
	googleStore.prefix = strings.Trim(googleStore.prefix, "/")

	clientOpts := append([]option.ClientOption{option.WithScopes(gcsStorage.ScopeFullControl)}, googleStore.clientOpts...)
	var err error
	googleStore.client, err = gcsStorage.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, toSentinelErrors(err)
	}
	return googleStore, nil
}

func (g *gcs) String() string {
	return "gs://" + storage.JoinKey(g.bucket, g.prefix)
}

func (g *gcs) object(key string) *gcsStorage.ObjectHandle {
	return g.client.Bucket(g.bucket).Object(storage.JoinKey(g.prefix, key))
}

func (g *gcs) Has(ctx context.Context, key string) (bool, error) {
	_, err := g.object(key).Attrs(ctx)
	if err != nil {
		if errors.Is(err, gcsStorage.ErrObjectNotExist) {
			return false, nil
		}
		return false, toSentinelErrors(err)
	}
	return true, nil
}

func (g *gcs) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	objectReader, err := g.object(key).NewReader(ctx)
	if err != nil {
		return nil, toSentinelErrors(err)
	}
	return objectReader, nil
}

func (g *gcs) Put(ctx context.Context, key string, reader io.Reader, exclusive bool) error {
	obj := g.object(key)
	if exclusive {
		obj = obj.If(gcsStorage.Conditions{DoesNotExist: true})
	}
	writer := obj.NewWriter(ctx)
	if _, err := io.Copy(writer, reader); err != nil {
		_ = writer.Close()
		return toSentinelErrors(err)
	}
	if err := writer.Close(); err != nil {
		g.l.Debug("gcs write failed", zap.String("key", key), zap.Error(err))
		return toSentinelErrors(err)
	}
	return nil
}

func (g *gcs) Delete(ctx context.Context, key string) error {
	err := g.object(key).Delete(ctx)
	if errors.Is(err, gcsStorage.ErrObjectNotExist) {
		return nil
	}
	return toSentinelErrors(err)
}

func (g *gcs) Keys(ctx context.Context, prefix string) ([]string, error) {
	root := ""
	if g.prefix != "" {
		root = g.prefix + "/"
	}
	var keys []string
	it := g.client.Bucket(g.bucket).Objects(ctx, &gcsStorage.Query{Prefix: root + prefix})
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, toSentinelErrors(err)
		}
		keys = append(keys, strings.TrimPrefix(attrs.Name, root))
	}
	sort.Strings(keys)
	return keys, nil
}

func (g *gcs) Clear(ctx context.Context) error {
	keys, err := g.Keys(ctx, "")
	if err != nil {
		return err
	}
	for _, key := range keys {
		if err := g.Delete(ctx, key); err != nil {
			return err
		}
	}
	return nil
}
