// Package dump implements a source reader over a yaml history dump.
//
// A dump is laid out on any storage.Store (local directory, S3 or GCS bucket):
//
//   root.yaml              key of the root container
//   items/{key}.yaml       one descriptor per item: name, children keys, revisions
//   content/{ref}          raw content of content-bearing revisions
//
// Dumps are produced by exporting the legacy repository with its own tooling,
// or with the Writer in this package.
//
// Comments and author names are carried byte for byte: text which is not valid UTF-8,
// such as windows-1252 comments, is stored as a yaml !!binary scalar.
package dump
