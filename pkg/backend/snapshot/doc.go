// Package snapshot implements a backend storing a flat history of full file trees.
//
// Every commit records the complete list of files of the tree. File content is stored once,
// as blobs addressed by their blake2b hash. Descriptors are yaml files:
//
//   HEAD.yaml                      last commit, with the commit count
//   commits/{id}/commit.yaml       commit descriptor: message, author, timestamp, parent
//   commits/{id}/entries.yaml      files of the tree at this commit
//   tags/{name}/tag.yaml           tag descriptor
//   blobs/{hh}/{hash}              file content
//
// The target location may be a local directory, an s3:// or a gs:// bucket.
package snapshot
