// Package model describes the base objects manipulated by vcsmigrate.
//
// The object model is composed of:
//
//  Items:
//    A node in the legacy source tree, either a container (a project, a folder) or a leaf (a file).
//    Items are identified by a stable key, which survives renames and moves.
//
//  Revisions:
//    One immutable historical event on an item: an edit, a rename, a move, a label...
//
//  Streams:
//    All revisions of an ingested subtree, ordered by timestamp.
//
//  Changesets:
//    A group of revisions by one author, reconstructed as one logical commit.
//
//  Commits and tags:
//    What a target backend durably stores. A commit is analogous to a bundle, a tag to a label.
package model
