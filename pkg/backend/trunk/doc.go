// Package trunk implements a backend laid out as a centralized repository working copy.
//
// The target location is a local directory holding:
//
//   trunk/       the current tree
//   tags/        one copy of the tree per tag
//   branches/    reserved for branches
//   .revlog/     the revision log, a badger key-value store
//
// Revisions are numbered from r1. The revision log records every commit and tag,
// and the head revision.
package trunk
