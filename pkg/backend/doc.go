// Package backend defines the contract for target version control systems.
//
// A backend durably stores commits and tags. Commits are totally ordered by submission,
// and the last commit always reports the exact timestamp it was committed with, which
// makes an interrupted migration resumable.
//
// Reference implementations live in sub-packages:
//   - snapshot: a flat commit history of full file trees, over any object store
//   - trunk: a working copy laid out as trunk/tags/branches, with a local revision log
package backend
