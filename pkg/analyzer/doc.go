// Package analyzer ingests the revision history of a source subtree.
//
// The analyzer walks the source tree depth-first from a root container, skips excluded
// items and merges the history of every visited item into a single time-ordered stream.
//
// It runs as one task on a taskqueue.Queue. Counters and a partial view of the stream
// may be polled while it runs.
package analyzer
