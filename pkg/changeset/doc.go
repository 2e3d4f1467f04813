// Package changeset groups a revision stream into changesets.
//
// Revisions are folded into the most recent open changeset of their author when they
// arrive close enough in time: within the "any comment" threshold, or within the longer
// "same comment" threshold when their comment equals the changeset's comment.
//
// Two extra rules keep the output totally ordered without overlapping time ranges:
//   - a revision by some author seals every open changeset of other authors which started earlier;
//   - a label revision seals all open changesets, then forms a changeset of its own.
//
// Changesets are then sorted by their last timestamp, ties being broken by the order in
// which they were sealed.
package changeset
