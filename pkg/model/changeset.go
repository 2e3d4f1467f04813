package model

import (
	"fmt"
	"time"
)

// Changeset is a group of revisions by a single author, replayed as one commit.
//
// Revisions in a changeset are ordered by timestamp.
type Changeset struct {
	Author    string
	Revisions []Revision
}

// Timestamp is the representative timestamp of the changeset: the timestamp of its last member
func (c *Changeset) Timestamp() time.Time {
	if len(c.Revisions) == 0 {
		return time.Time{}
	}
	return c.Revisions[len(c.Revisions)-1].Timestamp
}

// Since is the timestamp of the first member of the changeset
func (c *Changeset) Since() time.Time {
	if len(c.Revisions) == 0 {
		return time.Time{}
	}
	return c.Revisions[0].Timestamp
}

// Comment is the representative comment of the changeset: the first non-empty comment of its members
func (c *Changeset) Comment() string {
	for _, r := range c.Revisions {
		if r.Comment != "" {
			return r.Comment
		}
	}
	return ""
}

// IsLabel tells if this changeset only carries a label
func (c *Changeset) IsLabel() bool {
	return len(c.Revisions) == 1 && c.Revisions[0].IsLabel()
}

// Label name carried by a label changeset
func (c *Changeset) Label() string {
	if !c.IsLabel() {
		return ""
	}
	return c.Revisions[0].Label
}

// Len is the number of revisions in the changeset
func (c *Changeset) Len() int {
	return len(c.Revisions)
}

func (c *Changeset) String() string {
	if c.IsLabel() {
		return fmt.Sprintf("label %q by %s at %s", c.Label(), c.Author, c.Timestamp().UTC().Format(time.RFC3339))
	}
	return fmt.Sprintf("%d revision(s) by %s at %s", c.Len(), c.Author, c.Timestamp().UTC().Format(time.RFC3339))
}
