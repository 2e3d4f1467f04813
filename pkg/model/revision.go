// Copyright © 2018 One Concern

package model

import (
	"fmt"
	"time"
)

// Revision is one immutable historical event on an item.
//
// Revisions always refer to items by their stable Key, never by path.
type Revision struct {
	Key       string    `json:"key" yaml:"key"`
	Version   int       `json:"version" yaml:"version"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	Author    string    `json:"author" yaml:"author"`
	Action    Action    `json:"action" yaml:"action"`
	Comment   string    `json:"comment,omitempty" yaml:"comment,omitempty"`

	// Content is a reference to retrievable content, for content-bearing actions
	Content string `json:"content,omitempty" yaml:"content,omitempty"`

	// Name of the item after this revision
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// OldName of the item before a rename
	OldName string `json:"oldName,omitempty" yaml:"oldName,omitempty"`

	// Parent is the key of the container holding the item after this revision.
	// For MovedOut, this is the container the item left.
	Parent string `json:"parent,omitempty" yaml:"parent,omitempty"`

	// Container tells if the revised item is a container
	Container bool `json:"container,omitempty" yaml:"container,omitempty"`

	// Label name, for Labeled revisions
	Label string `json:"label,omitempty" yaml:"label,omitempty"`
	_     struct{}
}

// Validate a revision record
func (r Revision) Validate() error {
	switch {
	case r.Key == "":
		return ErrInvalidRevision.WrapMessage("key is required")
	case !r.Action.IsValid():
		return ErrInvalidRevision.WrapMessage("item %s, version %d: unknown action", r.Key, r.Version)
	case r.Timestamp.IsZero():
		return ErrInvalidRevision.WrapMessage("item %s, version %d: timestamp is required", r.Key, r.Version)
	case r.Version < 1:
		return ErrInvalidRevision.WrapMessage("item %s: invalid version %d", r.Key, r.Version)
	case r.Action == ActionLabeled && r.Label == "":
		return ErrInvalidRevision.WrapMessage("item %s, version %d: label name is required", r.Key, r.Version)
	case r.Action.RequiresContent() && !r.Container && r.Content == "":
		return ErrInvalidRevision.WrapMessage("item %s, version %d: %v without content", r.Key, r.Version, r.Action)
	case r.Action == ActionRenamed && (r.Name == "" || r.OldName == ""):
		return ErrInvalidRevision.WrapMessage("item %s, version %d: rename requires both names", r.Key, r.Version)
	}
	return nil
}

// IsLabel tells if this revision only sets a label
func (r Revision) IsLabel() bool {
	return r.Action == ActionLabeled
}

func (r Revision) String() string {
	return fmt.Sprintf("%s#%d %v by %s at %s", r.Key, r.Version, r.Action, r.Author, r.Timestamp.UTC().Format(time.RFC3339))
}
