// Copyright © 2018 One Concern

package model

import (
	"time"
)

// CurrentCommitVersion is the version of commit descriptors written by this build
const CurrentCommitVersion = 1

// CommitRef identifies a commit in a target backend
type CommitRef struct {
	ID        string    `json:"id" yaml:"id"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	_         struct{}
}

// CommitDescriptor represents a commit stored by the snapshot backend: a full file tree
type CommitDescriptor struct {
	ID           string        `json:"id" yaml:"id"`
	Message      string        `json:"message" yaml:"message"`
	Parents      []string      `json:"parents,omitempty" yaml:"parents,omitempty"`
	Timestamp    time.Time     `json:"timestamp" yaml:"timestamp"`
	Contributors []Contributor `json:"contributors" yaml:"contributors"`
	EntriesCount uint64        `json:"count" yaml:"count"`
	Version      uint64        `json:"version,omitempty" yaml:"version,omitempty"`
	_            struct{}
}

// Ref to this commit
func (c CommitDescriptor) Ref() CommitRef {
	return CommitRef{ID: c.ID, Timestamp: c.Timestamp}
}

// Entries is the list of files of a commit
type Entries []Entry

// Entry is one file in a commit
type Entry struct {
	Hash         string `json:"hash" yaml:"hash"`
	NameWithPath string `json:"name" yaml:"name"`
	Size         uint64 `json:"size" yaml:"size"`
	_            struct{}
}

// TagDescriptor names a commit
type TagDescriptor struct {
	Name         string        `json:"name" yaml:"name"`
	CommitID     string        `json:"id" yaml:"id"`
	Timestamp    time.Time     `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
	Contributors []Contributor `json:"contributors,omitempty" yaml:"contributors,omitempty"`
	_            struct{}
}

// HeadDescriptor points to the last commit of a target
type HeadDescriptor struct {
	ID        string    `json:"id" yaml:"id"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	Count     uint64    `json:"count" yaml:"count"`
	_         struct{}
}

// Ref to the head commit
func (h HeadDescriptor) Ref() CommitRef {
	return CommitRef{ID: h.ID, Timestamp: h.Timestamp}
}
