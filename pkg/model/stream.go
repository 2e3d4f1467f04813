// Copyright © 2018 One Concern

package model

import (
	"sort"
	"time"
)

// Stream holds revisions bucketed by timestamp.
//
// Buckets are kept in ascending time order. Within a bucket, revisions keep their insertion order.
//
// A Stream is not safe for concurrent use.
type Stream struct {
	times   []int64
	buckets map[int64][]Revision
	count   int
}

// NewStream builds an empty stream
func NewStream() *Stream {
	return &Stream{
		buckets: make(map[int64][]Revision),
	}
}

// Add a revision to the stream
func (s *Stream) Add(r Revision) {
	at := r.Timestamp.UnixNano()
	bucket, ok := s.buckets[at]
	if !ok {
		pos := sort.Search(len(s.times), func(i int) bool { return s.times[i] >= at })
		s.times = append(s.times, 0)
		copy(s.times[pos+1:], s.times[pos:])
		s.times[pos] = at
	}
	s.buckets[at] = append(bucket, r)
	s.count++
}

// Len is the number of revisions in the stream
func (s *Stream) Len() int {
	if s == nil {
		return 0
	}
	return s.count
}

// Times yields all distinct timestamps, in ascending order
func (s *Stream) Times() []time.Time {
	res := make([]time.Time, 0, len(s.times))
	for _, at := range s.times {
		res = append(res, time.Unix(0, at).UTC())
	}
	return res
}

// At yields the revisions recorded at some instant
func (s *Stream) At(t time.Time) []Revision {
	bucket := s.buckets[t.UnixNano()]
	res := make([]Revision, len(bucket))
	copy(res, bucket)
	return res
}

// Revisions yields all revisions, in stream order
func (s *Stream) Revisions() []Revision {
	res := make([]Revision, 0, s.Len())
	s.Walk(func(r Revision) bool {
		res = append(res, r)
		return true
	})
	return res
}

// Walk the stream in order, until the walker returns false
func (s *Stream) Walk(walker func(Revision) bool) {
	if s == nil {
		return
	}
	for _, at := range s.times {
		for _, r := range s.buckets[at] {
			if !walker(r) {
				return
			}
		}
	}
}

// Authors yields the distinct raw author strings in the stream, lower-cased and sorted
func (s *Stream) Authors() []string {
	seen := make(map[string]struct{})
	s.Walk(func(r Revision) bool {
		seen[NormalizeAuthor(r.Author)] = struct{}{}
		return true
	})
	res := make([]string, 0, len(seen))
	for author := range seen {
		res = append(res, author)
	}
	sort.Strings(res)
	return res
}

// Clone makes a copy of the stream which shares no mutable state with the original
func (s *Stream) Clone() *Stream {
	c := NewStream()
	if s == nil {
		return c
	}
	c.times = make([]int64, len(s.times))
	copy(c.times, s.times)
	for at, bucket := range s.buckets {
		b := make([]Revision, len(bucket))
		copy(b, bucket)
		c.buckets[at] = b
	}
	c.count = s.count
	return c
}
