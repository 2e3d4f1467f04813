// Copyright © 2018 One Concern

package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v2"

	"github.com/oneconcern/vcsmigrate/pkg/errors"
)

var t0 = time.Date(2004, 3, 12, 9, 30, 0, 0, time.UTC)

func TestValidateRevision(t *testing.T) {
	valid := Revision{Key: "item-1", Version: 1, Timestamp: t0, Author: "jdoe", Action: ActionAdded, Content: "blob-1", Name: "a.txt"}

	tests := []struct {
		name    string
		mutate  func(*Revision)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Revision) {}},
		{name: "no key", mutate: func(r *Revision) { r.Key = "" }, wantErr: true},
		{name: "unknown action", mutate: func(r *Revision) { r.Action = ActionUnknown }, wantErr: true},
		{name: "out of range action", mutate: func(r *Revision) { r.Action = Action(200) }, wantErr: true},
		{name: "zero time", mutate: func(r *Revision) { r.Timestamp = time.Time{} }, wantErr: true},
		{name: "bad version", mutate: func(r *Revision) { r.Version = 0 }, wantErr: true},
		{name: "add without content", mutate: func(r *Revision) { r.Content = "" }, wantErr: true},
		{name: "container add without content", mutate: func(r *Revision) { r.Content = ""; r.Container = true }},
		{name: "label without name", mutate: func(r *Revision) { r.Action = ActionLabeled; r.Content = "" }, wantErr: true},
		{name: "label", mutate: func(r *Revision) { r.Action = ActionLabeled; r.Content = ""; r.Label = "v1" }},
		{name: "rename without old name", mutate: func(r *Revision) { r.Action = ActionRenamed }, wantErr: true},
		{name: "rename", mutate: func(r *Revision) { r.Action = ActionRenamed; r.OldName = "b.txt" }},
	}

	for _, toPin := range tests {
		tt := toPin
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := valid
			tt.mutate(&r)
			err := r.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidRevision))
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestActionYAML(t *testing.T) {
	r := Revision{Key: "k", Version: 2, Timestamp: t0, Author: "jdoe", Action: ActionMovedIn, Parent: "p"}
	buf, err := yaml.Marshal(r)
	require.NoError(t, err)
	assert.Contains(t, string(buf), "action: MovedIn")

	var back Revision
	require.NoError(t, yaml.Unmarshal(buf, &back))
	assert.Equal(t, ActionMovedIn, back.Action)
	assert.True(t, back.Timestamp.Equal(t0))

	require.Error(t, yaml.Unmarshal([]byte("action: Exploded\n"), &back))

	a, err := ParseAction(" labeled ")
	require.NoError(t, err)
	assert.Equal(t, ActionLabeled, a)
	assert.Equal(t, "Unknown", Action(99).String())
}

func TestStream(t *testing.T) {
	s := NewStream()
	add := func(key string, offset time.Duration) {
		s.Add(Revision{Key: key, Version: 1, Timestamp: t0.Add(offset), Author: "X", Action: ActionModified})
	}
	add("c", 10*time.Second)
	add("a", 0)
	add("b", 10*time.Second)
	add("d", 5*time.Second)
	add("e", 0)

	require.Equal(t, 5, s.Len())
	require.Len(t, s.Times(), 3)
	assert.True(t, s.Times()[0].Equal(t0))

	keys := make([]string, 0, s.Len())
	for _, r := range s.Revisions() {
		keys = append(keys, r.Key)
	}
	assert.Equal(t, []string{"a", "e", "d", "c", "b"}, keys, "buckets are time-ordered, insertion-ordered within a bucket")

	bucket := s.At(t0.Add(10 * time.Second))
	require.Len(t, bucket, 2)
	assert.Equal(t, "c", bucket[0].Key)

	c := s.Clone()
	add("f", time.Hour)
	assert.Equal(t, 5, c.Len())
	assert.Equal(t, 6, s.Len())
	assert.Equal(t, []string{"x"}, s.Authors())

	var nilStream *Stream
	assert.Zero(t, nilStream.Len())
	assert.Zero(t, nilStream.Clone().Len())
}

func TestChangeset(t *testing.T) {
	cs := Changeset{
		Author: "jdoe",
		Revisions: []Revision{
			{Key: "a", Timestamp: t0, Action: ActionModified},
			{Key: "b", Timestamp: t0.Add(time.Second), Action: ActionModified, Comment: "fix"},
			{Key: "c", Timestamp: t0.Add(2 * time.Second), Action: ActionModified, Comment: "other"},
		},
	}
	assert.True(t, cs.Since().Equal(t0))
	assert.True(t, cs.Timestamp().Equal(t0.Add(2*time.Second)))
	assert.Equal(t, "fix", cs.Comment())
	assert.False(t, cs.IsLabel())
	assert.Empty(t, cs.Label())

	label := Changeset{Author: "jdoe", Revisions: []Revision{{Key: "a", Timestamp: t0, Action: ActionLabeled, Label: "v1"}}}
	assert.True(t, label.IsLabel())
	assert.Equal(t, "v1", label.Label())
	assert.Contains(t, label.String(), `label "v1"`)

	var empty Changeset
	assert.True(t, empty.Timestamp().IsZero())
}
