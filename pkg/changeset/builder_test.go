package changeset

import (
	"context"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oneconcern/vcsmigrate/pkg/errors"
	"github.com/oneconcern/vcsmigrate/pkg/model"
	"github.com/oneconcern/vcsmigrate/pkg/taskqueue"
)

var t0 = time.Date(2004, 3, 12, 9, 30, 0, 0, time.UTC)

type event struct {
	author  string
	offset  time.Duration
	comment string
	label   string
}

func streamOf(events ...event) *model.Stream {
	s := model.NewStream()
	for i, e := range events {
		r := model.Revision{
			Key:       fmt.Sprintf("item-%d", i),
			Version:   1,
			Timestamp: t0.Add(e.offset),
			Author:    e.author,
			Action:    model.ActionModified,
			Comment:   e.comment,
			Content:   fmt.Sprintf("blob-%d", i),
		}
		if e.label != "" {
			r.Action = model.ActionLabeled
			r.Label = e.label
			r.Content = ""
		}
		s.Add(r)
	}
	return s
}

func mustBuilder(t testing.TB, anyComment, sameComment time.Duration) *Builder {
	b, err := New(AnyCommentThreshold(anyComment), SameCommentThreshold(sameComment))
	require.NoError(t, err)
	return b
}

func keysOf(cs *model.Changeset) []string {
	keys := make([]string, 0, cs.Len())
	for _, r := range cs.Revisions {
		keys = append(keys, r.Key)
	}
	return keys
}

func TestSameCommentOverridesAnyThreshold(t *testing.T) {
	b := mustBuilder(t, 2*time.Second, 10*time.Second)
	res := b.Build(streamOf(
		event{author: "X", comment: "fix"},
		event{author: "X", offset: 5 * time.Second, comment: "fix"},
	))
	require.Len(t, res, 1)
	assert.Equal(t, 2, res[0].Len())
	assert.Equal(t, "fix", res[0].Comment())
	assert.True(t, res[0].Timestamp().Equal(t0.Add(5*time.Second)))
}

func TestDifferentCommentSplits(t *testing.T) {
	b := mustBuilder(t, 2*time.Second, 10*time.Second)
	res := b.Build(streamOf(
		event{author: "X", comment: "fix"},
		event{author: "X", offset: 5 * time.Second, comment: "other"},
	))
	require.Len(t, res, 2)
	assert.Equal(t, "fix", res[0].Comment())
	assert.Equal(t, "other", res[1].Comment())
}

func TestBuilderCases(t *testing.T) {
	const (
		anyComment  = 10 * time.Second
		sameComment = time.Minute
	)

	tests := []struct {
		name   string
		events []event
		want   [][]string
	}{
		{
			name: "gaps chain from the last member",
			events: []event{
				{author: "a", comment: "x"},
				{author: "a", offset: 8 * time.Second, comment: "y"},
				{author: "a", offset: 16 * time.Second, comment: "z"},
				{author: "a", offset: 40 * time.Second, comment: "w"},
			},
			want: [][]string{{"item-0", "item-1", "item-2"}, {"item-3"}},
		},
		{
			name: "empty comments fold within the any comment threshold",
			events: []event{
				{author: "a"},
				{author: "a", offset: 5 * time.Second, comment: "refactor"},
				{author: "a", offset: 50 * time.Second, comment: "refactor"},
				{author: "a", offset: 200 * time.Second, comment: "refactor"},
			},
			want: [][]string{{"item-0", "item-1", "item-2"}, {"item-3"}},
		},
		{
			name: "comments are matched against the last member",
			events: []event{
				{author: "a", comment: "x"},
				{author: "a", offset: 5 * time.Second, comment: "y"},
				{author: "a", offset: 30 * time.Second, comment: "y"},
				{author: "a", offset: 60 * time.Second, comment: "x"},
			},
			want: [][]string{{"item-0", "item-1", "item-2"}, {"item-3"}},
		},
		{
			name: "revisions at the same instant are regrouped by author",
			events: []event{
				{author: "a", comment: "a"},
				{author: "a", offset: time.Second, comment: "b"},
				{author: "b", offset: time.Second, comment: "z"},
				{author: "a", offset: time.Second, comment: "c"},
				{author: "a", offset: 5 * time.Second, comment: "b"},
			},
			want: [][]string{{"item-0", "item-1", "item-3"}, {"item-2"}, {"item-4"}},
		},
		{
			name: "authors match case-insensitively",
			events: []event{
				{author: "JDoe", comment: "x"},
				{author: "jdoe", offset: time.Second, comment: "y"},
			},
			want: [][]string{{"item-0", "item-1"}},
		},
		{
			name: "concurrent authors at the same instant keep separate changesets",
			events: []event{
				{author: "a", comment: "x"},
				{author: "b", comment: "y"},
				{author: "a", comment: "x"},
			},
			want: [][]string{{"item-0", "item-2"}, {"item-1"}},
		},
		{
			name: "a later revision by another author seals an open changeset",
			events: []event{
				{author: "a", comment: "x"},
				{author: "b", offset: 2 * time.Second, comment: "y"},
				{author: "a", offset: 4 * time.Second, comment: "x"},
			},
			want: [][]string{{"item-0"}, {"item-1"}, {"item-2"}},
		},
		{
			name: "a label is a changeset of its own and a barrier",
			events: []event{
				{author: "a", comment: "x"},
				{author: "a", offset: time.Second, label: "v1"},
				{author: "a", offset: 2 * time.Second, comment: "x"},
			},
			want: [][]string{{"item-0"}, {"item-1"}, {"item-2"}},
		},
		{
			name: "a label at the same instant as content revisions",
			events: []event{
				{author: "a", offset: time.Second, comment: "x"},
				{author: "a", offset: time.Second, label: "v1"},
				{author: "a", offset: time.Second, comment: "x"},
			},
			want: [][]string{{"item-0"}, {"item-1"}, {"item-2"}},
		},
		{
			name: "output is ordered by last timestamp",
			events: []event{
				{author: "a", comment: "x"},
				{author: "a", offset: 9 * time.Second, comment: "x"},
				{author: "b", offset: 9 * time.Second, comment: "y"},
				{author: "b", offset: 12 * time.Second, comment: "y"},
			},
			want: [][]string{{"item-0", "item-1"}, {"item-2", "item-3"}},
		},
	}

	for _, toPin := range tests {
		tt := toPin
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			res := mustBuilder(t, anyComment, sameComment).Build(streamOf(tt.events...))
			got := make([][]string, 0, len(res))
			for _, cs := range res {
				got = append(got, keysOf(cs))
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func randomStream(rnd *rand.Rand, size int, authors []string, withLabels bool) *model.Stream {
	comments := []string{"", "fix", "feature", "cleanup"}
	events := make([]event, 0, size)
	offset := time.Duration(0)
	for i := 0; i < size; i++ {
		// frequent equal timestamps
		offset += time.Duration(rnd.Intn(4)) * time.Duration(rnd.Intn(20)) * time.Second
		e := event{
			author:  authors[rnd.Intn(len(authors))],
			offset:  offset,
			comment: comments[rnd.Intn(len(comments))],
		}
		if withLabels && rnd.Intn(15) == 0 {
			e.label = fmt.Sprintf("label-%d", i)
		}
		events = append(events, e)
	}
	return streamOf(events...)
}

func TestPartitionAndOrdering(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	thresholds := []time.Duration{0, time.Second, 10 * time.Second, time.Minute}

	for round := 0; round < 50; round++ {
		stream := randomStream(rnd, 200, []string{"a", "B", "c", "b"}, true)
		for _, anyComment := range thresholds {
			res := mustBuilder(t, anyComment, 2*anyComment+time.Second).Build(stream)

			// partition
			seen := make(map[string]int, stream.Len())
			for _, cs := range res {
				require.NotZero(t, cs.Len())
				for _, r := range cs.Revisions {
					seen[r.Key]++
					assert.Equal(t, model.NormalizeAuthor(cs.Author), model.NormalizeAuthor(r.Author), "single author")
				}
				if cs.Len() > 1 {
					for _, r := range cs.Revisions {
						assert.False(t, r.IsLabel(), "labels are never merged")
					}
				}
			}
			require.Len(t, seen, stream.Len())
			for key, count := range seen {
				require.Equalf(t, 1, count, "revision %s appears %d times", key, count)
			}

			// ordering
			for i := 1; i < len(res); i++ {
				prev, next := res[i-1], res[i]
				require.Falsef(t, prev.Timestamp().After(next.Since()),
					"round %d, threshold %v: changeset %d ends at %v after changeset %d starts at %v",
					round, anyComment, i-1, prev.Timestamp(), i, next.Since())
			}
		}
	}
}

func TestThresholdMonotonicity(t *testing.T) {
	thresholds := []time.Duration{0, time.Second, 5 * time.Second, 15 * time.Second, time.Minute, time.Hour}

	t.Run("single author", func(t *testing.T) {
		rnd := rand.New(rand.NewSource(7))
		for round := 0; round < 50; round++ {
			// distinct comments leave the any comment threshold as the only criterion
			events := make([]event, 0, 100)
			offset := time.Duration(0)
			for i := 0; i < 100; i++ {
				offset += time.Duration(rnd.Intn(30)) * time.Second
				events = append(events, event{author: "solo", offset: offset, comment: fmt.Sprintf("change %d", i)})
			}
			stream := streamOf(events...)

			previous := stream.Len() + 1
			for _, anyComment := range thresholds {
				count := len(mustBuilder(t, anyComment, time.Hour).Build(stream))
				assert.LessOrEqual(t, count, previous)
				previous = count
			}
			assert.Equal(t, 1, previous)
		}
	})

	t.Run("several authors with repeated comments", func(t *testing.T) {
		rnd := rand.New(rand.NewSource(11))
		for round := 0; round < 100; round++ {
			stream := randomStream(rnd, 150, []string{"a", "b", "C", "c"}, round%2 == 0)

			for _, sameComment := range []time.Duration{time.Hour, 2 * time.Hour} {
				previous := stream.Len() + 1
				for _, anyComment := range thresholds {
					count := len(mustBuilder(t, anyComment, sameComment).Build(stream))
					require.LessOrEqualf(t, count, previous,
						"round %d: any comment threshold %v yields more changesets than a shorter one", round, anyComment)
					previous = count
				}
			}
		}
	})

	t.Run("interleaved authors", func(t *testing.T) {
		stream := streamOf(
			event{author: "A", comment: "a"},
			event{author: "A", offset: time.Second, comment: "b"},
			event{author: "B", offset: time.Second, comment: "z"},
			event{author: "A", offset: time.Second, comment: "c"},
			event{author: "A", offset: 5 * time.Second, comment: "b"},
		)
		narrow := mustBuilder(t, 0, 10*time.Second).Build(stream)
		wide := mustBuilder(t, time.Second, 10*time.Second).Build(stream)
		assert.LessOrEqual(t, len(wide), len(narrow))
		assert.Len(t, wide, 3)
	})
}

func TestRegroupKeepsItemOrder(t *testing.T) {
	at := t0.Add(time.Minute)
	revisions := []model.Revision{
		{Key: "f1", Version: 1, Timestamp: at, Author: "a", Action: model.ActionAdded},
		{Key: "f1", Version: 2, Timestamp: at, Author: "b", Action: model.ActionModified},
		{Key: "f1", Version: 3, Timestamp: at, Author: "a", Action: model.ActionDeleted},
		{Key: "f2", Version: 1, Timestamp: at, Author: "a", Action: model.ActionAdded},
	}

	res := regroup(revisions, "")
	got := make([]string, 0, len(res))
	for _, r := range res {
		got = append(got, fmt.Sprintf("%s@%d", r.Key, r.Version))
	}
	assert.Equal(t, []string{"f1@1", "f2@1", "f1@2", "f1@3"}, got)

	res = regroup(revisions, "b")
	assert.Equal(t, "a", res[0].Author, "a revision by the preceding author never jumps over the same item")
}

func TestBuildEmptyStream(t *testing.T) {
	res := mustBuilder(t, time.Second, time.Second).Build(model.NewStream())
	require.NotNil(t, res)
	assert.Empty(t, res)
}

func TestInvalidThresholds(t *testing.T) {
	_, err := New(AnyCommentThreshold(time.Minute), SameCommentThreshold(time.Second))
	assert.True(t, errors.Is(err, ErrInvalidThreshold))

	_, err = New(AnyCommentThreshold(-time.Second))
	assert.True(t, errors.Is(err, ErrInvalidThreshold))

	b, err := New()
	require.NoError(t, err)
	assert.Equal(t, DefaultAnyCommentThreshold, b.anyComment)
	assert.Equal(t, DefaultSameCommentThreshold, b.sameComment)
}

func TestBuilderTask(t *testing.T) {
	q := taskqueue.New("primary")
	defer q.Close()

	b := mustBuilder(t, 2*time.Second, 10*time.Second)
	stream := streamOf(
		event{author: "X", comment: "fix"},
		event{author: "X", offset: 5 * time.Second, comment: "fix"},
		event{author: "Y", offset: 6 * time.Second, comment: "fix"},
	)
	require.NoError(t, q.Submit(b.Task(func() *model.Stream { return stream })))
	q.WaitIdle()
	require.Empty(t, q.FetchExceptions())
	require.Len(t, b.Changesets(), 2)
	assert.Contains(t, q.LastStatus(), "built 2 changeset(s) from 3 revision(s)")

	require.NoError(t, q.Submit(b.Task(func() *model.Stream { return nil })))
	q.WaitIdle()
	failures := q.FetchExceptions()
	require.Len(t, failures, 1)
	assert.True(t, errors.Is(failures[0], ErrNoStream))
}

func TestBuildCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rnd := rand.New(rand.NewSource(1))
	_, err := mustBuilder(t, time.Second, time.Second).build(ctx, randomStream(rnd, checkpoint+1, []string{"a"}, false))
	require.Error(t, err)
}
