package exporter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/oneconcern/vcsmigrate/pkg/backend"
	"github.com/oneconcern/vcsmigrate/pkg/model"
)

type flatMutation struct {
	Op   backend.Op
	Path string
	From string
}

func flatten(mutations []backend.Mutation) []flatMutation {
	res := make([]flatMutation, 0, len(mutations))
	for _, m := range mutations {
		res = append(res, flatMutation{Op: m.Op, Path: m.Path, From: m.From})
	}
	return res
}

func TestWorkspaceLocatesItems(t *testing.T) {
	src := newSource()
	src.locations["d1"] = [2]string{"src", "p"}
	src.locations["f2"] = [2]string{"main.c", "d1"}
	ws := newWorkspace(src, zap.NewNop())

	// revisions without names fall back on the location at ingestion time
	muts := ws.apply(cs("jdoe", with(rev("f2", 1, 0, model.ActionModified), func(r *model.Revision) { r.Content = "m1" })))
	assert.Equal(t, []flatMutation{{Op: backend.OpPut, Path: "src/main.c"}}, flatten(muts))

	// unknown items are not materialized
	muts = ws.apply(cs("jdoe", with(rev("zz", 1, 0, model.ActionModified), func(r *model.Revision) { r.Content = "m1" })))
	assert.Empty(t, muts)
}

func TestWorkspaceMoves(t *testing.T) {
	ws := newWorkspace(newSource(), zap.NewNop())
	ws.apply(cs("jdoe",
		with(rev("d1", 1, 0, model.ActionAdded), func(r *model.Revision) { r.Name, r.Parent, r.Container = "src", "p", true }),
		with(rev("d2", 1, 0, model.ActionAdded), func(r *model.Revision) { r.Name, r.Parent, r.Container = "doc", "p", true }),
		with(rev("f1", 1, 0, model.ActionAdded), func(r *model.Revision) { r.Name, r.Parent, r.Content = "a.c", "d1", "a1" }),
		with(rev("f2", 1, 0, model.ActionAdded), func(r *model.Revision) { r.Name, r.Parent, r.Content = "b.c", "d1", "m1" }),
	))

	t.Run("move out of the tree", func(t *testing.T) {
		muts := ws.apply(cs("jdoe", with(rev("d1", 2, time.Minute, model.ActionMovedOut), func(r *model.Revision) { r.Parent = "p" })))
		assert.Equal(t, []flatMutation{{Op: backend.OpDelete, Path: "src"}}, flatten(muts))
	})

	t.Run("move back into the tree", func(t *testing.T) {
		muts := ws.apply(cs("jdoe", with(rev("d1", 3, 2*time.Minute, model.ActionMovedIn), func(r *model.Revision) { r.Parent = "d2" })))
		assert.Equal(t, []flatMutation{
			{Op: backend.OpPut, Path: "doc/src/a.c"},
			{Op: backend.OpPut, Path: "doc/src/b.c"},
		}, flatten(muts))
	})

	t.Run("move within the tree", func(t *testing.T) {
		muts := ws.apply(cs("jdoe",
			with(rev("f1", 2, 3*time.Minute, model.ActionMovedOut), func(r *model.Revision) { r.Parent = "d1" }),
			with(rev("f2", 2, 3*time.Minute, model.ActionModified), func(r *model.Revision) { r.Content = "m2" }),
			with(rev("f1", 3, 3*time.Minute, model.ActionMovedIn), func(r *model.Revision) { r.Parent = "d2" }),
		))
		assert.Equal(t, []flatMutation{
			{Op: backend.OpRename, From: "doc/src/a.c", Path: "doc/a.c"},
			{Op: backend.OpPut, Path: "doc/src/b.c"},
		}, flatten(muts))
	})

	t.Run("delete and recover", func(t *testing.T) {
		muts := ws.apply(cs("jdoe", rev("d1", 4, 4*time.Minute, model.ActionDeleted)))
		assert.Equal(t, []flatMutation{{Op: backend.OpDelete, Path: "doc/src"}}, flatten(muts))

		muts = ws.apply(cs("jdoe", with(rev("f2", 3, 5*time.Minute, model.ActionModified), func(r *model.Revision) { r.Content = "m1" })))
		assert.Empty(t, muts, "items below a deleted container are not materialized")

		muts = ws.apply(cs("jdoe", rev("d1", 5, 6*time.Minute, model.ActionRecovered)))
		assert.Equal(t, []flatMutation{{Op: backend.OpPut, Path: "doc/src/b.c"}}, flatten(muts))
	})

	t.Run("share and branch", func(t *testing.T) {
		muts := ws.apply(cs("jdoe",
			with(rev("f1", 4, 7*time.Minute, model.ActionShared), func(r *model.Revision) { r.Parent, r.Name = "d1", "shared.c" }),
			with(rev("f1", 5, 7*time.Minute, model.ActionBranched), func(r *model.Revision) { r.Content = "a2" }),
		))
		assert.Equal(t, []flatMutation{
			{Op: backend.OpPut, Path: "doc/src/shared.c"},
			{Op: backend.OpPut, Path: "doc/a.c"},
		}, flatten(muts))
	})
}
