package exporter

import (
	"context"
	"io"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/oneconcern/vcsmigrate/pkg/backend"
	"github.com/oneconcern/vcsmigrate/pkg/model"
)

// maximum nesting of containers, guarding against cycles in corrupt histories
const maxDepth = 1024

// node is the state of a source item in the target tree
type node struct {
	name      string
	parent    string
	container bool
	deleted   bool
	// detached nodes have been moved out of the tree
	detached bool
	content  string
}

// workspace tracks where items live in the target tree, as changesets are replayed.
//
// Items are identified by their stable key: paths are resolved through the parent chain
// when a mutation is emitted.
type workspace struct {
	source  Source
	rootKey string
	nodes   map[string]*node
	l       *zap.Logger
}

func newWorkspace(src Source, l *zap.Logger) *workspace {
	return &workspace{
		source:  src,
		rootKey: src.RootKey(),
		nodes:   make(map[string]*node),
		l:       l,
	}
}

// lookup a node, seeding unknown items from their location at ingestion time
func (w *workspace) lookup(key string) *node {
	if n, ok := w.nodes[key]; ok {
		return n
	}
	n := &node{name: key}
	if name, parent, ok := w.source.Locate(key); ok {
		n.name = name
		n.parent = parent
	}
	w.nodes[key] = n
	return n
}

// path of an item in the target tree. Items outside the tree are not materialized.
func (w *workspace) path(key string) (string, bool) {
	if key == w.rootKey {
		return "", true
	}
	var parts []string
	for depth := 0; depth < maxDepth; depth++ {
		n := w.lookup(key)
		if n.deleted || n.detached || n.parent == "" {
			return "", false
		}
		parts = append(parts, n.name)
		if n.parent == w.rootKey {
			for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
				parts[i], parts[j] = parts[j], parts[i]
			}
			return backend.CleanPath(strings.Join(parts, "/")), true
		}
		key = n.parent
	}
	return "", false
}

// leaves under a container, with their paths, in path order
func (w *workspace) leaves(key string) []string {
	var res []string
	for k, n := range w.nodes {
		if n.container || n.deleted || n.detached || n.content == "" {
			continue
		}
		if w.isUnder(k, key) {
			res = append(res, k)
		}
	}
	sort.Strings(res)
	return res
}

func (w *workspace) isUnder(key, ancestor string) bool {
	for depth := 0; depth < maxDepth; depth++ {
		n, ok := w.nodes[key]
		if !ok || n.parent == "" {
			return false
		}
		if n.parent == ancestor {
			return true
		}
		key = n.parent
	}
	return false
}

func (w *workspace) contentFunc(ref string) backend.ContentFunc {
	return func(ctx context.Context) (io.ReadCloser, error) {
		return w.source.Content(ctx, ref)
	}
}

// materialize yields puts for an item and, for a container, all leaves below it
func (w *workspace) materialize(key string) []backend.Mutation {
	n := w.lookup(key)
	if !n.container {
		pth, ok := w.path(key)
		if !ok || n.content == "" {
			return nil
		}
		return []backend.Mutation{backend.Put(pth, w.contentFunc(n.content))}
	}

	var res []backend.Mutation
	for _, leaf := range w.leaves(key) {
		if pth, ok := w.path(leaf); ok {
			res = append(res, backend.Put(pth, w.contentFunc(w.nodes[leaf].content)))
		}
	}
	return res
}

// apply a changeset to the workspace and yield the mutations it implies on the target tree.
//
// Content is only fetched when the mutations are committed, so replaying a changeset
// for bookkeeping only is cheap.
func (w *workspace) apply(cs *model.Changeset) []backend.Mutation {
	var mutations []backend.Mutation
	// moved out items, with the position of their delete mutation
	movedOut := make(map[string]int)

	for _, r := range cs.Revisions {
		n := w.lookup(r.Key)
		n.container = n.container || r.Container
		if r.Name != "" && r.Action != model.ActionShared {
			n.name = r.Name
		}

		switch r.Action {
		case model.ActionAdded, model.ActionModified, model.ActionBranched:
			if r.Parent != "" {
				n.parent = r.Parent
			}
			if r.Action == model.ActionAdded {
				n.deleted = false
				n.detached = false
			}
			if n.container || r.Content == "" {
				continue
			}
			n.content = r.Content
			if pth, ok := w.path(r.Key); ok {
				mutations = append(mutations, backend.Put(pth, w.contentFunc(r.Content)))
			}

		case model.ActionDeleted:
			pth, ok := w.path(r.Key)
			n.deleted = true
			if ok {
				mutations = append(mutations, backend.Delete(pth))
			}

		case model.ActionRecovered:
			n.deleted = false
			if r.Content != "" && !n.container {
				n.content = r.Content
			}
			mutations = append(mutations, w.materialize(r.Key)...)

		case model.ActionRenamed:
			n.name = r.OldName
			from, ok := w.path(r.Key)
			n.name = r.Name
			to, _ := w.path(r.Key)
			if ok && from != to {
				mutations = append(mutations, backend.Rename(from, to))
			}

		case model.ActionMovedOut:
			pth, ok := w.path(r.Key)
			n.detached = true
			if ok {
				movedOut[r.Key] = len(mutations)
				mutations = append(mutations, backend.Delete(pth))
			}

		case model.ActionMovedIn:
			if r.Parent == "" {
				w.l.Warn("move without a destination, ignored", zap.Stringer("revision", r))
				continue
			}
			n.parent = r.Parent
			n.detached = false
			n.deleted = false
			to, ok := w.path(r.Key)
			if !ok {
				continue
			}
			if pos, wasOut := movedOut[r.Key]; wasOut {
				// the item moved within the tree: turn the delete into a rename
				mutations[pos] = backend.Rename(mutations[pos].Path, to)
				delete(movedOut, r.Key)
				continue
			}
			mutations = append(mutations, w.materialize(r.Key)...)

		case model.ActionShared:
			// a copy of the item appears in another container
			ref := r.Content
			if ref == "" {
				ref = n.content
			}
			if ref == "" || n.container || r.Parent == "" {
				continue
			}
			dir, ok := w.path(r.Parent)
			if !ok {
				continue
			}
			name := r.Name
			if name == "" {
				name = n.name
			}
			mutations = append(mutations, backend.Put(backend.CleanPath(dir+"/"+name), w.contentFunc(ref)))

		case model.ActionLabeled:
			// labels are exported as tags
		}
	}

	return mutations
}
