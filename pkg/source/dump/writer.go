package dump

import (
	"bytes"
	"context"

	"gopkg.in/yaml.v2"

	"github.com/oneconcern/vcsmigrate/pkg/model"
	"github.com/oneconcern/vcsmigrate/pkg/storage"
)

// Builder assembles a history dump in memory, then writes it to a store
type Builder struct {
	root     string
	items    map[string]*ItemDescriptor
	order    []string
	contents map[string][]byte
}

// NewBuilder starts a dump with an empty root container
func NewBuilder(rootKey string) *Builder {
	b := &Builder{
		root:     rootKey,
		items:    make(map[string]*ItemDescriptor),
		contents: make(map[string][]byte),
	}
	b.add(&ItemDescriptor{Key: rootKey, Name: "$", Container: true})
	return b
}

func (b *Builder) add(desc *ItemDescriptor) {
	if _, exists := b.items[desc.Key]; !exists {
		b.order = append(b.order, desc.Key)
	}
	b.items[desc.Key] = desc
}

func (b *Builder) attach(parent, key string) {
	if p, ok := b.items[parent]; ok {
		p.Children = append(p.Children, key)
	}
}

// Container adds a container under some parent
func (b *Builder) Container(parent, key, name string) *Builder {
	b.add(&ItemDescriptor{Key: key, Name: name, Container: true})
	b.attach(parent, key)
	return b
}

// Leaf adds a leaf under some parent
func (b *Builder) Leaf(parent, key, name string) *Builder {
	b.add(&ItemDescriptor{Key: key, Name: name})
	b.attach(parent, key)
	return b
}

// Revision appends a revision to the history of the item it refers to
func (b *Builder) Revision(revisions ...model.Revision) *Builder {
	for _, r := range revisions {
		b.Record(r.Key, NewRevisionRecord(r))
	}
	return b
}

// Record appends a raw revision record to the history of an item
func (b *Builder) Record(key string, rec RevisionRecord) *Builder {
	if desc, ok := b.items[key]; ok {
		desc.Revisions = append(desc.Revisions, rec)
	}
	return b
}

// Content registers some revision content
func (b *Builder) Content(ref string, data []byte) *Builder {
	b.contents[ref] = data
	return b
}

// Write the dump to a store
func (b *Builder) Write(ctx context.Context, store storage.Store) error {
	buf, err := yaml.Marshal(rootDescriptor{Key: b.root})
	if err != nil {
		return err
	}
	if err = storage.PutBytes(ctx, store, rootFile, buf, storage.OverWrite); err != nil {
		return err
	}

	for _, key := range b.order {
		if buf, err = yaml.Marshal(b.items[key]); err != nil {
			return err
		}
		if err = storage.PutBytes(ctx, store, itemPath(key), buf, storage.OverWrite); err != nil {
			return err
		}
	}

	for ref, data := range b.contents {
		if err = store.Put(ctx, contentPath(ref), bytes.NewReader(data), storage.OverWrite); err != nil {
			return err
		}
	}
	return nil
}
