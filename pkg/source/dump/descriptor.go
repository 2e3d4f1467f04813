package dump

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/oneconcern/vcsmigrate/pkg/model"
)

const (
	rootFile      = "root.yaml"
	itemsPrefix   = "items/"
	contentPrefix = "content/"
)

// rootDescriptor points to the root container
type rootDescriptor struct {
	Key string `yaml:"key"`
	_   struct{}
}

// ItemDescriptor is the stored representation of an item.
//
// Revision fields are kept as raw text, so that a malformed record does not prevent
// reading the others.
type ItemDescriptor struct {
	Key       string           `yaml:"key"`
	Name      string           `yaml:"name"`
	Container bool             `yaml:"container,omitempty"`
	Children  []string         `yaml:"children,omitempty"`
	Revisions []RevisionRecord `yaml:"revisions,omitempty"`
	_         struct{}
}

// RevisionRecord is the stored representation of a revision
type RevisionRecord struct {
	Key       string `yaml:"key,omitempty"`
	Version   string `yaml:"version"`
	Timestamp string `yaml:"timestamp"`
	Author    string `yaml:"author"`
	Action    string `yaml:"action"`
	Comment   string `yaml:"comment,omitempty"`
	Content   string `yaml:"content,omitempty"`
	Name      string `yaml:"name,omitempty"`
	OldName   string `yaml:"oldName,omitempty"`
	Parent    string `yaml:"parent,omitempty"`
	Container string `yaml:"container,omitempty"`
	Label     string `yaml:"label,omitempty"`
	_         struct{}
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// NewRevisionRecord builds the stored representation of a revision
func NewRevisionRecord(r model.Revision) RevisionRecord {
	rec := RevisionRecord{
		Key:       r.Key,
		Version:   strconv.Itoa(r.Version),
		Timestamp: r.Timestamp.UTC().Format(time.RFC3339Nano),
		Author:    r.Author,
		Action:    r.Action.String(),
		Comment:   r.Comment,
		Content:   r.Content,
		Name:      r.Name,
		OldName:   r.OldName,
		Parent:    r.Parent,
		Label:     r.Label,
	}
	if r.Container {
		rec.Container = "true"
	}
	return rec
}

// Revision decodes a record. The result is not validated.
func (rec RevisionRecord) Revision() (model.Revision, error) {
	version, err := strconv.Atoi(strings.TrimSpace(rec.Version))
	if err != nil {
		return model.Revision{}, fmt.Errorf("invalid version %q", rec.Version)
	}

	var ts time.Time
	for _, layout := range timeLayouts {
		if ts, err = time.Parse(layout, strings.TrimSpace(rec.Timestamp)); err == nil {
			break
		}
	}
	if err != nil {
		return model.Revision{}, fmt.Errorf("invalid timestamp %q", rec.Timestamp)
	}

	action, err := model.ParseAction(rec.Action)
	if err != nil {
		return model.Revision{}, err
	}

	var container bool
	if rec.Container != "" {
		if container, err = strconv.ParseBool(rec.Container); err != nil {
			return model.Revision{}, fmt.Errorf("invalid container flag %q", rec.Container)
		}
	}

	return model.Revision{
		Key:       rec.Key,
		Version:   version,
		Timestamp: ts.UTC(),
		Author:    rec.Author,
		Action:    action,
		Comment:   rec.Comment,
		Content:   rec.Content,
		Name:      rec.Name,
		OldName:   rec.OldName,
		Parent:    rec.Parent,
		Container: container,
		Label:     rec.Label,
	}, nil
}

func itemPath(key string) string {
	return fmt.Sprint(itemsPrefix, key, ".yaml")
}

func contentPath(ref string) string {
	return fmt.Sprint(contentPrefix, ref)
}
