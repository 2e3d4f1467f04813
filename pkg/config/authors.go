package config

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/oneconcern/vcsmigrate/pkg/config/status"
	"github.com/oneconcern/vcsmigrate/pkg/errors"
	"github.com/oneconcern/vcsmigrate/pkg/model"
)

// LoadAuthors reads the author mapping file.
//
// A missing or unreadable file degrades to an empty mapping.
func LoadAuthors(fs afero.Fs, pth string, l *zap.Logger) model.AuthorMapping {
	if l == nil {
		l = zap.NewNop()
	}
	if pth == "" {
		return model.NewAuthorMapping(nil)
	}
	pairs, err := ReadFile(fs, pth)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			l.Info("no author mapping file", zap.String("path", pth))
		} else {
			l.Warn("cannot read author mapping, using an empty one", zap.String("path", pth), zap.Error(err))
		}
		return model.NewAuthorMapping(nil)
	}
	return model.NewAuthorMapping(pairs)
}

// AppendAuthors adds unmapped authors to the mapping file, with an empty identity to fill in.
//
// Existing lines are left untouched. It yields the authors actually added.
func AppendAuthors(fs afero.Fs, pth string, authors []string) (added []string, err error) {
	var raw []byte
	if ok, _ := afero.Exists(fs, pth); ok {
		if raw, err = afero.ReadFile(fs, pth); err != nil {
			return nil, status.ErrConfigIO.Wrap(err)
		}
	}
	existing, err := Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	mapping := model.NewAuthorMapping(existing)

	seen := make(map[string]bool, len(authors))
	for _, author := range authors {
		key := model.NormalizeAuthor(author)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		if _, known := mapping[key]; known {
			continue
		}
		added = append(added, key)
	}
	if len(added) == 0 {
		return nil, nil
	}
	sort.Strings(added)

	if err = fs.MkdirAll(filepath.Dir(pth), 0755); err != nil {
		return nil, status.ErrConfigIO.Wrap(err)
	}
	f, err := fs.OpenFile(pth, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, status.ErrConfigIO.Wrap(err)
	}
	defer func() {
		err = multierr.Append(err, f.Close())
	}()

	var b strings.Builder
	if len(raw) > 0 && raw[len(raw)-1] != '\n' {
		b.WriteString("\n")
	}
	for _, key := range added {
		b.WriteString(key)
		b.WriteString("=\n")
	}
	if _, err = f.WriteString(b.String()); err != nil {
		return nil, status.ErrConfigIO.Wrap(err)
	}
	return added, nil
}
