package analyzer

import (
	"strings"

	"github.com/bmatcuk/doublestar"

	"github.com/oneconcern/vcsmigrate/pkg/errors"
	"github.com/oneconcern/vcsmigrate/pkg/source"
)

// ErrInvalidPattern is returned for a malformed exclusion pattern
var ErrInvalidPattern = errors.New("invalid exclusion pattern")

// Matcher tells if a source path is excluded.
//
// Patterns without glob meta characters match a path prefix: "proj/old" excludes "$/proj/old"
// and everything below. Other patterns are matched with doublestar semantics against the
// path relative to the root, and against the base name when the pattern has no slash.
// Matching is case-insensitive.
type Matcher struct {
	prefixes []string
	globs    []string
}

// NewMatcher compiles exclusion patterns
func NewMatcher(patterns ...string) (*Matcher, error) {
	m := &Matcher{}
	for _, pattern := range patterns {
		p := normalize(pattern)
		if p == "" {
			continue
		}
		if !strings.ContainsAny(p, "*?[{") {
			m.prefixes = append(m.prefixes, p)
			continue
		}
		if _, err := doublestar.Match(p, ""); err != nil {
			return nil, ErrInvalidPattern.WrapMessage("%q: %v", pattern, err)
		}
		m.globs = append(m.globs, p)
	}
	return m, nil
}

// Len is the number of active patterns
func (m *Matcher) Len() int {
	if m == nil {
		return 0
	}
	return len(m.prefixes) + len(m.globs)
}

// Match a source path
func (m *Matcher) Match(pth string) bool {
	if m.Len() == 0 {
		return false
	}
	p := normalize(pth)
	if p == "" {
		return false
	}

	for _, prefix := range m.prefixes {
		if p == prefix || strings.HasPrefix(p, prefix+"/") {
			return true
		}
	}

	base := p
	if pos := strings.LastIndexByte(p, '/'); pos >= 0 {
		base = p[pos+1:]
	}
	for _, glob := range m.globs {
		if ok, _ := doublestar.Match(glob, p); ok {
			return true
		}
		if !strings.Contains(glob, "/") {
			if ok, _ := doublestar.Match(glob, base); ok {
				return true
			}
		}
	}
	return false
}

func normalize(pth string) string {
	return strings.ToLower(strings.Join(source.SplitPath(pth), "/"))
}
