package model

import (
	"fmt"
	"net/mail"
	"strings"
)

// Contributor who created some commit
type Contributor struct {
	Name  string `json:"name" yaml:"name"`
	Email string `json:"email" yaml:"email"`
	_     struct{}
}

func (c Contributor) String() string {
	if c.Email == "" {
		return c.Name
	}
	if c.Name == "" {
		return c.Email
	}
	return fmt.Sprintf("%s <%s>", c.Name, c.Email)
}

// ParseContributor parses an identity of the form "Name <email>" or a bare email
func ParseContributor(identity string) (Contributor, error) {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return Contributor{}, ErrInvalidContributor.WrapMessage("empty identity")
	}
	if !strings.ContainsAny(identity, "<>") {
		return Contributor{Email: identity}, nil
	}
	addr, err := mail.ParseAddress(identity)
	if err != nil {
		return Contributor{}, ErrInvalidContributor.Wrap(err)
	}
	return Contributor{Name: addr.Name, Email: addr.Address}, nil
}

// NormalizeAuthor yields the matching key for a raw author string
func NormalizeAuthor(author string) string {
	return strings.ToLower(strings.TrimSpace(author))
}

// AuthorMapping maps lower-cased raw author strings to display identities
type AuthorMapping map[string]string

// NewAuthorMapping builds a mapping from raw pairs, normalizing keys
func NewAuthorMapping(pairs map[string]string) AuthorMapping {
	m := make(AuthorMapping, len(pairs))
	for k, v := range pairs {
		m[NormalizeAuthor(k)] = strings.TrimSpace(v)
	}
	return m
}

// Lookup a raw author, case-insensitively. Entries with an empty identity are not considered mapped.
func (m AuthorMapping) Lookup(author string) (string, bool) {
	identity, ok := m[NormalizeAuthor(author)]
	if !ok || identity == "" {
		return "", false
	}
	return identity, true
}

// Resolve the display identity of a raw author.
//
// Unmapped authors resolve to the lower-cased user at the configured domain, or to the bare username without a domain.
func (m AuthorMapping) Resolve(author, domain string) Contributor {
	if identity, ok := m.Lookup(author); ok {
		if c, err := ParseContributor(identity); err == nil {
			return c
		}
		return Contributor{Name: identity}
	}

	domain = strings.TrimPrefix(strings.TrimSpace(domain), "@")
	if domain == "" {
		return Contributor{Name: strings.TrimSpace(author)}
	}
	return Contributor{Email: NormalizeAuthor(author) + "@" + domain}
}

// Unmapped yields the authors among the provided ones with no identity in the mapping
func (m AuthorMapping) Unmapped(authors []string) []string {
	res := make([]string, 0, len(authors))
	for _, author := range authors {
		if _, ok := m.Lookup(author); !ok {
			res = append(res, NormalizeAuthor(author))
		}
	}
	return res
}
