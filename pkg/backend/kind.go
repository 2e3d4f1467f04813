package backend

import (
	"strings"

	"github.com/oneconcern/vcsmigrate/pkg/backend/status"
)

// Kind is the closed set of supported backends
type Kind uint8

// Supported backends
const (
	KindUnknown Kind = iota
	// KindSnapshot stores a flat history of full file trees
	KindSnapshot
	// KindTrunk lays out a working copy as trunk, tags and branches
	KindTrunk
)

// Kinds lists all supported backends
func Kinds() []Kind {
	return []Kind{KindSnapshot, KindTrunk}
}

func (k Kind) String() string {
	switch k {
	case KindSnapshot:
		return "snapshot"
	case KindTrunk:
		return "trunk"
	default:
		return "unknown"
	}
}

// ParseKind resolves a backend kind from its name
func ParseKind(name string) (Kind, error) {
	for _, k := range Kinds() {
		if strings.EqualFold(strings.TrimSpace(name), k.String()) {
			return k, nil
		}
	}
	return KindUnknown, status.ErrUnknownKind.WrapMessage("%q", name)
}
