package graph

import (
	"strings"

	"github.com/matzehuels/extgraph/pkg/errors"
)

// Visualization modes. Exactly one is active per graph.
const (
	ModeExposedComponents Mode = "exposedComponents"
	ModeExtensionPoint    Mode = "extensionpoint"
	ModeAddedLinks        Mode = "addedlinks"
	ModeAddedComponents   Mode = "addedcomponents"
	ModeAddedFunctions    Mode = "addedfunctions"
)

// DefaultMode is used when no mode is requested.
const DefaultMode = ModeAddedLinks

// Modes lists all visualization modes in display order.
var Modes = []Mode{
	ModeAddedLinks,
	ModeAddedComponents,
	ModeAddedFunctions,
	ModeExposedComponents,
	ModeExtensionPoint,
}

// Mode selects which relationships a graph shows.
type Mode string

// String implements fmt.Stringer.
func (m Mode) String() string { return string(m) }

// IsValid reports whether m is one of the five known modes.
func (m Mode) IsValid() bool {
	switch m {
	case ModeExposedComponents, ModeExtensionPoint,
		ModeAddedLinks, ModeAddedComponents, ModeAddedFunctions:
		return true
	}
	return false
}

// IsAdded reports whether m shows a single kind of added extension.
func (m Mode) IsAdded() bool {
	_, ok := m.ExtensionType()
	return ok
}

// ExtensionType returns the extension type scanned by an added mode.
func (m Mode) ExtensionType() (ExtensionType, bool) {
	switch m {
	case ModeAddedLinks:
		return ExtensionLink, true
	case ModeAddedComponents:
		return ExtensionComponent, true
	case ModeAddedFunctions:
		return ExtensionFunction, true
	}
	return "", false
}

// Columns returns the node kinds laid out left to right for m.
func (m Mode) Columns() []NodeKind {
	switch m {
	case ModeExposedComponents:
		return []NodeKind{KindProvider, KindExposedComponent, KindConsumer}
	case ModeExtensionPoint:
		return []NodeKind{KindProvider, KindExtension, KindExtensionPoint, KindConsumer}
	default:
		return []NodeKind{KindProvider, KindExtensionPoint, KindConsumer}
	}
}

// ParseMode resolves a mode name. Matching is case-insensitive and the empty
// string yields DefaultMode.
func ParseMode(s string) (Mode, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultMode, nil
	}
	for _, m := range Modes {
		if strings.EqualFold(s, string(m)) {
			return m, nil
		}
	}
	return "", errors.New(errors.ErrCodeInvalidMode, "unknown visualization mode: %s", s)
}

// ModeOrDefault resolves a mode name like the UI does: anything unknown
// falls back to DefaultMode.
func ModeOrDefault(s string) Mode {
	m, err := ParseMode(s)
	if err != nil {
		return DefaultMode
	}
	return m
}

// ModeNames returns the names of all modes, for completions and help text.
func ModeNames() []string {
	names := make([]string, len(Modes))
	for i, m := range Modes {
		names[i] = string(m)
	}
	return names
}
