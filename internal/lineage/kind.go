package lineage

import (
	"strings"
)

// Kind classifies a lineage node.
type Kind int

// Node kinds. The zero value is KindUnknown so that a node whose kind was
// never reported is treated as unknown rather than as a table.
const (
	KindUnknown Kind = iota
	KindTable
	KindView
	KindLoop
)

var kindNames = map[Kind]string{
	KindUnknown: "UNKNOWN",
	KindTable:   "TABLE",
	KindView:    "VIEW",
	KindLoop:    "LOOP",
}

// ParseKind maps a producer-supplied kind string onto Kind.
// Matching is case-insensitive; anything unrecognised is KindUnknown.
func ParseKind(s string) Kind {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TABLE":
		return KindTable
	case "VIEW":
		return KindView
	case "LOOP":
		return KindLoop
	default:
		return KindUnknown
	}
}

// String returns the canonical upper-case name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return kindNames[KindUnknown]
}

// Tag returns the bracketed marker used in the text tree.
// Only tables and views get a named tag.
func (k Kind) Tag() string {
	switch k {
	case KindView:
		return "[VIEW]"
	case KindTable:
		return "[TABLE]"
	default:
		return "[?]"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	*k = ParseKind(string(text))
	return nil
}
