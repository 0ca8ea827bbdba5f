package lineage

import "strings"

// Node is one object in a lineage tree together with its upstream sources.
type Node struct {
	// Name is the qualified object name, e.g. DB.SCHEMA.OBJECT.
	Name string
	// Kind is the normalised node kind.
	Kind Kind
	// RawKind is the kind string exactly as reported by the producer
	// (e.g. "MAX_DEPTH"). Empty when the producer sent none.
	RawKind string
	// Note and Error carry producer diagnostics such as "Already visited".
	Note  string
	Error string
	// Sources lists upstream dependencies in producer order.
	Sources []*Node
}

// ShortName returns the last dot-separated segment of the qualified name.
func (n *Node) ShortName() string {
	if i := strings.LastIndex(n.Name, "."); i >= 0 {
		return n.Name[i+1:]
	}
	return n.Name
}

// Label returns the kind as the producer named it, falling back to the
// normalised kind.
func (n *Node) Label() string {
	if n.RawKind != "" {
		return n.RawKind
	}
	return n.Kind.String()
}

// IsTerminal reports whether traversal stops at n.
//
// Base tables are authoritative over their edge list and loop sentinels mark
// a revisited ancestor, so neither is ever expanded even when Sources is
// populated. This is the only place the rule lives; every consumer descends
// through Children.
func (n *Node) IsTerminal() bool {
	return n.Kind == KindTable || n.Kind == KindLoop || len(n.Sources) == 0
}

// Children returns the nodes traversal descends into, or nil for a terminal node.
func (n *Node) Children() []*Node {
	if n.IsTerminal() {
		return nil
	}
	return n.Sources
}

// Result is a lineage result: a single-rooted tree, or empty.
type Result struct {
	Root *Node
}

// NewResult wraps root in a Result. A nil root yields an empty result.
func NewResult(root *Node) *Result {
	return &Result{Root: root}
}

// IsEmpty reports whether the result has no root.
func (r *Result) IsEmpty() bool {
	return r == nil || r.Root == nil
}

// RootName returns the qualified name of the root, or "" when empty.
func (r *Result) RootName() string {
	if r.IsEmpty() {
		return ""
	}
	return r.Root.Name
}
