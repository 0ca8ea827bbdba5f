package lineage

// Tree drawing glyphs.
const (
	ConnectorMiddle = "├── "
	ConnectorLast   = "└── "
	IndentOpen      = "│   "
	IndentBlank     = "    "
)

// Visit describes one node reached by Walk.
type Visit struct {
	Node *Node
	// Depth is 0 for the root.
	Depth int
	// IsLast reports whether Node is the last sibling at its level.
	IsLast bool
	// AncestorsLast holds one IsLast flag per non-root ancestor, outermost
	// first. The root has no siblings and never contributes an indent column.
	AncestorsLast []bool
	// Path is the structural position of Node as child indices from the root.
	Path NodePath
}

// VisitFunc is called for every node in pre-order. Returning false skips
// the node's subtree.
type VisitFunc func(v Visit) bool

// Walk traverses the tree rooted at root depth-first, in pre-order, calling fn
// for each node. Recursion follows Node.Children, so tables, loop sentinels
// and nodes without sources are never expanded.
//
// All per-branch state is passed down by value, so concurrent walks over the
// same tree do not interfere.
func Walk(root *Node, fn VisitFunc) {
	if root == nil {
		return
	}
	walk(Visit{Node: root, IsLast: true}, fn)
}

func walk(v Visit, fn VisitFunc) {
	if !fn(v) {
		return
	}
	children := v.Node.Children()
	if len(children) == 0 {
		return
	}

	var flags []bool
	if v.Depth > 0 {
		flags = make([]bool, len(v.AncestorsLast)+1)
		copy(flags, v.AncestorsLast)
		flags[len(v.AncestorsLast)] = v.IsLast
	}

	for i, child := range children {
		path := make(NodePath, len(v.Path)+1)
		copy(path, v.Path)
		path[len(v.Path)] = i

		walk(Visit{
			Node:          child,
			Depth:         v.Depth + 1,
			IsLast:        i == len(children)-1,
			AncestorsLast: flags,
			Path:          path,
		}, fn)
	}
}

// Prefix builds the indent columns for a node from its ancestors' flags.
func Prefix(ancestorsLast []bool) string {
	var b []byte
	for _, last := range ancestorsLast {
		if last {
			b = append(b, IndentBlank...)
		} else {
			b = append(b, IndentOpen...)
		}
	}
	return string(b)
}

// Connector returns the branch glyph for a node.
func Connector(isLast bool) string {
	if isLast {
		return ConnectorLast
	}
	return ConnectorMiddle
}
