package lineage

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidPath reports a node path that cannot be parsed.
var ErrInvalidPath = errors.New("invalid node path")

// NodePath identifies a node by its structural position: the child index
// taken at each level from the root. The root's path is empty.
type NodePath []int

// String encodes the path as slash-separated indices ("0/2/1"). The root
// encodes as "".
func (p NodePath) String() string {
	if len(p) == 0 {
		return ""
	}
	parts := make([]string, len(p))
	for i, idx := range p {
		parts[i] = strconv.Itoa(idx)
	}
	return strings.Join(parts, "/")
}

// ParseNodePath decodes the String form of a path.
func ParseNodePath(s string) (NodePath, error) {
	s = strings.Trim(strings.TrimSpace(s), "/")
	if s == "" {
		return NodePath{}, nil
	}
	parts := strings.Split(s, "/")
	p := make(NodePath, len(parts))
	for i, part := range parts {
		idx, err := strconv.Atoi(part)
		if err != nil || idx < 0 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPath, s)
		}
		p[i] = idx
	}
	return p, nil
}

// Row is one visible line of a View.
type Row struct {
	Path       NodePath
	Node       *Node
	Depth      int
	IsLast     bool
	Prefix     string
	Connector  string
	Expandable bool
	Expanded   bool
}

// View is an expand/collapse overlay on a lineage result.
//
// Every node starts expanded. State is keyed by structural path, so two
// occurrences of the same object toggle independently. A View never modifies
// the result it projects and is not safe for concurrent use.
type View struct {
	res       *Result
	collapsed map[string]struct{}
}

// NewView creates a fully expanded view of res.
func NewView(res *Result) *View {
	if res == nil {
		res = &Result{}
	}
	return &View{
		res:       res,
		collapsed: make(map[string]struct{}),
	}
}

// Result returns the projected lineage result.
func (v *View) Result() *Result {
	return v.res
}

// Lookup resolves a path to its node. Paths only descend through
// Node.Children, so nodes below a table or loop sentinel are not addressable.
func (v *View) Lookup(p NodePath) (*Node, bool) {
	if v.res.IsEmpty() {
		return nil, false
	}
	n := v.res.Root
	for _, idx := range p {
		children := n.Children()
		if idx < 0 || idx >= len(children) {
			return nil, false
		}
		n = children[idx]
	}
	return n, true
}

// CanToggle reports whether the node at p has anything to collapse.
func (v *View) CanToggle(p NodePath) bool {
	n, ok := v.Lookup(p)
	return ok && !n.IsTerminal()
}

// IsExpanded reports whether the node at p shows its children.
// Nodes without a toggle affordance are never expanded.
func (v *View) IsExpanded(p NodePath) bool {
	if !v.CanToggle(p) {
		return false
	}
	_, collapsed := v.collapsed[p.String()]
	return !collapsed
}

// Toggle flips the expansion state of the node at p. It returns false, and
// changes nothing, when p does not address a toggleable node.
func (v *View) Toggle(p NodePath) bool {
	if !v.CanToggle(p) {
		return false
	}
	key := p.String()
	if _, ok := v.collapsed[key]; ok {
		delete(v.collapsed, key)
	} else {
		v.collapsed[key] = struct{}{}
	}
	return true
}

// ExpandAll resets every node to expanded.
func (v *View) ExpandAll() {
	clear(v.collapsed)
}

// CollapseAll collapses every toggleable node.
func (v *View) CollapseAll() {
	if v.res.IsEmpty() {
		return
	}
	Walk(v.res.Root, func(vis Visit) bool {
		if !vis.Node.IsTerminal() {
			v.collapsed[vis.Path.String()] = struct{}{}
		}
		return true
	})
}

// Rows returns the visible nodes in display order, root first. Descent stops
// at collapsed nodes.
func (v *View) Rows() []Row {
	if v.res.IsEmpty() {
		return nil
	}
	var rows []Row
	Walk(v.res.Root, func(vis Visit) bool {
		expandable := !vis.Node.IsTerminal()
		expanded := expandable && !v.isCollapsed(vis.Path)

		row := Row{
			Path:       vis.Path,
			Node:       vis.Node,
			Depth:      vis.Depth,
			IsLast:     vis.IsLast,
			Expandable: expandable,
			Expanded:   expanded,
		}
		if vis.Depth > 0 {
			row.Prefix = Prefix(vis.AncestorsLast)
			row.Connector = Connector(vis.IsLast)
		}
		rows = append(rows, row)
		return expanded
	})
	return rows
}

func (v *View) isCollapsed(p NodePath) bool {
	_, ok := v.collapsed[p.String()]
	return ok
}
