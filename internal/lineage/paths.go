package lineage

import "strconv"

// PathStep is one node on a root-to-leaf path.
type PathStep struct {
	Name string `json:"name"`
	Kind Kind   `json:"kind"`
}

// LineagePath is an ordered root-to-leaf sequence of nodes.
type LineagePath []PathStep

// Root returns the first step's name.
func (p LineagePath) Root() string {
	if len(p) == 0 {
		return ""
	}
	return p[0].Name
}

// Terminal returns the last step's name.
func (p LineagePath) Terminal() string {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1].Name
}

// Names returns the qualified names along the path.
func (p LineagePath) Names() []string {
	names := make([]string, len(p))
	for i, s := range p {
		names[i] = s.Name
	}
	return names
}

// ExtractPaths flattens the tree into one path per leaf, in depth-first order.
// A node with N descendant leaves is a common prefix of N paths.
func ExtractPaths(res *Result) []LineagePath {
	if res.IsEmpty() {
		return nil
	}

	var (
		paths []LineagePath
		stack LineagePath
	)
	Walk(res.Root, func(v Visit) bool {
		stack = append(stack[:v.Depth], PathStep{Name: v.Node.Name, Kind: v.Node.Kind})
		if v.Node.IsTerminal() {
			p := make(LineagePath, len(stack))
			copy(p, stack)
			paths = append(paths, p)
		}
		return true
	})
	return paths
}

// Column headers of the tabular export.
const (
	HeaderAnalyzedObject = "Analyzed Object"
	HeaderTable          = "Table"
)

// Tabulate lays paths out as rows of maxDepth+1 columns: the root, one column
// per intermediate level, and the terminal node. maxDepth is the longest path
// length, at least 1.
func Tabulate(paths []LineagePath) (header []string, rows [][]string) {
	maxDepth := 1
	for _, p := range paths {
		if len(p) > maxDepth {
			maxDepth = len(p)
		}
	}

	header = make([]string, 0, maxDepth+1)
	header = append(header, HeaderAnalyzedObject)
	for i := 1; i < maxDepth; i++ {
		header = append(header, "Level "+strconv.Itoa(i)+" Source")
	}
	header = append(header, HeaderTable)

	rows = make([][]string, 0, len(paths))
	for _, p := range paths {
		if len(p) == 0 {
			continue
		}
		row := make([]string, 0, maxDepth+1)
		row = append(row, p.Root())
		for i := 1; i < maxDepth; i++ {
			if i < len(p) {
				row = append(row, p[i].Name)
			} else {
				row = append(row, "")
			}
		}
		row = append(row, p.Terminal())
		rows = append(rows, row)
	}
	return header, rows
}
