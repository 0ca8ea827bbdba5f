package lineage

import (
	"io"
	"strings"
)

// Text renderer output.
const (
	DefaultTextFilename = "lineage.txt"

	BaseTableMessage      = "This is a BASE TABLE - No dependencies"
	NoDependenciesMessage = "No dependencies found"
	DependenciesLabel     = "DEPENDENCIES:"

	ruleWidth = 80
)

// RenderText renders the result as an indented directory-style tree.
// An empty result renders as the empty string.
func RenderText(res *Result) string {
	var b strings.Builder
	writeText(&b, res)
	return b.String()
}

// WriteText writes RenderText output to w.
func WriteText(w io.Writer, res *Result) error {
	_, err := io.WriteString(w, RenderText(res))
	return err
}

func writeText(b *strings.Builder, res *Result) {
	if res.IsEmpty() {
		return
	}
	root := res.Root

	b.WriteString("\nANALYZING: ")
	b.WriteString(root.Name)
	b.WriteByte('\n')
	b.WriteString(strings.Repeat("=", ruleWidth))
	b.WriteString("\n\n")

	if root.Kind == KindTable {
		b.WriteString(BaseTableMessage)
		b.WriteByte('\n')
		return
	}
	if root.Kind == KindView && len(root.Sources) == 0 {
		b.WriteString(NoDependenciesMessage)
		b.WriteByte('\n')
		return
	}

	b.WriteString(DependenciesLabel)
	b.WriteString("\n\n")

	Walk(root, func(v Visit) bool {
		if v.Depth == 0 {
			return true
		}
		b.WriteString(Prefix(v.AncestorsLast))
		b.WriteString(Connector(v.IsLast))
		b.WriteString(v.Node.Kind.Tag())
		b.WriteByte(' ')
		b.WriteString(v.Node.ShortName())
		b.WriteByte('\n')
		return true
	})
}
