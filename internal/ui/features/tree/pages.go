package tree

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Arjun-123414/LineageSnowflakeApp/internal/lineage"
	"github.com/Arjun-123414/LineageSnowflakeApp/internal/ui/resources"
	. "maragu.dev/gomponents"
	data "maragu.dev/gomponents-datastar"
	. "maragu.dev/gomponents/html"
)

// TreeElementID is the element every tree patch replaces.
const TreeElementID = "lineage-tree"

const datastarBundle = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0-RC.7/bundles/datastar.js"

// PageData is everything the lineage page shows.
type PageData struct {
	Source     string
	LoadedAt   time.Time
	Generation uint64
	Result     *lineage.Result
	Rows       []lineage.Row
	Stats      lineage.Stats
}

func lineagePage(d PageData) Node {
	title := "Lineage"
	if !d.Result.IsEmpty() {
		title = d.Result.RootName()
	}

	return Doctype(HTML(
		Lang("en"),
		Head(
			Meta(Charset("utf-8")),
			Meta(Name("viewport"), Content("width=device-width, initial-scale=1")),
			TitleEl(Text(title+" - Lineage Explorer")),
			Link(Rel("icon"), Href("data:,")),
			Link(Rel("stylesheet"), Href(resources.StaticPath("app.css"))),
			Script(Type("module"), Src(datastarBundle)),
		),
		Body(
			Attr("data-init", "@get('/updates')"),
			data.Signals(map[string]any{"q": ""}),
			Main(Class("app-shell"),
				Header(Class("topbar"),
					H1(Class("page-title"), Text("Lineage Explorer")),
					Nav(Class("downloads"),
						A(Href("/api/lineage/text"), Class("btn"), Text("Download text")),
						A(Href("/api/lineage/csv"), Class("btn"), Text("Download CSV")),
						A(Href("/api/lineage"), Class("btn"), Text("JSON")),
					),
				),
				Div(Class("toolbar"),
					Input(Type("search"), data.Bind("q"), Placeholder("Filter by object name")),
					Button(Type("button"), Class("btn"), Attr("data-on:click", "@post('/api/view/expand-all')"), Text("Expand all")),
					Button(Type("button"), Class("btn"), Attr("data-on:click", "@post('/api/view/collapse-all')"), Text("Collapse all")),
				),
				treeSection(d),
			),
		),
	))
}

// treeSection renders the patchable part of the page.
func treeSection(d PageData) Node {
	return Section(
		ID(TreeElementID),
		Class("lineage-tree"),
		Attr("data-generation", strconv.FormatUint(d.Generation, 10)),
		summary(d),
		treeBody(d),
	)
}

func summary(d PageData) Node {
	if d.Result.IsEmpty() {
		return P(Class("muted"), Text("Empty lineage result."))
	}
	parts := []string{
		fmt.Sprintf("%d nodes", d.Stats.Nodes),
		fmt.Sprintf("%d leaves", d.Stats.Leaves),
		fmt.Sprintf("depth %d", d.Stats.MaxDepth),
	}
	if d.Source != "" {
		parts = append(parts, "from "+d.Source)
	}
	if !d.LoadedAt.IsZero() {
		parts = append(parts, "loaded "+d.LoadedAt.Format(time.TimeOnly))
	}
	return Div(Class("summary"),
		H2(Text("ANALYZING: "+d.Result.RootName())),
		P(Class("muted"), Text(strings.Join(parts, " · "))),
	)
}

func treeBody(d PageData) Node {
	if d.Result.IsEmpty() {
		return nil
	}

	items := make([]Node, 0, len(d.Rows))
	for _, row := range d.Rows {
		items = append(items, treeRow(row))
	}
	body := Group{Ul(Class("tree"), Group(items))}

	root := d.Result.Root
	switch {
	case root.Kind == lineage.KindTable:
		body = append(body, P(Class("note"), Text(lineage.BaseTableMessage)))
	case root.Kind == lineage.KindView && len(root.Sources) == 0:
		body = append(body, P(Class("note"), Text(lineage.NoDependenciesMessage)))
	}
	return body
}

func treeRow(row lineage.Row) Node {
	n := row.Node
	name := n.ShortName()
	if row.Depth == 0 {
		name = n.Name
	}

	return Li(
		Class("tree-row kind-"+strings.ToLower(n.Kind.String())),
		Attr("data-path", row.Path.String()),
		data.Show(containsExpr(n.Name)),
		Span(Class("tree-guide"), Text(row.Prefix+row.Connector)),
		toggleButton(row),
		Span(Class("tree-name"), Title(n.Name), Text(name)),
		Span(Class("tree-tag"), Text("["+n.Label()+"]")),
		If(n.Note != "", Span(Class("tree-note muted"), Text(n.Note))),
		If(n.Error != "", Span(Class("tree-error"), Text(n.Error))),
	)
}

// toggleButton renders the expand/collapse affordance. Terminal nodes get
// none.
func toggleButton(row lineage.Row) Node {
	if !row.Expandable {
		return nil
	}
	glyph, label := "▸", "false"
	if row.Expanded {
		glyph, label = "▾", "true"
	}
	return Button(
		Type("button"),
		Class("toggle"),
		Aria("expanded", label),
		Attr("data-on:click", "@post('/api/view/toggle?path="+row.Path.String()+"')"),
		Text(glyph),
	)
}

func containsExpr(value string) string {
	lower := strings.ToLower(value)
	return "$q === '' || " + strconv.Quote(lower) + ".includes($q.toLowerCase())"
}

func errorPage(status int, message string) Node {
	return Doctype(HTML(
		Lang("en"),
		Head(
			Meta(Charset("utf-8")),
			TitleEl(Text("Error - Lineage Explorer")),
			Link(Rel("stylesheet"), Href(resources.StaticPath("app.css"))),
		),
		Body(
			Main(Class("app-shell"),
				H1(Class("page-title"), Text(fmt.Sprintf("%d", status))),
				P(Text(message)),
				P(A(Href("/"), Text("Back to the tree"))),
			),
		),
	))
}
