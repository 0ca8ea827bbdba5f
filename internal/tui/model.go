// Package tui is a terminal browser for lineage trees.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Arjun-123414/LineageSnowflakeApp/internal/cli/output"
	"github.com/Arjun-123414/LineageSnowflakeApp/internal/lineage"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
	headerHeight  = 2
)

// Affordances shown in front of toggleable nodes.
const (
	expandedMarker  = "▾ "
	collapsedMarker = "▸ "
	cursorMarker    = "› "
)

// Model is the bubbletea model of the explorer. It owns one lineage.View,
// so its expand/collapse state lives exactly as long as the program.
type Model struct {
	view     *lineage.View
	rows     []lineage.Row
	cursor   int
	keys     keyMap
	help     help.Model
	viewport viewport.Model
	styles   *output.Styles
	width    int
	height   int
	quitting bool
}

// New creates an explorer over a fresh, fully expanded view of res.
func New(res *lineage.Result, styles *output.Styles) Model {
	if styles == nil {
		styles = output.NewStyles(lipgloss.DefaultRenderer())
	}
	m := Model{
		view:   lineage.NewView(res),
		keys:   defaultKeyMap(),
		help:   help.New(),
		styles: styles,
		width:  defaultWidth,
		height: defaultHeight,
	}
	m.viewport = viewport.New(defaultWidth, defaultHeight-headerHeight-1)
	m.rows = m.view.Rows()
	m.resize()
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.resize()
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			m.resize()
		case key.Matches(msg, m.keys.Up):
			m.moveCursor(-1)
		case key.Matches(msg, m.keys.Down):
			m.moveCursor(1)
		case key.Matches(msg, m.keys.PageUp):
			m.moveCursor(-m.viewport.Height)
		case key.Matches(msg, m.keys.PageDown):
			m.moveCursor(m.viewport.Height)
		case key.Matches(msg, m.keys.Home):
			m.cursor = 0
		case key.Matches(msg, m.keys.End):
			m.cursor = max(len(m.rows)-1, 0)
		case key.Matches(msg, m.keys.Toggle):
			if row, ok := m.Selected(); ok && m.view.Toggle(row.Path) {
				m.rows = m.view.Rows()
			}
		case key.Matches(msg, m.keys.ExpandAll):
			m.applyAll(m.view.ExpandAll)
		case key.Matches(msg, m.keys.CollapseAll):
			m.applyAll(m.view.CollapseAll)
		default:
			return m, nil
		}
		m.refresh()
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.title())
	b.WriteString("\n\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

// Selected returns the row under the cursor.
func (m Model) Selected() (lineage.Row, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return lineage.Row{}, false
	}
	return m.rows[m.cursor], true
}

// Rows returns the visible rows.
func (m Model) Rows() []lineage.Row {
	return m.rows
}

func (m *Model) moveCursor(delta int) {
	if len(m.rows) == 0 {
		return
	}
	m.cursor = min(max(m.cursor+delta, 0), len(m.rows)-1)
}

// applyAll runs a bulk expand or collapse and keeps the cursor on the same
// node, or on its nearest visible ancestor.
func (m *Model) applyAll(fn func()) {
	var current lineage.NodePath
	if row, ok := m.Selected(); ok {
		current = row.Path
	}
	fn()
	m.rows = m.view.Rows()
	m.cursor = 0

	for n := len(current); n >= 0; n-- {
		want := current[:n].String()
		for i, row := range m.rows {
			if row.Path.String() == want {
				m.cursor = i
				return
			}
		}
	}
}

func (m *Model) resize() {
	footer := lipgloss.Height(m.help.View(m.keys))
	m.viewport.Width = m.width
	m.viewport.Height = max(m.height-headerHeight-footer, 1)
}

// refresh redraws the viewport content and scrolls the cursor into view.
func (m *Model) refresh() {
	m.viewport.SetContent(m.renderRows())

	switch {
	case m.cursor < m.viewport.YOffset:
		m.viewport.SetYOffset(m.cursor)
	case m.cursor >= m.viewport.YOffset+m.viewport.Height:
		m.viewport.SetYOffset(m.cursor - m.viewport.Height + 1)
	}
}

func (m Model) title() string {
	res := m.view.Result()
	if res.IsEmpty() {
		return m.styles.Header.Render("Lineage")
	}
	stats := lineage.Summarize(res)
	return m.styles.Header.Render("Lineage: "+res.RootName()) + " " +
		m.styles.Muted.Render(fmt.Sprintf("(%d nodes, %d visible)", stats.Nodes, len(m.rows)))
}

func (m Model) renderRows() string {
	if len(m.rows) == 0 {
		return m.styles.Muted.Render("Empty lineage result.")
	}

	lines := make([]string, len(m.rows))
	for i, row := range m.rows {
		lines[i] = m.renderRow(i, row)
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderRow(i int, row lineage.Row) string {
	var b strings.Builder
	if i == m.cursor {
		b.WriteString(m.styles.ObjectName.Render(cursorMarker))
	} else {
		b.WriteString("  ")
	}

	b.WriteString(m.styles.Muted.Render(row.Prefix + row.Connector))
	if row.Expandable {
		if row.Expanded {
			b.WriteString(expandedMarker)
		} else {
			b.WriteString(collapsedMarker)
		}
	}

	name := row.Node.ShortName()
	if row.Depth == 0 {
		name = row.Node.Name
	}
	if i == m.cursor {
		b.WriteString(m.styles.Bold.Render(name))
	} else {
		b.WriteString(name)
	}
	b.WriteString(" ")
	b.WriteString(m.styles.Kind(row.Node.Kind).Render("[" + row.Node.Label() + "]"))
	return b.String()
}

// Run starts the explorer on in and out and blocks until the user quits or
// ctx is cancelled.
func Run(ctx context.Context, res *lineage.Result, in io.Reader, out io.Writer) error {
	styles := output.NewStyles(lipgloss.NewRenderer(out))

	p := tea.NewProgram(
		New(res, styles),
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
		tea.WithAltScreen(),
	)
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("explorer failed: %w", err)
	}
	return nil
}
