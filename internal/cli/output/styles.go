package output

import (
	"github.com/Arjun-123414/LineageSnowflakeApp/internal/lineage"
	"github.com/charmbracelet/lipgloss"
)

// Palette colors shared by the CLI and the terminal explorer.
var (
	ColorView    = lipgloss.AdaptiveColor{Light: "#1d4ed8", Dark: "#60a5fa"}
	ColorTable   = lipgloss.AdaptiveColor{Light: "#15803d", Dark: "#4ade80"}
	ColorLoop    = lipgloss.AdaptiveColor{Light: "#b91c1c", Dark: "#f87171"}
	ColorUnknown = lipgloss.AdaptiveColor{Light: "#6b7280", Dark: "#9ca3af"}
	ColorAccent  = lipgloss.AdaptiveColor{Light: "#7c3aed", Dark: "#a78bfa"}
	ColorWarning = lipgloss.AdaptiveColor{Light: "#b45309", Dark: "#fbbf24"}
)

// Styles holds the lipgloss styles used for text output.
type Styles struct {
	Header  lipgloss.Style
	Header2 lipgloss.Style
	Bold    lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Info    lipgloss.Style

	ObjectName lipgloss.Style
	View       lipgloss.Style
	Table      lipgloss.Style
	Loop       lipgloss.Style
	Unknown    lipgloss.Style
}

// NewStyles builds styles bound to a lipgloss renderer, so color support
// follows the renderer's output rather than the process stdout.
func NewStyles(r *lipgloss.Renderer) *Styles {
	return &Styles{
		Header:  r.NewStyle().Bold(true).Foreground(ColorAccent),
		Header2: r.NewStyle().Bold(true),
		Bold:    r.NewStyle().Bold(true),
		Muted:   r.NewStyle().Foreground(ColorUnknown),
		Success: r.NewStyle().Foreground(ColorTable),
		Warning: r.NewStyle().Foreground(ColorWarning),
		Error:   r.NewStyle().Foreground(ColorLoop).Bold(true),
		Info:    r.NewStyle().Foreground(ColorView),

		ObjectName: r.NewStyle().Bold(true).Foreground(ColorAccent),
		View:       r.NewStyle().Foreground(ColorView),
		Table:      r.NewStyle().Foreground(ColorTable),
		Loop:       r.NewStyle().Foreground(ColorLoop),
		Unknown:    r.NewStyle().Foreground(ColorUnknown),
	}
}

// Kind returns the style for a node kind.
func (s *Styles) Kind(k lineage.Kind) lipgloss.Style {
	switch k {
	case lineage.KindView:
		return s.View
	case lineage.KindTable:
		return s.Table
	case lineage.KindLoop:
		return s.Loop
	default:
		return s.Unknown
	}
}
