// Package terminal implements the interactive and one-shot command line
// front ends of the assistant.
package terminal

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Styles contains the lipgloss styles used for terminal output.
type Styles struct {
	Banner  lipgloss.Style
	Title   lipgloss.Style
	Panel   lipgloss.Style
	Muted   lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
}

// NewStyles returns styles bound to w, so color is only emitted when w is a terminal.
func NewStyles(w io.Writer) Styles {
	r := lipgloss.NewRenderer(w)
	return Styles{
		Banner: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#06B6D4")).
			Border(lipgloss.NormalBorder()).
			Padding(0, 1),
		Title: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#A6E3A1")),
		Panel: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#A6E3A1")).
			Padding(0, 1),
		Muted:   r.NewStyle().Foreground(lipgloss.Color("#6C7086")),
		Warning: r.NewStyle().Foreground(lipgloss.Color("#F9E2AF")),
		Error:   r.NewStyle().Foreground(lipgloss.Color("#F38BA8")),
	}
}

// RenderPanel frames body in a rounded box headed by title.
func (s Styles) RenderPanel(title, body string) string {
	return lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render(title),
		s.Panel.Render(body),
	)
}
