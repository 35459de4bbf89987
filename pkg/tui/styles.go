package tui

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/harrisonrobin/taskboard/pkg/colors"
)

var (
	Primary = lipgloss.Color("33")
	Muted   = colors.Muted
	Border  = lipgloss.Color("240")
	Danger  = lipgloss.Color("203")
)

type Styles struct {
	Title     lipgloss.Style
	Subtitle  lipgloss.Style
	Tab       lipgloss.Style
	ActiveTab lipgloss.Style
	Filter    lipgloss.Style
	Footer    lipgloss.Style
	Error     lipgloss.Style
	Empty     lipgloss.Style
	Detail    lipgloss.Style
	Label     lipgloss.Style
	Help      lipgloss.Style
}

func DefaultStyles() Styles {
	return Styles{
		Title:     lipgloss.NewStyle().Bold(true).Foreground(Primary),
		Subtitle:  lipgloss.NewStyle().Foreground(Muted),
		Tab:       lipgloss.NewStyle().Padding(0, 2).Foreground(Muted),
		ActiveTab: lipgloss.NewStyle().Padding(0, 2).Bold(true).Underline(true).Foreground(Primary),
		Filter:    lipgloss.NewStyle().Foreground(Muted),
		Footer:    lipgloss.NewStyle().Foreground(Muted).MarginTop(1),
		Error: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Danger).
			Foreground(Danger).
			Padding(1, 2),
		Empty: lipgloss.NewStyle().Foreground(Muted).Padding(2, 4),
		Detail: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(1, 2),
		Label: lipgloss.NewStyle().Bold(true).Width(12),
		Help:  lipgloss.NewStyle().Foreground(Muted).MarginTop(1),
	}
}

func tableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(Border).
		BorderBottom(true).
		Bold(true).
		Foreground(Primary)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("230")).
		Background(lipgloss.Color("24")).
		Bold(false)
	return s
}
