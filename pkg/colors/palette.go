package colors

import "github.com/charmbracelet/lipgloss"

// Muted renders empty values and anything without a slot.
var Muted = lipgloss.Color("245")

var palette = map[string]lipgloss.Color{
	"1": lipgloss.Color("39"), "2": lipgloss.Color("42"), "3": lipgloss.Color("141"),
	"4": lipgloss.Color("211"), "5": lipgloss.Color("220"), "6": lipgloss.Color("208"),
	"7": lipgloss.Color("51"), "8": lipgloss.Color("250"), "9": lipgloss.Color("69"),
	"10": lipgloss.Color("34"), "11": lipgloss.Color("196"),
	NoValueColor: Muted,
}

// Terminal maps a colour ID onto a 256-colour terminal colour.
func Terminal(id string) lipgloss.Color {
	if c, ok := palette[id]; ok {
		return c
	}
	return Muted
}

// Style returns a bold style in value's colour.
func (c *ColorCache) Style(value string) lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(Terminal(c.ColorID(value)))
}
