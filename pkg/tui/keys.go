package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/harrisonrobin/taskboard/pkg/model"
)

type KeyMap struct {
	NextTab     key.Binding
	PrevTab     key.Binding
	NextPage    key.Binding
	PrevPage    key.Binding
	Open        key.Binding
	Close       key.Binding
	Status      key.Binding
	Owner       key.Binding
	WorkType    key.Binding
	ResetFilter key.Binding
	Reload      key.Binding
	Quit        key.Binding
	Sort        []key.Binding
}

func newBinding(keys []string, display, help string) key.Binding {
	return key.NewBinding(
		key.WithKeys(keys...),
		key.WithHelp(display, help),
	)
}

// DefaultKeyMap binds 1-9 and 0 to the ten columns in order.
func DefaultKeyMap() KeyMap {
	km := KeyMap{
		NextTab:     newBinding([]string{"tab"}, "tab", "next tab"),
		PrevTab:     newBinding([]string{"shift+tab"}, "shift+tab", "prev tab"),
		NextPage:    newBinding([]string{"n", "right"}, "n/→", "next page"),
		PrevPage:    newBinding([]string{"p", "left"}, "p/←", "prev page"),
		Open:        newBinding([]string{"enter"}, "enter", "details"),
		Close:       newBinding([]string{"esc", "enter", "backspace"}, "esc", "close"),
		Status:      newBinding([]string{"s"}, "s", "status filter"),
		Owner:       newBinding([]string{"o"}, "o", "owner filter"),
		WorkType:    newBinding([]string{"w"}, "w", "work type filter"),
		ResetFilter: newBinding([]string{"x"}, "x", "reset filters"),
		Reload:      newBinding([]string{"r"}, "r", "reload"),
		Quit:        newBinding([]string{"q", "ctrl+c"}, "q", "quit"),
	}
	for i, k := range model.Keys {
		digit := string(rune('0' + (i+1)%10))
		km.Sort = append(km.Sort, newBinding([]string{digit}, digit, "sort by "+string(k)))
	}
	return km
}

// ShortHelp is shown under the table.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextTab, k.NextPage, k.PrevPage, k.Open, k.Status, k.Owner, k.WorkType, k.ResetFilter, k.Reload, k.Quit}
}
