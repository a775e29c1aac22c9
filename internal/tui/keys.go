package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the list key bindings.
type keyMap struct {
	Up, Down          key.Binding
	Select, SelectAll key.Binding
	Toggle            key.Binding
	Complete, Delete  key.Binding
	CycleTag, Tag     key.Binding
	Search            key.Binding
	Sort, Direction   key.Binding
	Status, Overdue   key.Binding
	Next, Prev        key.Binding
	Bigger, Smaller   key.Binding
	Retry             key.Binding
	Quit              key.Binding
	Yes, No           key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Up:        key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k", "up")),
		Down:      key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j", "down")),
		Select:    key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "select")),
		SelectAll: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "select all")),
		Toggle:    key.NewBinding(key.WithKeys("x", "enter"), key.WithHelp("x", "done")),
		Complete:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "complete sel")),
		Delete:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete sel")),
		CycleTag:  key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "choose tag")),
		Tag:       key.NewBinding(key.WithKeys("T"), key.WithHelp("T", "tag sel")),
		Search:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Sort:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort")),
		Direction: key.NewBinding(key.WithKeys("S"), key.WithHelp("S", "direction")),
		Status:    key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "status")),
		Overdue:   key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "overdue")),
		Next:      key.NewBinding(key.WithKeys("n", "right"), key.WithHelp("n", "next page")),
		Prev:      key.NewBinding(key.WithKeys("p", "left"), key.WithHelp("p", "prev page")),
		Bigger:    key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "page size")),
		Smaller:   key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "page size")),
		Retry:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "retry/reload")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Yes:       key.NewBinding(key.WithKeys("y", "Y")),
		No:        key.NewBinding(key.WithKeys("n", "N", "esc", "q")),
	}
}

// help returns the status bar hint line.
func (k keyMap) help() []key.Binding {
	return []key.Binding{
		k.Select, k.Toggle, k.Complete, k.Delete, k.CycleTag, k.Tag,
		k.Search, k.Sort, k.Status, k.Next, k.Prev, k.Retry, k.Quit,
	}
}
