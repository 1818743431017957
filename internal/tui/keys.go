// internal/tui/keys.go
package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Next     key.Binding
	Previous key.Binding
	Focus    key.Binding
	MoveDown key.Binding
	MoveUp   key.Binding
	Rename   key.Binding
	Add      key.Binding
	Delete   key.Binding
	Write    key.Binding
	View     key.Binding
	Refresh  key.Binding
	Help     key.Binding
	Quit     key.Binding

	Confirm key.Binding
	Cancel  key.Binding
	Save    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Next:     key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "next")),
		Previous: key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "previous")),
		Focus:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "scene/chapter/act")),
		MoveDown: key.NewBinding(key.WithKeys("J", "shift+down"), key.WithHelp("J", "move down")),
		MoveUp:   key.NewBinding(key.WithKeys("K", "shift+up"), key.WithHelp("K", "move up")),
		Rename:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rename")),
		Add:      key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		Delete:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Write:    key.NewBinding(key.WithKeys("e", "enter"), key.WithHelp("e", "write")),
		View:     key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "document/grid")),
		Refresh:  key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "refresh")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),

		Confirm: key.NewBinding(key.WithKeys("enter", "y"), key.WithHelp("enter", "confirm")),
		Cancel:  key.NewBinding(key.WithKeys("esc", "n"), key.WithHelp("esc", "cancel")),
		Save:    key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save now")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Previous, k.Focus, k.MoveDown, k.MoveUp, k.Write, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Previous, k.Focus},
		{k.MoveDown, k.MoveUp, k.View},
		{k.Rename, k.Add, k.Delete},
		{k.Write, k.Save, k.Refresh},
		{k.Help, k.Quit},
	}
}
