package preview

import (
	"github.com/charmbracelet/bubbles/key"
)

type keyMap struct {
	Prev  key.Binding
	Next  key.Binding
	Hover key.Binding
	Lang  key.Binding
	Quit  key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Prev: key.NewBinding(
			key.WithKeys("left", "a"),
			key.WithHelp("←/a", "previous"),
		),
		Next: key.NewBinding(
			key.WithKeys("right", "d"),
			key.WithHelp("→/d", "next"),
		),
		Hover: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "hover"),
		),
		Lang: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "language"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k keyMap) bindings() []key.Binding {
	return []key.Binding{k.Prev, k.Next, k.Hover, k.Lang, k.Quit}
}
