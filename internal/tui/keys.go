package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Generate key.Binding
	Newline  key.Binding
	Stop     key.Binding
	Focus    key.Binding
	Follow   key.Binding
	Copy     key.Binding
	Top      key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Quit     key.Binding
	QuitPane key.Binding // only while the notes pane has focus
}

func defaultKeyMap() keyMap {
	return keyMap{
		Generate: key.NewBinding(key.WithKeys("enter", "ctrl+g"), key.WithHelp("enter", "generate")),
		Newline:  key.NewBinding(key.WithKeys("alt+enter", "ctrl+j"), key.WithHelp("alt+enter", "newline")),
		Stop:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "stop")),
		Focus:    key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "focus")),
		Follow:   key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l/G", "follow")),
		Copy:     key.NewBinding(key.WithKeys("ctrl+y"), key.WithHelp("ctrl+y", "copy")),
		Top:      key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "top")),
		PageUp:   key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "page up")),
		PageDown: key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "page down")),
		Quit:     key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
		QuitPane: key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
	}
}

// followPane is the extra jump-to-bottom binding available in the notes pane.
var followPane = key.NewBinding(key.WithKeys("G", "end"))
