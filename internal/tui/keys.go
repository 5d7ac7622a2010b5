package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Send          key.Binding
	Newline       key.Binding
	Quit          key.Binding
	ToggleSidebar key.Binding
	SwitchFocus   key.Binding
	NewChat       key.Binding
	Up            key.Binding
	Down          key.Binding
	Select        key.Binding
	Delete        key.Binding
	ScrollUp      key.Binding
	ScrollDown    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Send:          key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send")),
		Newline:       key.NewBinding(key.WithKeys("alt+enter", "ctrl+j"), key.WithHelp("alt+enter", "newline")),
		Quit:          key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
		ToggleSidebar: key.NewBinding(key.WithKeys("ctrl+b"), key.WithHelp("ctrl+b", "sidebar")),
		SwitchFocus:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "focus")),
		NewChat:       key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "new chat")),
		Up:            key.NewBinding(key.WithKeys("up", "k")),
		Down:          key.NewBinding(key.WithKeys("down", "j")),
		Select:        key.NewBinding(key.WithKeys("enter")),
		Delete:        key.NewBinding(key.WithKeys("d", "x", "delete"), key.WithHelp("d", "delete")),
		ScrollUp:      key.NewBinding(key.WithKeys("pgup")),
		ScrollDown:    key.NewBinding(key.WithKeys("pgdown")),
	}
}
