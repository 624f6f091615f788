package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the TUI.
type KeyMap struct {
	Help        key.Binding
	ModelChange key.Binding
	Submit      key.Binding
	Back        key.Binding // quit in Normal mode, cancel in ModelChange mode
	Interrupt   key.Binding
	PageUp      key.Binding
	PageDown    key.Binding
}

// DefaultKeyMap provides the default key bindings for the TUI.
var DefaultKeyMap = KeyMap{
	Help: key.NewBinding(
		key.WithKeys("f1", "ctrl+g"),
		key.WithHelp("F1/ctrl+g", "toggle help"),
	),
	ModelChange: key.NewBinding(
		key.WithKeys("f2", "ctrl+p"),
		key.WithHelp("F2/ctrl+p", "change model"),
	),
	Submit: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "send / confirm"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "quit / cancel model change"),
	),
	Interrupt: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "exit"),
	),
	PageUp: key.NewBinding(
		key.WithKeys("pgup"),
		key.WithHelp("pgup", "scroll up"),
	),
	PageDown: key.NewBinding(
		key.WithKeys("pgdown"),
		key.WithHelp("pgdown", "scroll down"),
	),
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.ModelChange, k.Submit, k.Back}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Submit, k.ModelChange, k.Help},
		{k.Back, k.Interrupt},
		{k.PageUp, k.PageDown},
	}
}
