package app

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all application-level keybindings. Panel-local keys such
// as list movement and body search live in the panels themselves.
type KeyMap struct {
	Quit          key.Binding
	Help          key.Binding
	Replay        key.Binding
	CopyCurl      key.Binding
	ClearLog      key.Binding
	CycleFocus    key.Binding
	CycleFocusRev key.Binding
}

// DefaultKeyMap returns the default keybinding configuration.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Replay: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "replay request"),
		),
		CopyCurl: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy as curl"),
		),
		ClearLog: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "clear log"),
		),
		CycleFocus: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next panel"),
		),
		CycleFocusRev: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "prev panel"),
		),
	}
}
