package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the dashboard's keyboard bindings
type keyMap struct {
	Quit    key.Binding
	Refresh key.Binding
	Help    key.Binding

	// View switching
	ViewWork    key.Binding
	ViewIntents key.Binding
	ViewGit     key.Binding
	ViewHealth  key.Binding
	NextView    key.Binding
	PrevView    key.Binding

	// Navigation
	Up     key.Binding
	Down   key.Binding
	Expand key.Binding

	// Actions
	Preview   key.Binding
	Open      key.Binding
	Filter    key.Binding
	CycleFlow key.Binding
}

// defaultKeyMap returns the default key bindings
func defaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),

		ViewWork: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "work view"),
		),
		ViewIntents: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "intents view"),
		),
		ViewGit: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "git view"),
		),
		ViewHealth: key.NewBinding(
			key.WithKeys("4"),
			key.WithHelp("4", "health view"),
		),
		NextView: key.NewBinding(
			key.WithKeys("tab", "right"),
			key.WithHelp("tab/→", "next view"),
		),
		PrevView: key.NewBinding(
			key.WithKeys("shift+tab", "left"),
			key.WithHelp("shift+tab/←", "previous view"),
		),

		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "move down"),
		),
		Expand: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter/space", "expand/collapse"),
		),

		Preview: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "preview"),
		),
		Open: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "open file"),
		),
		Filter: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "cycle run filter"),
		),
		CycleFlow: key.NewBinding(
			key.WithKeys("F"),
			key.WithHelp("F", "switch flow"),
		),
	}
}

// ShortHelp returns key bindings for the short help view
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextView, k.Down, k.Expand, k.Preview, k.Refresh, k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.ViewWork, k.ViewIntents, k.ViewGit, k.ViewHealth, k.NextView, k.PrevView},
		{k.Up, k.Down, k.Expand},
		{k.Preview, k.Open, k.Filter, k.CycleFlow},
		{k.Refresh, k.Help, k.Quit},
	}
}
