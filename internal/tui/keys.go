package tui

import "github.com/charmbracelet/bubbles/key"

// panelKeys are the content panel bindings.
type panelKeys struct {
	Minimize  key.Binding
	Opacity   key.Binding
	CycleLvl  key.Binding
	OnTop     key.Binding
	Desktop   key.Binding
	Normal    key.Binding
	CloseHost key.Binding
	Refresh   key.Binding
	Help      key.Binding
	Quit      key.Binding
}

var defaultPanelKeys = panelKeys{
	Minimize: key.NewBinding(
		key.WithKeys("m"),
		key.WithHelp("m", "minimize"),
	),
	Opacity: key.NewBinding(
		key.WithKeys("o"),
		key.WithHelp("o", "toggle opacity"),
	),
	CycleLvl: key.NewBinding(
		key.WithKeys("l", "tab"),
		key.WithHelp("l", "cycle level"),
	),
	OnTop: key.NewBinding(
		key.WithKeys("1"),
		key.WithHelp("1", "always on top"),
	),
	Desktop: key.NewBinding(
		key.WithKeys("2"),
		key.WithHelp("2", "desktop"),
	),
	Normal: key.NewBinding(
		key.WithKeys("3"),
		key.WithHelp("3", "normal"),
	),
	CloseHost: key.NewBinding(
		key.WithKeys("X"),
		key.WithHelp("X", "close window"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

func (k panelKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Minimize, k.Opacity, k.CycleLvl, k.Help, k.Quit}
}

func (k panelKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Minimize, k.Opacity, k.CloseHost},
		{k.CycleLvl, k.OnTop, k.Desktop, k.Normal},
		{k.Refresh, k.Help, k.Quit},
	}
}

type inspectKeys struct {
	Clear key.Binding
	Quit  key.Binding
}

var defaultInspectKeys = inspectKeys{
	Clear: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "clear events"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

func (k inspectKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Clear, k.Quit}
}

func (k inspectKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
