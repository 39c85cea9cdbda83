package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings with built-in help text.
type KeyMap struct {
	// Global
	Quit      key.Binding
	ForceQuit key.Binding
	Help      key.Binding
	NextPage  key.Binding

	// Live page
	ToggleModel key.Binding
	Refresh     key.Binding

	// History page
	Reload key.Binding
	Back   key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "force quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "switch page"),
		),

		ToggleModel: key.NewBinding(
			key.WithKeys("m", " "),
			key.WithHelp("m", "toggle trained model"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r", "enter"),
			key.WithHelp("r", "refresh"),
		),

		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back to live"),
		),
	}
}

// liveHelp adapts KeyMap to help.KeyMap for the live page.
type liveHelp struct{ KeyMap }

func (k liveHelp) ShortHelp() []key.Binding {
	return []key.Binding{k.ToggleModel, k.Refresh, k.NextPage, k.Help, k.Quit}
}

func (k liveHelp) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.ToggleModel, k.Refresh},
		{k.NextPage, k.Help, k.Quit, k.ForceQuit},
	}
}

// historyHelp adapts KeyMap to help.KeyMap for the history page.
type historyHelp struct{ KeyMap }

func (k historyHelp) ShortHelp() []key.Binding {
	return []key.Binding{k.Reload, k.Back, k.NextPage, k.Quit}
}

func (k historyHelp) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Reload, k.Back}, {k.NextPage, k.Quit, k.ForceQuit}}
}
