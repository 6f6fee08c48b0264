package ui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines key bindings for the UI screens.
type KeyMap struct {
	// Common
	Quit       key.Binding
	ToggleHelp key.Binding

	// Menu navigation
	Up     key.Binding
	Down   key.Binding
	Select key.Binding

	// Timed input and command prompt
	Back      key.Binding
	Submit    key.Binding
	Backspace key.Binding

	// Dashboard
	Stop           key.Binding
	Busier         key.Binding
	Lazier         key.Binding
	ToggleKeyboard key.Binding
	ToggleMouse    key.Binding
	CycleOutputs   key.Binding
	Wake           key.Binding
	Command        key.Binding
	Ghost          key.Binding
}

// DefaultKeys returns the default key bindings for the application.
func DefaultKeys() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		ToggleHelp: key.NewBinding(
			key.WithKeys("h", "?"),
			key.WithHelp("h/?", "toggle help"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "select"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "submit"),
		),
		Backspace: key.NewBinding(
			key.WithKeys("backspace"),
			key.WithHelp("⌫", "delete"),
		),
		Stop: key.NewBinding(
			key.WithKeys("s", "esc"),
			key.WithHelp("s/esc", "stop"),
		),
		Busier: key.NewBinding(
			key.WithKeys("+", "=", "right"),
			key.WithHelp("+/→", "busier"),
		),
		Lazier: key.NewBinding(
			key.WithKeys("-", "left"),
			key.WithHelp("-/←", "lazier"),
		),
		ToggleKeyboard: key.NewBinding(
			key.WithKeys("K"),
			key.WithHelp("K", "keyboard on/off"),
		),
		ToggleMouse: key.NewBinding(
			key.WithKeys("M"),
			key.WithHelp("M", "mouse on/off"),
		),
		CycleOutputs: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "cycle outputs"),
		),
		Wake: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "wake"),
		),
		Command: key.NewBinding(
			key.WithKeys(":"),
			key.WithHelp(":", "command"),
		),
		Ghost: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "ghost"),
		),
	}
}

// stateKeyMap adapts bindings to the current UI state for contextual help.
type stateKeyMap struct {
	keys  KeyMap
	state state
}

// ForState returns a contextual key map implementing help.KeyMap for the given state.
func (k KeyMap) ForState(s state) help.KeyMap {
	return stateKeyMap{keys: k, state: s}
}

// ShortHelp implements help.KeyMap for contextual help (compact).
func (s stateKeyMap) ShortHelp() []key.Binding {
	switch s.state {
	case stateMenu:
		return []key.Binding{s.keys.Up, s.keys.Down, s.keys.Select, s.keys.ToggleHelp, s.keys.Quit}
	case stateTimedInput:
		return []key.Binding{s.keys.Submit, s.keys.Backspace, s.keys.Back}
	case stateCommand:
		return []key.Binding{s.keys.Submit, s.keys.Back}
	case stateRunning:
		return []key.Binding{s.keys.Busier, s.keys.Lazier, s.keys.Command, s.keys.Stop, s.keys.ToggleHelp, s.keys.Quit}
	default:
		return []key.Binding{s.keys.ToggleHelp, s.keys.Quit}
	}
}

// FullHelp implements help.KeyMap for contextual help (expanded).
func (s stateKeyMap) FullHelp() [][]key.Binding {
	switch s.state {
	case stateMenu:
		return [][]key.Binding{{s.keys.Up, s.keys.Down, s.keys.Select}, {s.keys.ToggleHelp, s.keys.Quit}}
	case stateTimedInput:
		return [][]key.Binding{{s.keys.Submit, s.keys.Backspace, s.keys.Back}}
	case stateCommand:
		return [][]key.Binding{{s.keys.Submit, s.keys.Back}}
	case stateRunning:
		return [][]key.Binding{
			{s.keys.Busier, s.keys.Lazier, s.keys.Wake},
			{s.keys.ToggleKeyboard, s.keys.ToggleMouse, s.keys.CycleOutputs},
			{s.keys.Command, s.keys.Ghost, s.keys.Stop},
			{s.keys.ToggleHelp, s.keys.Quit},
		}
	default:
		return [][]key.Binding{{s.keys.ToggleHelp, s.keys.Quit}}
	}
}
