package ui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/stigoleg/ghost-operator/internal/util"
)

// tickMsg is sent when the dashboard refresh timer ticks
type tickMsg time.Time

const menuItems = 3

// Update handles messages and updates the model accordingly.
func Update(msg tea.Msg, m Model) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil
	case tickMsg:
		return onTick(m)
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return quit(m)
		}
	}

	switch m.State {
	case stateMenu:
		return updateMenu(msg, m)
	case stateTimedInput:
		return updateTimedInput(msg, m)
	case stateRunning:
		return updateRunning(msg, m)
	case stateCommand:
		return updateCommand(msg, m)
	}
	return m, nil
}

func onTick(m Model) (Model, tea.Cmd) {
	if m.State != stateRunning && m.State != stateCommand {
		return m, nil
	}
	if !m.Keeper.IsRunning() {
		m.State = stateMenu
		m.prompt.Blur()
		if m.Keeper.StoppedBySchedule() {
			m.ErrorMessage = "Schedule window closed, activity stopped"
		} else {
			m.ErrorMessage = ""
		}
		return m, nil
	}

	m.refresh()
	if m.Keeper.TakeRareEvent() {
		m.ghostFrame = ghostFrames
	} else if m.ghostFrame > 0 {
		m.ghostFrame--
	}
	return m, tick()
}

func quit(m Model) (Model, tea.Cmd) {
	if m.Keeper.IsRunning() {
		if err := m.Keeper.Stop(); err != nil {
			m.ErrorMessage = err.Error()
		}
	}
	return m, tea.Quit
}

func updateMenu(msg tea.Msg, m Model) (Model, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(km, m.keys.ToggleHelp):
		m.ShowHelp = !m.ShowHelp
	case key.Matches(km, m.keys.Up):
		if m.Selected > 0 {
			m.Selected--
		}
	case key.Matches(km, m.keys.Down):
		if m.Selected < menuItems-1 {
			m.Selected++
		}
	case key.Matches(km, m.keys.Select):
		switch m.Selected {
		case 0:
			if err := m.start(0); err != nil {
				m.ErrorMessage = err.Error()
				return m, nil
			}
			return m, tick()
		case 1:
			m.State = stateTimedInput
			m.Input = ""
			m.ErrorMessage = ""
		case 2:
			return quit(m)
		}
	case key.Matches(km, m.keys.Quit), key.Matches(km, m.keys.Back):
		return quit(m)
	}
	return m, nil
}

func updateTimedInput(msg tea.Msg, m Model) (Model, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(km, m.keys.Submit):
		if m.Input == "" {
			m.ErrorMessage = "Please enter a duration"
			return m, nil
		}
		d, err := util.ParseDuration(m.Input)
		if err != nil {
			m.ErrorMessage = err.Error()
			return m, nil
		}
		if d <= 0 {
			m.ErrorMessage = "Duration must be positive"
			return m, nil
		}
		if err := m.start(d); err != nil {
			m.ErrorMessage = err.Error()
			return m, nil
		}
		return m, tick()
	case key.Matches(km, m.keys.Back):
		m.State = stateMenu
		m.ErrorMessage = ""
	case key.Matches(km, m.keys.Backspace):
		if len(m.Input) > 0 {
			m.Input = m.Input[:len(m.Input)-1]
			m.ErrorMessage = ""
		}
	default:
		s := km.String()
		if len(s) == 1 && strings.ContainsAny(s, "0123456789hms") && len(m.Input) < 8 {
			m.Input += s
			m.ErrorMessage = ""
		}
	}
	return m, nil
}

func updateRunning(msg tea.Msg, m Model) (Model, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(km, m.keys.Stop):
		if err := m.Keeper.Stop(); err != nil {
			m.ErrorMessage = err.Error()
			return m, nil
		}
		m.State = stateMenu
		m.ErrorMessage = ""
		m.Reply = ""
		return m, nil
	case key.Matches(km, m.keys.Quit):
		return quit(m)
	case key.Matches(km, m.keys.ToggleHelp):
		m.ShowHelp = !m.ShowHelp
	case key.Matches(km, m.keys.Busier):
		m.Keeper.ShiftProfile(1)
	case key.Matches(km, m.keys.Lazier):
		m.Keeper.ShiftProfile(-1)
	case key.Matches(km, m.keys.ToggleKeyboard):
		m.Keeper.ToggleKeyboard()
	case key.Matches(km, m.keys.ToggleMouse):
		m.Keeper.ToggleMouse()
	case key.Matches(km, m.keys.CycleOutputs):
		m.Keeper.CycleOutputs()
	case key.Matches(km, m.keys.Wake):
		m.Reply = "wake: " + m.Keeper.ManualWake().String()
	case key.Matches(km, m.keys.Ghost):
		m.ghostFrame = ghostFrames
	case key.Matches(km, m.keys.Command):
		m.State = stateCommand
		m.prompt.SetValue("")
		return m, m.prompt.Focus()
	}
	m.refresh()
	return m, nil
}

func updateCommand(msg tea.Msg, m Model) (Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(km, m.keys.Submit):
			if line := strings.TrimSpace(m.prompt.Value()); line != "" {
				m.Reply = m.Keeper.Exec(line)
			}
			m.prompt.Blur()
			m.State = stateRunning
			m.refresh()
			return m, nil
		case key.Matches(km, m.keys.Back):
			m.prompt.Blur()
			m.State = stateRunning
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return m, cmd
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
