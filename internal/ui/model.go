package ui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/stigoleg/ghost-operator/internal/engine"
)

const (
	tickInterval = 100 * time.Millisecond
	barWidth     = 24

	// ghostFrames is the length of the rare event animation in ticks.
	ghostFrames = 53
)

// Model holds the dashboard state.
type Model struct {
	State        state
	Selected     int
	Input        string
	Keeper       Keeper
	ErrorMessage string
	Reply        string
	Duration     time.Duration
	ShowHelp     bool

	status     engine.Status
	ghostFrame int
	width      int

	keys     KeyMap
	help     help.Model
	prompt   textinput.Model
	keyBar   progress.Model
	mouseBar progress.Model
}

// InitialModel returns the menu model.
func InitialModel(k Keeper) Model {
	prompt := textinput.New()
	prompt.Prompt = ": "
	prompt.Placeholder = "?status"
	prompt.CharLimit = 64

	return Model{
		State:    stateMenu,
		Keeper:   k,
		keys:     DefaultKeys(),
		help:     help.New(),
		prompt:   prompt,
		keyBar:   progress.New(progress.WithDefaultGradient(), progress.WithWidth(barWidth), progress.WithoutPercentage()),
		mouseBar: progress.New(progress.WithGradient("#7D56F4", "#73F59F"), progress.WithWidth(barWidth), progress.WithoutPercentage()),
	}
}

// RunningModel starts the keeper, for d when d > 0, and returns the
// dashboard. A start failure leaves the model on the menu with the error.
func RunningModel(k Keeper, d time.Duration) Model {
	m := InitialModel(k)
	if err := m.start(d); err != nil {
		m.ErrorMessage = err.Error()
	}
	return m
}

func (m *Model) start(d time.Duration) error {
	var err error
	if d > 0 {
		err = m.Keeper.StartTimed(d)
	} else {
		err = m.Keeper.StartIndefinite()
	}
	if err != nil {
		return err
	}
	m.State = stateRunning
	m.Duration = d
	m.ErrorMessage = ""
	m.refresh()
	return nil
}

func (m *Model) refresh() {
	m.status = m.Keeper.Status()
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	if m.State == stateRunning {
		return tick()
	}
	return nil
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return Update(msg, m)
}

// View implements tea.Model
func (m Model) View() string {
	return View(m)
}
