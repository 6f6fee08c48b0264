package ui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stigoleg/ghost-operator/internal/engine"
	"github.com/stigoleg/ghost-operator/internal/keepalive"
	"github.com/stigoleg/ghost-operator/internal/motion"
	"github.com/stigoleg/ghost-operator/internal/profile"
	"github.com/stigoleg/ghost-operator/internal/schedule"
	"github.com/stigoleg/ghost-operator/internal/settings"
)

type fakeKeeper struct {
	running    bool
	timed      time.Duration
	startErr   error
	bySchedule bool
	rare       bool
	status     engine.Status
	cfg        settings.Settings
	commands   []string
	toggles    []string
}

func newFakeKeeper() *fakeKeeper {
	return &fakeKeeper{
		cfg: settings.Defaults(),
		status: engine.Status{
			Profile:      profile.Normal,
			KeyEnabled:   true,
			MouseEnabled: true,
			NextKey:      settings.KeyAt(settings.KeyIndex("F16")),
			NextKeyIndex: settings.KeyIndex("F16"),
			KeyProgress:  0.5,
			KeyRemaining: 2100,
			MouseState:   motion.Jiggling,
			Jiggles:      12,
		},
	}
}

func (f *fakeKeeper) StartIndefinite() error {
	if f.startErr != nil {
		return f.startErr
	}
	f.running = true
	return nil
}

func (f *fakeKeeper) StartTimed(d time.Duration) error {
	if err := f.StartIndefinite(); err != nil {
		return err
	}
	f.timed = d
	return nil
}

func (f *fakeKeeper) Stop() error {
	f.running = false
	return nil
}

func (f *fakeKeeper) IsRunning() bool                  { return f.running }
func (f *fakeKeeper) TimeRemaining() time.Duration     { return f.timed }
func (f *fakeKeeper) StoppedBySchedule() bool          { return f.bySchedule }
func (f *fakeKeeper) SinkHealth() keepalive.SinkHealth { return keepalive.SinkHealthOK }
func (f *fakeKeeper) Status() engine.Status            { return f.status }
func (f *fakeKeeper) Settings() settings.Settings      { return f.cfg }
func (f *fakeKeeper) ToggleKeyboard()                  { f.toggles = append(f.toggles, "kb") }
func (f *fakeKeeper) ToggleMouse()                     { f.toggles = append(f.toggles, "ms") }
func (f *fakeKeeper) CycleOutputs()                    { f.toggles = append(f.toggles, "cycle") }
func (f *fakeKeeper) ManualWake() schedule.Intent      { return schedule.IntentExitLightSleep }

func (f *fakeKeeper) ShiftProfile(delta int) profile.Profile {
	f.status.Profile = f.status.Profile.Shift(delta)
	return f.status.Profile
}

func (f *fakeKeeper) TakeRareEvent() bool {
	r := f.rare
	f.rare = false
	return r
}

func (f *fakeKeeper) Exec(line string) string {
	f.commands = append(f.commands, line)
	return "+ok"
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(m Model, keys ...string) Model {
	for _, k := range keys {
		m, _ = Update(keyMsg(k), m)
	}
	return m
}

func TestInitialModel(t *testing.T) {
	m := InitialModel(newFakeKeeper())
	assert.Equal(t, stateMenu, m.State)
	assert.Zero(t, m.Selected)
	assert.Empty(t, m.Input)
	assert.Empty(t, m.ErrorMessage)
	assert.Nil(t, m.Init())
}

func TestMenuView(t *testing.T) {
	view := View(InitialModel(newFakeKeeper()))

	for _, opt := range []string{"Start indefinitely", "Start for a duration", "Quit"} {
		assert.Contains(t, view, opt)
	}

	found := false
	for _, line := range strings.Split(view, "\n") {
		if strings.Contains(line, "> Start indefinitely") {
			found = true
		}
	}
	assert.True(t, found, "cursor on first option")
}

func TestMenuNavigation(t *testing.T) {
	tests := []struct {
		name     string
		keys     []string
		selected int
	}{
		{"up at top stays", []string{"up"}, 0},
		{"down moves", []string{"down"}, 1},
		{"down clamps", []string{"down", "down", "down"}, 2},
		{"vim keys", []string{"j", "j", "k"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := send(InitialModel(newFakeKeeper()), tt.keys...)
			assert.Equal(t, tt.selected, m.Selected)
			assert.Equal(t, stateMenu, m.State)
		})
	}
}

func TestStartIndefinite(t *testing.T) {
	k := newFakeKeeper()
	m, cmd := Update(keyMsg("enter"), InitialModel(k))

	assert.Equal(t, stateRunning, m.State)
	assert.True(t, k.running)
	assert.NotNil(t, cmd, "dashboard starts ticking")
	assert.Zero(t, m.Duration)
}

func TestStartError(t *testing.T) {
	k := newFakeKeeper()
	k.startErr = errors.New("no sink")
	m := send(InitialModel(k), "enter")

	assert.Equal(t, stateMenu, m.State)
	assert.Equal(t, "no sink", m.ErrorMessage)
}

func TestTimedInput(t *testing.T) {
	k := newFakeKeeper()
	m := send(InitialModel(k), "down", "enter")
	require.Equal(t, stateTimedInput, m.State)

	m = send(m, "enter")
	assert.Equal(t, "Please enter a duration", m.ErrorMessage)

	m = send(m, "1", "x", "h", "3", "0", "m")
	assert.Equal(t, "1h30m", m.Input, "only duration characters are accepted")

	m = send(m, "backspace", "m", "enter")
	assert.Equal(t, stateRunning, m.State)
	assert.Equal(t, 90*time.Minute, k.timed)
	assert.Equal(t, 90*time.Minute, m.Duration)
}

func TestTimedInputRejectsZero(t *testing.T) {
	m := send(InitialModel(newFakeKeeper()), "down", "enter", "0", "enter")
	assert.Equal(t, stateTimedInput, m.State)
	assert.Equal(t, "Duration must be positive", m.ErrorMessage)

	m = send(m, "esc")
	assert.Equal(t, stateMenu, m.State)
}

func TestRunningControls(t *testing.T) {
	k := newFakeKeeper()
	m := RunningModel(k, 0)
	require.Equal(t, stateRunning, m.State)

	m = send(m, "+", "+")
	assert.Equal(t, profile.Busy, k.status.Profile)
	m = send(m, "-")
	assert.Equal(t, profile.Normal, k.status.Profile)

	m = send(m, "K", "M", "o")
	assert.Equal(t, []string{"kb", "ms", "cycle"}, k.toggles)

	m = send(m, "w")
	assert.Equal(t, "wake: exit-light-sleep", m.Reply)

	m = send(m, "s")
	assert.Equal(t, stateMenu, m.State)
	assert.False(t, k.running)
}

func TestCommandPrompt(t *testing.T) {
	k := newFakeKeeper()
	m := send(RunningModel(k, 0), ":")
	require.Equal(t, stateCommand, m.State)

	for _, r := range "?status" {
		m = send(m, string(r))
	}
	m = send(m, "enter")

	assert.Equal(t, stateRunning, m.State)
	assert.Equal(t, []string{"?status"}, k.commands)
	assert.Equal(t, "+ok", m.Reply)
	assert.Contains(t, View(m), "+ok")

	m = send(m, ":", "esc")
	assert.Equal(t, stateRunning, m.State)
	assert.Len(t, k.commands, 1, "esc discards the line")
}

func TestTickReturnsToMenuWhenStopped(t *testing.T) {
	k := newFakeKeeper()
	m := RunningModel(k, 0)

	k.running = false
	k.bySchedule = true
	m, cmd := Update(tickMsg(time.Now()), m)

	assert.Equal(t, stateMenu, m.State)
	assert.Nil(t, cmd)
	assert.Contains(t, m.ErrorMessage, "Schedule window closed")
}

func TestRareEventAnimation(t *testing.T) {
	k := newFakeKeeper()
	m := RunningModel(k, 0)

	k.rare = true
	m, _ = Update(tickMsg(time.Now()), m)
	assert.Equal(t, ghostFrames, m.ghostFrame)
	assert.Contains(t, View(m), "boo")

	for i := 0; i < ghostFrames; i++ {
		m, _ = Update(tickMsg(time.Now()), m)
	}
	assert.Zero(t, m.ghostFrame)
	assert.NotContains(t, View(m), "boo")
}

func TestRunningView(t *testing.T) {
	k := newFakeKeeper()
	m := RunningModel(k, 0)
	view := View(m)

	assert.Contains(t, view, "GhostOperator")
	assert.Contains(t, view, "NORMAL")
	assert.Contains(t, view, "next")
	assert.Contains(t, view, "F16")
	assert.Contains(t, view, "MOUSE")
	assert.Contains(t, view, "12 jiggles")

	k.status.KeyEnabled = false
	m.refresh()
	assert.Contains(t, View(m), "off")
}

func TestHelpToggle(t *testing.T) {
	m := send(InitialModel(newFakeKeeper()), "h")
	assert.True(t, m.ShowHelp)
	assert.Contains(t, View(m), "Ghost Operator Help")

	m = send(m, "?")
	assert.False(t, m.ShowHelp)
}

func TestQuitStopsKeeper(t *testing.T) {
	k := newFakeKeeper()
	m := RunningModel(k, 0)
	_, cmd := Update(keyMsg("q"), m)

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.False(t, k.running)
}
