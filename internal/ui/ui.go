package ui

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/stigoleg/ghost-operator/internal/engine"
	"github.com/stigoleg/ghost-operator/internal/keepalive"
	"github.com/stigoleg/ghost-operator/internal/profile"
	"github.com/stigoleg/ghost-operator/internal/schedule"
	"github.com/stigoleg/ghost-operator/internal/settings"
)

// Keeper is the engine driver controlled by the dashboard.
type Keeper interface {
	StartIndefinite() error
	StartTimed(d time.Duration) error
	Stop() error
	IsRunning() bool
	TimeRemaining() time.Duration
	StoppedBySchedule() bool
	SinkHealth() keepalive.SinkHealth

	Status() engine.Status
	Settings() settings.Settings
	ShiftProfile(delta int) profile.Profile
	ToggleKeyboard()
	ToggleMouse()
	CycleOutputs()
	ManualWake() schedule.Intent
	TakeRareEvent() bool
	Exec(line string) string
}

var _ Keeper = (*keepalive.Keeper)(nil)

// Run shows the dashboard until the user quits or ctx is cancelled. With
// autostart the keeper starts right away, for d when d > 0.
func Run(ctx context.Context, k Keeper, autostart bool, d time.Duration) error {
	var m Model
	if autostart {
		m = RunningModel(k, d)
	} else {
		m = InitialModel(k)
	}
	p := tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithoutSignalHandler(),
	)
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("dashboard: %w", err)
	}
	return nil
}
