package ui

import (
	"fmt"
	"strings"

	"github.com/stigoleg/ghost-operator/internal/engine"
	"github.com/stigoleg/ghost-operator/internal/keepalive"
	"github.com/stigoleg/ghost-operator/internal/motion"
	"github.com/stigoleg/ghost-operator/internal/schedule"
	"github.com/stigoleg/ghost-operator/internal/settings"
	"github.com/stigoleg/ghost-operator/internal/timing"
	"github.com/stigoleg/ghost-operator/internal/util"
)

// View renders the current state of the model to a string.
func View(m Model) string {
	if m.ShowHelp && m.State == stateMenu {
		return helpView()
	}

	switch m.State {
	case stateMenu:
		return menuView(m)
	case stateTimedInput:
		return timedInputView(m)
	case stateRunning, stateCommand:
		return runningView(m)
	}
	return ""
}

func menuView(m Model) string {
	var b strings.Builder

	b.WriteString(Current.Title.Render("Ghost Operator"))
	b.WriteString("\n\n")
	b.WriteString(Current.Unselected.Render("Select an option:"))
	b.WriteString("\n\n")

	options := [menuItems]string{
		"Start indefinitely",
		"Start for a duration",
		"Quit",
	}
	for i, opt := range options {
		if i == m.Selected {
			b.WriteString(Current.Selected.Render("> " + opt))
		} else {
			b.WriteString(Current.Unselected.Render("  " + opt))
		}
		b.WriteString("\n")
	}

	if m.ErrorMessage != "" {
		b.WriteString("\n" + Current.Error.Render(m.ErrorMessage))
	}

	b.WriteString("\n\n" + m.help.View(m.keys.ForState(m.State)))
	return b.String()
}

func timedInputView(m Model) string {
	var b strings.Builder

	b.WriteString(Current.Title.Render("Enter Duration"))
	b.WriteString("\n\n")
	b.WriteString(Current.Unselected.Render("Minutes, or a duration such as 1h30m:"))
	b.WriteString("\n")

	input := m.Input
	if input == "" {
		input = " "
	}
	b.WriteString(Current.InputBox.Render(input))
	b.WriteString("\n\n")
	b.WriteString(m.help.View(m.keys.ForState(m.State)))

	if m.ErrorMessage != "" {
		b.WriteString("\n\n" + Current.Error.Render(m.ErrorMessage))
	}
	return b.String()
}

func runningView(m Model) string {
	st := m.status
	cfg := m.Keeper.Settings()
	var b strings.Builder

	b.WriteString(Current.Title.Render(cfg.DeviceName))
	b.WriteString(Current.Badge.Render(st.Profile.String()))
	if m.Duration > 0 {
		b.WriteString(Current.Countdown.Render(formatRemaining(m.Keeper)))
	}
	b.WriteString("\n\n")

	row(&b, "Keyboard", keyboardLine(m, st))
	row(&b, "Mouse", mouseLine(m, st, cfg))
	row(&b, "Schedule", scheduleLine(st, cfg))
	row(&b, "Activity", activityLine(st, m.Keeper.SinkHealth()))
	row(&b, "Uptime", timing.FormatUptime(uint64(st.Uptime)))

	if m.ghostFrame > 0 {
		b.WriteString("\n" + ghostLine(m.ghostFrame, m.width))
	}

	if m.State == stateCommand {
		b.WriteString("\n" + m.prompt.View())
	} else if m.Reply != "" {
		b.WriteString("\n" + Current.Reply.Render(m.Reply))
	}
	if m.ErrorMessage != "" {
		b.WriteString("\n" + Current.Error.Render(m.ErrorMessage))
	}

	h := m.help
	h.ShowAll = m.ShowHelp
	b.WriteString("\n\n" + h.View(m.keys.ForState(m.State)))
	return b.String()
}

func row(b *strings.Builder, label, value string) {
	b.WriteString(Current.Label.Render(label))
	b.WriteString(Current.Value.Render(value))
	b.WriteString("\n")
}

func keyboardLine(m Model, st engine.Status) string {
	if !st.KeyEnabled {
		return Current.InactiveStatus.Render("off")
	}
	if st.LightSleep {
		return Current.Sleeping.Render("sleeping")
	}
	next := st.NextKey.Name
	if st.NextKeyIndex == settings.KeyNone {
		next = "-"
	}
	return fmt.Sprintf("%s %5s  next %s",
		m.keyBar.ViewAs(st.KeyProgress),
		timing.FormatDuration(st.KeyRemaining, true),
		Current.ActiveStatus.Render(next))
}

func mouseLine(m Model, st engine.Status, cfg settings.Settings) string {
	if !st.MouseEnabled {
		return Current.InactiveStatus.Render("off")
	}
	if st.LightSleep {
		return Current.Sleeping.Render("sleeping")
	}
	detail := cfg.MouseStyle.String()
	if st.MouseState == motion.Jiggling && cfg.MouseStyle == settings.StyleBezier {
		detail += " " + strings.ToLower(st.SweepPhase.String())
	}
	return fmt.Sprintf("%s %5s  %s %s",
		m.mouseBar.ViewAs(st.MouseProgress),
		timing.FormatDuration(st.MouseRemaining, true),
		Current.ActiveStatus.Render(st.MouseState.String()),
		Current.InactiveStatus.Render(detail))
}

func scheduleLine(st engine.Status, cfg settings.Settings) string {
	if cfg.ScheduleMode == schedule.ModeOff {
		return Current.InactiveStatus.Render("off")
	}
	window := fmt.Sprintf("%s %s-%s", cfg.ScheduleMode,
		util.ClockFromSlot(cfg.ScheduleStart), util.ClockFromSlot(cfg.ScheduleEnd))

	switch {
	case !st.TimeSynced:
		return window + Current.InactiveStatus.Render("  (clock not synced)")
	case st.LightSleep:
		return window + Current.Sleeping.Render("  sleeping")
	case st.ManualWake:
		return window + Current.Sleeping.Render("  woken manually")
	default:
		return window + Current.ActiveStatus.Render("  active")
	}
}

func activityLine(st engine.Status, health keepalive.SinkHealth) string {
	line := fmt.Sprintf("%d jiggles · %d keys · %d moves", st.Jiggles, st.Stats.Keystrokes, st.Stats.Moves)
	if st.Stats.Suppressed > 0 {
		line += fmt.Sprintf(" · %d held", st.Stats.Suppressed)
	}
	if health == keepalive.SinkHealthFailed {
		return line + Current.Error.Render("  sink failing")
	}
	return line
}

func formatRemaining(k Keeper) string {
	remaining := k.TimeRemaining()
	h := int(remaining.Hours())
	mins := int(remaining.Minutes()) % 60
	secs := int(remaining.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d left", h, mins, secs)
	}
	return fmt.Sprintf("%d:%02d left", mins, secs)
}

// ghostLine drifts a ghost across the line as frame counts down.
func ghostLine(frame, width int) string {
	const ghost = "ᗣ boo"
	if width <= 0 {
		width = 60
	}
	span := width - len([]rune(ghost)) - 2
	if span < 0 {
		span = 0
	}
	pos := span * (ghostFrames - frame) / ghostFrames
	return Current.Banner.Render(strings.Repeat(" ", pos) + ghost)
}

func helpView() string {
	help := `Ghost Operator Help

Usage:
  ghostop [flags]
  ghostop keys
  ghostop version

Flags:
  -d, --duration string   Run for a duration (e.g. "2h30m" or "150")
  -p, --profile string    Timing profile: lazy, normal, busy
      --sink string       HID sink: log, uinput, gadget
      --config string     Settings file
      --headless          Run without the dashboard
      --exec string       Run one protocol command and exit

Dashboard:
  +/-        : Busier / lazier profile
  K / M      : Toggle keyboard / mouse output
  o          : Cycle outputs
  w          : Wake from scheduled sleep
  :          : Command prompt (?status, =keyMin:3000, !save)
  s / Esc    : Stop
  q          : Quit

Press 'h' to close help`

	return Current.Help.Render(help)
}
