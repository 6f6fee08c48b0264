// Package config builds the command line and turns flags, environment
// variables (GHOSTOP_*) and defaults into a validated run configuration.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/stigoleg/ghost-operator/internal/hid"
	"github.com/stigoleg/ghost-operator/internal/logging"
	"github.com/stigoleg/ghost-operator/internal/profile"
	"github.com/stigoleg/ghost-operator/internal/schedule"
	"github.com/stigoleg/ghost-operator/internal/settings"
	"github.com/stigoleg/ghost-operator/internal/ui"
	"github.com/stigoleg/ghost-operator/internal/util"
)

// AppName is the binary and environment prefix base name.
const AppName = "ghostop"

// Config is the validated run configuration.
type Config struct {
	Duration     time.Duration
	Profile      profile.Profile
	SettingsFile string
	Sink         hid.Config
	PollInterval time.Duration
	Seed         int64
	MetricsAddr  string
	Log          logging.Config
	Headless     bool
	SyncClock    bool
	Exec         string

	// Schedule overrides; nil leaves the stored value.
	ScheduleMode  *schedule.Mode
	ScheduleStart *uint16
	ScheduleEnd   *uint16
}

// RunFunc executes the root command.
type RunFunc func(ctx context.Context, cfg *Config) error

// ApplyOverrides writes command line schedule overrides into s.
func (c *Config) ApplyOverrides(s *settings.Settings) {
	if c.ScheduleMode != nil {
		s.ScheduleMode = *c.ScheduleMode
	}
	if c.ScheduleStart != nil {
		s.ScheduleStart = *c.ScheduleStart
	}
	if c.ScheduleEnd != nil {
		s.ScheduleEnd = *c.ScheduleEnd
	}
}

// DefaultSettingsFile returns the per-user settings path.
func DefaultSettingsFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, AppName, "settings.yaml")
}

// NewRootCommand builds the ghostop command tree. run is called for the
// root command; a nil run makes the command tree usable for docs only.
func NewRootCommand(version string, run RunFunc) *cobra.Command {
	v := viper.New()

	root := &cobra.Command{
		Use:           AppName,
		Short:         "Simulate human keyboard and mouse activity",
		Long:          "ghostop keeps a host awake by emitting invisible keystrokes and small, human-like mouse movements through a virtual HID device.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := Load(v, time.Now())
			if err != nil {
				return err
			}
			if run == nil {
				return errors.New("no run function configured")
			}
			return run(cmd.Context(), cfg)
		},
	}
	root.SetVersionTemplate(AppName + " {{.Version}}\n")

	pf := root.PersistentFlags()
	pf.String("gadget-keyboard", "/dev/hidg0", "Gadget keyboard endpoint")
	pf.String("gadget-mouse", "/dev/hidg1", "Gadget mouse endpoint")

	f := root.Flags()
	f.StringP("duration", "d", "", "Run for a duration, then stop (e.g. \"2h30m\" or \"150\")")
	f.StringP("profile", "p", "normal", "Timing profile: lazy, normal, busy")
	f.StringP("clock", "c", "", "Run until a clock time, then stop (e.g. \"22:30\" or \"10:30PM\")")
	f.String("config", DefaultSettingsFile(), "Settings file")
	f.String("sink", string(hid.KindLog), "HID sink: log, uinput, gadget, auto")
	f.String("device-name", "", "Virtual device name (uinput); defaults to the settings device name")
	f.Duration("poll", 20*time.Millisecond, "Engine poll interval")
	f.Int64("seed", 0, "Random seed; 0 picks one from the clock")
	f.String("metrics-addr", "", "Serve Prometheus metrics on this address (e.g. \":9090\")")
	f.String("log-file", "", "Write JSON logs to this rotated file")
	f.String("log-level", "info", "Log level: debug, info, warn, error")
	f.Bool("headless", false, "Run without the dashboard")
	f.Bool("no-clock", false, "Do not feed the host clock to the schedule")
	f.String("exec", "", "Run one protocol command (e.g. \"?status\") and exit")
	f.String("schedule", "", "Schedule mode override: off, auto-sleep, full-auto")
	f.String("start", "", "Schedule window start (e.g. \"09:00\")")
	f.String("end", "", "Schedule window end (e.g. \"5:00PM\")")

	v.SetEnvPrefix(AppName)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	bind := func(fl *pflag.Flag) { _ = v.BindPFlag(fl.Name, fl) }
	pf.VisitAll(bind)
	f.VisitAll(bind)

	root.AddCommand(newKeysCommand(), newDetectCommand(v), newVersionCommand(version))
	return root
}

func newKeysCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "List the key catalog",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			for i, k := range settings.Keys {
				kind := ""
				if k.Modifier {
					kind = "modifier"
				}
				fmt.Fprintf(out, "%2d  %-6s  0x%02x  %s\n", i, k.Name, k.Code, kind)
			}
		},
	}
}

func newDetectCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "detect",
		Short: "Report which HID sinks this host can open",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			caps := hid.Detect(hid.Config{
				KeyboardPath: v.GetString("gadget-keyboard"),
				MousePath:    v.GetString("gadget-mouse"),
			})
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "uinput   %s\n", availability(caps.Uinput))
			fmt.Fprintf(out, "gadget   %s\n", availability(caps.Gadget))
			fmt.Fprintf(out, "display  %s\n", caps.DisplayServer)
			fmt.Fprintf(out, "auto     %s\n", caps.Best())
		},
	}
}

func availability(ok bool) string {
	if ok {
		return "available"
	}
	return "unavailable"
}

func newVersionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", AppName, version)
		},
	}
}

// Load validates the bound flag and environment values. now anchors --clock.
func Load(v *viper.Viper, now time.Time) (*Config, error) {
	cfg := &Config{
		SettingsFile: v.GetString("config"),
		PollInterval: v.GetDuration("poll"),
		Seed:         v.GetInt64("seed"),
		MetricsAddr:  v.GetString("metrics-addr"),
		Headless:     v.GetBool("headless"),
		SyncClock:    !v.GetBool("no-clock"),
		Exec:         v.GetString("exec"),
	}

	if s := v.GetString("duration"); s != "" {
		d, err := util.ParseDuration(s)
		if err != nil {
			return nil, err
		}
		cfg.Duration = d
	}
	if s := v.GetString("clock"); s != "" {
		if cfg.Duration > 0 {
			return nil, errors.New("cannot use both --duration and --clock\n\nPick one way to bound the run.")
		}
		d, err := untilClock(s, now)
		if err != nil {
			return nil, err
		}
		cfg.Duration = d
	}

	p, ok := profile.Parse(v.GetString("profile"))
	if !ok {
		return nil, fmt.Errorf("invalid profile %q: use lazy, normal or busy", v.GetString("profile"))
	}
	cfg.Profile = p

	kind, err := hid.ParseKind(v.GetString("sink"))
	if err != nil {
		return nil, err
	}
	cfg.Sink = hid.Config{
		Kind:         kind,
		DeviceName:   v.GetString("device-name"),
		KeyboardPath: v.GetString("gadget-keyboard"),
		MousePath:    v.GetString("gadget-mouse"),
	}

	if cfg.PollInterval <= 0 {
		return nil, fmt.Errorf("invalid poll interval %s: must be positive", cfg.PollInterval)
	}

	cfg.Log = logging.DefaultConfig()
	cfg.Log.Level = v.GetString("log-level")
	cfg.Log.File = v.GetString("log-file")
	// The dashboard owns the terminal.
	cfg.Log.Console = cfg.Headless || cfg.Exec != ""

	if s := v.GetString("schedule"); s != "" {
		mode, err := parseScheduleMode(s)
		if err != nil {
			return nil, err
		}
		cfg.ScheduleMode = &mode
	}
	if cfg.ScheduleStart, err = slotFlag(v, "start"); err != nil {
		return nil, err
	}
	if cfg.ScheduleEnd, err = slotFlag(v, "end"); err != nil {
		return nil, err
	}
	return cfg, nil
}

// untilClock returns the time from now to the next occurrence of the clock
// time s, rolling over to tomorrow when it has already passed today.
func untilClock(s string, now time.Time) (time.Duration, error) {
	hour, minute, err := util.ParseClock(s)
	if err != nil {
		return 0, err
	}
	target := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !target.After(now) {
		target = target.AddDate(0, 0, 1)
	}
	return target.Sub(now), nil
}

func slotFlag(v *viper.Viper, name string) (*uint16, error) {
	s := v.GetString(name)
	if s == "" {
		return nil, nil
	}
	slot, err := util.SlotFromClock(s)
	if err != nil {
		return nil, fmt.Errorf("--%s: %w", name, err)
	}
	return &slot, nil
}

func parseScheduleMode(s string) (schedule.Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off":
		return schedule.ModeOff, nil
	case "auto-sleep", "autosleep":
		return schedule.ModeAutoSleep, nil
	case "full-auto", "fullauto":
		return schedule.ModeFullAuto, nil
	}
	return schedule.ModeOff, fmt.Errorf("invalid schedule mode %q: use off, auto-sleep or full-auto", s)
}

// FormatError renders a command line error for the terminal. Errors with
// a detail block after a blank line get a bordered box.
func FormatError(err error) string {
	msg := err.Error()
	parts := strings.SplitN(msg, "\n\n", 2)
	if len(parts) == 2 {
		errorBox := ui.Current.Help.
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#FF4040"))

		header := lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF4040")).
			Render(parts[0])

		details := lipgloss.NewStyle().
			Foreground(lipgloss.Color("#999999")).
			Render(parts[1])

		return errorBox.Render(fmt.Sprintf("%s\n\n%s", header, details))
	}
	return ui.Current.Error.Render(msg)
}
