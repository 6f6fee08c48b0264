package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// ErrNoPath is returned by Save when the store was created without a file.
var ErrNoPath = errors.New("settings: no settings file configured")

// Store loads, persists and watches the settings file. Reads go through
// viper so environment overrides (GHOSTOP_*) apply; writes are plain YAML.
type Store struct {
	mu     sync.Mutex
	path   string
	v      *viper.Viper
	logger *zap.Logger
}

// NewStore creates a store for the YAML file at path. An empty path keeps
// settings in memory only.
func NewStore(path string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("ghostop")
	v.AutomaticEnv()
	setDefaults(v, Defaults())
	if path != "" {
		v.SetConfigFile(path)
	}
	return &Store{path: path, v: v, logger: logger.Named("settings")}
}

func setDefaults(v *viper.Viper, d Settings) {
	v.SetDefault("key_interval_min", d.KeyIntervalMin)
	v.SetDefault("key_interval_max", d.KeyIntervalMax)
	v.SetDefault("mouse_jiggle_duration", d.MouseJiggleDuration)
	v.SetDefault("mouse_idle_duration", d.MouseIdleDuration)
	v.SetDefault("mouse_amplitude", d.MouseAmplitude)
	v.SetDefault("mouse_style", int(d.MouseStyle))
	v.SetDefault("lazy_percent", d.LazyPercent)
	v.SetDefault("busy_percent", d.BusyPercent)
	v.SetDefault("scroll_enabled", d.ScrollEnabled)
	v.SetDefault("key_slots", d.KeySlots[:])
	v.SetDefault("schedule_mode", int(d.ScheduleMode))
	v.SetDefault("schedule_start", d.ScheduleStart)
	v.SetDefault("schedule_end", d.ScheduleEnd)
	v.SetDefault("device_name", d.DeviceName)
}

// Path returns the backing file path.
func (st *Store) Path() string { return st.path }

// Load reads the settings file. A missing file yields the defaults; the
// result is always normalized.
func (st *Store) Load() (Settings, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if st.path != "" {
		if err := st.v.ReadInConfig(); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return Defaults(), fmt.Errorf("failed to read settings %s: %w", st.path, err)
			}
			st.logger.Info("no settings file, using defaults", zap.String("path", st.path))
		} else {
			st.logger.Info("settings loaded", zap.String("path", st.path))
		}
	}
	return st.decode()
}

func (st *Store) decode() (Settings, error) {
	var s Settings
	if err := st.v.Unmarshal(&s); err != nil {
		return Defaults(), fmt.Errorf("failed to decode settings: %w", err)
	}
	s.Normalize()
	return s, nil
}

// Save writes s to the settings file atomically.
func (st *Store) Save(s Settings) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	if st.path == "" {
		return ErrNoPath
	}
	s.Normalize()

	data, err := yaml.Marshal(&s)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(st.path), 0o755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	tmp := st.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := os.Rename(tmp, st.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace settings: %w", err)
	}
	st.logger.Info("settings saved", zap.String("path", st.path))
	return nil
}

// Watch calls fn with the re-read settings whenever the file changes on
// disk. Decode failures are logged and the change is ignored.
func (st *Store) Watch(fn func(Settings)) {
	if st.path == "" {
		return
	}
	st.v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		st.mu.Lock()
		s, err := st.decode()
		st.mu.Unlock()
		if err != nil {
			st.logger.Warn("ignoring settings change", zap.String("file", e.Name), zap.Error(err))
			return
		}
		st.logger.Info("settings reloaded", zap.String("file", e.Name))
		fn(s)
	})
	st.v.WatchConfig()
}
