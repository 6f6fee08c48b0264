// Package logging builds the process-wide zap logger.
//
// Console output goes to stderr; the dashboard owns the terminal, so
// interactive runs usually log to a rotated file only.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config selects the log level, format and destinations.
type Config struct {
	Level  string // debug, info, warn, error
	Format string // console or json

	// Console enables the stderr core.
	Console bool

	// File enables a JSON file core rotated by lumberjack.
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// DefaultConfig logs info and above to stderr.
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		Format:     "console",
		Console:    true,
		MaxSizeMB:  10,
		MaxBackups: 3,
		MaxAgeDays: 28,
	}
}

var (
	global atomic.Pointer[zap.Logger]
	once   sync.Once
)

// Init builds the global logger once. Later calls return the first logger.
func Init(cfg Config) *zap.Logger {
	once.Do(func() {
		global.Store(New(cfg, zapcore.Lock(os.Stderr)))
	})
	return L()
}

// New builds a logger writing console output to console. It does not
// touch the global logger.
func New(cfg Config, console zapcore.WriteSyncer) *zap.Logger {
	level := zap.NewAtomicLevel()
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level.SetLevel(zap.InfoLevel)
	}

	var cores []zapcore.Core
	if cfg.Console && console != nil {
		cores = append(cores, zapcore.NewCore(encoder(cfg.Format), console, level))
	}
	if cfg.File != "" {
		w := zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		})
		cores = append(cores, zapcore.NewCore(encoder("json"), w, level))
	}
	if len(cores) == 0 {
		return zap.NewNop()
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddStacktrace(zap.ErrorLevel)).Named("ghostop")
}

func encoder(format string) zapcore.Encoder {
	ec := zap.NewProductionEncoderConfig()
	ec.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02T15:04:05.000Z07:00")
	if format == "json" {
		ec.EncodeLevel = zapcore.CapitalLevelEncoder
		return zapcore.NewJSONEncoder(ec)
	}
	ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return zapcore.NewConsoleEncoder(ec)
}

// L returns the global logger, or a no-op logger before Init.
func L() *zap.Logger {
	if l := global.Load(); l != nil {
		return l
	}
	return zap.NewNop()
}

// Sync flushes the global logger. Errors from syncing a terminal are
// ignored.
func Sync() error {
	l := global.Load()
	if l == nil {
		return nil
	}
	if err := l.Sync(); err != nil && !ignorableSyncError(err) {
		return fmt.Errorf("failed to sync logger: %w", err)
	}
	return nil
}

func ignorableSyncError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "/dev/std") ||
		strings.Contains(msg, "invalid argument") ||
		strings.Contains(msg, "inappropriate ioctl")
}

// ResetForTest clears the global logger. Tests only.
func ResetForTest() {
	global.Store(nil)
	once = sync.Once{}
}

// Writer adapts w for use as a console destination in tests.
func Writer(w io.Writer) zapcore.WriteSyncer {
	return zapcore.AddSync(w)
}
