// Package hid delivers simulated keystrokes and mouse movement to the host.
//
// Every transport implements Sink. The log sink only records what would be
// sent, the uinput sink creates a virtual Linux input device and the gadget
// sink writes boot-protocol reports to USB gadget HID endpoints.
package hid

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/stigoleg/ghost-operator/internal/settings"
)

// Key hold times between press and release reports.
const (
	KeyHold      = 50 * time.Millisecond
	ModifierHold = 30 * time.Millisecond
)

// ErrUnsupported is returned when a transport is not available on this platform.
var ErrUnsupported = errors.New("hid: transport not supported on this platform")

// Sink is an HID transport.
type Sink interface {
	Key(k settings.Key) error
	Move(dx, dy int) error
	Scroll(dir int) error
	Close() error
}

// Kind names a transport.
type Kind string

const (
	KindLog    Kind = "log"
	KindUinput Kind = "uinput"
	KindGadget Kind = "gadget"
	// KindAuto picks the best transport Detect finds.
	KindAuto Kind = "auto"
)

// ParseKind validates a transport name.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindLog, KindUinput, KindGadget, KindAuto:
		return k, nil
	case "":
		return KindLog, nil
	default:
		return "", fmt.Errorf("unknown sink %q (want log, uinput, gadget or auto)", s)
	}
}

// Config selects and configures a transport.
type Config struct {
	Kind Kind

	// DeviceName names the uinput device.
	DeviceName string

	// Gadget endpoints, typically /dev/hidg0 and /dev/hidg1.
	KeyboardPath string
	MousePath    string
}

// Open creates the configured transport.
func Open(cfg Config, logger *zap.Logger) (Sink, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Kind == KindAuto {
		caps := Detect(cfg)
		cfg.Kind = caps.Best()
		logger.Info("sink detected",
			zap.String("sink", string(cfg.Kind)),
			zap.Bool("uinput", caps.Uinput),
			zap.Bool("gadget", caps.Gadget),
			zap.String("display", caps.DisplayServer))
	}
	switch cfg.Kind {
	case KindLog, "":
		return NewLogSink(logger), nil
	case KindUinput:
		u, err := OpenUinput(cfg.DeviceName, logger)
		if err != nil {
			return nil, err
		}
		return u, nil
	case KindGadget:
		g, err := OpenGadget(cfg.KeyboardPath, cfg.MousePath, logger)
		if err != nil {
			return nil, err
		}
		return g, nil
	default:
		return nil, fmt.Errorf("unknown sink %q", cfg.Kind)
	}
}

func holdFor(k settings.Key) time.Duration {
	if k.Modifier {
		return ModifierHold
	}
	return KeyHold
}

// splitInt8 splits v into chunks that each fit a report byte.
func splitInt8(v int) []int8 {
	if v == 0 {
		return []int8{0}
	}
	var parts []int8
	for v != 0 {
		step := v
		if step > 127 {
			step = 127
		} else if step < -127 {
			step = -127
		}
		parts = append(parts, int8(step))
		v -= step
	}
	return parts
}
