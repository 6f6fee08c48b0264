package hid

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/stigoleg/ghost-operator/internal/settings"
)

// Report sizes of the boot keyboard and relative mouse descriptors.
const (
	KeyboardReportLen = 8
	MouseReportLen    = 4
)

// KeyboardReport builds a boot keyboard report: modifier byte, reserved
// byte and six key slots.
func KeyboardReport(modifiers, usage uint8) [KeyboardReportLen]byte {
	return [KeyboardReportLen]byte{modifiers, 0, usage}
}

// PressReport returns the report that presses k. Modifier keys are sent
// through the modifier bitmask.
func PressReport(k settings.Key) [KeyboardReportLen]byte {
	if k.Modifier {
		return KeyboardReport(k.ModifierMask(), 0)
	}
	return KeyboardReport(0, k.Code)
}

// MouseReports builds the relative mouse reports (buttons, x, y, wheel)
// for one movement. Deltas beyond the int8 range are split over several
// reports.
func MouseReports(dx, dy, wheel int) [][MouseReportLen]byte {
	xs, ys, ws := splitInt8(dx), splitInt8(dy), splitInt8(wheel)
	n := max(len(xs), len(ys), len(ws))

	reports := make([][MouseReportLen]byte, n)
	for i := range reports {
		reports[i] = [MouseReportLen]byte{0, byte(at(xs, i)), byte(at(ys, i)), byte(at(ws, i))}
	}
	return reports
}

func at(parts []int8, i int) int8 {
	if i < len(parts) {
		return parts[i]
	}
	return 0
}

// Gadget writes reports to Linux USB gadget HID endpoints.
type Gadget struct {
	mu       sync.Mutex
	keyboard io.WriteCloser
	mouse    io.WriteCloser
	logger   *zap.Logger
	pending  sync.WaitGroup
	closed   bool
	// stuck is set after a failed release; the next Key retries it.
	stuck bool
}

// OpenGadget opens the keyboard and mouse endpoints for writing.
func OpenGadget(keyboardPath, mousePath string, logger *zap.Logger) (*Gadget, error) {
	kb, err := os.OpenFile(keyboardPath, os.O_WRONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open keyboard endpoint: %w", err)
	}
	ms, err := os.OpenFile(mousePath, os.O_WRONLY, 0)
	if err != nil {
		kb.Close()
		return nil, fmt.Errorf("failed to open mouse endpoint: %w", err)
	}
	return NewGadget(kb, ms, logger), nil
}

// NewGadget wraps already opened endpoints.
func NewGadget(keyboard, mouse io.WriteCloser, logger *zap.Logger) *Gadget {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gadget{keyboard: keyboard, mouse: mouse, logger: logger.Named("gadget")}
}

// Key writes the press report and schedules the release after the hold time.
func (g *Gadget) Key(k settings.Key) error {
	if k.Code == 0 {
		return nil
	}
	press := PressReport(k)

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return os.ErrClosed
	}
	if g.stuck {
		empty := KeyboardReport(0, 0)
		if _, err := g.keyboard.Write(empty[:]); err != nil {
			return fmt.Errorf("failed to release held key: %w", err)
		}
		g.stuck = false
	}
	if _, err := g.keyboard.Write(press[:]); err != nil {
		return fmt.Errorf("failed to write key report: %w", err)
	}

	g.pending.Add(1)
	time.AfterFunc(holdFor(k), func() {
		defer g.pending.Done()
		g.release()
	})
	return nil
}

func (g *Gadget) release() {
	g.mu.Lock()
	defer g.mu.Unlock()
	empty := KeyboardReport(0, 0)
	if _, err := g.keyboard.Write(empty[:]); err != nil {
		g.stuck = true
		g.logger.Warn("key release failed", zap.Error(err))
	}
}

func (g *Gadget) Move(dx, dy int) error {
	return g.writeMouse(dx, dy, 0)
}

func (g *Gadget) Scroll(dir int) error {
	return g.writeMouse(0, 0, dir)
}

func (g *Gadget) writeMouse(dx, dy, wheel int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return os.ErrClosed
	}
	for _, r := range MouseReports(dx, dy, wheel) {
		if _, err := g.mouse.Write(r[:]); err != nil {
			return fmt.Errorf("failed to write mouse report: %w", err)
		}
	}
	return nil
}

// Close waits for pending key releases and closes both endpoints.
func (g *Gadget) Close() error {
	g.pending.Wait()

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return nil
	}
	g.closed = true
	return errors.Join(g.keyboard.Close(), g.mouse.Close())
}
