//go:build linux

package hid

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"
	"unsafe"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	"github.com/stigoleg/ghost-operator/internal/settings"
)

// uinput constants.
const (
	uinputDevicePath = "/dev/uinput"
	uinputBusTypeUSB = 0x03
	uinputVendorID   = 0x1234
	uinputProductID  = 0x5678

	// Linux input event types and codes
	evSyn    = 0x00
	evKey    = 0x01
	evRel    = 0x02
	relX     = 0x00
	relY     = 0x01
	relWheel = 0x08
	btnLeft  = 0x110

	// uinput ioctl commands
	uiSetEvbit   = 0x40045564 // _IOW('U', 100, int)
	uiSetKeybit  = 0x40045565 // _IOW('U', 101, int)
	uiSetRelbit  = 0x40045566 // _IOW('U', 102, int)
	uiDevCreate  = 0x5501     // _IO('U', 1)
	uiDevDestroy = 0x5502     // _IO('U', 2)
)

// linuxKeyCodes maps the catalog's HID usages to Linux input key codes.
var linuxKeyCodes = map[uint8]uint16{
	0x68: 183, 0x69: 184, 0x6a: 185, 0x6b: 186, // F13-F16
	0x6c: 187, 0x6d: 188, 0x6e: 189, 0x6f: 190, // F17-F20
	0x70: 191, 0x71: 192, 0x72: 193, 0x73: 194, // F21-F24

	0x47: 70,  // Scroll Lock
	0x48: 119, // Pause
	0x53: 69,  // Num Lock
	0xe0: 29,  // Left Ctrl
	0xe1: 42,  // Left Shift
	0xe2: 56,  // Left Alt
	0xe4: 97,  // Right Ctrl
	0xe5: 54,  // Right Shift
	0xe6: 100, // Right Alt
	0x29: 1,   // Esc
	0x2c: 57,  // Space
	0x28: 28,  // Enter
	0x52: 103, // Up
	0x51: 108, // Down
	0x50: 105, // Left
	0x4f: 106, // Right
}

type uinputUserDev struct {
	name [80]byte
	id   struct {
		bustype uint16
		vendor  uint16
		product uint16
		version uint16
	}
	ffEffectsMax uint32
	absmax       [64]int32
	absmin       [64]int32
	absfuzz      [64]int32
	absflat      [64]int32
}

type inputEvent struct {
	time  unix.Timeval
	etype uint16
	code  uint16
	value int32
}

// Uinput is a virtual keyboard and mouse created through /dev/uinput.
type Uinput struct {
	mu      sync.Mutex
	file    *os.File
	fd      int
	logger  *zap.Logger
	pending sync.WaitGroup
	// stuck is the code of a key whose release failed, or zero.
	stuck uint16
}

// OpenUinput creates the virtual device. It needs write access to
// /dev/uinput.
func OpenUinput(name string, logger *zap.Logger) (*Uinput, error) {
	if name == "" {
		name = settings.DefaultDeviceName
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	f, err := os.OpenFile(uinputDevicePath, os.O_WRONLY|unix.O_NONBLOCK, 0o660)
	if err != nil {
		return nil, fmt.Errorf("failed to open uinput device: %w", err)
	}
	u := &Uinput{file: f, fd: int(f.Fd()), logger: logger.Named("uinput")}

	if err := u.enableEvents(); err != nil {
		u.destroy()
		return nil, fmt.Errorf("failed to enable input events: %w", err)
	}
	if err := u.createDevice(name); err != nil {
		u.destroy()
		return nil, fmt.Errorf("failed to create uinput device: %w", err)
	}
	return u, nil
}

func (u *Uinput) enableEvents() error {
	for _, ev := range []int{evKey, evRel, evSyn} {
		if err := unix.IoctlSetInt(u.fd, uiSetEvbit, ev); err != nil {
			return err
		}
	}
	for _, rel := range []int{relX, relY, relWheel} {
		if err := unix.IoctlSetInt(u.fd, uiSetRelbit, rel); err != nil {
			return err
		}
	}
	// Desktops only treat the device as a pointer when it has a button.
	if err := unix.IoctlSetInt(u.fd, uiSetKeybit, btnLeft); err != nil {
		return err
	}
	for _, code := range linuxKeyCodes {
		if err := unix.IoctlSetInt(u.fd, uiSetKeybit, int(code)); err != nil {
			return err
		}
	}
	return nil
}

func (u *Uinput) createDevice(name string) error {
	var dev uinputUserDev
	copy(dev.name[:], name)
	dev.id.bustype = uinputBusTypeUSB
	dev.id.vendor = uinputVendorID
	dev.id.product = uinputProductID

	buf := unsafe.Slice((*byte)(unsafe.Pointer(&dev)), unsafe.Sizeof(dev))
	if _, err := unix.Write(u.fd, buf); err != nil {
		return err
	}
	return unix.IoctlSetInt(u.fd, uiDevCreate, 0)
}

func (u *Uinput) write(events ...inputEvent) error {
	for _, ev := range events {
		buf := unsafe.Slice((*byte)(unsafe.Pointer(&ev)), unsafe.Sizeof(ev))
		if _, err := unix.Write(u.fd, buf); err != nil {
			return err
		}
	}
	return nil
}

var syncEvent = inputEvent{etype: evSyn}

// Key presses k and releases it after the hold time.
func (u *Uinput) Key(k settings.Key) error {
	code, ok := linuxKeyCodes[k.Code]
	if !ok {
		return nil
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	if u.file == nil {
		return os.ErrClosed
	}
	if u.stuck != 0 {
		if err := u.write(inputEvent{etype: evKey, code: u.stuck, value: 0}, syncEvent); err != nil {
			return fmt.Errorf("failed to release held key: %w", err)
		}
		u.stuck = 0
	}
	if err := u.write(inputEvent{etype: evKey, code: code, value: 1}, syncEvent); err != nil {
		return fmt.Errorf("failed to press %s: %w", k.Name, err)
	}

	u.pending.Add(1)
	time.AfterFunc(holdFor(k), func() {
		defer u.pending.Done()
		u.mu.Lock()
		defer u.mu.Unlock()
		if u.file == nil {
			return
		}
		if err := u.write(inputEvent{etype: evKey, code: code, value: 0}, syncEvent); err != nil {
			u.stuck = code
			u.logger.Warn("key release failed", zap.String("key", k.Name), zap.Error(err))
		}
	})
	return nil
}

// Move moves the pointer by the relative amounts.
func (u *Uinput) Move(dx, dy int) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.file == nil {
		return os.ErrClosed
	}
	return u.write(
		inputEvent{etype: evRel, code: relX, value: int32(dx)},
		inputEvent{etype: evRel, code: relY, value: int32(dy)},
		syncEvent,
	)
}

// Scroll turns the wheel by dir detents.
func (u *Uinput) Scroll(dir int) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.file == nil {
		return os.ErrClosed
	}
	return u.write(inputEvent{etype: evRel, code: relWheel, value: int32(dir)}, syncEvent)
}

// Close waits for pending key releases and destroys the device.
func (u *Uinput) Close() error {
	u.pending.Wait()
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.destroy()
}

func (u *Uinput) destroy() error {
	if u.file == nil {
		return nil
	}
	ioctlErr := unix.IoctlSetInt(u.fd, uiDevDestroy, 0)
	closeErr := u.file.Close()
	u.file = nil
	u.fd = -1
	if errors.Is(ioctlErr, unix.EINVAL) {
		// The device was never created.
		ioctlErr = nil
	}
	return errors.Join(ioctlErr, closeErr)
}
