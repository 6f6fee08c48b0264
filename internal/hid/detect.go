package hid

import (
	"os"
)

// Display server names reported by DetectDisplayServer.
const (
	DisplayServerWayland = "wayland"
	DisplayServerX11     = "x11"
	DisplayServerUnknown = "unknown"
)

// UinputPath is the uinput control device.
const UinputPath = "/dev/uinput"

// Capabilities records which transports this host can open.
type Capabilities struct {
	Uinput        bool
	Gadget        bool
	DisplayServer string
}

// Detect probes the uinput device and the configured gadget endpoints.
func Detect(cfg Config) Capabilities {
	return Capabilities{
		Uinput:        writable(UinputPath),
		Gadget:        cfg.KeyboardPath != "" && cfg.MousePath != "" && writable(cfg.KeyboardPath) && writable(cfg.MousePath),
		DisplayServer: DetectDisplayServer(),
	}
}

// Best returns the preferred available transport. A gadget is a real USB
// device to the host, so it wins over a virtual uinput device.
func (c Capabilities) Best() Kind {
	switch {
	case c.Gadget:
		return KindGadget
	case c.Uinput:
		return KindUinput
	default:
		return KindLog
	}
}

// DetectDisplayServer reports whether the session runs Wayland or X11.
func DetectDisplayServer() string {
	if os.Getenv("WAYLAND_DISPLAY") != "" || os.Getenv("XDG_SESSION_TYPE") == DisplayServerWayland {
		return DisplayServerWayland
	}
	if os.Getenv("DISPLAY") != "" || os.Getenv("XDG_SESSION_TYPE") == DisplayServerX11 {
		return DisplayServerX11
	}
	return DisplayServerUnknown
}

func writable(path string) bool {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return false
	}
	_ = f.Close()
	return true
}
