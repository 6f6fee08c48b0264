//go:build !linux

package hid

import (
	"go.uber.org/zap"

	"github.com/stigoleg/ghost-operator/internal/settings"
)

// Uinput is only available on Linux.
type Uinput struct{}

// OpenUinput always fails outside Linux.
func OpenUinput(name string, logger *zap.Logger) (*Uinput, error) {
	return nil, ErrUnsupported
}

func (u *Uinput) Key(k settings.Key) error { return ErrUnsupported }
func (u *Uinput) Move(dx, dy int) error    { return ErrUnsupported }
func (u *Uinput) Scroll(dir int) error     { return ErrUnsupported }
func (u *Uinput) Close() error             { return nil }
