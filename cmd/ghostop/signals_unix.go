//go:build !windows

package main

import (
	"os"
	"syscall"
)

// shutdownSignals returns the signals that stop ghostop cleanly.
func shutdownSignals() []os.Signal {
	return []os.Signal{
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
		syscall.SIGHUP,
	}
}
