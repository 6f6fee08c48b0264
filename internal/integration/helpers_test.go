package integration

import (
	"bytes"
	"sync"
	"sync/atomic"

	"github.com/stigoleg/ghost-operator/internal/timing"
)

// endpoint is an in-memory HID gadget endpoint.
type endpoint struct {
	mu     sync.Mutex
	buf    bytes.Buffer
	closed bool
}

func (e *endpoint) Write(p []byte) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.buf.Write(p)
}

func (e *endpoint) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	return nil
}

func (e *endpoint) Bytes() []byte {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]byte(nil), e.buf.Bytes()...)
}

// fastClock advances by step on every read, so the poll loop covers
// minutes of engine time in well under a second.
type fastClock struct {
	ms   atomic.Uint32
	step uint32
}

func (c *fastClock) Now() timing.Millis {
	return timing.Millis(c.ms.Add(c.step))
}
