package hid

import (
	"github.com/stigoleg/ghost-operator/internal/metrics"
	"github.com/stigoleg/ghost-operator/internal/settings"
)

// Metered counts the emissions and failures of the wrapped sink.
type Metered struct {
	Sink
	metrics *metrics.Collector
}

// NewMetered wraps s. A nil collector disables counting.
func NewMetered(s Sink, c *metrics.Collector) *Metered {
	return &Metered{Sink: s, metrics: c}
}

func (m *Metered) record(kind string, err error) error {
	if err != nil {
		m.metrics.RecordSinkError(kind)
		return err
	}
	m.metrics.RecordEmission(kind)
	return nil
}

func (m *Metered) Key(k settings.Key) error {
	return m.record(metrics.KindKey, m.Sink.Key(k))
}

func (m *Metered) Move(dx, dy int) error {
	return m.record(metrics.KindMove, m.Sink.Move(dx, dy))
}

func (m *Metered) Scroll(dir int) error {
	return m.record(metrics.KindScroll, m.Sink.Scroll(dir))
}
