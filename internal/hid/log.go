package hid

import (
	"go.uber.org/zap"

	"github.com/stigoleg/ghost-operator/internal/settings"
)

// LogSink logs every emission at debug level and sends nothing.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink returns a sink writing to logger.
func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger.Named("hid")}
}

func (s *LogSink) Key(k settings.Key) error {
	s.logger.Debug("key",
		zap.String("name", k.Name),
		zap.Uint8("usage", k.Code),
		zap.Bool("modifier", k.Modifier),
		zap.Duration("hold", holdFor(k)))
	return nil
}

func (s *LogSink) Move(dx, dy int) error {
	s.logger.Debug("move", zap.Int("dx", dx), zap.Int("dy", dy))
	return nil
}

func (s *LogSink) Scroll(dir int) error {
	s.logger.Debug("scroll", zap.Int("dir", dir))
	return nil
}

func (s *LogSink) Close() error { return nil }
