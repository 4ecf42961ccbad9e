package input

import (
	"context"

	"go.uber.org/zap"
)

// Logger is the subset of *zap.Logger used by the Log backend
type Logger interface {
	Info(msg string, fields ...zap.Field)
}

// Log is a dry-run backend that records each action in the log
type Log struct {
	logger Logger
}

// NewLog creates a logging backend. A nil logger discards output.
func NewLog(logger Logger) *Log {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Log{logger: logger}
}

func (l *Log) Move(_ context.Context, dx, dy float64) error {
	l.logger.Info("input: move", zap.Float64("dx", dx), zap.Float64("dy", dy))
	return nil
}

func (l *Log) Click(_ context.Context, button Button) error {
	l.logger.Info("input: click", zap.String("button", string(button)))
	return nil
}

func (l *Log) Scroll(_ context.Context, steps int) error {
	l.logger.Info("input: scroll", zap.Int("steps", steps))
	return nil
}

func (l *Log) PressCombo(_ context.Context, keys []string) error {
	if len(keys) == 0 {
		return ErrNoKeys
	}
	l.logger.Info("input: combo", zap.Strings("keys", keys))
	return nil
}
