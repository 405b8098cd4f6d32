package logger

import (
	"context"
	"log/slog"
)

type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

func (l Level) slog() slog.Level {
	switch l {
	case LevelWarning:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	}
	return slog.LevelInfo
}

// Sink receives pipeline events. Implementations must not panic and must
// not block for long; failures stay inside the sink.
type Sink interface {
	Log(message string, level Level)
}

// SlogSink forwards events to a slog logger.
type SlogSink struct {
	logger *slog.Logger
}

func NewSlogSink(l *slog.Logger) *SlogSink {
	if l == nil {
		l = slog.Default()
	}
	return &SlogSink{logger: l}
}

func (s *SlogSink) Log(message string, level Level) {
	s.logger.Log(context.Background(), level.slog(), message)
}

type multi []Sink

// Multi delivers every event to each sink in order.
func Multi(sinks ...Sink) Sink {
	var out multi
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

func (m multi) Log(message string, level Level) {
	for _, s := range m {
		s.Log(message, level)
	}
}

type nop struct{}

func (nop) Log(string, Level) {}

// Nop discards everything.
func Nop() Sink { return nop{} }
