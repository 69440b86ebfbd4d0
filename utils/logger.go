package utils

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Logger provides structured, leveled logging throughout the application.
// It wraps zerolog with a printf-style API so call sites stay compact.
type Logger struct {
	zl zerolog.Logger
}

// NewLogger creates a new Logger writing human-readable output to stderr.
// WILDGUARD_LOG_LEVEL=debug enables debug output; default level is info.
func NewLogger() *Logger {
	level := zerolog.InfoLevel
	if os.Getenv("WILDGUARD_LOG_LEVEL") == "debug" {
		level = zerolog.DebugLevel
	}

	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "2006-01-02 15:04:05"}
	return &Logger{
		zl: zerolog.New(out).Level(level).With().Timestamp().Logger(),
	}
}

// NewTestLogger returns a Logger that discards all output — used in tests.
func NewTestLogger() *Logger {
	return &Logger{zl: zerolog.New(io.Discard)}
}

func (l *Logger) Info(format string, args ...any) {
	l.zl.Info().Msg(fmt.Sprintf(format, args...))
}

func (l *Logger) Warn(format string, args ...any) {
	l.zl.Warn().Msg(fmt.Sprintf(format, args...))
}

func (l *Logger) Error(format string, args ...any) {
	l.zl.Error().Msg(fmt.Sprintf(format, args...))
}

func (l *Logger) Debug(format string, args ...any) {
	l.zl.Debug().Msg(fmt.Sprintf(format, args...))
}
