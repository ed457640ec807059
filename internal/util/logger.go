// Package util provides logging setup and helpers for virtual serial ports.
package util

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SetupLogger installs the global zerolog logger.
// Unknown levels fall back to info. pretty selects a human console writer.
func SetupLogger(level string, pretty bool) zerolog.Logger {
	return SetupLoggerTo(os.Stdout, level, pretty)
}

// SetupLoggerTo is SetupLogger with an explicit output.
func SetupLoggerTo(out io.Writer, level string, pretty bool) zerolog.Logger {
	if pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	logger := zerolog.New(out).
		Level(ParseLevel(level)).
		With().Timestamp().Str("app", "serialnode").
		Logger()
	log.Logger = logger
	return logger
}

// ParseLevel maps a config level name to a zerolog level.
func ParseLevel(raw string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "off", "disabled", "none":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// Info prints general system information messages.
func Info(msg string, args ...any) {
	log.Info().Msgf(msg, args...)
}

// Error prints error messages.
func Error(msg string, args ...any) {
	log.Error().Msgf(msg, args...)
}
