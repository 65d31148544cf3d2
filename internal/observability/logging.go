// Package observability provides the structured logger. The library
// packages (core, lib/*, statemachine, persistence, roadmap, event) stay
// logging-free; only the CLI (cmd/clmmsim) holds a logger, in its replay
// command.
package observability

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger returns a structured JSON logger writing to stdout, tagged
// with component. Level is read from CLMMSIM_LOG_LEVEL (debug, info, warn,
// error; default info).
func NewLogger(component string) zerolog.Logger {
	level := parseLogLevel(os.Getenv("CLMMSIM_LOG_LEVEL"))

	return zerolog.New(os.Stdout).
		Level(level).
		With().
		Timestamp().
		Str("component", component).
		Logger()
}

// NewLoggerWithLevel returns a logger with an explicit level, bypassing the
// environment variable (used by the CLI once it has parsed --log-level).
func NewLoggerWithLevel(component string, level zerolog.Level) zerolog.Logger {
	return zerolog.New(os.Stdout).
		Level(level).
		With().
		Timestamp().
		Str("component", component).
		Logger()
}

func parseLogLevel(s string) zerolog.Level {
	switch s {
	case "debug":
		return zerolog.DebugLevel
	case "info", "":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func init() {
	zerolog.TimeFieldFormat = time.RFC3339Nano
}
