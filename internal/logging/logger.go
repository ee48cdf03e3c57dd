// Package logging builds the slog loggers used by the CLI and server.
//
// Loggers are created once in the command layer and injected into the
// packages that need them; nothing here installs a global default.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Level is a log severity threshold.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the upper-case level name.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l Level) toSlogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ParseLevel reads a level name as written in the config file.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// Config configures a logger.
type Config struct {
	Level Level
	// JSON selects the JSON handler instead of key=value text.
	JSON bool
	// Quiet discards everything.
	Quiet bool
	// Output defaults to stderr.
	Output io.Writer
}

// New creates a logger from config.
func New(config Config) *slog.Logger {
	if config.Quiet {
		return slog.New(slog.DiscardHandler)
	}
	out := config.Output
	if out == nil {
		out = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: config.Level.toSlogLevel()}
	if config.JSON {
		return slog.New(slog.NewJSONHandler(out, opts))
	}
	return slog.New(slog.NewTextHandler(out, opts))
}

// FromSettings creates a logger from the config file's level and format
// strings. Unknown levels fall back to info.
func FromSettings(level, format string, verbose bool) *slog.Logger {
	l, err := ParseLevel(level)
	if verbose {
		l = LevelDebug
	}
	log := New(Config{Level: l, JSON: strings.EqualFold(format, "json")})
	if err != nil {
		log.Warn("invalid log level, using info", slog.String("level", level))
	}
	return log
}
