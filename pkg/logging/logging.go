// Package logging provides slog-based logging with an in-memory message
// buffer that remote clients can append to and inspect.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
)

// Level represents a log level.
type Level = slog.Level

// Log levels.
const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// Format represents the log output format.
type Format string

// Output formats.
const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Config holds logging configuration.
type Config struct {
	// Level is the minimum log level to output.
	Level Level

	// Format is the output format (text or json).
	Format Format

	// Output is the writer to send logs to. Defaults to os.Stderr.
	Output io.Writer
}

// DefaultConfig returns sensible defaults for logging.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Format: FormatText,
		Output: os.Stderr,
	}
}

// Facility owns a logger, its adjustable level, and the shared message
// buffer. A single Facility is shared by the API server and the WebSocket
// log relay so that remote and local messages land in one ordered buffer.
type Facility struct {
	logger *slog.Logger
	level  *slog.LevelVar
	buffer *Buffer

	deprecatedMu   sync.Mutex
	deprecatedSeen map[string]struct{}
}

// New creates a Facility with the given configuration. Every record written
// through the returned facility's logger is also appended to its buffer.
func New(cfg Config) *Facility {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}

	level := new(slog.LevelVar)
	level.Set(cfg.Level)

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch cfg.Format {
	case FormatJSON:
		handler = slog.NewJSONHandler(cfg.Output, opts)
	default:
		handler = slog.NewTextHandler(cfg.Output, opts)
	}

	buffer := NewBuffer()

	return &Facility{
		logger:         slog.New(newBufferHandler(handler, buffer)),
		level:          level,
		buffer:         buffer,
		deprecatedSeen: make(map[string]struct{}),
	}
}

// Nop returns a Facility that discards terminal output but still buffers
// messages. Useful in tests that only assert on the buffer.
func Nop() *Facility {
	return New(Config{Level: LevelError, Output: io.Discard})
}

// Logger returns the underlying slog.Logger.
func (f *Facility) Logger() *slog.Logger {
	return f.logger
}

// Buffer returns the shared ordered message buffer.
func (f *Facility) Buffer() *Buffer {
	return f.buffer
}

// Level returns the current log level name.
func (f *Facility) Level() string {
	return LevelName(f.level.Level())
}

// SetLevel adjusts the minimum level for terminal output.
func (f *Facility) SetLevel(level Level) {
	f.level.Set(level)
}

// Deprecated emits a warning once per distinct message. Repeated calls with
// the same message are ignored.
func (f *Facility) Deprecated(msg string) {
	f.deprecatedMu.Lock()
	_, seen := f.deprecatedSeen[msg]
	if !seen {
		f.deprecatedSeen[msg] = struct{}{}
	}
	f.deprecatedMu.Unlock()

	if !seen {
		f.logger.Warn(msg, "deprecated", true)
	}
}

// Log writes a message at the named level. Unknown level names log at info.
func (f *Facility) Log(level, msg string, args ...any) {
	f.logger.Log(context.Background(), ParseLevel(level), msg, args...)
}

// ParseLevel parses a log level string.
// Valid values: "debug", "info", "warn", "error".
// Returns LevelInfo if the string is not recognized.
func ParseLevel(s string) Level {
	switch s {
	case "debug", "DEBUG":
		return LevelDebug
	case "info", "INFO", "":
		return LevelInfo
	case "warn", "WARN", "warning", "WARNING":
		return LevelWarn
	case "error", "ERROR":
		return LevelError
	default:
		return LevelInfo
	}
}

// LevelName returns the lowercase name of a level.
func LevelName(level Level) string {
	switch {
	case level <= LevelDebug:
		return "debug"
	case level <= LevelInfo:
		return "info"
	case level <= LevelWarn:
		return "warn"
	default:
		return "error"
	}
}

// ParseFormat parses a log format string.
// Valid values: "text", "json".
// Returns FormatText if the string is not recognized.
func ParseFormat(s string) Format {
	switch s {
	case "json", "JSON":
		return FormatJSON
	default:
		return FormatText
	}
}
