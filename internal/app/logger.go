package app

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// ParseLogLevel maps a level name to its slog level, case-insensitively.
func ParseLogLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid log-level %q: must be 'debug', 'info', 'warn', or 'error'", name)
	}
}

// ParseLogFormat validates a handler format name and returns its canonical
// lower-case form.
func ParseLogFormat(name string) (string, error) {
	switch f := strings.ToLower(name); f {
	case "text", "json":
		return f, nil
	default:
		return "", fmt.Errorf("invalid log-format %q: must be 'text' or 'json'", name)
	}
}

// newLogger builds the app's isolated logger. Unrecognized settings fall
// back to an info-level text handler; validation happens at the CLI
// boundary via ParseLogLevel/ParseLogFormat.
func newLogger(levelStr, formatStr string, outW io.Writer) *slog.Logger {
	level, err := ParseLogLevel(levelStr)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if format, _ := ParseLogFormat(formatStr); format == "json" {
		return slog.New(slog.NewJSONHandler(outW, opts))
	}
	return slog.New(slog.NewTextHandler(outW, opts))
}
