package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger is the process-wide structured logger. It falls back to slog's
// default until Init is called, so packages can log from tests.
var Logger = slog.Default()

// ParseLevel maps debug/info/warn/error to a slog level. Unknown values are info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Init installs a JSON logger writing to w at the given level. An empty level
// falls back to LOG_LEVEL, then info. Command output goes to stdout, so the
// CLI passes os.Stderr here.
func Init(w io.Writer, level string) {
	if level == "" {
		level = os.Getenv("LOG_LEVEL")
	}
	if w == nil {
		w = os.Stderr
	}
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)})
	Logger = slog.New(handler)
	slog.SetDefault(Logger)

	Logger.Debug("logger initialized", "level", ParseLevel(level).String())
}

// Debug logs a debug message
func Debug(msg string, args ...any) {
	Logger.Debug(msg, args...)
}

// Info logs an info message
func Info(msg string, args ...any) {
	Logger.Info(msg, args...)
}

// Warn logs a warning message
func Warn(msg string, args ...any) {
	Logger.Warn(msg, args...)
}

// Error logs an error message
func Error(msg string, args ...any) {
	Logger.Error(msg, args...)
}
