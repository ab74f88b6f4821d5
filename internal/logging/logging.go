// Package logging wraps log/slog with subsystem-tagged helpers so that every
// log line carries the component it came from.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	mu     sync.RWMutex
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
)

// ParseLevel maps a config string to a slog level. Unknown values map to info.
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

// Init replaces the package logger. It should be called once at startup.
func Init(level slog.Level, output io.Writer) {
	h := slog.NewTextHandler(output, &slog.HandlerOptions{Level: level})
	mu.Lock()
	logger = slog.New(h)
	mu.Unlock()
	slog.SetDefault(logger)
}

func current() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

func Debug(subsystem, format string, args ...any) {
	current().Debug(fmt.Sprintf(format, args...), "subsystem", subsystem)
}

func Info(subsystem, format string, args ...any) {
	current().Info(fmt.Sprintf(format, args...), "subsystem", subsystem)
}

func Warn(subsystem, format string, args ...any) {
	current().Warn(fmt.Sprintf(format, args...), "subsystem", subsystem)
}

// Error logs err alongside the formatted message.
func Error(subsystem string, err error, format string, args ...any) {
	current().Error(fmt.Sprintf(format, args...), "subsystem", subsystem, "error", err)
}
