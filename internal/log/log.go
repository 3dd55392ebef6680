// Package log provides category-based structured logging for flowstate.
// Log lines carry a category attribute so output can be filtered per subsystem
// (engine, dispatch, db, ...) without separate logger instances.
package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"sync"
)

// Category identifies the subsystem emitting a log line.
type Category string

const (
	// CatConfig covers configuration loading and validation.
	CatConfig Category = "config"
	// CatDB covers database connection lifecycle and queries.
	CatDB Category = "db"
	// CatEngine covers completeness evaluation and status reconciliation.
	CatEngine Category = "engine"
	// CatDispatch covers broker task dispatch.
	CatDispatch Category = "dispatch"
	// CatLoader covers workflow definition loading and watching.
	CatLoader Category = "loader"
)

var (
	mu     sync.RWMutex
	logger = slog.New(slog.NewTextHandler(io.Discard, nil))
)

// Init configures the package logger to write to the given file path.
// Debug enables debug-level output. Creates the parent directory if needed.
func Init(path string, debugLevel bool) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600) //nolint:gosec // G304: path comes from config, controlled by application
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	level := slog.LevelInfo
	if debugLevel {
		level = slog.LevelDebug
	}

	mu.Lock()
	logger = slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}))
	mu.Unlock()
	return nil
}

// InitWriter configures the package logger to write to an arbitrary writer.
// Used by tests and by commands that log to stderr.
func InitWriter(w io.Writer, debugLevel bool) {
	level := slog.LevelInfo
	if debugLevel {
		level = slog.LevelDebug
	}
	mu.Lock()
	logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	mu.Unlock()
}

func current() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// Debug logs a debug-level message under the given category.
func Debug(cat Category, msg string, kv ...any) {
	current().Debug(msg, append([]any{"cat", string(cat)}, kv...)...)
}

// Info logs an info-level message under the given category.
func Info(cat Category, msg string, kv ...any) {
	current().Info(msg, append([]any{"cat", string(cat)}, kv...)...)
}

// Warn logs a warn-level message under the given category.
func Warn(cat Category, msg string, kv ...any) {
	current().Warn(msg, append([]any{"cat", string(cat)}, kv...)...)
}

// Error logs an error-level message under the given category.
func Error(cat Category, msg string, kv ...any) {
	current().Error(msg, append([]any{"cat", string(cat)}, kv...)...)
}

// ErrorErr logs an error-level message with an attached error value.
func ErrorErr(cat Category, msg string, err error, kv ...any) {
	current().Error(msg, append([]any{"cat", string(cat), "error", err}, kv...)...)
}

// SafeGo runs fn in a goroutine and logs any panic with a stack trace
// instead of crashing the process. The name identifies the goroutine in logs.
func SafeGo(name string, fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				Error(CatEngine, "goroutine panic",
					"goroutine", name,
					"panic", fmt.Sprint(r),
					"stack", string(debug.Stack()))
			}
		}()
		fn()
	}()
}
