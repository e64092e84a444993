// Package obslog provides the structured logger shared by the CLI and the
// orchestrator: a global slog.Logger plus a thin adapter satisfying
// flash.Logger.
package obslog

import (
	"io"
	"log/slog"
	"os"
	"sync/atomic"
)

var logger atomic.Pointer[slog.Logger]

func init() {
	l := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	logger.Store(l)
}

// L returns the current global logger.
func L() *slog.Logger { return logger.Load() }

// Set replaces the global logger.
func Set(l *slog.Logger) {
	if l != nil {
		logger.Store(l)
	}
}

// New builds a logger with the given format ("text" or "json") and level,
// writing to w (os.Stderr if nil).
func New(format string, level slog.Leveler, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	var h slog.Handler
	switch format {
	case "json":
		h = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	default:
		h = slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	}
	return slog.New(h)
}

// FlashLogger adapts an *slog.Logger to flash.Logger, avoiding an import
// cycle by matching the interface structurally rather than importing
// package flash.
type FlashLogger struct {
	Logger *slog.Logger
}

func (f FlashLogger) Debug(msg string, keysAndValues ...interface{}) {
	f.Logger.Debug(msg, keysAndValues...)
}

func (f FlashLogger) Info(msg string, keysAndValues ...interface{}) {
	f.Logger.Info(msg, keysAndValues...)
}

func (f FlashLogger) Error(msg string, keysAndValues ...interface{}) {
	f.Logger.Error(msg, keysAndValues...)
}
