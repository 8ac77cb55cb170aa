// Copyright (c) 2025 SM Gaming Studio
// SPDX-License-Identifier: AGPL-3.0-or-later

package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/gookit/slog"
	"github.com/gookit/slog/handler"
)

// =============================================================================
// LOGGER INTERFACE
// =============================================================================

// Logger is the minimal logging surface used across the application.
// Components take this interface so tests can pass Nop().
type Logger interface {
	Debug(args ...any)
	Info(args ...any)
	Warn(args ...any)
	Error(args ...any)
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// =============================================================================
// CONSTRUCTORS
// =============================================================================

// New creates a gookit/slog based logger writing JSON records to out at the
// given level ("debug", "info", "warn", "error"; anything else means info).
func New(level string, out io.Writer) Logger {
	logLevel := slog.LevelByName(level)

	var levels slog.Levels
	for _, lv := range slog.AllLevels {
		if lv <= logLevel {
			levels = append(levels, lv)
		}
	}

	h := handler.NewIOWriterHandler(out, levels)
	formatter := slog.NewJSONFormatter(func(f *slog.JSONFormatter) {
		f.Fields = []string{
			slog.FieldKeyDatetime,
			slog.FieldKeyLevel,
			slog.FieldKeyMessage,
		}
		f.TimeFormat = "2006-01-02T15:04:05"
	})
	h.SetFormatter(formatter)

	return slog.NewWithHandlers(h)
}

// OpenFile creates a logger appending to the named file, creating parent
// directories as needed. Falls back to a no-op logger when the file cannot
// be opened; logging must never take the application down.
func OpenFile(level, path string) Logger {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return Nop()
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return Nop()
	}
	return New(level, f)
}

// =============================================================================
// NO-OP LOGGER
// =============================================================================

// Nop returns a logger that discards everything.
func Nop() Logger {
	return nopLogger{}
}

type nopLogger struct{}

func (nopLogger) Debug(args ...any)                 {}
func (nopLogger) Info(args ...any)                  {}
func (nopLogger) Warn(args ...any)                  {}
func (nopLogger) Error(args ...any)                 {}
func (nopLogger) Debugf(format string, args ...any) {}
func (nopLogger) Infof(format string, args ...any)  {}
func (nopLogger) Warnf(format string, args ...any)  {}
func (nopLogger) Errorf(format string, args ...any) {}
