// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package logger

import (
	"io"
	"log/slog"
	"os"
)

// Logger is a type wrapper for the slog.Logger
type Logger struct {
	*slog.Logger
}

// New returns a new Logger that writes text-formatted records to stderr
func New(level slog.Level) *Logger {
	return NewLogger(level, os.Stderr)
}

// NewLogger returns a new Logger that writes text-formatted records to output
func NewLogger(level slog.Level, output io.Writer) *Logger {
	return &Logger{slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{Level: level}))}
}

// Err returns an error attribute for use with the Logger
func Err(err error) slog.Attr {
	return slog.Any("error", err)
}
