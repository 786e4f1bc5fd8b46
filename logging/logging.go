/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Config selects where log records go and how verbose they are.
type Config struct {
	// File receives the log when set. A terminal UI owns stdout, so the log
	// never goes there.
	File  string `yaml:"file"`
	Debug bool   `yaml:"debug"`
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New builds a text logger for cfg. The returned closer releases the log
// file and must be called on shutdown.
func New(cfg Config) (*slog.Logger, io.Closer, error) {
	var (
		out    io.Writer = os.Stderr
		closer io.Closer = nopCloser{}
	)

	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out, closer = f, f
	}

	return NewWithWriter(out, cfg.Debug), closer, nil
}

// NewWithWriter builds a text logger writing to out.
func NewWithWriter(out io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}
