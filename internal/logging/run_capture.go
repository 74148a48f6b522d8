package logging

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// RunCapture appends structured JSON records to a log file inside a run's
// workspace so each run carries its own execution trace alongside the
// artifacts it produced. The capture always records at debug level; the
// console stays at the configured level.
type RunCapture struct {
	path    string
	file    *os.File
	handler slog.Handler
}

// NewRunCapture opens (or creates) the per-run log file at path. An empty
// path disables capture and returns nil without error.
func NewRunCapture(path string) (*RunCapture, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, nil
	}
	if err := ensureLogDir(trimmed); err != nil {
		return nil, fmt.Errorf("ensure run log directory: %w", err)
	}
	file, err := os.OpenFile(trimmed, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open run log %s: %w", trimmed, err)
	}

	levelVar := new(slog.LevelVar)
	levelVar.Set(slog.LevelDebug)
	handler, err := newJSONHandler(file, levelVar, false)
	if err != nil {
		file.Close()
		return nil, err
	}

	return &RunCapture{path: trimmed, file: file, handler: handler}, nil
}

// Handler returns the slog handler feeding the capture file. Safe on nil.
func (c *RunCapture) Handler() slog.Handler {
	if c == nil {
		return nil
	}
	return c.handler
}

// Path returns the on-disk location of the capture file.
func (c *RunCapture) Path() string {
	if c == nil {
		return ""
	}
	return c.path
}

// Close releases the capture file handle.
func (c *RunCapture) Close() error {
	if c == nil || c.file == nil {
		return nil
	}
	err := c.file.Close()
	c.file = nil
	return err
}
