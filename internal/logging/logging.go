// Package logging configures the charmbracelet logger used by the app.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
)

type Options struct {
	Writer io.Writer
	Level  string
}

// New returns a logger writing to opts.Writer. An unknown level falls back
// to info; a nil writer discards output.
func New(opts Options) *log.Logger {
	var w io.Writer = io.Discard
	if opts.Writer != nil {
		w = opts.Writer
	}

	lvl, err := log.ParseLevel(opts.Level)
	if err != nil {
		lvl = log.InfoLevel
	}

	return log.NewWithOptions(w, log.Options{
		Level:           lvl,
		ReportTimestamp: true,
		Prefix:          "todo",
	})
}

// OpenFile opens path for appending, creating parent directories. The
// terminal belongs to the UI, so logs go to a file.
func OpenFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}
