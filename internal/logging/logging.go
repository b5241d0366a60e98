// Package logging builds the process logger from configuration.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/runnerr0/housekeeper/internal/config"
)

// New returns a logger writing to w, or to cfg.File when set. verbose forces
// debug level and adds caller and timestamp reporting. The returned closer
// releases the log file and is a no-op when logging to w.
func New(cfg config.LoggingConfig, verbose bool, w io.Writer) (*log.Logger, io.Closer, error) {
	level := log.InfoLevel
	if cfg.Level != "" {
		parsed, err := log.ParseLevel(cfg.Level)
		if err != nil {
			return nil, nil, fmt.Errorf("logging.level: %w", err)
		}
		level = parsed
	}
	if verbose {
		level = log.DebugLevel
	}

	var closer io.Closer = nopCloser{}
	if cfg.File != "" {
		path, err := config.ExpandPath(cfg.File)
		if err != nil {
			return nil, nil, err
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, nil, fmt.Errorf("creating log directory: %w", err)
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		w, closer = f, f
	}

	logger := log.NewWithOptions(w, log.Options{
		ReportCaller:    verbose,
		ReportTimestamp: verbose || cfg.File != "",
		Prefix:          "housekeeper",
	})
	logger.SetLevel(level)

	return logger, closer, nil
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.New(io.Discard)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
