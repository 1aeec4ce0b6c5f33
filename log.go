package main

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
)

// setupLog routes logging somewhere useful. Stderr belongs to the TUI, so
// logs go to a file when debugging is on and nowhere otherwise.
func setupLog() (func() error, error) {
	log.SetOutput(io.Discard)
	log.SetLevel(log.FatalLevel)

	if os.Getenv("SOTTO_DEBUG") == "" {
		return func() error { return nil }, nil
	}

	logFile := os.Getenv("SOTTO_LOGFILE")
	if logFile == "" {
		dir, err := os.UserCacheDir()
		if err != nil {
			return nil, err
		}
		if err := os.MkdirAll(filepath.Join(dir, "sotto"), 0o755); err != nil { //nolint:gosec
			return nil, err
		}
		logFile = filepath.Join(dir, "sotto", "sotto.log")
	}

	f, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644) //nolint:gosec
	if err != nil {
		return nil, err
	}

	log.SetDefault(log.NewWithOptions(f, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Level:           log.DebugLevel,
	}))

	return f.Close, nil
}
