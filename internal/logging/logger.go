// Package logging configures the charmbracelet logger shared across
// pyfmt. Log records always go to stderr; stdout is reserved for
// formatted code and diffs so piped output stays clean.
package logging

import (
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

//nolint:gochecknoglobals // one process-wide logger, reachable from every package
var (
	defaultLogger *log.Logger
	defaultOnce   sync.Once
)

// New creates a stderr logger at the named level. An unknown level
// falls back to info.
func New(level string) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: false,
		ReportCaller:    false,
	})
	logger.SetLevel(parseLevel(level))
	return logger
}

func parseLevel(level string) log.Level {
	switch strings.ToLower(level) {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// LevelFor maps the verbosity flags onto a level name. Debug wins over
// quiet, so a quiet run can still be traced.
func LevelFor(debug, quiet bool) string {
	switch {
	case debug:
		return "debug"
	case quiet:
		return "error"
	default:
		return "info"
	}
}

// Default returns the process-wide logger, creating it on first use.
func Default() *log.Logger {
	defaultOnce.Do(func() {
		defaultLogger = New("info")
	})
	return defaultLogger
}

// SetDefault replaces the process-wide logger.
func SetDefault(logger *log.Logger) {
	Default() // the Once must fire before the slot is replaced
	defaultLogger = logger
}

// SetLevel adjusts the process-wide logger's level in place.
func SetLevel(level string) {
	Default().SetLevel(parseLevel(level))
}
