// Package logging builds the pslog loggers used by notegen. Plain commands log
// to stderr; the TUI owns the terminal and logs to a file instead.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"pkt.systems/pslog"
)

// Levels lists the accepted level names.
var Levels = []string{"trace", "debug", "info", "error"}

// ValidLevel reports whether name is an accepted level.
func ValidLevel(name string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, l := range Levels {
		if l == name {
			return true
		}
	}
	return false
}

// New returns a logger writing to w at the given level. Console mode is the
// human-readable form for terminals; otherwise entries are JSON lines.
func New(w io.Writer, level string, console bool) pslog.Logger {
	minLevel := pslog.InfoLevel
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		minLevel = pslog.TraceLevel
	case "debug":
		minLevel = pslog.DebugLevel
	case "error":
		minLevel = pslog.ErrorLevel
	}
	mode := pslog.ModeStructured
	if console {
		mode = pslog.ModeConsole
	}
	return pslog.NewWithOptions(w, pslog.Options{
		Mode:          mode,
		NoColor:       !console,
		MinLevel:      minLevel,
		VerboseFields: true,
	})
}

// Discard returns a logger that drops everything.
func Discard() pslog.Logger {
	return New(io.Discard, "error", false)
}

// OpenFile opens (appending) the log file at path and returns a structured
// logger on it. An empty path selects DefaultPath and a leading ~ is expanded.
// Close the returned closer when done.
func OpenFile(path, level string) (pslog.Logger, io.Closer, error) {
	path, err := homedir.Expand(path)
	if err != nil {
		return nil, nil, fmt.Errorf("expanding log path: %w", err)
	}
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, nil, fmt.Errorf("resolving log path: %w", err)
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	return New(f, level, false), f, nil
}

// DefaultPath is $XDG_STATE_HOME/notegen/notegen.log, falling back to
// ~/.local/state/notegen/notegen.log.
func DefaultPath() (string, error) {
	base := os.Getenv("XDG_STATE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(base, "notegen", "notegen.log"), nil
}
