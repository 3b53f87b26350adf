// Package console prints generations for plain (non-TUI) commands.
package console

import (
	"io"
	"time"

	"github.com/briandowns/spinner"
)

// Spinner shows progress on stderr until the first text arrives.
type Spinner struct {
	s       *spinner.Spinner
	running bool
}

// NewSpinner creates a spinner with the given message writing to w.
func NewSpinner(w io.Writer, msg string) *Spinner {
	s := spinner.New(spinner.CharSets[14], 80*time.Millisecond, spinner.WithWriter(w))
	s.Suffix = "  " + msg
	s.Color("cyan")
	return &Spinner{s: s}
}

// Start begins the spinner animation.
func (sp *Spinner) Start() {
	if sp == nil || sp.running {
		return
	}
	sp.s.Start()
	sp.running = true
}

// Stop halts the spinner and clears the line. Safe to call repeatedly and on
// a nil Spinner.
func (sp *Spinner) Stop() {
	if sp == nil || !sp.running {
		return
	}
	sp.s.Stop()
	sp.running = false
}
