package console

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/fakeyudi/notegen/internal/display"
	"github.com/fakeyudi/notegen/internal/session"
	"github.com/fakeyudi/notegen/internal/stream"
)

// Printer writes controller updates to a terminal or pipe. Text goes to out
// as it arrives; the closing status line goes to errOut so piped output
// holds only the notes.
type Printer struct {
	out    io.Writer
	errOut io.Writer
	spin   *Spinner
	render display.Renderer

	lastByte byte
	wrote    bool
}

// NewPrinter returns a Printer. spin may be nil. When render is non-nil the
// text is held back and printed through it once the generation completes.
func NewPrinter(out, errOut io.Writer, spin *Spinner, render display.Renderer) *Printer {
	return &Printer{out: out, errOut: errOut, spin: spin, render: render}
}

// Handle is a stream.Controller update listener.
func (p *Printer) Handle(u stream.Update) {
	snap := u.Snapshot
	if snap.Status == session.Streaming {
		if u.Delta == "" {
			if snap.Text == "" {
				p.reset()
				p.spin.Start()
			}
			return
		}
		if p.render == nil {
			p.spin.Stop()
			p.write(u.Delta)
		}
		return
	}
	if !snap.Status.Terminal() {
		return
	}
	p.spin.Stop()
	if p.render != nil {
		p.flushRendered(snap)
	}
	if p.wrote && p.lastByte != '\n' {
		fmt.Fprintln(p.out)
	}
	p.summary(snap)
}

func (p *Printer) reset() {
	p.wrote = false
	p.lastByte = 0
}

func (p *Printer) write(s string) {
	if s == "" {
		return
	}
	io.WriteString(p.out, s)
	p.wrote = true
	p.lastByte = s[len(s)-1]
}

func (p *Printer) flushRendered(snap session.Snapshot) {
	if snap.Status != session.Completed {
		p.write(snap.Text)
		return
	}
	out, err := p.render.Render(snap.Text)
	if err != nil {
		color.New(color.FgYellow).Fprintf(p.errOut, "  ! %v, printing raw text\n", err)
		out = snap.Text
	}
	p.write(out)
}

func (p *Printer) summary(snap session.Snapshot) {
	switch snap.Status {
	case session.Completed:
		color.New(color.FgGreen).Fprintf(p.errOut, "  ✓ notes complete (%s, %s)\n", byteCount(len(snap.Text)), snap.Duration)
	case session.Cancelled:
		color.New(color.FgYellow).Fprintf(p.errOut, "  ■ generation stopped after %s\n", byteCount(len(snap.Text)))
	case session.Failed:
		color.New(color.FgRed).Fprintf(p.errOut, "  ✗ generation failed: %s\n", oneLine(snap.Err))
	}
}

func byteCount(n int) string {
	if n == 1 {
		return "1 byte"
	}
	return fmt.Sprintf("%d bytes", n)
}

func oneLine(err error) string {
	if err == nil {
		return "unknown error"
	}
	return strings.Join(strings.Fields(err.Error()), " ")
}
