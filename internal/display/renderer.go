package display

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/reflow/wordwrap"
)

// Styles lists the accepted style names. "auto" picks a dark or light glamour
// theme from the terminal background; "plain" skips markdown rendering.
var Styles = []string{"auto", "dark", "light", "notty", "ascii", "plain"}

// ValidStyle reports whether name is one of Styles.
func ValidStyle(name string) bool {
	for _, s := range Styles {
		if s == name {
			return true
		}
	}
	return false
}

// Renderer converts assembled notes text into terminal output.
type Renderer interface {
	Render(text string) (string, error)
}

// NewRenderer returns the renderer for style, wrapping at width columns
// (0 leaves wrapping to the renderer's default).
func NewRenderer(style string, width int) (Renderer, error) {
	if style == "plain" {
		return &PlainRenderer{Width: width}, nil
	}
	return NewMarkdownRenderer(style, width)
}

// MarkdownRenderer renders notes as styled markdown with glamour.
type MarkdownRenderer struct {
	style string
	width int
	tr    *glamour.TermRenderer
}

// NewMarkdownRenderer builds a glamour renderer for style and width.
func NewMarkdownRenderer(style string, width int) (*MarkdownRenderer, error) {
	r := &MarkdownRenderer{style: style}
	if err := r.SetWidth(width); err != nil {
		return nil, err
	}
	return r, nil
}

// SetWidth rebuilds the underlying renderer when the wrap width changes.
func (r *MarkdownRenderer) SetWidth(width int) error {
	if r.tr != nil && width == r.width {
		return nil
	}
	opts := []glamour.TermRendererOption{}
	if r.style == "" || r.style == "auto" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(r.style))
	}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}
	tr, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return fmt.Errorf("create markdown renderer: %w", err)
	}
	r.tr = tr
	r.width = width
	return nil
}

func (r *MarkdownRenderer) Render(text string) (string, error) {
	out, err := r.tr.Render(text)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return out, nil
}

// PlainRenderer word-wraps the text and otherwise leaves it alone.
type PlainRenderer struct {
	Width int
}

func (r *PlainRenderer) SetWidth(width int) error {
	r.Width = width
	return nil
}

func (r *PlainRenderer) Render(text string) (string, error) {
	if r.Width <= 0 {
		return text, nil
	}
	return strings.TrimRight(wordwrap.String(text, r.Width), " "), nil
}
