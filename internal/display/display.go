// Package display turns the generation buffer into what the notes pane shows.
package display

// Cursor is appended to the text while a generation is still streaming.
const Cursor = "▍"

// Assemble returns the text to hand to a Renderer: the buffer as is, plus the
// cursor glyph while streaming.
func Assemble(text string, streaming bool) string {
	if streaming {
		return text + Cursor
	}
	return text
}
