// Package scroll decides whether the notes pane should follow new output.
// The pane follows while the reader sits at the bottom and stops as soon as
// they scroll away; scrolling back to the bottom resumes following.
package scroll

// Epsilon absorbs sub-row rounding in the reported extents. It is not a
// "close enough" threshold: half a row short of the bottom is still away.
const Epsilon = 0.5

// PaneMetrics describes the scroll position of a pane, in rows.
type PaneMetrics struct {
	Offset  float64 // first visible row
	Visible float64 // rows on screen
	Total   float64 // rows of content
}

// AtBottom reports whether the visible window reaches the end of the content.
func (m PaneMetrics) AtBottom() bool {
	return m.Offset+m.Visible >= m.Total-Epsilon
}

// Pane is the part of a scrollable view the tracker drives.
type Pane interface {
	GotoBottom()
}

// Tracker holds the follow intent. The zero value is not pinned; use New.
type Tracker struct {
	pinned bool
}

// New returns a tracker pinned to the bottom.
func New() *Tracker {
	return &Tracker{pinned: true}
}

// Sample records a scroll position reported by the pane and returns the
// resulting intent. Only the latest sample matters.
func (t *Tracker) Sample(m PaneMetrics) bool {
	t.pinned = m.AtBottom()
	return t.pinned
}

// OnBufferUpdate scrolls pane to its live edge when pinned. It reports
// whether it scrolled.
func (t *Tracker) OnBufferUpdate(pane Pane) bool {
	if !t.pinned {
		return false
	}
	pane.GotoBottom()
	return true
}

// Reset pins the tracker again; called when a new generation starts.
func (t *Tracker) Reset() {
	t.pinned = true
}

// Pinned reports whether new output will be followed.
func (t *Tracker) Pinned() bool {
	return t.pinned
}
