// Package tui provides the single-page Bubble Tea interface: a topic input,
// a notes pane that follows the stream, and a status bar.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"pkt.systems/pslog"

	"github.com/fakeyudi/notegen/internal/display"
	"github.com/fakeyudi/notegen/internal/scroll"
	"github.com/fakeyudi/notegen/internal/session"
	"github.com/fakeyudi/notegen/internal/stream"
)

// title(1) + input box(3 rows + 2 border) + notes border(1) + status(1) + help(1)
const chromeHeight = 9

type focusArea int

const (
	focusInput focusArea = iota
	focusNotes
)

// eventMsg carries one pump event back to the update loop.
type eventMsg struct {
	pump *stream.Pump
	ev   stream.Event
}

// startMsg asks the model to generate for the current topic.
type startMsg struct{}

// widthSetter is implemented by renderers that wrap to the pane width.
type widthSetter interface {
	SetWidth(int) error
}

// Options configures a Model.
type Options struct {
	Context    context.Context
	Controller *stream.Controller
	Renderer   display.Renderer
	Log        pslog.Logger
	Endpoint   string
	Topic      string // pre-filled topic
	AutoStart  bool   // generate for Topic as soon as the program starts
	WrapWidth  int    // 0 wraps at the pane width
}

// Model is the root Bubble Tea model for the TUI.
type Model struct {
	ctx       context.Context
	ctrl      *stream.Controller
	tracker   *scroll.Tracker
	renderer  display.Renderer
	log       pslog.Logger
	endpoint  string
	wrapWidth int
	autoStart bool

	keys  keyMap
	help  help.Model
	input textarea.Model
	notes viewport.Model
	focus focusArea

	width   int
	height  int
	ready   bool
	started bool   // a generation has been requested at least once
	notice  string // transient message shown in the status bar
}

// New creates a TUI model driving opts.Controller.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	keys := defaultKeyMap()

	in := textarea.New()
	in.Placeholder = "What should the notes be about?"
	in.ShowLineNumbers = false
	in.Prompt = "  "
	in.CharLimit = 2000
	in.SetHeight(3)
	in.KeyMap.InsertNewline = keys.Newline
	in.SetValue(opts.Topic)
	in.Focus()

	notes := viewport.New(0, 0)
	notes.MouseWheelEnabled = true

	return Model{
		ctx:       ctx,
		ctrl:      opts.Controller,
		tracker:   scroll.New(),
		renderer:  opts.Renderer,
		log:       opts.Log,
		endpoint:  opts.Endpoint,
		wrapWidth: opts.WrapWidth,
		autoStart: opts.AutoStart,
		keys:      keys,
		help:      help.New(),
		input:     in,
		notes:     notes,
	}
}

// ── Bubble Tea interface ──────────────

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textarea.Blink}
	if m.autoStart {
		cmds = append(cmds, func() tea.Msg { return startMsg{} })
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case startMsg:
		return m, m.generate()

	case eventMsg:
		return m, m.applyEvent(msg)

	case tea.MouseMsg:
		if !m.started || msg.Action != tea.MouseActionPress {
			return m, nil
		}
		if msg.Button != tea.MouseButtonWheelUp && msg.Button != tea.MouseButtonWheelDown {
			return m, nil
		}
		var cmd tea.Cmd
		m.notes, cmd = m.notes.Update(msg)
		m.sampleScroll()
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit),
		m.focus == focusNotes && key.Matches(msg, m.keys.QuitPane):
		m.ctrl.Cancel()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Generate):
		return m, m.generate()

	case key.Matches(msg, m.keys.Stop):
		if m.ctrl.Cancel() {
			m.refresh()
		}
		return m, nil

	case key.Matches(msg, m.keys.Focus):
		return m, m.toggleFocus()

	case key.Matches(msg, m.keys.Follow),
		m.focus == focusNotes && key.Matches(msg, followPane):
		m.follow()
		return m, nil

	case key.Matches(msg, m.keys.Copy):
		m.copyNotes()
		return m, nil

	case m.focus == focusNotes && key.Matches(msg, m.keys.Top):
		m.notes.GotoTop()
		m.sampleScroll()
		return m, nil
	}

	if m.focus == focusNotes || key.Matches(msg, m.keys.PageUp, m.keys.PageDown) {
		if !m.started {
			return m, nil
		}
		var cmd tea.Cmd
		m.notes, cmd = m.notes.Update(msg)
		m.sampleScroll()
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.notice = ""
	return m, cmd
}

func (m Model) View() string {
	if !m.ready {
		return "Loading…"
	}

	// ── Row 1: title bar ──────────────
	title := titleStyle.Render("notegen") + endpointStyle.Render("  "+m.endpoint)
	title = lipgloss.NewStyle().Background(lipgloss.Color("62")).Width(m.width).Render(title)

	// ── Rows 2-6: topic input ─────────
	box := inputBoxStyle
	if m.focus == focusInput {
		box = focusedBoxStyle
	}
	input := box.Width(m.width - 2).Render(m.input.View())

	// ── Notes pane, or a hint until the first generation ──
	var body string
	if m.started {
		frame := notesBoxStyle
		if m.focus == focusNotes {
			frame = focusedNotesStyle
		}
		body = frame.Width(m.width).Render(m.notes.View())
	} else {
		body = hintStyle.Height(m.notes.Height + 1).Render(
			"Type a topic and press enter. Notes stream in below as they are written.",
		)
	}

	return lipgloss.JoinVertical(lipgloss.Left, title, input, body, m.statusBar(), m.helpBar())
}

// ── Generation ──────────────

func (m *Model) generate() tea.Cmd {
	pump, ok := m.ctrl.Start(m.ctx, m.input.Value())
	if !ok {
		m.notice = "enter a topic first"
		return nil
	}
	m.started = true
	m.notice = ""
	m.tracker.Reset()
	m.notes.SetContent("")
	m.notes.GotoTop()
	m.refresh()
	return next(pump)
}

// next reads the pump's next event off the update goroutine.
func next(pump *stream.Pump) tea.Cmd {
	return func() tea.Msg {
		return eventMsg{pump: pump, ev: pump.Next()}
	}
}

func (m *Model) applyEvent(msg eventMsg) tea.Cmd {
	more := m.ctrl.Apply(msg.ev)
	if more {
		m.refresh()
		return next(msg.pump)
	}
	if msg.ev.Gen == m.ctrl.Snapshot().Gen {
		m.refresh()
	}
	// A stopped or superseded pump still gets one more read so it can
	// close its body.
	if !msg.ev.Done {
		return next(msg.pump)
	}
	return nil
}

// refresh re-renders the notes pane from the controller and lets the
// tracker decide whether to follow.
func (m *Model) refresh() {
	if !m.started {
		return
	}
	snap := m.ctrl.Snapshot()
	text := display.Assemble(snap.Text, snap.Streaming())
	out, err := m.renderer.Render(text)
	if err != nil {
		m.log.Error("render notes", "session", snap.ID, "err", err)
		out = text
	}
	m.notes.SetContent(out)
	m.tracker.OnBufferUpdate(pane{&m.notes})
}

// copyNotes puts the raw notes text, without the cursor, on the clipboard.
func (m *Model) copyNotes() {
	if !m.started {
		return
	}
	snap := m.ctrl.Snapshot()
	if snap.Text == "" {
		m.notice = "nothing to copy yet"
		return
	}
	if err := writeClipboard(snap.Text); err != nil {
		m.log.Error("copy notes", "session", snap.ID, "err", err)
		m.notice = "copy failed: " + oneLine(err)
		return
	}
	m.notice = "copied " + byteCount(len(snap.Text))
}

// writeClipboard is swapped out in tests.
var writeClipboard = clipboard.WriteAll

// ── Scrolling ──────────────

// pane adapts the viewport to scroll.Pane.
type pane struct{ vp *viewport.Model }

func (p pane) GotoBottom() { p.vp.GotoBottom() }

func (m *Model) sampleScroll() {
	m.tracker.Sample(scroll.PaneMetrics{
		Offset:  float64(m.notes.YOffset),
		Visible: float64(m.notes.Height),
		Total:   float64(m.notes.TotalLineCount()),
	})
}

// follow jumps to the live edge; the resulting sample re-pins the tracker.
func (m *Model) follow() {
	if !m.started {
		return
	}
	m.notes.GotoBottom()
	m.sampleScroll()
}

// ── Layout ──────────────

func (m *Model) toggleFocus() tea.Cmd {
	if m.focus == focusInput && m.started {
		m.focus = focusNotes
		m.input.Blur()
		return nil
	}
	m.focus = focusInput
	return m.input.Focus()
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.ready = true

	m.input.SetWidth(width - 2)
	m.notes.Width = width
	m.notes.Height = max(1, height-chromeHeight)
	m.help.Width = width

	if ws, ok := m.renderer.(widthSetter); ok {
		wrap := m.wrapWidth
		if wrap <= 0 {
			wrap = max(20, width-4)
		}
		if err := ws.SetWidth(wrap); err != nil {
			m.log.Error("resize renderer", "width", wrap, "err", err)
		}
	}
	m.refresh()
}

func (m Model) statusBar() string {
	snap := m.ctrl.Snapshot()
	var left string
	switch {
	case m.notice != "":
		left = noticeStyle.Render(m.notice)
	case !m.started:
		left = "ready"
	case snap.Status == session.Streaming:
		left = streamingStyle.Render("generating…") + fmt.Sprintf("  %s", byteCount(len(snap.Text)))
	case snap.Status == session.Completed:
		left = completedStyle.Render("done") + fmt.Sprintf("  %s · %s", byteCount(len(snap.Text)), snap.Duration)
	case snap.Status == session.Cancelled:
		left = stoppedStyle.Render("stopped") + fmt.Sprintf("  %s", byteCount(len(snap.Text)))
	case snap.Status == session.Failed:
		left = failedStyle.Render("error: " + oneLine(snap.Err))
	}

	var right string
	if m.started {
		mode := followStyle.Render("following")
		if !m.tracker.Pinned() {
			mode = pausedStyle.Render("paused")
		}
		right = fmt.Sprintf("%s %3.0f%%", mode, m.notes.ScrollPercent()*100)
	}
	pad := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if pad < 1 {
		pad = 1
	}
	return statusBarStyle.Width(m.width).Render(left + strings.Repeat(" ", pad) + right)
}

// helpBar lists the bindings that apply right now; stop only while streaming.
func (m Model) helpBar() string {
	bindings := []key.Binding{m.keys.Generate}
	if m.ctrl.Active() {
		bindings = append(bindings, m.keys.Stop)
	}
	if m.started {
		bindings = append(bindings, m.keys.Focus, m.keys.Follow, m.keys.Copy, m.keys.PageUp, m.keys.PageDown)
	}
	bindings = append(bindings, m.keys.Newline, m.keys.Quit)
	return m.help.ShortHelpView(bindings)
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

// Run starts the TUI and blocks until the user quits.
func Run(opts Options) error {
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	p := tea.NewProgram(New(opts), tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(opts.Context))
	_, err := p.Run()
	return err
}
