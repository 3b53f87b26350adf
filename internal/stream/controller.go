package stream

import (
	"context"
	"errors"
	"strings"

	"pkt.systems/pslog"

	"github.com/fakeyudi/notegen/internal/session"
)

// ErrEmptyPrompt is returned by Run when the prompt is blank.
var ErrEmptyPrompt = errors.New("prompt is empty")

// Update is delivered to listeners after every state change. Delta is the
// text appended by this change, empty for status-only updates.
type Update struct {
	Snapshot session.Snapshot
	Delta    string
}

// Controller owns the lifecycle of generation sessions. At most one session
// streams at a time. All methods must be called from the same goroutine; the
// blocking work happens in the Pump returned by Start.
type Controller struct {
	opener    Opener
	log       pslog.Logger
	gen       uint64
	session   *session.Session
	pump      *Pump
	listeners []func(Update)
}

// NewController returns an idle controller that opens streams with opener.
func NewController(opener Opener, log pslog.Logger) *Controller {
	return &Controller{opener: opener, log: log}
}

// OnUpdate registers fn to be called after every accepted change.
func (c *Controller) OnUpdate(fn func(Update)) {
	c.listeners = append(c.listeners, fn)
}

// Start begins a new session for prompt and returns the pump that feeds it.
// A blank prompt is ignored and ok is false. A session still streaming is
// cancelled first and its late events will be discarded by Apply.
func (c *Controller) Start(ctx context.Context, prompt string) (pump *Pump, ok bool) {
	if strings.TrimSpace(prompt) == "" {
		c.log.Debug("ignoring blank prompt")
		return nil, false
	}
	if c.Active() {
		c.log.Info("generation replaced", "session", c.session.ID, "gen", c.session.Gen)
		c.pump.Stop()
		c.session.Finish(session.Cancelled, nil)
	}
	c.gen++
	c.session = session.New(c.gen, prompt)
	c.pump = newPump(ctx, c.gen, prompt, c.opener)
	c.log.Info("generation started", "session", c.session.ID, "gen", c.gen, "prompt_bytes", len(prompt))
	c.notify("")
	return c.pump, true
}

// Apply folds one pump event into the active session. Events from a
// superseded session, or arriving after the session finished, are dropped.
// It reports whether the session expects more events.
func (c *Controller) Apply(ev Event) bool {
	if c.session == nil || ev.Gen != c.session.Gen || c.session.Status != session.Streaming {
		c.log.Debug("discarding stale event", "gen", ev.Gen, "bytes", len(ev.Text), "done", ev.Done)
		return false
	}
	if c.session.Append(ev.Text) {
		c.notify(ev.Text)
	}
	if !ev.Done {
		return true
	}

	s := c.session
	switch {
	case ev.Err == nil:
		s.Finish(session.Completed, nil)
		c.log.Info("generation completed", "session", s.ID, "gen", s.Gen, "bytes", s.Len(), "duration", s.Duration().String())
	case errors.Is(ev.Err, ErrCancelled):
		s.Finish(session.Cancelled, nil)
		c.log.Info("generation cancelled", "session", s.ID, "gen", s.Gen, "bytes", s.Len())
	default:
		s.Finish(session.Failed, ev.Err)
		c.log.Error("generation failed", "session", s.ID, "gen", s.Gen, "bytes", s.Len(), "err", ev.Err)
	}
	c.pump = nil
	c.notify("")
	return false
}

// Cancel stops the streaming session. The session is Cancelled as soon as
// Cancel returns; text already appended stays, nothing more is appended.
// It reports whether there was anything to cancel.
func (c *Controller) Cancel() bool {
	if !c.Active() {
		return false
	}
	c.pump.Stop()
	c.pump = nil
	c.session.Finish(session.Cancelled, nil)
	c.log.Info("generation cancelled", "session", c.session.ID, "gen", c.session.Gen, "bytes", c.session.Len())
	c.notify("")
	return true
}

// Active reports whether a session is streaming.
func (c *Controller) Active() bool {
	return c.session != nil && c.session.Status == session.Streaming
}

// Status returns the status of the latest session, Idle before the first.
func (c *Controller) Status() session.Status {
	if c.session == nil {
		return session.Idle
	}
	return c.session.Status
}

// Snapshot returns a copy of the latest session. Before the first Start it
// is the zero Snapshot, whose status is Idle.
func (c *Controller) Snapshot() session.Snapshot {
	if c.session == nil {
		return session.Snapshot{}
	}
	return c.session.Snapshot()
}

// Run starts a session and drives it to completion on the calling goroutine.
// Cancelling ctx cancels the session. The error is ErrCancelled for a
// cancelled session and the transport failure for a failed one.
func (c *Controller) Run(ctx context.Context, prompt string) (session.Snapshot, error) {
	pump, ok := c.Start(ctx, prompt)
	if !ok {
		return c.Snapshot(), ErrEmptyPrompt
	}
	for c.Apply(pump.Next()) {
	}
	// A listener may have cancelled mid-stream; let the pump release its body.
	pump.Stop()
	pump.Next()

	snap := c.Snapshot()
	switch snap.Status {
	case session.Cancelled:
		return snap, ErrCancelled
	case session.Failed:
		return snap, snap.Err
	}
	return snap, nil
}

func (c *Controller) notify(delta string) {
	if len(c.listeners) == 0 {
		return
	}
	u := Update{Snapshot: c.session.Snapshot(), Delta: delta}
	for _, fn := range c.listeners {
		fn(u)
	}
}
