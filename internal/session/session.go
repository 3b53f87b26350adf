package session

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a generation session.
type Status int

const (
	Idle Status = iota
	Streaming
	Completed
	Cancelled
	Failed
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Streaming:
		return "streaming"
	case Completed:
		return "completed"
	case Cancelled:
		return "cancelled"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Terminal reports whether s is one of the end states of a session.
func (s Status) Terminal() bool {
	return s == Completed || s == Cancelled || s == Failed
}

// Session is one request/stream lifecycle for a single prompt.
// It is owned by the stream controller; nothing else mutates it.
type Session struct {
	ID        string
	Gen       uint64 // controller generation that created the session
	Prompt    string
	StartTime time.Time
	StopTime  *time.Time
	Status    Status
	Err       error // set when Status is Failed

	text strings.Builder
}

// New creates a streaming session with an empty buffer.
func New(gen uint64, prompt string) *Session {
	return &Session{
		ID:        uuid.New().String(),
		Gen:       gen,
		Prompt:    prompt,
		StartTime: time.Now(),
		Status:    Streaming,
	}
}

// Append adds decoded text to the buffer. It is a no-op once the session
// has left the Streaming state.
func (s *Session) Append(text string) bool {
	if s.Status != Streaming || text == "" {
		return false
	}
	s.text.WriteString(text)
	return true
}

// Text returns the accumulated buffer.
func (s *Session) Text() string {
	return s.text.String()
}

// Len returns the buffer length in bytes.
func (s *Session) Len() int {
	return s.text.Len()
}

// Finish moves a streaming session into a terminal state. The buffer is kept.
// Finishing an already finished session does nothing.
func (s *Session) Finish(status Status, err error) bool {
	if s.Status != Streaming || !status.Terminal() {
		return false
	}
	now := time.Now()
	s.Status = status
	s.StopTime = &now
	if status == Failed {
		s.Err = err
	}
	return true
}

// Duration is the elapsed time of the session, up to now while streaming.
func (s *Session) Duration() time.Duration {
	if s.StopTime != nil {
		return s.StopTime.Sub(s.StartTime)
	}
	return time.Since(s.StartTime)
}

// Snapshot returns an immutable copy for observers.
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		ID:       s.ID,
		Gen:      s.Gen,
		Prompt:   s.Prompt,
		Text:     s.text.String(),
		Status:   s.Status,
		Err:      s.Err,
		Duration: s.Duration().Round(time.Millisecond),
	}
}

// Snapshot is a point-in-time, read-only view of a Session.
type Snapshot struct {
	ID       string
	Gen      uint64
	Prompt   string
	Text     string
	Status   Status
	Err      error
	Duration time.Duration
}

// Streaming reports whether the snapshot was taken mid-stream.
func (s Snapshot) Streaming() bool {
	return s.Status == Streaming
}
