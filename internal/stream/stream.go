// Package stream consumes a generation response incrementally. A Pump does
// the blocking I/O for one session and yields Events; a Controller owns the
// session state and applies those events on a single goroutine.
package stream

import (
	"context"
	"errors"
	"io"
)

// ErrCancelled is reported when a stream ends because its session was
// cancelled, either by the user or by a newer generation replacing it.
var ErrCancelled = errors.New("generation cancelled")

// Opener starts a generation request and returns the streaming body.
// *client.Client satisfies it.
type Opener interface {
	Open(ctx context.Context, prompt string) (io.ReadCloser, error)
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(ctx context.Context, prompt string) (io.ReadCloser, error)

func (f OpenerFunc) Open(ctx context.Context, prompt string) (io.ReadCloser, error) {
	return f(ctx, prompt)
}

// Event is one step of a session's stream. Gen identifies the session it
// belongs to. A Done event is the last one; Err is nil on a clean end of
// stream, ErrCancelled after cancellation, or the transport failure.
type Event struct {
	Gen  uint64
	Text string
	Done bool
	Err  error
}
