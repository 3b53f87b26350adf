package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
)

const readSize = 4 << 10

// Pump performs the suspending I/O of one session: it opens the request on
// first use and then reads the body one chunk per Next call. A Pump is used
// from a single goroutine; only Stop may be called from elsewhere.
type Pump struct {
	gen    uint64
	prompt string
	ctx    context.Context
	cancel context.CancelFunc
	opener Opener
	body   io.ReadCloser
	dec    *Decoder
	buf    []byte
	final  *Event
}

func newPump(ctx context.Context, gen uint64, prompt string, opener Opener) *Pump {
	ctx, cancel := context.WithCancel(ctx)
	return &Pump{
		gen:    gen,
		prompt: prompt,
		ctx:    ctx,
		cancel: cancel,
		opener: opener,
		dec:    NewDecoder(),
		buf:    make([]byte, readSize),
	}
}

// Gen returns the generation number of the session this pump feeds.
func (p *Pump) Gen() uint64 {
	return p.gen
}

// Stop signals the session's cancellation token. A blocked Open or Read
// returns and the next event is a Done event carrying ErrCancelled.
// Calling Stop more than once is harmless.
func (p *Pump) Stop() {
	p.cancel()
}

// Next blocks until the stream yields decoded text or ends. Empty reads and
// reads that only complete part of a multi-byte character do not produce an
// event. After the Done event, Next keeps returning it.
func (p *Pump) Next() Event {
	if p.final != nil {
		return *p.final
	}
	if p.body == nil {
		body, err := p.opener.Open(p.ctx, p.prompt)
		if err != nil {
			return p.finish("", err)
		}
		p.body = body
	}
	for {
		n, err := p.body.Read(p.buf)
		var text string
		if n > 0 {
			text = p.dec.Decode(p.buf[:n])
		}
		if errors.Is(err, io.EOF) {
			return p.finish(text+p.dec.Flush(), nil)
		}
		if err != nil {
			return p.finish(text, fmt.Errorf("reading generation stream: %w", err))
		}
		if text != "" {
			return Event{Gen: p.gen, Text: text}
		}
	}
}

func (p *Pump) finish(text string, err error) Event {
	if err != nil && p.ctx.Err() != nil {
		err = ErrCancelled
	}
	if p.body != nil {
		p.body.Close()
	}
	p.cancel()
	ev := Event{Gen: p.gen, Text: text, Done: true, Err: err}
	p.final = &ev
	return ev
}

// Pipe runs the pump to completion, forwarding every event to out. It gives
// up when ctx is done, stopping the pump so its resources are released.
func (p *Pump) Pipe(ctx context.Context, out chan<- Event) {
	for {
		ev := p.Next()
		select {
		case out <- ev:
		case <-ctx.Done():
			p.Stop()
			if p.final == nil {
				p.finish("", ErrCancelled)
			}
			return
		}
		if ev.Done {
			return
		}
	}
}
