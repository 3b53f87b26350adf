package stream

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"pgregory.net/rapid"

	"github.com/fakeyudi/notegen/internal/client"
	"github.com/fakeyudi/notegen/internal/logging"
	"github.com/fakeyudi/notegen/internal/session"
)

// scriptedSource is an Opener whose bodies replay queued chunks. Reads block
// until a chunk is available or the request context is cancelled.
type scriptedSource struct {
	opens   atomic.Int32
	openErr error
	bodies  []*scriptedBody
}

type scriptedBody struct {
	ctx    context.Context
	chunks chan []byte
	err    error // returned once chunks is drained and closed; io.EOF when nil
	closed atomic.Bool
}

func newScriptedBody(chunks ...string) *scriptedBody {
	b := &scriptedBody{chunks: make(chan []byte, len(chunks)+8)}
	for _, c := range chunks {
		b.chunks <- []byte(c)
	}
	return b
}

func (s *scriptedSource) Open(ctx context.Context, prompt string) (io.ReadCloser, error) {
	n := int(s.opens.Add(1)) - 1
	if s.openErr != nil {
		return nil, s.openErr
	}
	b := s.bodies[n]
	b.ctx = ctx
	return b, nil
}

func (b *scriptedBody) Read(p []byte) (int, error) {
	if err := b.ctx.Err(); err != nil {
		return 0, err
	}
	select {
	case <-b.ctx.Done():
		return 0, b.ctx.Err()
	case c, ok := <-b.chunks:
		if !ok {
			if b.err != nil {
				return 0, b.err
			}
			return 0, io.EOF
		}
		return copy(p, c), nil
	}
}

func (b *scriptedBody) Close() error {
	b.closed.Store(true)
	return nil
}

func drain(t *testing.T, c *Controller, p *Pump) {
	t.Helper()
	for i := 0; i < 1000; i++ {
		if !c.Apply(p.Next()) {
			return
		}
	}
	t.Fatal("session never finished")
}

func TestScenarioCompleted(t *testing.T) {
	body := newScriptedBody("Photo", "synthesis is ", "the process...")
	close(body.chunks)
	src := &scriptedSource{bodies: []*scriptedBody{body}}
	c := NewController(src, logging.Discard())

	p, ok := c.Start(context.Background(), "Photosynthesis")
	if !ok {
		t.Fatal("Start returned false")
	}
	drain(t, c, p)

	snap := c.Snapshot()
	if snap.Text != "Photosynthesis is the process..." {
		t.Errorf("buffer: got %q", snap.Text)
	}
	if snap.Status != session.Completed {
		t.Errorf("status: want completed, got %v", snap.Status)
	}
	if !body.closed.Load() {
		t.Error("body was not closed")
	}
	if c.Active() {
		t.Error("controller still active after completion")
	}
}

func TestScenarioCancelAfterFirstChunk(t *testing.T) {
	body := newScriptedBody("Photo", "synthesis is ", "the process...")
	close(body.chunks)
	src := &scriptedSource{bodies: []*scriptedBody{body}}
	c := NewController(src, logging.Discard())

	p, _ := c.Start(context.Background(), "Photosynthesis")
	if !c.Apply(p.Next()) {
		t.Fatal("first chunk should keep the session streaming")
	}
	if !c.Cancel() {
		t.Fatal("Cancel returned false for a streaming session")
	}
	if c.Status() != session.Cancelled {
		t.Fatalf("status right after Cancel: want cancelled, got %v", c.Status())
	}

	// Whatever the pump still produces must be dropped.
	for i := 0; i < 10; i++ {
		ev := p.Next()
		if c.Apply(ev) {
			t.Fatal("Apply accepted an event after Cancel")
		}
		if ev.Done {
			break
		}
	}

	snap := c.Snapshot()
	if snap.Text != "Photo" {
		t.Errorf("buffer: want %q, got %q", "Photo", snap.Text)
	}
	if snap.Status != session.Cancelled {
		t.Errorf("status: want cancelled, got %v", snap.Status)
	}
	if snap.Err != nil {
		t.Errorf("cancelled session should carry no error, got %v", snap.Err)
	}
}

func TestScenarioTransportErrorBeforeFirstChunk(t *testing.T) {
	src := &scriptedSource{openErr: errors.New("connection refused")}
	c := NewController(src, logging.Discard())

	p, _ := c.Start(context.Background(), "Photosynthesis")
	drain(t, c, p)

	snap := c.Snapshot()
	if snap.Text != "" {
		t.Errorf("buffer: want empty, got %q", snap.Text)
	}
	if snap.Status != session.Failed {
		t.Errorf("status: want failed, got %v", snap.Status)
	}
	if snap.Err == nil || !strings.Contains(snap.Err.Error(), "connection refused") {
		t.Errorf("Err: got %v", snap.Err)
	}
	if c.Active() {
		t.Error("controller should be ready for a new Start after failure")
	}
}

func TestReadErrorKeepsPartialBuffer(t *testing.T) {
	body := newScriptedBody("Photo", "synth")
	body.err = errors.New("connection reset by peer")
	close(body.chunks)
	c := NewController(&scriptedSource{bodies: []*scriptedBody{body}}, logging.Discard())

	p, _ := c.Start(context.Background(), "Photosynthesis")
	drain(t, c, p)

	snap := c.Snapshot()
	if snap.Status != session.Failed {
		t.Fatalf("status: want failed, got %v", snap.Status)
	}
	if snap.Text != "Photosynth" {
		t.Errorf("buffer: want %q, got %q", "Photosynth", snap.Text)
	}
	if errors.Is(snap.Err, ErrCancelled) {
		t.Error("a transport failure must not look like a cancellation")
	}
}

func TestScenarioBlankPromptIsNoop(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		prompt := rapid.StringOf(rapid.SampledFrom([]rune{' ', '\t', '\n', '\r'})).Draw(t, "prompt")
		src := &scriptedSource{}
		c := NewController(src, logging.Discard())

		p, ok := c.Start(context.Background(), prompt)
		if ok || p != nil {
			t.Fatalf("Start(%q) should be rejected", prompt)
		}
		if src.opens.Load() != 0 {
			t.Fatal("blank prompt issued a request")
		}
		if c.Status() != session.Idle {
			t.Fatalf("status: want idle, got %v", c.Status())
		}
	})
}

func TestScenarioRestartDiscardsSupersededChunks(t *testing.T) {
	first := newScriptedBody("Old ", "late chunk")
	second := newScriptedBody("New ", "notes")
	close(second.chunks)
	src := &scriptedSource{bodies: []*scriptedBody{first, second}}
	c := NewController(src, logging.Discard())

	p1, _ := c.Start(context.Background(), "first topic")
	if !c.Apply(p1.Next()) {
		t.Fatal("first chunk rejected")
	}

	p2, ok := c.Start(context.Background(), "second topic")
	if !ok {
		t.Fatal("restart rejected")
	}
	if c.Snapshot().Text != "" {
		t.Fatalf("new session should start empty, got %q", c.Snapshot().Text)
	}

	// The superseded pump may still deliver its queued chunk.
	for i := 0; i < 10; i++ {
		ev := p1.Next()
		if c.Apply(ev) {
			t.Fatal("event from superseded session was accepted")
		}
		if ev.Done {
			break
		}
	}
	drain(t, c, p2)

	snap := c.Snapshot()
	if snap.Text != "New notes" {
		t.Errorf("buffer: want %q, got %q", "New notes", snap.Text)
	}
	if snap.Status != session.Completed {
		t.Errorf("status: want completed, got %v", snap.Status)
	}
	if snap.Gen != 2 {
		t.Errorf("Gen: want 2, got %d", snap.Gen)
	}
}

func TestCancelWhenIdle(t *testing.T) {
	c := NewController(&scriptedSource{}, logging.Discard())
	if c.Cancel() {
		t.Error("Cancel on an idle controller should report false")
	}
	if c.Status() != session.Idle {
		t.Errorf("status: want idle, got %v", c.Status())
	}
}

// Feature: notegen, Property 4: Listener deltas rebuild the buffer
func TestListenerDeltasMatchBuffer(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		text := rapid.StringN(1, 200, -1).Draw(t, "text")
		data := []byte(text)
		var chunks []string
		for len(data) > 0 {
			n := rapid.IntRange(1, len(data)).Draw(t, "n")
			chunks = append(chunks, string(data[:n]))
			data = data[n:]
		}
		body := newScriptedBody(chunks...)
		close(body.chunks)
		c := NewController(&scriptedSource{bodies: []*scriptedBody{body}}, logging.Discard())

		var deltas strings.Builder
		var last session.Snapshot
		c.OnUpdate(func(u Update) {
			deltas.WriteString(u.Delta)
			if u.Snapshot.Text != deltas.String() {
				t.Fatalf("snapshot %q out of step with deltas %q", u.Snapshot.Text, deltas.String())
			}
			last = u.Snapshot
		})

		p, _ := c.Start(context.Background(), "topic")
		for c.Apply(p.Next()) {
		}
		if deltas.String() != text {
			t.Fatalf("deltas %q, want %q", deltas.String(), text)
		}
		if last.Status != session.Completed {
			t.Fatalf("last update status: want completed, got %v", last.Status)
		}
	})
}

func TestRunCancelledByContext(t *testing.T) {
	body := newScriptedBody("Photo")
	src := &scriptedSource{bodies: []*scriptedBody{body}}
	c := NewController(src, logging.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	c.OnUpdate(func(u Update) {
		if u.Delta != "" {
			cancel()
		}
	})
	snap, err := c.Run(ctx, "Photosynthesis")
	if !errors.Is(err, ErrCancelled) {
		t.Fatalf("Run: want ErrCancelled, got %v", err)
	}
	if snap.Status != session.Cancelled || snap.Text != "Photo" {
		t.Errorf("snapshot: %+v", snap)
	}
	if !body.closed.Load() {
		t.Error("body was not closed after cancellation")
	}
}

func TestRunBlankPrompt(t *testing.T) {
	c := NewController(&scriptedSource{}, logging.Discard())
	if _, err := c.Run(context.Background(), "   "); !errors.Is(err, ErrEmptyPrompt) {
		t.Fatalf("Run: want ErrEmptyPrompt, got %v", err)
	}
}

func TestPipeForwardsUntilDone(t *testing.T) {
	body := newScriptedBody("a", "b", "c")
	close(body.chunks)
	c := NewController(&scriptedSource{bodies: []*scriptedBody{body}}, logging.Discard())
	p, _ := c.Start(context.Background(), "topic")

	events := make(chan Event)
	go p.Pipe(context.Background(), events)
	for ev := range events {
		if !c.Apply(ev) {
			break
		}
	}
	if got := c.Snapshot().Text; got != "abc" {
		t.Errorf("buffer: want %q, got %q", "abc", got)
	}
}

func TestEndToEndOverHTTP(t *testing.T) {
	// "☕" split across two flushes.
	chunks := [][]byte{[]byte("Tea time \xe2"), []byte("\x98\x95 "), []byte("is here.")}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f := w.(http.Flusher)
		for _, c := range chunks {
			w.Write(c)
			f.Flush()
			time.Sleep(5 * time.Millisecond)
		}
	}))
	defer srv.Close()

	cl := client.New(srv.URL, 5*time.Second, logging.Discard())
	c := NewController(cl, logging.Discard())
	snap, err := c.Run(context.Background(), "tea")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if snap.Text != "Tea time ☕ is here." {
		t.Errorf("buffer: got %q", snap.Text)
	}
	if snap.Status != session.Completed {
		t.Errorf("status: want completed, got %v", snap.Status)
	}
}

func TestEndToEndStatusErrorFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad prompt", http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	c := NewController(client.New(srv.URL, 5*time.Second, logging.Discard()), logging.Discard())
	snap, err := c.Run(context.Background(), "tea")
	var se *client.StatusError
	if !errors.As(err, &se) || se.Code != http.StatusUnprocessableEntity {
		t.Fatalf("Run: want StatusError 422, got %v", err)
	}
	if snap.Status != session.Failed {
		t.Errorf("status: want failed, got %v", snap.Status)
	}
}
