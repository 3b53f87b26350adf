// Package watch regenerates notes whenever a topic file is saved.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"pkt.systems/pslog"

	"github.com/fakeyudi/notegen/internal/stream"
)

// settle is how long the file must stay quiet before it is re-read, so an
// editor's multi-step save produces one topic.
const settle = 100 * time.Millisecond

// Topics watches path and sends its trimmed contents on out: once at start
// and again after every save that changes them. Blank contents are skipped.
// It returns nil when ctx is done.
func Topics(ctx context.Context, path string, out chan<- string, log pslog.Logger) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: editors that save by rename replace the file's
	// inode and a watch on the file itself would be lost.
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	var last string
	emit := func() bool {
		data, err := os.ReadFile(abs)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				log.Error("read topic file", "path", abs, "err", err)
			}
			return true
		}
		topic := strings.TrimSpace(string(data))
		if topic == "" || topic == last {
			return true
		}
		last = topic
		select {
		case out <- topic:
			return true
		case <-ctx.Done():
			return false
		}
	}
	if !emit() {
		return nil
	}

	timer := time.NewTimer(settle)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Name != abs {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				log.Debug("topic file changed", "path", abs, "op", event.Op.String())
				timer.Reset(settle)
			}

		case <-timer.C:
			if !emit() {
				return nil
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			// Watcher errors are non-fatal; continue watching.
			log.Error("watcher error", "err", err)
		}
	}
}

// Drive owns ctrl for the lifetime of ctx: every topic received starts a new
// generation, replacing the one in flight, and pump events are applied in
// arrival order on this goroutine.
func Drive(ctx context.Context, ctrl *stream.Controller, topics <-chan string) {
	events := make(chan stream.Event)
	for {
		select {
		case <-ctx.Done():
			ctrl.Cancel()
			return
		case topic, ok := <-topics:
			if !ok {
				topics = nil
				if !ctrl.Active() {
					return
				}
				continue
			}
			if pump, ok := ctrl.Start(ctx, topic); ok {
				go pump.Pipe(ctx, events)
			}
		case ev := <-events:
			if !ctrl.Apply(ev) && topics == nil && !ctrl.Active() {
				return
			}
		}
	}
}
