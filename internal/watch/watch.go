// Package watch reports supported documents that appear or change in a
// directory.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dgallion1/quizgest/internal/parser"
)

// ErrClosed is returned by Watch after Close.
var ErrClosed = errors.New("watcher closed")

// Op says what happened to a file.
type Op string

const (
	OpCreated Op = "created"
	OpUpdated Op = "updated"
)

// Event is a supported document that was created or written.
type Event struct {
	Path string
	Op   Op
}

// DefaultDebounce collapses the burst of writes an editor or copy makes.
const DefaultDebounce = 500 * time.Millisecond

// Watcher watches one directory, non-recursively.
type Watcher struct {
	dir string
	log *slog.Logger

	// Debounce delays an event until its file has been quiet this long.
	// Zero emits every event immediately.
	Debounce time.Duration

	mu      sync.Mutex
	closed  bool
	watcher *fsnotify.Watcher
}

func New(dir string, log *slog.Logger) *Watcher {
	return &Watcher{dir: dir, log: log, Debounce: DefaultDebounce}
}

// Watch starts watching and returns a channel of events. The channel is
// closed when ctx is done or the watcher is closed.
func (w *Watcher) Watch(ctx context.Context) (<-chan Event, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil, ErrClosed
	}

	info, err := os.Stat(w.dir)
	if err != nil {
		return nil, fmt.Errorf("watch dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch dir: %s is not a directory", w.dir)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(w.dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", w.dir, err)
	}
	w.watcher = fw

	out := make(chan Event, 16)
	go w.loop(ctx, fw, out)
	return out, nil
}

func (w *Watcher) loop(ctx context.Context, fw *fsnotify.Watcher, out chan<- Event) {
	defer close(out)
	defer fw.Close()

	pending := make(map[string]pendingEvent)
	var tick <-chan time.Time
	if w.Debounce > 0 {
		ticker := time.NewTicker(w.Debounce / 2)
		defer ticker.Stop()
		tick = ticker.C
	}

	emit := func(ev Event) bool {
		select {
		case out <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-fw.Events:
			if !ok {
				return
			}
			change := w.handle(ev)
			if change == nil {
				continue
			}
			if w.Debounce <= 0 {
				if !emit(*change) {
					return
				}
				continue
			}
			// A create followed by writes is still a create.
			if prev, ok := pending[change.Path]; ok && prev.event.Op == OpCreated {
				change.Op = OpCreated
			}
			pending[change.Path] = pendingEvent{event: *change, at: time.Now()}

		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", "dir", w.dir, "error", err)

		case now := <-tick:
			for path, p := range pending {
				if now.Sub(p.at) < w.Debounce {
					continue
				}
				delete(pending, path)
				if !emit(p.event) {
					return
				}
			}
		}
	}
}

type pendingEvent struct {
	event Event
	at    time.Time
}

// handle maps an fsnotify event to an Event, or nil when it should be
// ignored: removals, renames, chmods, directories, hidden and unsupported
// files.
func (w *Watcher) handle(ev fsnotify.Event) *Event {
	if !Eligible(ev.Name) {
		return nil
	}
	var op Op
	switch {
	case ev.Has(fsnotify.Create):
		op = OpCreated
	case ev.Has(fsnotify.Write):
		op = OpUpdated
	default:
		return nil
	}
	info, err := os.Stat(ev.Name)
	if err != nil || info.IsDir() {
		return nil
	}
	return &Event{Path: ev.Name, Op: op}
}

// Eligible reports whether path names a visible file the parsers accept.
func Eligible(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || strings.HasPrefix(base, "~") {
		return false
	}
	return parser.IsSupportedExtension(base)
}

// Existing returns the eligible files already in dir, sorted by name.
func Existing(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !Eligible(e.Name()) {
			continue
		}
		out = append(out, filepath.Join(dir, e.Name()))
	}
	return out, nil
}

// Close stops the watcher. It is safe to call more than once.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	if w.watcher != nil {
		return w.watcher.Close()
	}
	return nil
}
