// Package watcher provides file watching for parser definition live reload.
//
// The watcher monitors directories through fsnotify and delivers one
// debounced event per changed file whose extension matches the filter.
package watcher

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Errors returned by the watcher.
var (
	ErrWatcherClosed   = errors.New("watcher is closed")
	ErrPathNotExist    = errors.New("path does not exist")
	ErrNotDirectory    = errors.New("path is not a directory")
	ErrAlreadyWatching = errors.New("path is already being watched")
)

// Op is a set of file operations.
type Op uint8

const (
	// OpCreate indicates a new file was created.
	OpCreate Op = 1 << iota
	// OpWrite indicates the file was modified.
	OpWrite
	// OpRemove indicates the file was deleted.
	OpRemove
	// OpRename indicates the file was renamed away.
	OpRename
)

// Has reports whether op includes o.
func (op Op) Has(o Op) bool {
	return op&o != 0
}

// Gone reports whether the file no longer exists under its name.
func (op Op) Gone() bool {
	return op.Has(OpRemove) || op.Has(OpRename)
}

// String returns the operation names joined by "|".
func (op Op) String() string {
	var names []string
	for _, n := range []struct {
		op   Op
		name string
	}{{OpCreate, "create"}, {OpWrite, "write"}, {OpRemove, "remove"}, {OpRename, "rename"}} {
		if op.Has(n.op) {
			names = append(names, n.name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}

// Event represents a file change event.
type Event struct {
	// Path is the absolute path to the changed file.
	Path string

	// Op combines every operation seen during the debounce window.
	Op Op

	// Time is when the last operation was seen.
	Time time.Time
}

// Config configures a Watcher.
type Config struct {
	// Extensions limits events to files with these extensions, e.g. ".tld".
	// Empty means every file.
	Extensions []string

	// Delay coalesces operations on the same file. Zero delivers each
	// operation immediately.
	Delay time.Duration

	// BufferSize is the capacity of the event channel.
	BufferSize int
}

// Watcher monitors directories for file changes.
type Watcher struct {
	mu sync.Mutex

	fsw    *fsnotify.Watcher
	config Config

	dirs    map[string]bool
	pending map[string]*pendingEvent

	events chan Event
	errors chan error

	closed   bool
	closeCh  chan struct{}
	closedWg sync.WaitGroup
}

// pendingEvent tracks a debounced event.
type pendingEvent struct {
	event Event
	timer *time.Timer
}

// New creates a watcher and starts its event loop.
func New(config Config) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if config.BufferSize <= 0 {
		config.BufferSize = 64
	}

	w := &Watcher{
		fsw:     fsw,
		config:  config,
		dirs:    make(map[string]bool),
		pending: make(map[string]*pendingEvent),
		events:  make(chan Event, config.BufferSize),
		errors:  make(chan error, config.BufferSize),
		closeCh: make(chan struct{}),
	}

	w.closedWg.Add(1)
	go w.processLoop()
	return w, nil
}

// Watch starts watching a directory.
func (w *Watcher) Watch(dir string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWatcherClosed
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return ErrPathNotExist
		}
		return err
	}
	if !info.IsDir() {
		return ErrNotDirectory
	}
	if w.dirs[abs] {
		return ErrAlreadyWatching
	}

	if err := w.fsw.Add(abs); err != nil {
		return err
	}
	w.dirs[abs] = true
	return nil
}

// IsWatching returns true if the directory is being watched.
func (w *Watcher) IsWatching(dir string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	abs, err := filepath.Abs(dir)
	if err != nil {
		return false
	}
	return w.dirs[abs]
}

// Events returns the event channel. It is closed by Close.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Errors returns the error channel. It is closed by Close.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Close stops the watcher. Pending debounced events are discarded.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.closeCh)
	for path, p := range w.pending {
		p.timer.Stop()
		delete(w.pending, path)
	}
	w.mu.Unlock()

	err := w.fsw.Close()
	w.closedWg.Wait()

	close(w.events)
	close(w.errors)
	return err
}

// processLoop handles incoming fsnotify events.
func (w *Watcher) processLoop() {
	defer w.closedWg.Done()

	for {
		select {
		case <-w.closeCh:
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(ev)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			default:
				// Channel full, drop error
			}
		}
	}
}

// handle converts an fsnotify event and debounces it per path.
func (w *Watcher) handle(ev fsnotify.Event) {
	op := convertOp(ev.Op)
	if op == 0 || !w.wanted(ev.Name) {
		return
	}
	event := Event{Path: ev.Name, Op: op, Time: time.Now()}

	if w.config.Delay <= 0 {
		w.send(event)
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}

	if p, exists := w.pending[event.Path]; exists {
		p.event.Op |= event.Op
		p.event.Time = event.Time
		p.timer.Reset(w.config.Delay)
		return
	}

	p := &pendingEvent{event: event}
	p.timer = time.AfterFunc(w.config.Delay, func() {
		w.fire(event.Path)
	})
	w.pending[event.Path] = p
}

// fire sends a pending event and removes it from the map.
func (w *Watcher) fire(path string) {
	w.mu.Lock()
	p, exists := w.pending[path]
	if !exists || w.closed {
		w.mu.Unlock()
		return
	}
	delete(w.pending, path)
	event := p.event
	w.closedWg.Add(1)
	w.mu.Unlock()

	defer w.closedWg.Done()
	w.send(event)
}

func (w *Watcher) send(event Event) {
	select {
	case w.events <- event:
	case <-w.closeCh:
	}
}

func (w *Watcher) wanted(path string) bool {
	if len(w.config.Extensions) == 0 {
		return true
	}
	ext := filepath.Ext(path)
	for _, e := range w.config.Extensions {
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}

// convertOp converts fsnotify.Op to Op. Chmod is ignored.
func convertOp(fsOp fsnotify.Op) Op {
	var op Op
	if fsOp.Has(fsnotify.Create) {
		op |= OpCreate
	}
	if fsOp.Has(fsnotify.Write) {
		op |= OpWrite
	}
	if fsOp.Has(fsnotify.Remove) {
		op |= OpRemove
	}
	if fsOp.Has(fsnotify.Rename) {
		op |= OpRename
	}
	return op
}
