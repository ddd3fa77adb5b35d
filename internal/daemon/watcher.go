package daemon

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/vhm205/speckit-dash-sub001/internal/schema"
)

// DefaultDebounce is the quiet interval a path must hold before its
// coalesced change event is emitted. Editors and git checkouts produce
// bursts of raw events per file; one event per burst is enough.
const DefaultDebounce = 400 * time.Millisecond

// EventKind represents the type of document change.
type EventKind int

const (
	// KindAdd indicates a new document was created.
	KindAdd EventKind = iota
	// KindChange indicates an existing document was modified.
	KindChange
	// KindUnlink indicates a document (or a whole feature directory)
	// was removed.
	KindUnlink
)

// String returns a human-readable representation of the kind.
func (k EventKind) String() string {
	switch k {
	case KindAdd:
		return "add"
	case KindChange:
		return "change"
	case KindUnlink:
		return "unlink"
	default:
		return "unknown"
	}
}

// ChangeEvent represents one coalesced document change. A burst of raw
// filesystem events on the same path collapses into a single ChangeEvent
// carrying the net kind of the burst.
type ChangeEvent struct {
	// Kind is the change that occurred (add, change, unlink).
	Kind EventKind
	// Path is the path to the document that changed.
	Path string
	// FeatureNum is the feature number extracted from the owning
	// specs/NNN-name path segment, or nil when the path sits outside
	// any feature directory.
	FeatureNum *int
}

// pendingEvent tracks a path whose debounce timer has not fired yet.
type pendingEvent struct {
	timer *time.Timer
	event ChangeEvent
}

// Watcher watches spec-kit document trees for changes. It uses fsnotify
// for cross-platform file system event monitoring and debounces raw
// events per path before emitting them.
type Watcher struct {
	watcher *fsnotify.Watcher
	events  chan ChangeEvent
	errors  chan error
	done    chan struct{}
	wg      sync.WaitGroup

	debounce time.Duration

	mu      sync.Mutex
	running bool
	pending map[string]*pendingEvent
}

// NewWatcher creates a new Watcher instance. A debounce of zero or less
// selects DefaultDebounce. The watcher must be started with Watch()
// before it will emit events.
func NewWatcher(debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		watcher:  watcher,
		events:   make(chan ChangeEvent, 100),
		errors:   make(chan error, 10),
		done:     make(chan struct{}),
		debounce: debounce,
		pending:  make(map[string]*pendingEvent),
	}, nil
}

// Watch begins watching the given root directories and everything below
// them. Calling Watch on a running watcher replaces the previous session:
// old watches are dropped and pending debounce timers are cancelled.
// Returns an error if any root cannot be watched.
func (w *Watcher) Watch(roots ...string) error {
	if len(roots) == 0 {
		return fmt.Errorf("no roots to watch")
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	for _, path := range w.watcher.WatchList() {
		w.watcher.Remove(path)
	}
	w.cancelPendingLocked()

	var added []string
	for _, root := range roots {
		if err := w.addRecursive(root, &added); err != nil {
			// Clean up the partial session so a failed Watch leaves
			// nothing behind.
			for _, path := range added {
				w.watcher.Remove(path)
			}
			return fmt.Errorf("failed to watch %s: %w", root, err)
		}
	}

	if !w.running {
		w.running = true
		w.wg.Add(1)
		go w.processEvents()
	}

	return nil
}

// addRecursive adds dir and all subdirectories to the watch list.
func (w *Watcher) addRecursive(dir string, added *[]string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch directory %s: %w", path, err)
		}
		*added = append(*added, path)
		return nil
	})
}

// Stop stops watching for file system events and cleans up resources.
// It cancels all pending debounce timers and blocks until the event
// processing goroutine has exited. A stopped watcher cannot be reused;
// create a new one with NewWatcher.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	w.cancelPendingLocked()
	w.mu.Unlock()

	// Signal shutdown
	close(w.done)

	// Close the underlying watcher (this will unblock the event loop)
	if err := w.watcher.Close(); err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}

	// Wait for event processing and in-flight timers to finish
	w.wg.Wait()

	// Close channels
	close(w.events)
	close(w.errors)

	return nil
}

// cancelPendingLocked stops every pending debounce timer. Callers must
// hold w.mu. A timer whose Stop reports false has already fired and will
// release its own wait-group slot.
func (w *Watcher) cancelPendingLocked() {
	for path, entry := range w.pending {
		if entry.timer.Stop() {
			w.wg.Done()
		}
		delete(w.pending, path)
	}
}

// IsRunning returns whether the watcher is currently active.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// Events returns the channel that emits coalesced ChangeEvent
// notifications. This channel is closed when the watcher is stopped.
func (w *Watcher) Events() <-chan ChangeEvent {
	return w.events
}

// Errors returns the channel that emits error notifications.
// This channel is closed when the watcher is stopped.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// processEvents is the main event loop that processes fsnotify events
// and schedules debounced ChangeEvent notifications.
func (w *Watcher) processEvents() {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleRawEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}

			select {
			case w.errors <- err:
			case <-w.done:
				return
			}
		}
	}
}

// handleRawEvent classifies one raw fsnotify event. Directory creations
// extend the watch; everything else goes through the debounce registry.
func (w *Watcher) handleRawEvent(event fsnotify.Event) {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			w.watchNewDir(event.Name)
			return
		}
	}

	changeEvent, ok := w.convertEvent(event)
	if !ok {
		return
	}

	w.mu.Lock()
	if w.running {
		w.armLocked(changeEvent)
	}
	w.mu.Unlock()
}

// watchNewDir watches a directory that appeared under a watched root and
// emits add events for documents already inside it. Files copied in
// together with the directory land before the watch exists, so they get
// no raw events of their own.
func (w *Watcher) watchNewDir(dir string) {
	filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if err := w.watcher.Add(path); err != nil {
				select {
				case w.errors <- fmt.Errorf("failed to watch directory %s: %w", path, err):
				case <-w.done:
				}
			}
			return nil
		}
		if strings.HasSuffix(path, ".md") {
			w.mu.Lock()
			if w.running {
				w.armLocked(ChangeEvent{Kind: KindAdd, Path: path, FeatureNum: featureNumFor(path)})
			}
			w.mu.Unlock()
		}
		return nil
	})
}

// convertEvent converts an fsnotify event to a ChangeEvent.
// Returns (ChangeEvent, true) if the event should be debounced,
// or (ChangeEvent{}, false) if the event should be ignored.
func (w *Watcher) convertEvent(event fsnotify.Event) (ChangeEvent, bool) {
	var kind EventKind
	switch {
	case event.Has(fsnotify.Create):
		kind = KindAdd
	case event.Has(fsnotify.Write):
		kind = KindChange
	case event.Has(fsnotify.Remove):
		kind = KindUnlink
	case event.Has(fsnotify.Rename):
		// Treat rename as unlink (the new name will trigger an add)
		kind = KindUnlink
	default:
		// Ignore chmod and other operations
		return ChangeEvent{}, false
	}

	dir, number, inFeature := schema.FeatureDirFromPath(event.Name)

	changeEvent := ChangeEvent{Kind: kind, Path: event.Name}
	if inFeature {
		n := number
		changeEvent.FeatureNum = &n
	}

	// Only process .md documents
	if strings.HasSuffix(event.Name, ".md") {
		return changeEvent, true
	}

	// A feature directory removed wholesale takes every document inside
	// with it, usually without per-file events. Surface the removal so
	// the daemon can resync the tree.
	if kind == KindUnlink && inFeature && filepath.Base(event.Name) == dir {
		return changeEvent, true
	}

	return ChangeEvent{}, false
}

// coalesce merges the next raw kind into a pending one. A removal
// always wins. An add followed by writes is still an add, and a removal
// followed by a recreate nets out to a change (the atomic-save pattern).
func coalesce(pending, next EventKind) EventKind {
	if next == KindUnlink {
		return KindUnlink
	}
	if pending == KindAdd {
		return KindAdd
	}
	return KindChange
}

// armLocked registers a change for debouncing. If an event for the same
// path is already pending, its timer is stopped and rearmed and the two
// kinds are coalesced. Callers must hold w.mu.
func (w *Watcher) armLocked(event ChangeEvent) {
	path := event.Path

	if entry, exists := w.pending[path]; exists {
		if entry.timer.Stop() {
			w.wg.Done()
		}
		event.Kind = coalesce(entry.event.Kind, event.Kind)
		entry.event = event
		w.wg.Add(1)
		entry.timer = time.AfterFunc(w.debounce, func() {
			w.fire(path)
		})
		return
	}

	w.wg.Add(1)
	w.pending[path] = &pendingEvent{
		event: event,
		timer: time.AfterFunc(w.debounce, func() {
			w.fire(path)
		}),
	}
}

// fire emits the coalesced event for a path once its quiet interval has
// passed.
func (w *Watcher) fire(path string) {
	defer w.wg.Done()

	w.mu.Lock()
	entry, exists := w.pending[path]
	if !exists {
		w.mu.Unlock()
		return
	}
	delete(w.pending, path)
	event := entry.event
	w.mu.Unlock()

	select {
	case w.events <- event:
	case <-w.done:
	}
}

// featureNumFor resolves the owning feature number for a path, or nil
// when the path sits outside any specs/NNN-name directory.
func featureNumFor(path string) *int {
	if _, number, ok := schema.FeatureDirFromPath(path); ok {
		return &number
	}
	return nil
}
