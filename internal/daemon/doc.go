// Package daemon provides file system watching and synchronization for
// spec-kit document trees.
//
// The daemon monitors specs/NNN-name/*.md documents for changes and keeps
// the SQLite mirror current through the sync package.
//
// # Architecture
//
// The package consists of two components:
//
//   - Watcher: Cross-platform file system event monitoring using fsnotify,
//     with per-path debouncing and feature-number resolution
//   - Daemon: Orchestrates the watcher, dispatches coalesced changes to
//     the incremental syncer, and rebroadcasts activity to a Notifier
//
// # Document Watching
//
// The Watcher provides a high-level abstraction over fsnotify:
//
//	w, err := daemon.NewWatcher(400 * time.Millisecond)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer w.Stop()
//
//	if err := w.Watch("specs"); err != nil {
//	    log.Fatal(err)
//	}
//
//	for event := range w.Events() {
//	    switch event.Kind {
//	    case daemon.KindAdd:
//	        fmt.Printf("Added: %s\n", event.Path)
//	    case daemon.KindChange:
//	        fmt.Printf("Changed: %s\n", event.Path)
//	    case daemon.KindUnlink:
//	        fmt.Printf("Removed: %s\n", event.Path)
//	    }
//	}
//
// The watcher automatically:
//   - Filters to only .md documents
//   - Watches directories created after Watch(), including their contents
//   - Resolves the owning feature number from the specs/NNN-name segment
//   - Surfaces whole feature directory removals as unlink events
//   - Provides clean shutdown with channel closure
//
// # Debouncing
//
// Editors and git checkouts produce bursts of raw events per file. The
// watcher holds a timer per path; every raw event rearms it, and the
// coalesced event is emitted only after the path stays quiet for the
// debounce interval. Kinds coalesce by net effect: an add followed by
// writes stays an add, a removal followed by a recreate becomes a change,
// and a removal as the last word wins.
//
// The watcher maps fsnotify operations as follows:
//   - fsnotify.Create → KindAdd
//   - fsnotify.Write → KindChange
//   - fsnotify.Remove → KindUnlink
//   - fsnotify.Rename → KindUnlink (the new name triggers a separate add)
//
// # Daemon Operation
//
// The Daemon ties the watcher to the syncer:
//
//	syncer := sync.New(database, root, nil)
//	d, err := daemon.New(syncer, root)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//
//	if err := d.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// Start performs a full tree sync, then processes coalesced change
// events incrementally. Events that resolve to a feature directory but
// not to a known document (a directory rename or removal) trigger a full
// resync so pruning catches up. Start blocks until ctx is cancelled.
//
// # Thread Safety
//
// Watcher is thread-safe. Multiple goroutines can safely call:
//   - Events() and Errors() (read-only channel access)
//   - IsRunning() (protected by mutex)
//
// Watch() and Stop() should only be called from a single controlling
// goroutine. The debounce timer registry is guarded by the same mutex;
// a pending timer is always stopped before it is rearmed.
//
// # Error Handling
//
// File system errors are delivered on the Errors() channel and logged by
// the daemon. The watcher continues operating after errors. Per-document
// sync failures are logged as warnings and do not stop the daemon;
// per-feature failures during a full sync are collected in the sync
// result.
//
// # Graceful Shutdown
//
// Cancelling the context passed to Start triggers shutdown. Stop will:
//  1. Cancel pending debounce timers
//  2. Close the underlying fsnotify watcher
//  3. Wait for the event loop and in-flight timers to finish
//  4. Close the Events() and Errors() channels
package daemon
