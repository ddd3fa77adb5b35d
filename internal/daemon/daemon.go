// Package daemon provides the sync daemon that keeps the SQLite mirror
// current as spec-kit documents change on disk.
//
// The daemon:
// 1. Performs a full tree sync on startup
// 2. Watches the specs/ tree for document changes with per-path debouncing
// 3. Dispatches coalesced changes to the incremental syncer
// 4. Falls back to a full sync when a whole feature directory appears or vanishes
// 5. Handles graceful shutdown
package daemon

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	docsync "github.com/vhm205/speckit-dash-sub001/internal/sync"
)

// Notifier receives daemon activity for rebroadcast to UI listeners.
// The dashboard handler implements it; a nil Notifier disables
// rebroadcasting. Implementations must not block.
type Notifier interface {
	// OnDocChange is called once per coalesced document change, before
	// the change is synced. featureNum is nil when the path sits
	// outside any feature directory.
	OnDocChange(kind, path string, featureNum *int)

	// OnSyncComplete is called after each full sync pass with the
	// number of features synced and any per-feature error messages.
	OnSyncComplete(synced int, errors []string, duration time.Duration)
}

// Config holds configuration for the daemon.
type Config struct {
	// DebounceInterval is how long a path must stay quiet before its
	// change is processed. This batches rapid editor saves together.
	DebounceInterval time.Duration

	// Logger for daemon activity
	Logger *log.Logger

	// Notifier receives change events and sync results, when set
	Notifier Notifier
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		DebounceInterval: DefaultDebounce,
		Logger:           log.New(os.Stderr, "[daemon] ", log.LstdFlags),
	}
}

// Daemon orchestrates document watching and mirror synchronization.
type Daemon struct {
	syncer docsync.Syncer
	root   string
	config *Config

	watcher *Watcher

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new Daemon instance.
//
// The daemon requires:
//   - syncer: the document-to-mirror syncer for the project
//   - root: the project root containing the specs/ tree
//
// Use Start() to begin watching and syncing.
func New(syncer docsync.Syncer, root string) (*Daemon, error) {
	return NewWithConfig(syncer, root, DefaultConfig())
}

// NewWithConfig creates a daemon with custom configuration.
func NewWithConfig(syncer docsync.Syncer, root string, config *Config) (*Daemon, error) {
	if syncer == nil {
		return nil, fmt.Errorf("syncer cannot be nil")
	}
	if root == "" {
		return nil, fmt.Errorf("root cannot be empty")
	}
	if config == nil {
		config = DefaultConfig()
	}
	if config.DebounceInterval <= 0 {
		config.DebounceInterval = DefaultDebounce
	}
	if config.Logger == nil {
		config.Logger = log.New(os.Stderr, "[daemon] ", log.LstdFlags)
	}

	watcher, err := NewWatcher(config.DebounceInterval)
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Daemon{
		syncer:  syncer,
		root:    root,
		config:  config,
		watcher: watcher,
		ctx:     ctx,
		cancel:  cancel,
	}, nil
}

// Start begins the daemon's operation.
//
// The daemon will:
// 1. Perform a full sync from documents to the database
// 2. Start watching the specs/ tree for changes
// 3. Process coalesced changes as they settle
//
// This blocks until ctx is cancelled or an error occurs.
func (d *Daemon) Start(ctx context.Context) error {
	d.config.Logger.Println("Starting daemon")

	// Perform initial full sync
	if err := d.fullSync(d.ctx); err != nil {
		return fmt.Errorf("initial sync failed: %w", err)
	}

	// Watch the document tree
	specsDir := filepath.Join(d.root, "specs")
	if err := d.watcher.Watch(specsDir); err != nil {
		return fmt.Errorf("failed to watch specs directory: %w", err)
	}

	d.config.Logger.Printf("Watching: %s", specsDir)

	// Start the event loop
	d.wg.Add(1)
	go d.processEvents()

	// Wait for shutdown
	select {
	case <-ctx.Done():
		d.config.Logger.Println("Shutdown signal received")
		return d.Stop()
	case <-d.ctx.Done():
		return nil
	}
}

// Stop gracefully shuts down the daemon.
func (d *Daemon) Stop() error {
	d.config.Logger.Println("Stopping daemon")

	// Signal shutdown
	d.cancel()

	// Stop the watcher (this closes its event channels)
	if err := d.watcher.Stop(); err != nil {
		d.config.Logger.Printf("Error stopping watcher: %v", err)
	}

	// Wait for the event loop to finish
	d.wg.Wait()

	d.config.Logger.Println("Daemon stopped")
	return nil
}

// processEvents consumes coalesced change events until shutdown.
func (d *Daemon) processEvents() {
	defer d.wg.Done()

	for {
		select {
		case <-d.ctx.Done():
			return

		case event, ok := <-d.watcher.Events():
			if !ok {
				return
			}
			d.handleEvent(event)

		case err, ok := <-d.watcher.Errors():
			if !ok {
				return
			}
			d.config.Logger.Printf("Watcher error: %v", err)
		}
	}
}

// handleEvent dispatches one coalesced change to the syncer.
func (d *Daemon) handleEvent(event ChangeEvent) {
	d.config.Logger.Printf("Change event: %s %s", event.Kind, event.Path)

	if d.config.Notifier != nil {
		d.config.Notifier.OnDocChange(event.Kind.String(), event.Path, event.FeatureNum)
	}

	var handled bool
	var err error
	if event.Kind == KindUnlink {
		handled, err = d.syncer.RemoveFile(d.ctx, event.Path)
	} else {
		handled, err = d.syncer.SyncFile(d.ctx, event.Path)
	}
	if err != nil {
		d.config.Logger.Printf("WARNING: Failed to sync %s: %v", event.Path, err)
		return
	}

	// The path mapped to no known document but belongs to a feature
	// directory. A directory rename or removal looks like this; resync
	// the whole tree so pruning catches up.
	if !handled && event.FeatureNum != nil {
		if err := d.fullSync(d.ctx); err != nil {
			d.config.Logger.Printf("WARNING: Full sync failed: %v", err)
		}
	}
}

// fullSync runs one full tree sync and reports the outcome.
func (d *Daemon) fullSync(ctx context.Context) error {
	start := time.Now()

	result, err := d.syncer.FullSync(ctx)
	if err != nil {
		return err
	}

	for _, msg := range result.Errors {
		d.config.Logger.Printf("WARNING: %s", msg)
	}

	if d.config.Notifier != nil {
		d.config.Notifier.OnSyncComplete(result.Synced, result.Errors, time.Since(start))
	}

	return nil
}
