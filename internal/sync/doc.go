// Package sync provides the synchronization bridge between spec-kit
// document trees and the SQLite mirror.
//
// Overview
//
// The sync package implements the core synchronization logic for
// speckit-dash. It reads markdown documents from feature directories
// (written by authors and tooling) and updates the SQLite database so
// the CLI and dashboard can query records instead of re-parsing files.
//
// Architecture
//
// The syncer turns document trees into database records:
//
//	File System (project root)
//	     └── specs/NNN-name/
//	          ├── spec.md         → feature metadata + requirements
//	          ├── tasks.md        → task records (replace)
//	          ├── data-model.md   → entity records (merge)
//	          ├── plan.md         → plan record (singleton)
//	          └── research.md     → research decisions (merge)
//	                                     ↓
//	                                  Syncer
//	                                     ↓
//	                                 SQLite DB
//	                                 (queried by CLI and dashboard)
//
// Usage
//
// Basic usage:
//
//	// Open database
//	database, err := db.Open(".skd/speckit.db")
//	if err != nil {
//	    return err
//	}
//	defer database.Close()
//
//	// Initialize schema (first time only)
//	if err := database.InitSchema(); err != nil {
//	    return err
//	}
//
//	// Create syncer for a project root
//	syncer := sync.New(database, "/path/to/project", nil)
//
//	// Full sync of every feature directory
//	result, err := syncer.FullSync(ctx)
//	if err != nil {
//	    return err
//	}
//
// Incremental sync:
//
//	// Sync a single changed document
//	handled, err := syncer.SyncFile(ctx, "specs/001-user-auth/tasks.md")
//
//	// Clear records for a deleted document
//	handled, err := syncer.RemoveFile(ctx, "specs/001-user-auth/tasks.md")
//
// Integration with Daemon
//
// The sync package is driven by the watch daemon:
//
//	1. Daemon performs a FullSync on startup
//	2. The watcher reports document changes; the daemon calls:
//	   - File created/modified → SyncFile()
//	   - File deleted → RemoveFile()
//	3. Events the syncer does not handle (directory removals, renames)
//	   fall back to FullSync, which also prunes features whose
//	   directory vanished
//	4. Dashboard/CLI query the database for current state
//
// Error Handling
//
// The syncer is resilient to individual feature failures:
//
//   - A feature directory that fails to sync is recorded in
//     Result.Errors and skipped; the rest of the tree still syncs
//   - Parsers never fail on malformed text; they extract what they can
//   - Database errors are returned to the caller
//
// Concurrency
//
// The syncer is safe for concurrent use:
//
//   - Multiple syncers can share the same database (WAL mode)
//   - Upsert operations are idempotent
//   - Last write wins for conflicts
package sync
