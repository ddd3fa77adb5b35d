package sync

import "context"

// Result reports the outcome of a full sync pass.
type Result struct {
	// Synced counts the feature directories synced successfully.
	Synced int

	// Errors holds one entry per failed feature, formatted as
	// "NNN-name: message". A non-empty Errors with a nil error from
	// FullSync means the pass completed but skipped those features.
	Errors []string
}

// Syncer keeps the SQLite mirror in sync with a spec-kit document tree.
//
// The syncer is responsible for parsing feature documents, mapping them
// onto records, and updating the database accordingly. It handles both
// incremental sync (single document changes) and full sync (the whole
// specs/ tree).
//
// The syncer is designed to be resilient - individual feature failures
// do not stop a full sync. Errors are collected in the Result and the
// sync continues with other features.
type Syncer interface {
	// FullSync walks every specs/NNN-name directory under the project
	// root and syncs each feature's documents in order: spec, tasks,
	// data model, requirements, plan, research.
	//
	// Features whose directory has disappeared since the last sync are
	// deleted from the database along with their child records.
	//
	// Individual feature failures are collected in Result.Errors and
	// do not abort the pass. The returned error is non-nil only for
	// critical failures (unreadable specs directory, database errors
	// outside a single feature's scope).
	//
	// Example:
	//   result, err := syncer.FullSync(ctx)
	FullSync(ctx context.Context) (*Result, error)

	// SyncFile syncs a single document that was created or modified.
	//
	// The path must point into a specs/NNN-name directory and carry a
	// registered document base name; anything else reports
	// handled=false with no error. A document for a feature the
	// database has not seen yet triggers a full sync so the feature
	// row and its siblings appear together.
	//
	// A path whose file no longer exists is treated as a removal.
	//
	// Example:
	//   handled, err := syncer.SyncFile(ctx, "specs/001-user-auth/tasks.md")
	SyncFile(ctx context.Context, path string) (handled bool, err error)

	// RemoveFile clears the records of a document deleted from disk.
	//
	// Replace-kind documents drop their records: tasks.md clears the
	// task set, spec.md clears requirements and resets feature
	// metadata to directory defaults, plan.md deletes the plan row.
	// Merge-kind documents (data-model.md, research.md) keep their
	// records; merge kinds never shrink on removal.
	//
	// Paths that resolve to no known document or feature report
	// handled=false. Removing records that are already gone is a
	// no-op (idempotent).
	//
	// Example:
	//   handled, err := syncer.RemoveFile(ctx, "specs/001-user-auth/tasks.md")
	RemoveFile(ctx context.Context, path string) (handled bool, err error)
}
