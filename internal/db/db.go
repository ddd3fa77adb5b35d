// Package db provides the embedded SQLite persistence layer for speckit-dash.
//
// This package is the query cache for spec-kit document trees: parsers turn
// markdown into records, the sync engine writes them here, and the CLI and
// dashboard read from here instead of re-parsing the filesystem.
//
// The database runs in embedded mode using SQLite with WAL for concurrency
// support.
//
// Architecture:
//   - Database file: .skd/speckit.db
//   - WAL mode: Concurrent readers during writes
//   - Schema: projects, features, tasks, entities, requirements, plans,
//     research_decisions tables
//   - Indexes: Optimized for per-feature lookups and progress queries
//
// Workflow:
//  1. Authors edit markdown under specs/NNN-name/ (spec.md, tasks.md, ...)
//  2. The watch daemon picks up filesystem changes
//  3. Changed documents are parsed and synced into these tables
//  4. CLI and dashboard query the tables, not the filesystem
package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// DB wraps the SQLite database connection with speckit-dash specific
// functionality.
type DB struct {
	conn *sql.DB
	path string
}

// Open creates a new database connection at the specified path.
//
// The database is opened in embedded mode with WAL for concurrent reads.
// If the database doesn't exist, it will be created; call InitSchema to
// create the tables.
//
// The caller MUST call Close() when done to ensure proper cleanup.
//
// Example:
//
//	db, err := db.Open(".skd/speckit.db")
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
func Open(path string) (*DB, error) {
	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Pragmas go in the connection string so every pooled connection
	// gets them. Cascade deletes depend on foreign_keys being ON for
	// whichever connection runs the DELETE.
	connStr := fmt.Sprintf(
		"file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)",
		path)
	conn, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection
	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Set connection pool settings
	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(5 * time.Minute)

	return &DB{
		conn: conn,
		path: path,
	}, nil
}

// RawDB returns the underlying sql.DB connection.
// This is useful for integrating with other libraries that expect *sql.DB.
func (db *DB) RawDB() *sql.DB {
	return db.conn
}

// Path returns the filesystem path of the database file.
func (db *DB) Path() string {
	return db.path
}

// Close closes the database connection.
// Performs a WAL checkpoint to ensure all changes are persisted.
func (db *DB) Close() error {
	if db.conn == nil {
		return nil
	}

	// Checkpoint WAL before closing
	if _, err := db.conn.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to checkpoint WAL: %v\n", err)
	}

	if err := db.conn.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	db.conn = nil
	return nil
}

// InitSchema creates the database schema if it doesn't exist.
//
// This creates all record tables along with the indexes the sync engine
// and CLI rely on. This is idempotent - safe to call multiple times.
func (db *DB) InitSchema() error {
	return db.InitSchemaContext(context.Background())
}

// InitSchemaContext creates the database schema with context support.
func (db *DB) InitSchemaContext(ctx context.Context) error {
	schema := `
	-- Core tables
	CREATE TABLE IF NOT EXISTS projects (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		root_path TEXT NOT NULL UNIQUE
	);

	CREATE TABLE IF NOT EXISTS features (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		project_id INTEGER NOT NULL,
		number INTEGER NOT NULL,
		name TEXT NOT NULL,
		title TEXT,
		status TEXT NOT NULL DEFAULT 'draft',
		spec_path TEXT,
		priority TEXT NOT NULL DEFAULT 'P2',
		branch TEXT,
		created_date TEXT,
		task_completion REAL NOT NULL DEFAULT 0,
		UNIQUE (project_id, number),
		FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS tasks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		feature_id INTEGER NOT NULL,
		task_id TEXT NOT NULL,
		description TEXT,
		status TEXT NOT NULL DEFAULT 'not_started',
		phase_name TEXT,
		phase_order INTEGER NOT NULL DEFAULT 0,
		is_parallel INTEGER NOT NULL DEFAULT 0,
		depends_on TEXT,  -- JSON array
		story_label TEXT,
		file_path TEXT,
		line INTEGER NOT NULL DEFAULT 0,
		UNIQUE (feature_id, task_id),
		FOREIGN KEY (feature_id) REFERENCES features(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS entities (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		feature_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		description TEXT,
		attributes TEXT,     -- JSON array
		relationships TEXT,  -- JSON array
		UNIQUE (feature_id, name),
		FOREIGN KEY (feature_id) REFERENCES features(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS requirements (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		feature_id INTEGER NOT NULL,
		req_id TEXT NOT NULL,
		description TEXT,
		type TEXT NOT NULL DEFAULT 'functional',
		priority TEXT,
		linked_tasks TEXT,  -- JSON array
		acceptance TEXT,    -- JSON array
		UNIQUE (feature_id, req_id),
		FOREIGN KEY (feature_id) REFERENCES features(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS plans (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		feature_id INTEGER NOT NULL UNIQUE,
		summary TEXT,
		tech_stack TEXT,    -- JSON object
		phases TEXT,        -- JSON array
		dependencies TEXT,  -- JSON array
		risks TEXT,         -- JSON array
		FOREIGN KEY (feature_id) REFERENCES features(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS research_decisions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		feature_id INTEGER NOT NULL,
		title TEXT NOT NULL,
		decision TEXT,
		rationale TEXT,
		alternatives TEXT,  -- JSON array
		context TEXT,
		UNIQUE (feature_id, title),
		FOREIGN KEY (feature_id) REFERENCES features(id) ON DELETE CASCADE
	);

	-- Indexes for common queries
	CREATE INDEX IF NOT EXISTS idx_features_project ON features(project_id);
	CREATE INDEX IF NOT EXISTS idx_features_status ON features(status);
	CREATE INDEX IF NOT EXISTS idx_tasks_feature ON tasks(feature_id);
	CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);
	CREATE INDEX IF NOT EXISTS idx_tasks_story ON tasks(story_label);
	CREATE INDEX IF NOT EXISTS idx_entities_feature ON entities(feature_id);
	CREATE INDEX IF NOT EXISTS idx_requirements_feature ON requirements(feature_id);
	CREATE INDEX IF NOT EXISTS idx_requirements_type ON requirements(type);
	CREATE INDEX IF NOT EXISTS idx_research_feature ON research_decisions(feature_id);

	-- Composite index for progress queries
	CREATE INDEX IF NOT EXISTS idx_tasks_progress ON tasks(feature_id, status);
	`

	if _, err := db.conn.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	return nil
}

// timeToNullString converts a time pointer to a nullable string for SQL.
func timeToNullString(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: t.Format(time.RFC3339), Valid: true}
}

// nullStringToTime converts a nullable SQL string to a time pointer.
func nullStringToTime(ns sql.NullString) *time.Time {
	if !ns.Valid {
		return nil
	}
	t, err := time.Parse(time.RFC3339, ns.String)
	if err != nil {
		return nil
	}
	return &t
}
