package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vhm205/speckit-dash-sub001/internal/schema"
)

// GetOrCreateProject returns the project registered for rootPath,
// creating it if this is the first sync of that tree.
//
// The root path is the unique key; a changed name updates the stored
// name in place.
func (db *DB) GetOrCreateProject(name, rootPath string) (*schema.Project, error) {
	return db.GetOrCreateProjectContext(context.Background(), name, rootPath)
}

// GetOrCreateProjectContext returns or creates a project with context support.
func (db *DB) GetOrCreateProjectContext(ctx context.Context, name, rootPath string) (*schema.Project, error) {
	project := &schema.Project{Name: name, RootPath: rootPath}
	if err := project.Validate(); err != nil {
		return nil, fmt.Errorf("invalid project: %w", err)
	}

	query := `
	INSERT INTO projects (name, root_path)
	VALUES (?, ?)
	ON CONFLICT(root_path) DO UPDATE SET
		name = excluded.name
	`

	if _, err := db.conn.ExecContext(ctx, query, name, rootPath); err != nil {
		return nil, fmt.Errorf("failed to upsert project: %w", err)
	}

	err := db.conn.QueryRowContext(ctx,
		`SELECT id FROM projects WHERE root_path = ?`, rootPath,
	).Scan(&project.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to read back project id: %w", err)
	}

	return project, nil
}

// GetProjectByRoot retrieves a project by its root path.
// Returns sql.ErrNoRows if no project is registered for the path.
func (db *DB) GetProjectByRoot(rootPath string) (*schema.Project, error) {
	return db.GetProjectByRootContext(context.Background(), rootPath)
}

// GetProjectByRootContext retrieves a project with context support.
func (db *DB) GetProjectByRootContext(ctx context.Context, rootPath string) (*schema.Project, error) {
	var project schema.Project
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, name, root_path FROM projects WHERE root_path = ?`, rootPath,
	).Scan(&project.ID, &project.Name, &project.RootPath)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to query project: %w", err)
	}
	return &project, nil
}

// GetProjectCount returns the total number of projects in the database.
func (db *DB) GetProjectCount() (int, error) {
	return db.GetProjectCountContext(context.Background())
}

// GetProjectCountContext returns the total number of projects with context support.
func (db *DB) GetProjectCountContext(ctx context.Context) (int, error) {
	var count int
	err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM projects").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get project count: %w", err)
	}
	return count, nil
}
