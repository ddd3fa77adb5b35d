package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vhm205/speckit-dash-sub001/internal/schema"
)

// UpsertFeature inserts or updates a feature record.
//
// The (project_id, number) pair is the unique key; re-syncing the same
// feature directory updates the existing row. On return feature.ID is
// set to the stored row id so child records can reference it.
func (db *DB) UpsertFeature(feature *schema.Feature) error {
	return db.UpsertFeatureContext(context.Background(), feature)
}

// UpsertFeatureContext inserts or updates a feature with context support.
func (db *DB) UpsertFeatureContext(ctx context.Context, feature *schema.Feature) error {
	feature.SetDefaults()
	if err := feature.Validate(); err != nil {
		return fmt.Errorf("invalid feature: %w", err)
	}

	query := `
	INSERT INTO features (
		project_id, number, name, title, status, spec_path,
		priority, branch, created_date, task_completion
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(project_id, number) DO UPDATE SET
		name = excluded.name,
		title = excluded.title,
		status = excluded.status,
		spec_path = excluded.spec_path,
		priority = excluded.priority,
		branch = excluded.branch,
		created_date = excluded.created_date,
		task_completion = excluded.task_completion
	`

	_, err := db.conn.ExecContext(ctx, query,
		feature.ProjectID,
		feature.Number,
		feature.Name,
		feature.Title,
		feature.Status,
		feature.SpecPath,
		feature.Priority,
		feature.Branch,
		timeToNullString(feature.CreatedDate),
		feature.TaskCompletion,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert feature %03d: %w", feature.Number, err)
	}

	err = db.conn.QueryRowContext(ctx,
		`SELECT id FROM features WHERE project_id = ? AND number = ?`,
		feature.ProjectID, feature.Number,
	).Scan(&feature.ID)
	if err != nil {
		return fmt.Errorf("failed to read back feature id: %w", err)
	}

	return nil
}

// GetFeatureByNumber retrieves a feature by its directory number within
// a project. Returns sql.ErrNoRows if the feature is not found.
func (db *DB) GetFeatureByNumber(projectID int64, number int) (*schema.Feature, error) {
	return db.GetFeatureByNumberContext(context.Background(), projectID, number)
}

// GetFeatureByNumberContext retrieves a feature with context support.
func (db *DB) GetFeatureByNumberContext(ctx context.Context, projectID int64, number int) (*schema.Feature, error) {
	query := featureSelect + ` WHERE project_id = ? AND number = ?`
	row := db.conn.QueryRowContext(ctx, query, projectID, number)
	return scanFeatureRow(row)
}

// ListFeatures retrieves all features of a project ordered by number.
func (db *DB) ListFeatures(projectID int64) ([]*schema.Feature, error) {
	return db.ListFeaturesContext(context.Background(), projectID)
}

// ListFeaturesContext retrieves features with context support.
func (db *DB) ListFeaturesContext(ctx context.Context, projectID int64) ([]*schema.Feature, error) {
	query := featureSelect + ` WHERE project_id = ? ORDER BY number ASC`

	rows, err := db.conn.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list features: %w", err)
	}
	defer rows.Close()

	var features []*schema.Feature
	for rows.Next() {
		feature, err := scanFeature(rows)
		if err != nil {
			return nil, err
		}
		features = append(features, feature)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating features: %w", err)
	}

	return features, nil
}

// DeleteFeature removes a feature and, through foreign key cascades,
// all of its child records. Returns nil if the feature doesn't exist
// (idempotent).
func (db *DB) DeleteFeature(featureID int64) error {
	return db.DeleteFeatureContext(context.Background(), featureID)
}

// DeleteFeatureContext removes a feature with context support.
func (db *DB) DeleteFeatureContext(ctx context.Context, featureID int64) error {
	_, err := db.conn.ExecContext(ctx, `DELETE FROM features WHERE id = ?`, featureID)
	if err != nil {
		return fmt.Errorf("failed to delete feature %d: %w", featureID, err)
	}
	return nil
}

// UpdateFeatureCompletion stores the recomputed task completion ratio
// for a feature without touching the other columns.
func (db *DB) UpdateFeatureCompletion(featureID int64, completion float64) error {
	return db.UpdateFeatureCompletionContext(context.Background(), featureID, completion)
}

// UpdateFeatureCompletionContext stores the completion ratio with context support.
func (db *DB) UpdateFeatureCompletionContext(ctx context.Context, featureID int64, completion float64) error {
	_, err := db.conn.ExecContext(ctx,
		`UPDATE features SET task_completion = ? WHERE id = ?`, completion, featureID)
	if err != nil {
		return fmt.Errorf("failed to update feature completion: %w", err)
	}
	return nil
}

// GetFeatureCount returns the total number of features in the database.
func (db *DB) GetFeatureCount() (int, error) {
	return db.GetFeatureCountContext(context.Background())
}

// GetFeatureCountContext returns the total number of features with context support.
func (db *DB) GetFeatureCountContext(ctx context.Context) (int, error) {
	var count int
	err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM features").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get feature count: %w", err)
	}
	return count, nil
}

const featureSelect = `
	SELECT id, project_id, number, name, title, status, spec_path,
	       priority, branch, created_date, task_completion
	FROM features`

// scanFeature scans one feature from a multi-row result.
func scanFeature(rows *sql.Rows) (*schema.Feature, error) {
	var feature schema.Feature
	var createdDate sql.NullString

	err := rows.Scan(
		&feature.ID,
		&feature.ProjectID,
		&feature.Number,
		&feature.Name,
		&feature.Title,
		&feature.Status,
		&feature.SpecPath,
		&feature.Priority,
		&feature.Branch,
		&createdDate,
		&feature.TaskCompletion,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan feature: %w", err)
	}

	feature.CreatedDate = nullStringToTime(createdDate)
	return &feature, nil
}

// scanFeatureRow scans one feature from a single-row query.
// Passes sql.ErrNoRows through untouched so callers can detect misses.
func scanFeatureRow(row *sql.Row) (*schema.Feature, error) {
	var feature schema.Feature
	var createdDate sql.NullString

	err := row.Scan(
		&feature.ID,
		&feature.ProjectID,
		&feature.Number,
		&feature.Name,
		&feature.Title,
		&feature.Status,
		&feature.SpecPath,
		&feature.Priority,
		&feature.Branch,
		&createdDate,
		&feature.TaskCompletion,
	)
	if err != nil {
		return nil, err
	}

	feature.CreatedDate = nullStringToTime(createdDate)
	return &feature, nil
}
