package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/vhm205/speckit-dash-sub001/internal/schema"
)

// execer abstracts over *sql.DB and *sql.Tx so the upsert statements
// can run standalone or inside a transaction.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// ReplaceTasks atomically replaces all task records of a feature with
// the given set.
//
// Tasks follow replace semantics: the document is the source of truth,
// so tasks that disappeared from it are removed. The delete and the
// inserts run in one transaction so readers never observe a half-empty
// task list.
func (db *DB) ReplaceTasks(featureID int64, tasks []schema.Task) error {
	return db.ReplaceTasksContext(context.Background(), featureID, tasks)
}

// ReplaceTasksContext replaces a feature's tasks with context support.
func (db *DB) ReplaceTasksContext(ctx context.Context, featureID int64, tasks []schema.Task) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE feature_id = ?`, featureID); err != nil {
		return fmt.Errorf("failed to clear tasks: %w", err)
	}

	for i := range tasks {
		tasks[i].FeatureID = featureID
		if err := upsertTask(ctx, tx, &tasks[i]); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// UpsertTask inserts or updates a single task record.
//
// The (feature_id, task_id) pair is the unique key. Full document syncs
// go through ReplaceTasks; this exists for targeted corrections.
func (db *DB) UpsertTask(task *schema.Task) error {
	return db.UpsertTaskContext(context.Background(), task)
}

// UpsertTaskContext inserts or updates a task with context support.
func (db *DB) UpsertTaskContext(ctx context.Context, task *schema.Task) error {
	return upsertTask(ctx, db.conn, task)
}

// upsertTask writes one task through the given executor. Duplicate
// task identifiers within one feature keep the last occurrence.
func upsertTask(ctx context.Context, ex execer, task *schema.Task) error {
	task.SetDefaults()
	if err := task.Validate(); err != nil {
		return fmt.Errorf("invalid task: %w", err)
	}

	dependsJSON, err := json.Marshal(task.DependsOn)
	if err != nil {
		return fmt.Errorf("failed to marshal depends_on: %w", err)
	}

	query := `
	INSERT INTO tasks (
		feature_id, task_id, description, status, phase_name,
		phase_order, is_parallel, depends_on, story_label, file_path, line
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(feature_id, task_id) DO UPDATE SET
		description = excluded.description,
		status = excluded.status,
		phase_name = excluded.phase_name,
		phase_order = excluded.phase_order,
		is_parallel = excluded.is_parallel,
		depends_on = excluded.depends_on,
		story_label = excluded.story_label,
		file_path = excluded.file_path,
		line = excluded.line
	`

	_, err = ex.ExecContext(ctx, query,
		task.FeatureID,
		task.TaskID,
		task.Description,
		task.Status,
		task.PhaseName,
		task.PhaseOrder,
		boolToInt(task.IsParallel),
		string(dependsJSON),
		task.StoryLabel,
		task.FilePath,
		task.Line,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert task %s: %w", task.TaskID, err)
	}

	return nil
}

// ListTasksByFeature retrieves a feature's tasks in document order.
func (db *DB) ListTasksByFeature(featureID int64) ([]*schema.Task, error) {
	return db.ListTasksByFeatureContext(context.Background(), featureID)
}

// ListTasksByFeatureContext retrieves tasks with context support.
func (db *DB) ListTasksByFeatureContext(ctx context.Context, featureID int64) ([]*schema.Task, error) {
	query := `
	SELECT id, feature_id, task_id, description, status, phase_name,
	       phase_order, is_parallel, depends_on, story_label, file_path, line
	FROM tasks
	WHERE feature_id = ?
	ORDER BY line ASC, task_id ASC
	`

	rows, err := db.conn.QueryContext(ctx, query, featureID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	return scanTasks(rows)
}

// DeleteTasksByFeature removes all task records of a feature.
// Returns nil if there are none (idempotent).
func (db *DB) DeleteTasksByFeature(featureID int64) error {
	return db.DeleteTasksByFeatureContext(context.Background(), featureID)
}

// DeleteTasksByFeatureContext removes a feature's tasks with context support.
func (db *DB) DeleteTasksByFeatureContext(ctx context.Context, featureID int64) error {
	_, err := db.conn.ExecContext(ctx, `DELETE FROM tasks WHERE feature_id = ?`, featureID)
	if err != nil {
		return fmt.Errorf("failed to delete tasks for feature %d: %w", featureID, err)
	}
	return nil
}

// GetTaskProgress returns the done and total task counts for a feature.
func (db *DB) GetTaskProgress(featureID int64) (done, total int, err error) {
	return db.GetTaskProgressContext(context.Background(), featureID)
}

// GetTaskProgressContext returns task progress with context support.
func (db *DB) GetTaskProgressContext(ctx context.Context, featureID int64) (done, total int, err error) {
	query := `
	SELECT COUNT(*), COALESCE(SUM(CASE WHEN status = 'done' THEN 1 ELSE 0 END), 0)
	FROM tasks
	WHERE feature_id = ?
	`

	err = db.conn.QueryRowContext(ctx, query, featureID).Scan(&total, &done)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get task progress: %w", err)
	}
	return done, total, nil
}

// GetTaskCount returns the total number of tasks in the database.
func (db *DB) GetTaskCount() (int, error) {
	return db.GetTaskCountContext(context.Background())
}

// GetTaskCountContext returns the total number of tasks with context support.
func (db *DB) GetTaskCountContext(ctx context.Context) (int, error) {
	var count int
	err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM tasks").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get task count: %w", err)
	}
	return count, nil
}

// scanTasks is a helper function to scan multiple tasks from query results.
func scanTasks(rows *sql.Rows) ([]*schema.Task, error) {
	var tasks []*schema.Task

	for rows.Next() {
		var task schema.Task
		var dependsJSON string
		var isParallel int

		err := rows.Scan(
			&task.ID,
			&task.FeatureID,
			&task.TaskID,
			&task.Description,
			&task.Status,
			&task.PhaseName,
			&task.PhaseOrder,
			&isParallel,
			&dependsJSON,
			&task.StoryLabel,
			&task.FilePath,
			&task.Line,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}

		task.IsParallel = isParallel != 0

		if dependsJSON != "" && dependsJSON != "null" {
			if err := json.Unmarshal([]byte(dependsJSON), &task.DependsOn); err != nil {
				return nil, fmt.Errorf("failed to unmarshal depends_on: %w", err)
			}
		} else {
			task.DependsOn = []string{}
		}

		tasks = append(tasks, &task)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tasks: %w", err)
	}

	return tasks, nil
}

// boolToInt converts a bool to the 0/1 SQLite stores.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
