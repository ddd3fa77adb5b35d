package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/vhm205/speckit-dash-sub001/internal/schema"
)

// ReplaceRequirements atomically replaces all requirement records of a
// feature with the given set.
//
// Requirements follow replace semantics like tasks: rows for
// identifiers that disappeared from the document are removed.
func (db *DB) ReplaceRequirements(featureID int64, reqs []schema.Requirement) error {
	return db.ReplaceRequirementsContext(context.Background(), featureID, reqs)
}

// ReplaceRequirementsContext replaces requirements with context support.
func (db *DB) ReplaceRequirementsContext(ctx context.Context, featureID int64, reqs []schema.Requirement) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM requirements WHERE feature_id = ?`, featureID); err != nil {
		return fmt.Errorf("failed to clear requirements: %w", err)
	}

	for i := range reqs {
		reqs[i].FeatureID = featureID
		if err := upsertRequirement(ctx, tx, &reqs[i]); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// UpsertRequirement inserts or updates a single requirement record.
// The (feature_id, req_id) pair is the unique key.
func (db *DB) UpsertRequirement(req *schema.Requirement) error {
	return db.UpsertRequirementContext(context.Background(), req)
}

// UpsertRequirementContext inserts or updates a requirement with context support.
func (db *DB) UpsertRequirementContext(ctx context.Context, req *schema.Requirement) error {
	return upsertRequirement(ctx, db.conn, req)
}

func upsertRequirement(ctx context.Context, ex execer, req *schema.Requirement) error {
	req.SetDefaults()
	if err := req.Validate(); err != nil {
		return fmt.Errorf("invalid requirement: %w", err)
	}

	linkedJSON, err := json.Marshal(req.LinkedTasks)
	if err != nil {
		return fmt.Errorf("failed to marshal linked_tasks: %w", err)
	}
	acceptanceJSON, err := json.Marshal(req.Acceptance)
	if err != nil {
		return fmt.Errorf("failed to marshal acceptance: %w", err)
	}

	query := `
	INSERT INTO requirements (
		feature_id, req_id, description, type, priority, linked_tasks, acceptance
	) VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(feature_id, req_id) DO UPDATE SET
		description = excluded.description,
		type = excluded.type,
		priority = excluded.priority,
		linked_tasks = excluded.linked_tasks,
		acceptance = excluded.acceptance
	`

	_, err = ex.ExecContext(ctx, query,
		req.FeatureID,
		req.ReqID,
		req.Description,
		req.Type,
		req.Priority,
		string(linkedJSON),
		string(acceptanceJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert requirement %s: %w", req.ReqID, err)
	}

	return nil
}

// ListRequirementsByFeature retrieves a feature's requirements ordered
// by identifier.
func (db *DB) ListRequirementsByFeature(featureID int64) ([]*schema.Requirement, error) {
	return db.ListRequirementsByFeatureContext(context.Background(), featureID)
}

// ListRequirementsByFeatureContext retrieves requirements with context support.
func (db *DB) ListRequirementsByFeatureContext(ctx context.Context, featureID int64) ([]*schema.Requirement, error) {
	query := `
	SELECT id, feature_id, req_id, description, type, priority, linked_tasks, acceptance
	FROM requirements
	WHERE feature_id = ?
	ORDER BY req_id ASC
	`

	rows, err := db.conn.QueryContext(ctx, query, featureID)
	if err != nil {
		return nil, fmt.Errorf("failed to list requirements: %w", err)
	}
	defer rows.Close()

	return scanRequirements(rows)
}

// DeleteRequirementsByFeature removes all requirement records of a
// feature. Returns nil if there are none (idempotent).
func (db *DB) DeleteRequirementsByFeature(featureID int64) error {
	return db.DeleteRequirementsByFeatureContext(context.Background(), featureID)
}

// DeleteRequirementsByFeatureContext removes requirements with context support.
func (db *DB) DeleteRequirementsByFeatureContext(ctx context.Context, featureID int64) error {
	_, err := db.conn.ExecContext(ctx, `DELETE FROM requirements WHERE feature_id = ?`, featureID)
	if err != nil {
		return fmt.Errorf("failed to delete requirements for feature %d: %w", featureID, err)
	}
	return nil
}

// GetRequirementCount returns the total number of requirements in the database.
func (db *DB) GetRequirementCount() (int, error) {
	return db.GetRequirementCountContext(context.Background())
}

// GetRequirementCountContext returns the requirement count with context support.
func (db *DB) GetRequirementCountContext(ctx context.Context) (int, error) {
	var count int
	err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM requirements").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get requirement count: %w", err)
	}
	return count, nil
}

// scanRequirements is a helper function to scan multiple requirements
// from query results.
func scanRequirements(rows *sql.Rows) ([]*schema.Requirement, error) {
	var reqs []*schema.Requirement

	for rows.Next() {
		var req schema.Requirement
		var linkedJSON, acceptanceJSON string

		err := rows.Scan(
			&req.ID,
			&req.FeatureID,
			&req.ReqID,
			&req.Description,
			&req.Type,
			&req.Priority,
			&linkedJSON,
			&acceptanceJSON,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan requirement: %w", err)
		}

		if linkedJSON != "" && linkedJSON != "null" {
			if err := json.Unmarshal([]byte(linkedJSON), &req.LinkedTasks); err != nil {
				return nil, fmt.Errorf("failed to unmarshal linked_tasks: %w", err)
			}
		} else {
			req.LinkedTasks = []string{}
		}

		if acceptanceJSON != "" && acceptanceJSON != "null" {
			if err := json.Unmarshal([]byte(acceptanceJSON), &req.Acceptance); err != nil {
				return nil, fmt.Errorf("failed to unmarshal acceptance: %w", err)
			}
		} else {
			req.Acceptance = []string{}
		}

		reqs = append(reqs, &req)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating requirements: %w", err)
	}

	return reqs, nil
}
