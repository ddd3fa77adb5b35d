package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/vhm205/speckit-dash-sub001/internal/schema"
)

// UpsertPlan inserts or updates the plan record of a feature.
//
// A feature holds at most one plan; feature_id is the unique key and
// re-syncing plan.md overwrites the stored plan wholesale.
func (db *DB) UpsertPlan(plan *schema.Plan) error {
	return db.UpsertPlanContext(context.Background(), plan)
}

// UpsertPlanContext inserts or updates a plan with context support.
func (db *DB) UpsertPlanContext(ctx context.Context, plan *schema.Plan) error {
	plan.SetDefaults()

	techJSON, err := json.Marshal(plan.TechStack)
	if err != nil {
		return fmt.Errorf("failed to marshal tech_stack: %w", err)
	}
	phasesJSON, err := json.Marshal(plan.Phases)
	if err != nil {
		return fmt.Errorf("failed to marshal phases: %w", err)
	}
	depsJSON, err := json.Marshal(plan.Dependencies)
	if err != nil {
		return fmt.Errorf("failed to marshal dependencies: %w", err)
	}
	risksJSON, err := json.Marshal(plan.Risks)
	if err != nil {
		return fmt.Errorf("failed to marshal risks: %w", err)
	}

	query := `
	INSERT INTO plans (feature_id, summary, tech_stack, phases, dependencies, risks)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(feature_id) DO UPDATE SET
		summary = excluded.summary,
		tech_stack = excluded.tech_stack,
		phases = excluded.phases,
		dependencies = excluded.dependencies,
		risks = excluded.risks
	`

	_, err = db.conn.ExecContext(ctx, query,
		plan.FeatureID,
		plan.Summary,
		string(techJSON),
		string(phasesJSON),
		string(depsJSON),
		string(risksJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert plan for feature %d: %w", plan.FeatureID, err)
	}

	return nil
}

// GetPlanByFeature retrieves the plan of a feature.
// Returns sql.ErrNoRows if no plan has been synced.
func (db *DB) GetPlanByFeature(featureID int64) (*schema.Plan, error) {
	return db.GetPlanByFeatureContext(context.Background(), featureID)
}

// GetPlanByFeatureContext retrieves a plan with context support.
func (db *DB) GetPlanByFeatureContext(ctx context.Context, featureID int64) (*schema.Plan, error) {
	query := `
	SELECT id, feature_id, summary, tech_stack, phases, dependencies, risks
	FROM plans
	WHERE feature_id = ?
	`

	row := db.conn.QueryRowContext(ctx, query, featureID)

	var plan schema.Plan
	var techJSON, phasesJSON, depsJSON, risksJSON string

	err := row.Scan(
		&plan.ID,
		&plan.FeatureID,
		&plan.Summary,
		&techJSON,
		&phasesJSON,
		&depsJSON,
		&risksJSON,
	)
	if err != nil {
		return nil, err
	}

	plan.SetDefaults()
	if techJSON != "" && techJSON != "null" {
		if err := json.Unmarshal([]byte(techJSON), &plan.TechStack); err != nil {
			return nil, fmt.Errorf("failed to unmarshal tech_stack: %w", err)
		}
	}
	if phasesJSON != "" && phasesJSON != "null" {
		if err := json.Unmarshal([]byte(phasesJSON), &plan.Phases); err != nil {
			return nil, fmt.Errorf("failed to unmarshal phases: %w", err)
		}
	}
	if depsJSON != "" && depsJSON != "null" {
		if err := json.Unmarshal([]byte(depsJSON), &plan.Dependencies); err != nil {
			return nil, fmt.Errorf("failed to unmarshal dependencies: %w", err)
		}
	}
	if risksJSON != "" && risksJSON != "null" {
		if err := json.Unmarshal([]byte(risksJSON), &plan.Risks); err != nil {
			return nil, fmt.Errorf("failed to unmarshal risks: %w", err)
		}
	}

	return &plan, nil
}

// DeletePlanByFeature removes the plan record of a feature.
// Returns nil if there is none (idempotent).
func (db *DB) DeletePlanByFeature(featureID int64) error {
	return db.DeletePlanByFeatureContext(context.Background(), featureID)
}

// DeletePlanByFeatureContext removes a plan with context support.
func (db *DB) DeletePlanByFeatureContext(ctx context.Context, featureID int64) error {
	_, err := db.conn.ExecContext(ctx, `DELETE FROM plans WHERE feature_id = ?`, featureID)
	if err != nil {
		return fmt.Errorf("failed to delete plan for feature %d: %w", featureID, err)
	}
	return nil
}

// GetPlanCount returns the total number of plans in the database.
func (db *DB) GetPlanCount() (int, error) {
	return db.GetPlanCountContext(context.Background())
}

// GetPlanCountContext returns the plan count with context support.
func (db *DB) GetPlanCountContext(ctx context.Context) (int, error) {
	var count int
	err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM plans").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get plan count: %w", err)
	}
	return count, nil
}
