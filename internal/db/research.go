package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/vhm205/speckit-dash-sub001/internal/schema"
)

// UpsertResearchDecision inserts or updates a research decision record.
//
// Decisions follow merge semantics: the (feature_id, title) pair is the
// unique key and existing rows are updated in place. Decisions dropped
// from a later document revision stay in the database as a durable
// record of what was once decided.
func (db *DB) UpsertResearchDecision(decision *schema.ResearchDecision) error {
	return db.UpsertResearchDecisionContext(context.Background(), decision)
}

// UpsertResearchDecisionContext inserts or updates a decision with context support.
func (db *DB) UpsertResearchDecisionContext(ctx context.Context, decision *schema.ResearchDecision) error {
	decision.SetDefaults()
	if err := decision.Validate(); err != nil {
		return fmt.Errorf("invalid research decision: %w", err)
	}

	altsJSON, err := json.Marshal(decision.Alternatives)
	if err != nil {
		return fmt.Errorf("failed to marshal alternatives: %w", err)
	}

	query := `
	INSERT INTO research_decisions (
		feature_id, title, decision, rationale, alternatives, context
	) VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(feature_id, title) DO UPDATE SET
		decision = excluded.decision,
		rationale = excluded.rationale,
		alternatives = excluded.alternatives,
		context = excluded.context
	`

	_, err = db.conn.ExecContext(ctx, query,
		decision.FeatureID,
		decision.Title,
		decision.Decision,
		decision.Rationale,
		string(altsJSON),
		decision.Context,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert research decision %q: %w", decision.Title, err)
	}

	return nil
}

// ListResearchByFeature retrieves a feature's research decisions
// ordered by title.
func (db *DB) ListResearchByFeature(featureID int64) ([]*schema.ResearchDecision, error) {
	return db.ListResearchByFeatureContext(context.Background(), featureID)
}

// ListResearchByFeatureContext retrieves decisions with context support.
func (db *DB) ListResearchByFeatureContext(ctx context.Context, featureID int64) ([]*schema.ResearchDecision, error) {
	query := `
	SELECT id, feature_id, title, decision, rationale, alternatives, context
	FROM research_decisions
	WHERE feature_id = ?
	ORDER BY title ASC
	`

	rows, err := db.conn.QueryContext(ctx, query, featureID)
	if err != nil {
		return nil, fmt.Errorf("failed to list research decisions: %w", err)
	}
	defer rows.Close()

	return scanResearchDecisions(rows)
}

// DeleteResearchDecisionsByFeature removes all research decisions of a
// feature. Returns nil if there are none (idempotent). The sync engine
// never calls this; it exists for explicit cleanup.
func (db *DB) DeleteResearchDecisionsByFeature(featureID int64) error {
	return db.DeleteResearchDecisionsByFeatureContext(context.Background(), featureID)
}

// DeleteResearchDecisionsByFeatureContext removes decisions with context support.
func (db *DB) DeleteResearchDecisionsByFeatureContext(ctx context.Context, featureID int64) error {
	_, err := db.conn.ExecContext(ctx, `DELETE FROM research_decisions WHERE feature_id = ?`, featureID)
	if err != nil {
		return fmt.Errorf("failed to delete research decisions for feature %d: %w", featureID, err)
	}
	return nil
}

// GetResearchCount returns the total number of research decisions in
// the database.
func (db *DB) GetResearchCount() (int, error) {
	return db.GetResearchCountContext(context.Background())
}

// GetResearchCountContext returns the decision count with context support.
func (db *DB) GetResearchCountContext(ctx context.Context) (int, error) {
	var count int
	err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM research_decisions").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get research decision count: %w", err)
	}
	return count, nil
}

// scanResearchDecisions is a helper function to scan multiple decisions
// from query results.
func scanResearchDecisions(rows *sql.Rows) ([]*schema.ResearchDecision, error) {
	var decisions []*schema.ResearchDecision

	for rows.Next() {
		var decision schema.ResearchDecision
		var altsJSON string

		err := rows.Scan(
			&decision.ID,
			&decision.FeatureID,
			&decision.Title,
			&decision.Decision,
			&decision.Rationale,
			&altsJSON,
			&decision.Context,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan research decision: %w", err)
		}

		if altsJSON != "" && altsJSON != "null" {
			if err := json.Unmarshal([]byte(altsJSON), &decision.Alternatives); err != nil {
				return nil, fmt.Errorf("failed to unmarshal alternatives: %w", err)
			}
		} else {
			decision.Alternatives = []string{}
		}

		decisions = append(decisions, &decision)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating research decisions: %w", err)
	}

	return decisions, nil
}
