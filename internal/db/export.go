package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/vhm205/speckit-dash-sub001/internal/schema"
)

// ExportRecord is one line of a JSONL export: a feature with all of its
// child records inlined.
type ExportRecord struct {
	Feature      *schema.Feature            `json:"feature"`
	Tasks        []*schema.Task             `json:"tasks,omitempty"`
	Entities     []*schema.Entity           `json:"entities,omitempty"`
	Requirements []*schema.Requirement      `json:"requirements,omitempty"`
	Plan         *schema.Plan               `json:"plan,omitempty"`
	Research     []*schema.ResearchDecision `json:"research,omitempty"`
}

// ExportJSONL writes every feature of a project to w as one JSON object
// per line, features ordered by number. Returns the number of lines
// written.
//
// The export is a point-in-time read; running it against a live daemon
// is safe because readers are never blocked under WAL.
func (db *DB) ExportJSONL(ctx context.Context, projectID int64, w io.Writer) (int, error) {
	features, err := db.ListFeaturesContext(ctx, projectID)
	if err != nil {
		return 0, err
	}

	enc := json.NewEncoder(w)
	written := 0

	for _, feature := range features {
		record := ExportRecord{Feature: feature}

		if record.Tasks, err = db.ListTasksByFeatureContext(ctx, feature.ID); err != nil {
			return written, fmt.Errorf("feature %03d: %w", feature.Number, err)
		}
		if record.Entities, err = db.ListEntitiesByFeatureContext(ctx, feature.ID); err != nil {
			return written, fmt.Errorf("feature %03d: %w", feature.Number, err)
		}
		if record.Requirements, err = db.ListRequirementsByFeatureContext(ctx, feature.ID); err != nil {
			return written, fmt.Errorf("feature %03d: %w", feature.Number, err)
		}
		if record.Research, err = db.ListResearchByFeatureContext(ctx, feature.ID); err != nil {
			return written, fmt.Errorf("feature %03d: %w", feature.Number, err)
		}

		plan, err := db.GetPlanByFeatureContext(ctx, feature.ID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return written, fmt.Errorf("feature %03d: %w", feature.Number, err)
		}
		if err == nil {
			record.Plan = plan
		}

		if err := enc.Encode(record); err != nil {
			return written, fmt.Errorf("failed to encode feature %03d: %w", feature.Number, err)
		}
		written++
	}

	return written, nil
}
