package schema

import (
	"fmt"
	"regexp"
	"strings"
)

// Task statuses, mapped from checkbox markers: [x] done, [/] in_progress,
// anything else not_started.
const (
	TaskStatusNotStarted = "not_started"
	TaskStatusInProgress = "in_progress"
	TaskStatusDone       = "done"
)

// Task is one checkbox item from a tasks.md document. Tasks follow
// replace semantics: every sync deletes and re-inserts the full set for
// a feature.
type Task struct {
	ID        int64  `json:"id"`
	FeatureID int64  `json:"feature_id"`
	TaskID    string `json:"task_id"` // normalized uppercase, e.g. T001

	Description string `json:"description"`
	Status      string `json:"status"` // not_started, in_progress, done

	// Phase context from the most recent "Phase N" heading.
	PhaseName  string `json:"phase_name,omitempty"`
	PhaseOrder int    `json:"phase_order"`

	IsParallel bool     `json:"is_parallel"`
	DependsOn  []string `json:"depends_on,omitempty"`
	StoryLabel string   `json:"story_label,omitempty"` // normalized uppercase, e.g. US1

	// Source traceability.
	FilePath string `json:"file_path,omitempty"`
	Line     int    `json:"line"` // 1-based line in the source document
}

var taskIDPattern = regexp.MustCompile(`^T\d{3}$`)

// Validate checks if the Task has valid field values.
func (t *Task) Validate() error {
	if t.TaskID == "" {
		return fmt.Errorf("task_id is required")
	}
	if !taskIDPattern.MatchString(t.TaskID) {
		return fmt.Errorf("task_id must match T###, got %q", t.TaskID)
	}
	if !validTaskStatus(t.Status) {
		return fmt.Errorf("invalid status: %q", t.Status)
	}
	if t.Line < 0 {
		return fmt.Errorf("line must not be negative (got %d)", t.Line)
	}
	return nil
}

// SetDefaults applies default values for optional fields.
func (t *Task) SetDefaults() {
	if t.Status == "" {
		t.Status = TaskStatusNotStarted
	}
	if t.DependsOn == nil {
		t.DependsOn = []string{}
	}
	t.TaskID = strings.ToUpper(t.TaskID)
}

func validTaskStatus(s string) bool {
	switch s {
	case TaskStatusNotStarted, TaskStatusInProgress, TaskStatusDone:
		return true
	}
	return false
}
