// Package schema provides the record types mirrored from spec-kit documents.
package schema

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Feature statuses. Documents carry free-form status text; sync normalizes
// it into this set and falls back to draft when it cannot.
const (
	FeatureStatusDraft      = "draft"
	FeatureStatusApproved   = "approved"
	FeatureStatusInProgress = "in_progress"
	FeatureStatusComplete   = "complete"
)

// Feature represents one versioned unit of work, backed by a
// specs/NNN-name directory. It is the parent of every other record kind.
type Feature struct {
	// ===== Core Identification =====
	ID        int64  `json:"id"`
	ProjectID int64  `json:"project_id"`
	Number    int    `json:"number"` // the NNN prefix of the directory name
	Name      string `json:"name"`   // directory name minus the NNN- prefix

	// ===== Extracted Content =====
	Title       string     `json:"title,omitempty"`
	Status      string     `json:"status"` // draft, approved, in_progress, complete
	SpecPath    string     `json:"spec_path,omitempty"`
	Priority    string     `json:"priority"` // P1, P2, P3
	Branch      string     `json:"branch,omitempty"`
	CreatedDate *time.Time `json:"created_date,omitempty"`

	// ===== Derived =====
	TaskCompletion float64 `json:"task_completion"` // done tasks / total tasks, 0..1
}

// Validate checks if the Feature has valid field values.
func (f *Feature) Validate() error {
	if f.Number <= 0 {
		return fmt.Errorf("number must be positive (got %d)", f.Number)
	}
	if f.Name == "" {
		return fmt.Errorf("name is required")
	}
	if !validFeatureStatus(f.Status) {
		return fmt.Errorf("invalid status: %q", f.Status)
	}
	if f.TaskCompletion < 0 || f.TaskCompletion > 1 {
		return fmt.Errorf("task_completion must be between 0 and 1 (got %v)", f.TaskCompletion)
	}
	return nil
}

// SetDefaults applies default values for optional fields.
func (f *Feature) SetDefaults() {
	if f.Status == "" {
		f.Status = FeatureStatusDraft
	}
	if f.Priority == "" {
		f.Priority = "P2"
	}
}

// DirName returns the canonical directory name for this feature: NNN-name.
func (f *Feature) DirName() string {
	return fmt.Sprintf("%03d-%s", f.Number, f.Name)
}

func validFeatureStatus(s string) bool {
	switch s {
	case FeatureStatusDraft, FeatureStatusApproved, FeatureStatusInProgress, FeatureStatusComplete:
		return true
	}
	return false
}

// NormalizeFeatureStatus maps free-form status text from a document onto
// the feature status set. Unrecognized text reports false so the caller
// can keep the default instead.
func NormalizeFeatureStatus(raw string) (string, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "-", "_")
	if validFeatureStatus(s) {
		return s, true
	}
	return "", false
}

// featureDirPattern matches the NNN-name directory convention: a fixed
// width 3-digit zero-padded number, a dash, then the feature name.
var featureDirPattern = regexp.MustCompile(`^(\d{3})-(.+)$`)

// ParseFeatureDir splits a directory name into its feature number and name.
// Returns ok=false when the name does not follow the NNN-name convention.
func ParseFeatureDir(dir string) (number int, name string, ok bool) {
	m := featureDirPattern.FindStringSubmatch(dir)
	if m == nil {
		return 0, "", false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return 0, "", false
	}
	return n, m[2], true
}

// FeatureDirFromPath resolves the owning feature directory for a path by
// locating a specs/NNN-name segment pair. The deepest match wins. Paths
// outside any specs/NNN-name directory report ok=false.
func FeatureDirFromPath(path string) (dir string, number int, ok bool) {
	segs := strings.Split(filepath.ToSlash(path), "/")
	for i := len(segs) - 2; i >= 0; i-- {
		if segs[i] != "specs" {
			continue
		}
		if n, _, match := ParseFeatureDir(segs[i+1]); match {
			return segs[i+1], n, true
		}
	}
	return "", 0, false
}
