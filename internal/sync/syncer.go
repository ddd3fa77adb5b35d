package sync

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/vhm205/speckit-dash-sub001/internal/db"
	"github.com/vhm205/speckit-dash-sub001/internal/parser"
	"github.com/vhm205/speckit-dash-sub001/internal/schema"
)

// syncer implements the Syncer interface.
type syncer struct {
	db     *db.DB
	root   string
	parser *parser.Parser
	logger *log.Logger
}

// New creates a new Syncer instance for the project rooted at root.
//
// The database connection must be initialized and have schema created
// before passing to this function. Documents are expected under
// root/specs/NNN-name/.
//
// If logger is nil, a default logger writing to stderr is used.
//
// Example:
//
//	database, err := db.Open(".skd/speckit.db")
//	if err != nil {
//	    return err
//	}
//	if err := database.InitSchema(); err != nil {
//	    return err
//	}
//	syncer := sync.New(database, projectRoot, nil)
func New(database *db.DB, root string, logger *log.Logger) Syncer {
	if logger == nil {
		logger = log.New(os.Stderr, "[sync] ", log.LstdFlags)
	}
	return &syncer{
		db:     database,
		root:   root,
		parser: parser.New(),
		logger: logger,
	}
}

// FullSync implements Syncer.FullSync.
func (s *syncer) FullSync(ctx context.Context) (*Result, error) {
	s.logger.Printf("Starting full sync of %s", s.root)
	result := &Result{}

	project, err := s.db.GetOrCreateProjectContext(ctx, filepath.Base(s.root), s.root)
	if err != nil {
		return result, fmt.Errorf("failed to resolve project: %w", err)
	}

	specsDir := filepath.Join(s.root, "specs")
	if _, err := os.Stat(specsDir); os.IsNotExist(err) {
		s.logger.Printf("Specs directory doesn't exist: %s (skipping)", specsDir)
		return result, nil
	}

	entries, err := os.ReadDir(specsDir)
	if err != nil {
		return result, fmt.Errorf("failed to read specs directory: %w", err)
	}

	// Sync every feature directory; remember which numbers we saw
	seen := make(map[int]bool)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		number, name, ok := schema.ParseFeatureDir(entry.Name())
		if !ok {
			continue
		}
		seen[number] = true

		dir := filepath.Join(specsDir, entry.Name())
		if err := s.syncFeature(ctx, project.ID, number, name, dir); err != nil {
			s.logger.Printf("WARNING: Failed to sync feature %s: %v", entry.Name(), err)
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", entry.Name(), err))
			continue
		}
		result.Synced++
	}

	// Prune features whose directory vanished
	stored, err := s.db.ListFeaturesContext(ctx, project.ID)
	if err != nil {
		return result, fmt.Errorf("failed to list stored features: %w", err)
	}
	for _, feature := range stored {
		if seen[feature.Number] {
			continue
		}
		if err := s.db.DeleteFeatureContext(ctx, feature.ID); err != nil {
			return result, fmt.Errorf("failed to prune feature %s: %w", feature.DirName(), err)
		}
		s.logger.Printf("Pruned feature %s (directory removed)", feature.DirName())
	}

	s.logger.Printf("Full sync complete: features=%d (failed=%d)",
		result.Synced, len(result.Errors))

	return result, nil
}

// syncFeature syncs all documents of one feature directory, in order:
// spec, tasks, data model, requirements, plan, research. The feature
// row is written first so child records have an id to reference.
func (s *syncer) syncFeature(ctx context.Context, projectID int64, number int, name, dir string) error {
	feature := &schema.Feature{
		ProjectID: projectID,
		Number:    number,
		Name:      name,
	}

	// spec.md seeds the feature metadata; a missing document leaves
	// directory defaults
	specPath := filepath.Join(dir, "spec.md")
	specData, err := os.ReadFile(specPath)
	haveSpec := err == nil
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to read spec.md: %w", err)
	}

	var specDoc parser.SpecDoc
	if haveSpec {
		specDoc = s.parser.ParseSpec(specData)
		s.applySpec(feature, &specDoc, specPath)
	}

	if err := s.db.UpsertFeatureContext(ctx, feature); err != nil {
		return err
	}

	// tasks.md (replace)
	if err := s.syncTasksDoc(ctx, feature.ID, filepath.Join(dir, "tasks.md")); err != nil {
		return err
	}

	// data-model.md (merge)
	if err := s.syncDataModelDoc(ctx, feature.ID, filepath.Join(dir, "data-model.md")); err != nil {
		return err
	}

	// requirements come out of spec.md (replace)
	if err := s.db.ReplaceRequirementsContext(ctx, feature.ID, buildRequirements(specDoc.Requirements)); err != nil {
		return err
	}

	// plan.md (singleton)
	if err := s.syncPlanDoc(ctx, feature.ID, filepath.Join(dir, "plan.md")); err != nil {
		return err
	}

	// research.md (merge)
	if err := s.syncResearchDoc(ctx, feature.ID, filepath.Join(dir, "research.md")); err != nil {
		return err
	}

	return nil
}

// SyncFile implements Syncer.SyncFile.
func (s *syncer) SyncFile(ctx context.Context, path string) (bool, error) {
	kind, ok := parser.Detect(path)
	if !ok {
		return false, nil
	}
	dir, number, ok := schema.FeatureDirFromPath(path)
	if !ok {
		return false, nil
	}

	project, err := s.db.GetOrCreateProjectContext(ctx, filepath.Base(s.root), s.root)
	if err != nil {
		return true, fmt.Errorf("failed to resolve project: %w", err)
	}

	feature, err := s.db.GetFeatureByNumberContext(ctx, project.ID, number)
	if errors.Is(err, sql.ErrNoRows) {
		// First sighting of this feature: sync the whole tree so the
		// feature row and its sibling documents appear together
		s.logger.Printf("Unknown feature %s, falling back to full sync", dir)
		_, err := s.FullSync(ctx)
		return true, err
	}
	if err != nil {
		return true, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s.RemoveFile(ctx, path)
	}
	if err != nil {
		return true, fmt.Errorf("failed to read %s: %w", path, err)
	}

	switch kind {
	case parser.DocSpec:
		doc := s.parser.ParseSpec(data)
		s.applySpec(feature, &doc, path)
		if err := s.db.UpsertFeatureContext(ctx, feature); err != nil {
			return true, err
		}
		if err := s.db.ReplaceRequirementsContext(ctx, feature.ID, buildRequirements(doc.Requirements)); err != nil {
			return true, err
		}

	case parser.DocTasks:
		doc := s.parser.ParseTasks(data)
		if err := s.db.ReplaceTasksContext(ctx, feature.ID, doc.Tasks); err != nil {
			return true, err
		}
		if err := s.refreshCompletion(ctx, feature.ID); err != nil {
			return true, err
		}

	case parser.DocDataModel:
		doc := s.parser.ParseDataModel(data)
		if err := s.upsertEntities(ctx, feature.ID, doc.Entities); err != nil {
			return true, err
		}

	case parser.DocPlan:
		plan := s.parser.ParsePlan(data)
		plan.FeatureID = feature.ID
		if err := s.db.UpsertPlanContext(ctx, &plan); err != nil {
			return true, err
		}

	case parser.DocResearch:
		decisions := s.parser.ParseResearch(data)
		if err := s.upsertResearch(ctx, feature.ID, decisions); err != nil {
			return true, err
		}
	}

	s.logger.Printf("Synced %s for feature %s", filepath.Base(path), dir)
	return true, nil
}

// RemoveFile implements Syncer.RemoveFile.
func (s *syncer) RemoveFile(ctx context.Context, path string) (bool, error) {
	kind, ok := parser.Detect(path)
	if !ok {
		return false, nil
	}
	dir, number, ok := schema.FeatureDirFromPath(path)
	if !ok {
		return false, nil
	}

	project, err := s.db.GetOrCreateProjectContext(ctx, filepath.Base(s.root), s.root)
	if err != nil {
		return true, fmt.Errorf("failed to resolve project: %w", err)
	}

	feature, err := s.db.GetFeatureByNumberContext(ctx, project.ID, number)
	if errors.Is(err, sql.ErrNoRows) {
		// Nothing mirrored for this feature; nothing to clear
		return true, nil
	}
	if err != nil {
		return true, err
	}

	switch kind {
	case parser.DocSpec:
		// Metadata reverts to directory defaults, requirements clear
		fresh := &schema.Feature{
			ProjectID: feature.ProjectID,
			Number:    feature.Number,
			Name:      feature.Name,
		}
		if err := s.db.UpsertFeatureContext(ctx, fresh); err != nil {
			return true, err
		}
		if err := s.db.ReplaceRequirementsContext(ctx, fresh.ID, nil); err != nil {
			return true, err
		}
		if err := s.refreshCompletion(ctx, fresh.ID); err != nil {
			return true, err
		}
		s.logger.Printf("Cleared spec metadata for feature %s (document removed)", dir)

	case parser.DocTasks:
		if err := s.db.DeleteTasksByFeatureContext(ctx, feature.ID); err != nil {
			return true, err
		}
		if err := s.refreshCompletion(ctx, feature.ID); err != nil {
			return true, err
		}
		s.logger.Printf("Cleared tasks for feature %s (document removed)", dir)

	case parser.DocPlan:
		if err := s.db.DeletePlanByFeatureContext(ctx, feature.ID); err != nil {
			return true, err
		}
		s.logger.Printf("Cleared plan for feature %s (document removed)", dir)

	case parser.DocDataModel, parser.DocResearch:
		// Merge kinds keep their records on document removal
		s.logger.Printf("Kept %s records for feature %s (merge semantics)", kind, dir)
	}

	return true, nil
}

// syncTasksDoc replaces a feature's task set from tasks.md and
// recomputes the completion ratio. A missing document clears the set.
func (s *syncer) syncTasksDoc(ctx context.Context, featureID int64, path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if err := s.db.DeleteTasksByFeatureContext(ctx, featureID); err != nil {
			return err
		}
		return s.refreshCompletion(ctx, featureID)
	}
	if err != nil {
		return fmt.Errorf("failed to read tasks.md: %w", err)
	}

	doc := s.parser.ParseTasks(data)
	if err := s.db.ReplaceTasksContext(ctx, featureID, doc.Tasks); err != nil {
		return err
	}
	return s.refreshCompletion(ctx, featureID)
}

// syncDataModelDoc merges entities from data-model.md. A missing
// document is a no-op.
func (s *syncer) syncDataModelDoc(ctx context.Context, featureID int64, path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read data-model.md: %w", err)
	}

	doc := s.parser.ParseDataModel(data)
	return s.upsertEntities(ctx, featureID, doc.Entities)
}

// syncPlanDoc upserts the plan singleton from plan.md. A missing
// document deletes the stored plan.
func (s *syncer) syncPlanDoc(ctx context.Context, featureID int64, path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s.db.DeletePlanByFeatureContext(ctx, featureID)
	}
	if err != nil {
		return fmt.Errorf("failed to read plan.md: %w", err)
	}

	plan := s.parser.ParsePlan(data)
	plan.FeatureID = featureID
	return s.db.UpsertPlanContext(ctx, &plan)
}

// syncResearchDoc merges decisions from research.md. A missing
// document is a no-op.
func (s *syncer) syncResearchDoc(ctx context.Context, featureID int64, path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read research.md: %w", err)
	}

	decisions := s.parser.ParseResearch(data)
	return s.upsertResearch(ctx, featureID, decisions)
}

func (s *syncer) upsertEntities(ctx context.Context, featureID int64, entities []schema.Entity) error {
	for i := range entities {
		entities[i].FeatureID = featureID
		if err := s.db.UpsertEntityContext(ctx, &entities[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *syncer) upsertResearch(ctx context.Context, featureID int64, decisions []schema.ResearchDecision) error {
	for i := range decisions {
		decisions[i].FeatureID = featureID
		if err := s.db.UpsertResearchDecisionContext(ctx, &decisions[i]); err != nil {
			return err
		}
	}
	return nil
}

// refreshCompletion recomputes the done/total task ratio for a feature
// and stores it on the feature row.
func (s *syncer) refreshCompletion(ctx context.Context, featureID int64) error {
	done, total, err := s.db.GetTaskProgressContext(ctx, featureID)
	if err != nil {
		return err
	}
	completion := 0.0
	if total > 0 {
		completion = float64(done) / float64(total)
	}
	return s.db.UpdateFeatureCompletionContext(ctx, featureID, completion)
}

// applySpec maps a parsed spec document onto feature fields. The
// feature's identity fields (project, number, name) stay untouched.
func (s *syncer) applySpec(feature *schema.Feature, doc *parser.SpecDoc, path string) {
	feature.Title = doc.Title
	feature.Branch = doc.FeatureBranch
	feature.CreatedDate = doc.CreatedDate
	feature.Priority = featurePriority(doc)
	feature.SpecPath = s.relPath(path)

	if status, ok := schema.NormalizeFeatureStatus(doc.Status); ok {
		feature.Status = status
	} else {
		// Unrecognized or absent status text falls back to draft
		feature.Status = ""
	}
}

// relPath stores document paths relative to the project root with
// forward slashes so records stay portable across machines.
func (s *syncer) relPath(path string) string {
	rel, err := filepath.Rel(s.root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// featurePriority picks the explicit document priority when present,
// else the strongest user-story priority. Empty when neither exists;
// the feature default fills in P2.
func featurePriority(doc *parser.SpecDoc) string {
	if doc.Priority != "" {
		return doc.Priority
	}
	best := ""
	for _, story := range doc.Stories {
		if best == "" || story.Priority < best {
			best = story.Priority
		}
	}
	return best
}

// buildRequirements converts parsed requirement items into records,
// classifying each by its identifier prefix.
func buildRequirements(items []parser.Requirement) []schema.Requirement {
	reqs := make([]schema.Requirement, 0, len(items))
	for _, item := range items {
		reqs = append(reqs, schema.Requirement{
			ReqID:       item.ID,
			Description: item.Description,
			Type:        schema.RequirementTypeFromID(item.ID),
		})
	}
	return reqs
}
