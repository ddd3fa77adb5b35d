package parser

import (
	"fmt"
	"path/filepath"
	"sort"
	"sync"
)

// DocKind identifies which document convention a file follows.
type DocKind string

const (
	DocSpec      DocKind = "spec"
	DocTasks     DocKind = "tasks"
	DocDataModel DocKind = "data-model"
	DocPlan      DocKind = "plan"
	DocResearch  DocKind = "research"
)

// registry maps document base names to their kind
var (
	registry      = make(map[string]DocKind)
	registryMutex sync.RWMutex
)

// Register maps a base filename to a document kind. The five spec-kit
// documents are registered by this package's init; callers can add
// further names that should dispatch to an existing parser.
func Register(base string, kind DocKind) {
	registryMutex.Lock()
	defer registryMutex.Unlock()

	if base == "" {
		panic("parser: Register called with empty base name")
	}

	if _, exists := registry[base]; exists {
		panic(fmt.Sprintf("parser: Register called twice for %s", base))
	}

	registry[base] = kind
}

func init() {
	Register("spec.md", DocSpec)
	Register("tasks.md", DocTasks)
	Register("data-model.md", DocDataModel)
	Register("plan.md", DocPlan)
	Register("research.md", DocResearch)
}

// Detect maps a document path to its kind by base filename.
// Returns false for files that follow no known convention.
func Detect(path string) (DocKind, bool) {
	registryMutex.RLock()
	defer registryMutex.RUnlock()

	kind, exists := registry[filepath.Base(path)]
	return kind, exists
}

// IsRegistered returns true if the path's base name maps to a kind.
func IsRegistered(path string) bool {
	_, exists := Detect(path)
	return exists
}

// RegisteredDocs returns all registered base names, sorted.
// Useful for testing and debugging.
func RegisteredDocs() []string {
	registryMutex.RLock()
	defer registryMutex.RUnlock()

	names := make([]string, 0, len(registry))
	for base := range registry {
		names = append(names, base)
	}
	sort.Strings(names)
	return names
}
