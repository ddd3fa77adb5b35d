package daemon

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

// TestNewWatcher verifies that creating a new Watcher succeeds.
func TestNewWatcher(t *testing.T) {
	w, err := NewWatcher(0)
	if err != nil {
		t.Fatalf("NewWatcher() failed: %v", err)
	}
	defer w.Stop()

	if w.IsRunning() {
		t.Error("Newly created watcher should not be running")
	}
	if w.debounce != DefaultDebounce {
		t.Errorf("debounce = %v, want %v", w.debounce, DefaultDebounce)
	}
}

// TestWatcher_WatchStop verifies that the watcher can start and stop cleanly.
func TestWatcher_WatchStop(t *testing.T) {
	tmpDir := t.TempDir()
	specsDir := filepath.Join(tmpDir, "specs")
	if err := os.MkdirAll(specsDir, 0755); err != nil {
		t.Fatalf("Failed to create specs dir: %v", err)
	}

	w, err := NewWatcher(50 * time.Millisecond)
	if err != nil {
		t.Fatalf("NewWatcher() failed: %v", err)
	}

	if err := w.Watch(specsDir); err != nil {
		t.Fatalf("Watch() failed: %v", err)
	}
	if !w.IsRunning() {
		t.Error("Watcher should be running after Watch()")
	}

	if err := w.Stop(); err != nil {
		t.Fatalf("Stop() failed: %v", err)
	}
	if w.IsRunning() {
		t.Error("Watcher should not be running after Stop()")
	}
}

// TestWatcher_WatchMissingRoot verifies that watching a nonexistent root fails.
func TestWatcher_WatchMissingRoot(t *testing.T) {
	w, err := NewWatcher(50 * time.Millisecond)
	if err != nil {
		t.Fatalf("NewWatcher() failed: %v", err)
	}
	defer w.Stop()

	if err := w.Watch(filepath.Join(t.TempDir(), "does-not-exist")); err == nil {
		t.Error("Watch() should fail for a nonexistent root")
	}
}

// TestWatcher_DocumentCreated verifies that creating a document emits an add event.
func TestWatcher_DocumentCreated(t *testing.T) {
	tmpDir := t.TempDir()
	featureDir := filepath.Join(tmpDir, "specs", "001-user-auth")
	if err := os.MkdirAll(featureDir, 0755); err != nil {
		t.Fatalf("Failed to create feature dir: %v", err)
	}

	w, err := NewWatcher(50 * time.Millisecond)
	if err != nil {
		t.Fatalf("NewWatcher() failed: %v", err)
	}
	defer w.Stop()

	if err := w.Watch(filepath.Join(tmpDir, "specs")); err != nil {
		t.Fatalf("Watch() failed: %v", err)
	}

	specPath := filepath.Join(featureDir, "spec.md")
	if err := os.WriteFile(specPath, []byte("# Feature Specification: Auth\n"), 0644); err != nil {
		t.Fatalf("Failed to write spec file: %v", err)
	}

	select {
	case event := <-w.Events():
		if event.Kind != KindAdd {
			t.Errorf("Kind = %v, want add", event.Kind)
		}
		if filepath.Base(event.Path) != "spec.md" {
			t.Errorf("Path base = %s, want spec.md", filepath.Base(event.Path))
		}
		if event.FeatureNum == nil || *event.FeatureNum != 1 {
			t.Errorf("FeatureNum = %v, want 1", event.FeatureNum)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Timeout waiting for add event")
	}
}

// TestWatcher_DocumentModified verifies that modifying a document emits a change event.
func TestWatcher_DocumentModified(t *testing.T) {
	tmpDir := t.TempDir()
	featureDir := filepath.Join(tmpDir, "specs", "001-user-auth")
	if err := os.MkdirAll(featureDir, 0755); err != nil {
		t.Fatalf("Failed to create feature dir: %v", err)
	}

	tasksPath := filepath.Join(featureDir, "tasks.md")
	if err := os.WriteFile(tasksPath, []byte("- [ ] T001 Start\n"), 0644); err != nil {
		t.Fatalf("Failed to write tasks file: %v", err)
	}

	w, err := NewWatcher(50 * time.Millisecond)
	if err != nil {
		t.Fatalf("NewWatcher() failed: %v", err)
	}
	defer w.Stop()

	if err := w.Watch(filepath.Join(tmpDir, "specs")); err != nil {
		t.Fatalf("Watch() failed: %v", err)
	}

	// Give watcher time to stabilize
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(tasksPath, []byte("- [x] T001 Start\n"), 0644); err != nil {
		t.Fatalf("Failed to update tasks file: %v", err)
	}

	select {
	case event := <-w.Events():
		if event.Kind != KindChange {
			t.Errorf("Kind = %v, want change", event.Kind)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Timeout waiting for change event")
	}
}

// TestWatcher_DocumentDeleted verifies that deleting a document emits an unlink event.
func TestWatcher_DocumentDeleted(t *testing.T) {
	tmpDir := t.TempDir()
	featureDir := filepath.Join(tmpDir, "specs", "001-user-auth")
	if err := os.MkdirAll(featureDir, 0755); err != nil {
		t.Fatalf("Failed to create feature dir: %v", err)
	}

	planPath := filepath.Join(featureDir, "plan.md")
	if err := os.WriteFile(planPath, []byte("# Implementation Plan\n"), 0644); err != nil {
		t.Fatalf("Failed to write plan file: %v", err)
	}

	w, err := NewWatcher(50 * time.Millisecond)
	if err != nil {
		t.Fatalf("NewWatcher() failed: %v", err)
	}
	defer w.Stop()

	if err := w.Watch(filepath.Join(tmpDir, "specs")); err != nil {
		t.Fatalf("Watch() failed: %v", err)
	}

	// Give watcher time to stabilize
	time.Sleep(100 * time.Millisecond)

	if err := os.Remove(planPath); err != nil {
		t.Fatalf("Failed to delete plan file: %v", err)
	}

	select {
	case event := <-w.Events():
		if event.Kind != KindUnlink {
			t.Errorf("Kind = %v, want unlink", event.Kind)
		}
		if filepath.Base(event.Path) != "plan.md" {
			t.Errorf("Path base = %s, want plan.md", filepath.Base(event.Path))
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Timeout waiting for unlink event")
	}
}

// TestWatcher_DebounceCollapsesBursts verifies that rapid writes to the
// same path produce exactly one event.
func TestWatcher_DebounceCollapsesBursts(t *testing.T) {
	tmpDir := t.TempDir()
	featureDir := filepath.Join(tmpDir, "specs", "001-user-auth")
	if err := os.MkdirAll(featureDir, 0755); err != nil {
		t.Fatalf("Failed to create feature dir: %v", err)
	}

	tasksPath := filepath.Join(featureDir, "tasks.md")
	if err := os.WriteFile(tasksPath, []byte("- [ ] T001 Start\n"), 0644); err != nil {
		t.Fatalf("Failed to write tasks file: %v", err)
	}

	w, err := NewWatcher(150 * time.Millisecond)
	if err != nil {
		t.Fatalf("NewWatcher() failed: %v", err)
	}
	defer w.Stop()

	if err := w.Watch(filepath.Join(tmpDir, "specs")); err != nil {
		t.Fatalf("Watch() failed: %v", err)
	}

	// Give watcher time to stabilize
	time.Sleep(100 * time.Millisecond)

	for i := 0; i < 3; i++ {
		if err := os.WriteFile(tasksPath, []byte("- [x] T001 Start\n"), 0644); err != nil {
			t.Fatalf("Failed to update tasks file: %v", err)
		}
		time.Sleep(20 * time.Millisecond)
	}

	select {
	case event := <-w.Events():
		if event.Kind != KindChange {
			t.Errorf("Kind = %v, want change", event.Kind)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Timeout waiting for coalesced event")
	}

	// No second event should follow for the same burst
	select {
	case event := <-w.Events():
		t.Errorf("Burst should coalesce to one event, got extra: %+v", event)
	case <-time.After(500 * time.Millisecond):
	}
}

// TestWatcher_NonMarkdownIgnored verifies that non-.md files are ignored.
func TestWatcher_NonMarkdownIgnored(t *testing.T) {
	tmpDir := t.TempDir()
	featureDir := filepath.Join(tmpDir, "specs", "001-user-auth")
	if err := os.MkdirAll(featureDir, 0755); err != nil {
		t.Fatalf("Failed to create feature dir: %v", err)
	}

	w, err := NewWatcher(50 * time.Millisecond)
	if err != nil {
		t.Fatalf("NewWatcher() failed: %v", err)
	}
	defer w.Stop()

	if err := w.Watch(filepath.Join(tmpDir, "specs")); err != nil {
		t.Fatalf("Watch() failed: %v", err)
	}

	txtPath := filepath.Join(featureDir, "notes.txt")
	if err := os.WriteFile(txtPath, []byte("scratch notes"), 0644); err != nil {
		t.Fatalf("Failed to write txt file: %v", err)
	}

	select {
	case event := <-w.Events():
		t.Errorf("Should not receive event for non-.md file, got: %+v", event)
	case <-time.After(500 * time.Millisecond):
		// Expected
	}
}

// TestWatcher_NewFeatureDirectoryWatched verifies that documents inside a
// directory created after Watch() still emit events.
func TestWatcher_NewFeatureDirectoryWatched(t *testing.T) {
	tmpDir := t.TempDir()
	specsDir := filepath.Join(tmpDir, "specs")
	if err := os.MkdirAll(specsDir, 0755); err != nil {
		t.Fatalf("Failed to create specs dir: %v", err)
	}

	w, err := NewWatcher(50 * time.Millisecond)
	if err != nil {
		t.Fatalf("NewWatcher() failed: %v", err)
	}
	defer w.Stop()

	if err := w.Watch(specsDir); err != nil {
		t.Fatalf("Watch() failed: %v", err)
	}

	featureDir := filepath.Join(specsDir, "002-billing")
	if err := os.MkdirAll(featureDir, 0755); err != nil {
		t.Fatalf("Failed to create feature dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(featureDir, "tasks.md"), []byte("- [ ] T001 Invoice model\n"), 0644); err != nil {
		t.Fatalf("Failed to write tasks file: %v", err)
	}

	select {
	case event := <-w.Events():
		if event.Kind != KindAdd {
			t.Errorf("Kind = %v, want add", event.Kind)
		}
		if event.FeatureNum == nil || *event.FeatureNum != 2 {
			t.Errorf("FeatureNum = %v, want 2", event.FeatureNum)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Timeout waiting for event from new directory")
	}
}

// TestWatcher_FeatureDirectoryRemoved verifies that removing a whole
// feature directory surfaces an unlink event for the directory itself.
func TestWatcher_FeatureDirectoryRemoved(t *testing.T) {
	tmpDir := t.TempDir()
	featureDir := filepath.Join(tmpDir, "specs", "001-user-auth")
	if err := os.MkdirAll(featureDir, 0755); err != nil {
		t.Fatalf("Failed to create feature dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(featureDir, "spec.md"), []byte("# Auth\n"), 0644); err != nil {
		t.Fatalf("Failed to write spec file: %v", err)
	}

	w, err := NewWatcher(50 * time.Millisecond)
	if err != nil {
		t.Fatalf("NewWatcher() failed: %v", err)
	}
	defer w.Stop()

	if err := w.Watch(filepath.Join(tmpDir, "specs")); err != nil {
		t.Fatalf("Watch() failed: %v", err)
	}

	// Give watcher time to stabilize
	time.Sleep(100 * time.Millisecond)

	if err := os.RemoveAll(featureDir); err != nil {
		t.Fatalf("Failed to remove feature dir: %v", err)
	}

	// The removal produces unlink events for the documents inside and
	// for the directory itself, in no particular order.
	timeout := time.After(2 * time.Second)
	for {
		select {
		case event := <-w.Events():
			if event.Kind != KindUnlink {
				t.Errorf("Kind = %v, want unlink for %s", event.Kind, event.Path)
			}
			if filepath.Base(event.Path) == "001-user-auth" {
				if event.FeatureNum == nil || *event.FeatureNum != 1 {
					t.Errorf("FeatureNum = %v, want 1", event.FeatureNum)
				}
				return
			}
		case <-timeout:
			t.Fatal("Timeout waiting for directory unlink event")
		}
	}
}

// TestWatcher_WatchReplacesSession verifies that a second Watch() call
// drops the previous session's watches.
func TestWatcher_WatchReplacesSession(t *testing.T) {
	tmpDir := t.TempDir()
	oldDir := filepath.Join(tmpDir, "old", "specs", "001-user-auth")
	newDir := filepath.Join(tmpDir, "new", "specs", "002-billing")
	for _, dir := range []string{oldDir, newDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("Failed to create dir %s: %v", dir, err)
		}
	}

	w, err := NewWatcher(50 * time.Millisecond)
	if err != nil {
		t.Fatalf("NewWatcher() failed: %v", err)
	}
	defer w.Stop()

	if err := w.Watch(filepath.Join(tmpDir, "old", "specs")); err != nil {
		t.Fatalf("First Watch() failed: %v", err)
	}
	if err := w.Watch(filepath.Join(tmpDir, "new", "specs")); err != nil {
		t.Fatalf("Second Watch() failed: %v", err)
	}

	if err := os.WriteFile(filepath.Join(oldDir, "spec.md"), []byte("# Old\n"), 0644); err != nil {
		t.Fatalf("Failed to write old spec: %v", err)
	}
	if err := os.WriteFile(filepath.Join(newDir, "spec.md"), []byte("# New\n"), 0644); err != nil {
		t.Fatalf("Failed to write new spec: %v", err)
	}

	select {
	case event := <-w.Events():
		if event.FeatureNum == nil || *event.FeatureNum != 2 {
			t.Errorf("FeatureNum = %v, want 2 (old session should be dropped)", event.FeatureNum)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Timeout waiting for event from new session")
	}
}

// TestEventKindString verifies the human-readable kind names.
func TestEventKindString(t *testing.T) {
	tests := []struct {
		kind EventKind
		want string
	}{
		{KindAdd, "add"},
		{KindChange, "change"},
		{KindUnlink, "unlink"},
		{EventKind(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("EventKind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

// TestConvertEvent verifies raw event classification without touching the
// filesystem.
func TestConvertEvent(t *testing.T) {
	w := &Watcher{}

	tests := []struct {
		name       string
		event      fsnotify.Event
		wantOK     bool
		wantKind   EventKind
		wantNum    int
		wantNumNil bool
	}{
		{
			name:     "spec write",
			event:    fsnotify.Event{Name: "/p/specs/001-user-auth/spec.md", Op: fsnotify.Write},
			wantOK:   true,
			wantKind: KindChange,
			wantNum:  1,
		},
		{
			name:     "tasks create",
			event:    fsnotify.Event{Name: "/p/specs/004-search/tasks.md", Op: fsnotify.Create},
			wantOK:   true,
			wantKind: KindAdd,
			wantNum:  4,
		},
		{
			name:     "plan remove",
			event:    fsnotify.Event{Name: "/p/specs/002-billing/plan.md", Op: fsnotify.Remove},
			wantOK:   true,
			wantKind: KindUnlink,
			wantNum:  2,
		},
		{
			name:     "rename treated as unlink",
			event:    fsnotify.Event{Name: "/p/specs/002-billing/plan.md", Op: fsnotify.Rename},
			wantOK:   true,
			wantKind: KindUnlink,
			wantNum:  2,
		},
		{
			name:   "chmod ignored",
			event:  fsnotify.Event{Name: "/p/specs/001-user-auth/spec.md", Op: fsnotify.Chmod},
			wantOK: false,
		},
		{
			name:   "non-markdown ignored",
			event:  fsnotify.Event{Name: "/p/specs/001-user-auth/notes.txt", Op: fsnotify.Write},
			wantOK: false,
		},
		{
			name:     "feature directory removal kept",
			event:    fsnotify.Event{Name: "/p/specs/003-export", Op: fsnotify.Remove},
			wantOK:   true,
			wantKind: KindUnlink,
			wantNum:  3,
		},
		{
			name:   "non-feature directory removal ignored",
			event:  fsnotify.Event{Name: "/p/specs/templates", Op: fsnotify.Remove},
			wantOK: false,
		},
		{
			name:       "markdown outside feature dirs",
			event:      fsnotify.Event{Name: "/p/specs/README.md", Op: fsnotify.Write},
			wantOK:     true,
			wantKind:   KindChange,
			wantNumNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := w.convertEvent(tt.event)
			if ok != tt.wantOK {
				t.Fatalf("convertEvent() ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if got.Kind != tt.wantKind {
				t.Errorf("Kind = %v, want %v", got.Kind, tt.wantKind)
			}
			if tt.wantNumNil {
				if got.FeatureNum != nil {
					t.Errorf("FeatureNum = %v, want nil", *got.FeatureNum)
				}
			} else if got.FeatureNum == nil || *got.FeatureNum != tt.wantNum {
				t.Errorf("FeatureNum = %v, want %d", got.FeatureNum, tt.wantNum)
			}
		})
	}
}

// TestCoalesce verifies burst coalescing rules.
func TestCoalesce(t *testing.T) {
	tests := []struct {
		pending EventKind
		next    EventKind
		want    EventKind
	}{
		{KindAdd, KindChange, KindAdd},
		{KindAdd, KindAdd, KindAdd},
		{KindAdd, KindUnlink, KindUnlink},
		{KindChange, KindChange, KindChange},
		{KindChange, KindUnlink, KindUnlink},
		{KindUnlink, KindAdd, KindChange},
		{KindUnlink, KindUnlink, KindUnlink},
	}

	for _, tt := range tests {
		if got := coalesce(tt.pending, tt.next); got != tt.want {
			t.Errorf("coalesce(%v, %v) = %v, want %v", tt.pending, tt.next, got, tt.want)
		}
	}
}
