package parser

import (
	"fmt"
	"sort"
	"sync/atomic"
	"testing"
)

// testDocCounter generates unique base names so registry tests do not
// collide with each other or with the built-in registrations.
var testDocCounter int64

func uniqueDocName(prefix string) string {
	n := atomic.AddInt64(&testDocCounter, 1)
	return fmt.Sprintf("%s-%d.md", prefix, n)
}

func TestDetectBuiltinDocs(t *testing.T) {
	tests := []struct {
		path string
		want DocKind
	}{
		{"specs/001-auth/spec.md", DocSpec},
		{"specs/001-auth/tasks.md", DocTasks},
		{"/abs/specs/002-pay/data-model.md", DocDataModel},
		{"plan.md", DocPlan},
		{"specs/003-x/research.md", DocResearch},
	}

	for _, tt := range tests {
		kind, ok := Detect(tt.path)
		if !ok {
			t.Errorf("Detect(%q) not recognized", tt.path)
			continue
		}
		if kind != tt.want {
			t.Errorf("Detect(%q) = %v, want %v", tt.path, kind, tt.want)
		}
	}
}

func TestDetectUnknownDoc(t *testing.T) {
	if _, ok := Detect("specs/001-auth/notes.md"); ok {
		t.Error("Expected notes.md to be unrecognized")
	}
	if _, ok := Detect("README.md"); ok {
		t.Error("Expected README.md to be unrecognized")
	}
}

func TestRegister(t *testing.T) {
	name := uniqueDocName("register-test")

	Register(name, DocSpec)

	if !IsRegistered(name) {
		t.Error("Expected name to be registered")
	}

	kind, ok := Detect("some/dir/" + name)
	if !ok {
		t.Fatal("Expected registered name to be detected by base path")
	}
	if kind != DocSpec {
		t.Errorf("Expected kind %v, got %v", DocSpec, kind)
	}
}

func TestRegisterPanicsOnEmpty(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic when registering empty base name")
		}
	}()

	Register("", DocSpec)
}

func TestRegisterPanicsOnDuplicate(t *testing.T) {
	name := uniqueDocName("dup-test")

	Register(name, DocTasks)

	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic when registering duplicate name")
		}
	}()

	Register(name, DocTasks)
}

func TestRegisteredDocs(t *testing.T) {
	docs := RegisteredDocs()

	if len(docs) < 5 {
		t.Fatalf("Expected at least the 5 built-in docs, got %d", len(docs))
	}
	if !sort.StringsAreSorted(docs) {
		t.Errorf("Expected sorted names, got %v", docs)
	}

	found := false
	for _, d := range docs {
		if d == "spec.md" {
			found = true
		}
	}
	if !found {
		t.Error("Expected spec.md in registered docs")
	}
}
